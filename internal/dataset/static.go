package dataset

import (
	"sort"

	"geopolrisk/pkg/contracts/domain"
)

// StaticData assembles a Ref from in-memory tables, for callers that
// source reference data from something other than the bundled
// databases.
type StaticData struct {
	Resources []domain.Resource
	Countries []domain.Country
	// Production tables keyed by sheet name, matching Resource.Sheet.
	Production map[string]*domain.ProductionTable
	Trade      []domain.TradeFlow
	WGI        map[int]map[int]float64
}

// NewStaticRef builds reference data from the given tables. Preset
// regions are installed the same way the database loader does it.
func NewStaticRef(data StaticData) *Ref {
	ref := &Ref{
		resourceByName: make(map[string]domain.Resource),
		resourceByHS:   make(map[int]domain.Resource),
		countryByName:  make(map[string]domain.Country),
		countryByISO:   make(map[int]domain.Country),
		production:     make(map[string]*domain.ProductionTable),
		wgi:            make(map[int]map[int]float64),
		regions:        make(map[string][]string),
	}
	for name, members := range presetRegions {
		ref.regions[name] = append([]string(nil), members...)
	}

	ref.resources = append(ref.resources, data.Resources...)
	sort.Slice(ref.resources, func(i, j int) bool { return ref.resources[i].Name < ref.resources[j].Name })
	for _, res := range data.Resources {
		ref.resourceByName[res.Name] = res
		if res.HSCode != 0 {
			ref.resourceByHS[res.HSCode] = res
		}
	}

	ref.countries = append(ref.countries, data.Countries...)
	sort.Slice(ref.countries, func(i, j int) bool { return ref.countries[i].Name < ref.countries[j].Name })
	for _, c := range data.Countries {
		ref.countryByName[c.Name] = c
		ref.countryByISO[c.ISO] = c
	}

	for sheet, table := range data.Production {
		ref.production[sheet] = table
	}
	ref.trade = append(ref.trade, data.Trade...)
	for code, years := range data.WGI {
		ref.wgi[code] = years
	}
	return ref
}
