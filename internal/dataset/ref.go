package dataset

import (
	"sort"
	"strconv"
	"strings"

	"geopolrisk/internal/errors"
	"geopolrisk/pkg/contracts/domain"
)

// Ref holds the loaded reference data. All fields are immutable after
// Load returns; no component may mutate them mid-run.
type Ref struct {
	resources      []domain.Resource
	resourceByName map[string]domain.Resource
	resourceByHS   map[int]domain.Resource

	countries     []domain.Country
	countryByName map[string]domain.Country
	countryByISO  map[int]domain.Country

	production map[string]*domain.ProductionTable // keyed by sheet name

	trade []domain.TradeFlow
	wgi   map[int]map[int]float64 // country code -> year -> indicator

	regions map[string][]string
}

// Resources lists the known raw materials, sorted by name.
func (r *Ref) Resources() []domain.Resource {
	out := make([]domain.Resource, len(r.resources))
	copy(out, r.resources)
	return out
}

// Countries lists the known countries, sorted by name.
func (r *Ref) Countries() []domain.Country {
	out := make([]domain.Country, len(r.countries))
	copy(out, r.countries)
	return out
}

// ResourceByName looks a resource up by its display name.
func (r *Ref) ResourceByName(name string) (domain.Resource, bool) {
	res, ok := r.resourceByName[name]
	return res, ok
}

// ResourceByHS looks a resource up by its HS commodity code.
func (r *Ref) ResourceByHS(code int) (domain.Resource, bool) {
	res, ok := r.resourceByHS[code]
	return res, ok
}

// CountryByName looks a country up by its display name.
func (r *Ref) CountryByName(name string) (domain.Country, bool) {
	c, ok := r.countryByName[name]
	return c, ok
}

// CountryByISO looks a country up by its ISO numeric code.
func (r *Ref) CountryByISO(code int) (domain.Country, bool) {
	c, ok := r.countryByISO[code]
	return c, ok
}

// Production returns the production table behind the given sheet name.
func (r *Ref) Production(sheet string) (*domain.ProductionTable, bool) {
	t, ok := r.production[sheet]
	return t, ok
}

// WGI returns the political stability indicator for a country code and
// year, and whether the reference data carries it.
func (r *Ref) WGI(countryCode, year int) (float64, bool) {
	years, ok := r.wgi[countryCode]
	if !ok {
		return 0, false
	}
	v, ok := years[year]
	return v, ok
}

// Regions is a request-scoped region registry: the preset regions of
// the reference data overlaid with validated per-request definitions.
// It never writes back into Ref, so concurrent runs with different
// definitions cannot interfere with each other.
type Regions struct {
	base map[string][]string // shared with Ref, never written
	user map[string][]string
}

// ResolveRegions validates per-request region definitions and returns
// a registry combining them with the presets. Every member must
// resolve to a known country display name or ISO code; one
// unresolvable member rejects the whole set so a batch never starts
// with a half-valid registry. Ref itself is left untouched.
func (r *Ref) ResolveRegions(defs map[string][]string) (*Regions, error) {
	user := make(map[string][]string, len(defs))
	for name, members := range defs {
		if strings.TrimSpace(name) == "" {
			return nil, errors.NewValidationError("regions", "region name must not be empty")
		}
		if len(members) == 0 {
			return nil, errors.NewValidationError(name, "region must have at least one member")
		}
		resolved := make([]string, 0, len(members))
		for _, member := range members {
			c, ok := r.countryByName[member]
			if !ok {
				if iso, err := strconv.Atoi(member); err == nil {
					c, ok = r.countryByISO[iso]
				}
			}
			if !ok {
				return nil, errors.NewValidationError(name, "unknown member country "+strconv.Quote(member))
			}
			resolved = append(resolved, c.Name)
		}
		user[name] = resolved
	}
	return &Regions{base: r.regions, user: user}, nil
}

// IsRegion reports whether name is present in the registry.
func (s *Regions) IsRegion(name string) bool {
	if _, ok := s.user[name]; ok {
		return true
	}
	_, ok := s.base[name]
	return ok
}

// Members returns the member country names of a region. Per-request
// definitions shadow presets of the same name.
func (s *Regions) Members(name string) ([]string, bool) {
	members, ok := s.user[name]
	if !ok {
		members, ok = s.base[name]
	}
	if !ok {
		return nil, false
	}
	out := make([]string, len(members))
	copy(out, members)
	return out, true
}

// Scope expands a country-or-region identifier to its member tuple: the
// region members for a registered region, a singleton for a plain
// country. The tuple is sorted so downstream cache keys are
// order-independent.
func (s *Regions) Scope(countryOrRegion string) []string {
	if members, ok := s.Members(countryOrRegion); ok && len(members) > 0 {
		sort.Strings(members)
		return members
	}
	return []string{countryOrRegion}
}

// IsRegion reports whether name is a preset region. Per-request
// definitions live in the Regions registry returned by ResolveRegions.
func (r *Ref) IsRegion(name string) bool {
	_, ok := r.regions[name]
	return ok
}

// RegionMembers returns the member country names of a preset region.
func (r *Ref) RegionMembers(name string) ([]string, bool) {
	members, ok := r.regions[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(members))
	copy(out, members)
	return out, true
}

// presetRegions are installed at load time. The EU aggregate mirrors
// the member list of the trade reference data, including historical
// reporting entities.
var presetRegions = map[string][]string{
	"EU": {
		"Austria",
		"Belgium",
		"Belgium-Luxembourg",
		"Bulgaria",
		"Croatia",
		"Czechia",
		"Czechoslovakia",
		"Denmark",
		"Estonia",
		"Finland",
		"France",
		"Fmr Dem. Rep. of Germany",
		"Fmr Fed. Rep. of Germany",
		"Germany",
		"Greece",
		"Hungary",
		"Ireland",
		"Italy",
		"Latvia",
		"Lithuania",
		"Luxembourg",
		"Malta",
		"Netherlands",
		"Poland",
		"Portugal",
		"Romania",
		"Slovakia",
		"Slovenia",
		"Spain",
		"Sweden",
	},
}
