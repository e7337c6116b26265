package domain

// Resource identifies a raw material tracked by the assessment engine.
// Every resource maps a display name to its six digit HS commodity code
// and to the production table holding its yearly country-level quantities.
type Resource struct {
	Name   string `json:"name" db:"name" validate:"required"`
	HSCode int    `json:"hs_code" db:"hs_code" validate:"required,min=1"`
	Sheet  string `json:"sheet" db:"sheet"`
}

// ProductionTable holds the yearly production quantities of one resource
// for every producing country. The unit tag applies to the whole table,
// not to individual rows.
type ProductionTable struct {
	Resource string          `json:"resource"`
	Unit     string          `json:"unit"`
	Years    []int           `json:"years"`
	Rows     []ProductionRow `json:"rows"`
}

// ProductionRow is one producing country's quantities by year.
// CountryCode "DELETE" marks a withdrawn entry that must be excluded
// before market shares are computed.
type ProductionRow struct {
	Country     string          `json:"country"`
	CountryCode string          `json:"country_code"`
	Quantities  map[int]float64 `json:"quantities"`
}

// WithdrawnCode marks production rows that have been retired from the
// reference data but are kept in the tables for traceability.
const WithdrawnCode = "DELETE"

// Withdrawn reports whether the row is a retired entry.
func (r ProductionRow) Withdrawn() bool {
	return r.CountryCode == WithdrawnCode
}

// HasYear reports whether the table carries a data column for the year.
func (t *ProductionTable) HasYear(year int) bool {
	for _, y := range t.Years {
		if y == year {
			return true
		}
	}
	return false
}

// Recognized production units. Quantities are normalized to metric tons
// before they are combined with trade quantities.
const (
	UnitMetricTons = "metr. t"
	UnitKilograms  = "kg"
	UnitMillionCbm = "Mio m3"
)
