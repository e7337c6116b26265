package domain

import "fmt"

// HHIResult is the cached outcome of a production concentration lookup:
// the production quantity for the requested scope, normalized to metric
// tons, and the Herfindahl-Hirschman index of the resource's global
// production in [0,1].
type HHIResult struct {
	Quantity float64 `json:"quantity"`
	HHI      float64 `json:"hhi"`
}

// RiskRecord is one assessed (resource, country-or-region, year)
// combination, keyed by a deterministic ID so the result sink can
// upsert repeat runs in place.
//
// Exporter, CountryPrice and GlobalPrice are only populated by the
// per-exporter sweep; Exporter is "Global" on the row aggregating all
// partners of an importer.
type RiskRecord struct {
	ID         string  `json:"id" db:"DBID"`
	Country    string  `json:"country" db:"country"`
	Resource   string  `json:"resource" db:"resource"`
	Year       int     `json:"year" db:"year"`
	Score      float64 `json:"score" db:"score"`
	CF         float64 `json:"cf" db:"cf"`
	HHI        float64 `json:"hhi" db:"hhi"`
	ImportRisk float64 `json:"import_risk" db:"import_risk"`
	Price      float64 `json:"price" db:"price"`

	Exporter     string  `json:"exporter,omitempty" db:"exporter"`
	CountryPrice float64 `json:"country_price,omitempty" db:"country_price"`
	GlobalPrice  float64 `json:"global_price,omitempty" db:"global_price"`
}

// GlobalExporter labels the aggregate row of a per-exporter sweep.
const GlobalExporter = "Global"

// RecordID builds the deterministic record key from the commodity HS
// code, the country ISO code (or region name) and the year.
func RecordID(hs int, iso string, year int) string {
	return fmt.Sprintf("%d%s%d", hs, iso, year)
}
