package assessment

import (
	"io"
	"log/slog"

	"geopolrisk/internal/dataset"
	"geopolrisk/pkg/contracts/domain"
)

// Fixed reference data used across the package tests. Cobalt splits
// 70/30 between Congo and Australia in 2020, which gives an HHI of
// 0.58. Germany imports 100 t from Congo (WGI 0.2, 1000 kUSD) and
// 50 t from Australia (WGI 0.8, 600 kUSD).
func newTestRef() *dataset.Ref {
	return dataset.NewStaticRef(dataset.StaticData{
		Resources: []domain.Resource{
			{Name: "Cobalt", HSCode: 810520, Sheet: "Cobalt"},
			{Name: "Natural gas", HSCode: 271121, Sheet: "Natural gas"},
			{Name: "Bauxite", HSCode: 260600, Sheet: "Bauxite"},
			{Name: "Helium", HSCode: 280429, Sheet: "Helium"},
		},
		Countries: []domain.Country{
			{Name: "Congo", ISO: 180},
			{Name: "Australia", ISO: 36},
			{Name: "Germany", ISO: 276},
			{Name: "Canada", ISO: 124},
		},
		Production: map[string]*domain.ProductionTable{
			"Cobalt": {
				Resource: "Cobalt",
				Unit:     domain.UnitMetricTons,
				Years:    []int{2019, 2020},
				Rows: []domain.ProductionRow{
					{Country: "Congo", CountryCode: "180", Quantities: map[int]float64{2019: 60, 2020: 70}},
					{Country: "Australia", CountryCode: "36", Quantities: map[int]float64{2019: 40, 2020: 30}},
					{Country: "Yugoslavia", CountryCode: domain.WithdrawnCode, Quantities: map[int]float64{2020: 1000}},
				},
			},
			"Natural gas": {
				Resource: "Natural gas",
				Unit:     domain.UnitMillionCbm,
				Years:    []int{2020},
				Rows: []domain.ProductionRow{
					{Country: "Australia", CountryCode: "36", Quantities: map[int]float64{2020: 10}},
				},
			},
			"Bauxite": {
				Resource: "Bauxite",
				Unit:     domain.UnitKilograms,
				Years:    []int{2020},
				Rows: []domain.ProductionRow{
					{Country: "Australia", CountryCode: "36", Quantities: map[int]float64{2020: 5000}},
				},
			},
			"Helium": {
				Resource: "Helium",
				Unit:     "unexpected unit",
				Years:    []int{2020},
				Rows: []domain.ProductionRow{
					{Country: "Canada", CountryCode: "124", Quantities: map[int]float64{2020: 1}},
				},
			},
		},
		Trade: []domain.TradeFlow{
			{
				Period: 2020, ReporterCode: 276, ReporterName: "Germany",
				PartnerCode: 180, PartnerName: "Congo",
				CmdCode: 810520, Qty: 100, CIFValue: 1000, PartnerWGI: 0.2,
			},
			{
				Period: 2020, ReporterCode: 276, ReporterName: "Germany",
				PartnerCode: 36, PartnerName: "Australia",
				CmdCode: 810520, Qty: 50, CIFValue: 600, PartnerWGI: 0.8,
			},
		},
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
