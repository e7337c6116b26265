package dataset

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"geopolrisk/internal/errors"
	"geopolrisk/pkg/contracts/domain"
)

// CompanySheet is the sheet name of the company trade template.
const CompanySheet = "Template"

// Template column headers.
var companyHeaders = []string{"Metal", "Country of Origin", "Quantity (kg)", "Value (USD)", "Year"}

// LoadCompanyTrade reads the company trade template workbook and
// transforms it into trade flows shaped like the country-level data,
// reported under the synthetic "Company" entity. Template quantities
// and values are recorded in thousands and scaled to the native trade
// units here.
//
// Formatting problems (non-numeric quantity or year, unknown metal or
// origin) are ValidationErrors: the template is user input and a bad
// cell must be fixed, not silently zeroed.
func (r *Ref) LoadCompanyTrade(path, sheet string, logger *slog.Logger) ([]domain.TradeFlow, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if sheet == "" {
		sheet = CompanySheet
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open company template: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, errors.NewValidationError("template", "workbook has no data rows")
	}

	colIdx := make(map[string]int)
	for i, header := range rows[0] {
		colIdx[strings.TrimSpace(header)] = i
	}
	for _, header := range companyHeaders {
		if _, ok := colIdx[header]; !ok {
			return nil, errors.NewValidationError("template", "missing column "+strconv.Quote(header))
		}
	}

	cell := func(row []string, header string) string {
		i := colIdx[header]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var flows []domain.TradeFlow
	for n, row := range rows[1:] {
		metal := cell(row, "Metal")
		origin := cell(row, "Country of Origin")
		if metal == "" && origin == "" {
			continue // trailing blank row
		}

		res, ok := r.resourceByName[metal]
		if !ok || res.HSCode == 0 {
			return nil, errors.NewValidationError("template", fmt.Sprintf("row %d: unknown metal %q", n+2, metal))
		}
		country, ok := r.countryByName[origin]
		if !ok {
			return nil, errors.NewValidationError("template", fmt.Sprintf("row %d: unknown country of origin %q", n+2, origin))
		}
		year, err := strconv.Atoi(cell(row, "Year"))
		if err != nil {
			return nil, errors.NewValidationError("template", fmt.Sprintf("row %d: year must be numeric", n+2))
		}
		qty, err := strconv.ParseFloat(cell(row, "Quantity (kg)"), 64)
		if err != nil {
			return nil, errors.NewValidationError("template", fmt.Sprintf("row %d: quantity must be numeric", n+2))
		}
		value, err := strconv.ParseFloat(cell(row, "Value (USD)"), 64)
		if err != nil {
			return nil, errors.NewValidationError("template", fmt.Sprintf("row %d: value must be numeric", n+2))
		}

		flow := domain.TradeFlow{
			Period:       year,
			ReporterCode: domain.CompanyReporterCode,
			ReporterName: domain.CompanyReporterName,
			PartnerCode:  country.ISO,
			PartnerName:  country.Name,
			CmdCode:      res.HSCode,
			Qty:          qty * 1000,
			CIFValue:     value * 1000,
		}
		if wgi, ok := r.WGI(country.ISO, year); ok {
			flow.PartnerWGI = wgi
		} else {
			flow.WGIMissing = true
			logger.Debug("no WGI indicator for template row",
				slog.String("country", country.Name), slog.Int("year", year))
		}
		flows = append(flows, flow)
	}
	return flows, nil
}
