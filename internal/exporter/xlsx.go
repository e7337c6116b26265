package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"geopolrisk/pkg/contracts/domain"
)

const resultSheet = "Results"

// XLSXWriter writes assessment records as Excel workbooks.
type XLSXWriter struct {
	outputDir string
	logger    *slog.Logger
}

// NewXLSXWriter creates a writer that resolves relative file names
// against outputDir.
func NewXLSXWriter(outputDir string, logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{outputDir: outputDir, logger: logger}
}

// Write stores the records in an XLSX workbook with a single Results
// sheet.
func (w *XLSXWriter) Write(name string, records []domain.RiskRecord) error {
	fullPath := name
	if !filepath.IsAbs(fullPath) {
		fullPath = filepath.Join(w.outputDir, name)
	}
	w.logger.Info("writing XLSX export",
		slog.String("path", fullPath),
		slog.Int("records", len(records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), resultSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(resultHeaders))
	for i, h := range resultHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(resultSheet, "A1", &header); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell address for row %d: %w", i+2, err)
		}
		row := []interface{}{
			r.ID, r.Country, r.Resource, r.Year, r.Exporter,
			r.Score, r.CF, r.HHI, r.ImportRisk,
			r.Price, r.CountryPrice, r.GlobalPrice,
		}
		if err := f.SetSheetRow(resultSheet, cell, &row); err != nil {
			return fmt.Errorf("write record %s: %w", r.ID, err)
		}
	}

	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
