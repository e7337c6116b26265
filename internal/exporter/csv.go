package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"geopolrisk/pkg/contracts/domain"
)

// resultHeaders is the column order of every export format.
var resultHeaders = []string{
	"DBID",
	"Country [Economic Entity]",
	"Raw Material",
	"Year",
	"Exporter",
	"GeoPolRisk Score",
	"GeoPolRisk Characterization Factor [eq. kg-Cu/kg]",
	"HHI",
	"Import Risk",
	"Price [USD/kg]",
	"Country Price [USD/kg]",
	"Global Price [USD/kg]",
}

// CSVWriter writes assessment records as CSV files.
type CSVWriter struct {
	outputDir string
	logger    *slog.Logger
}

// NewCSVWriter creates a writer that resolves relative file names
// against outputDir.
func NewCSVWriter(outputDir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{outputDir: outputDir, logger: logger}
}

// Write stores the records in a CSV file under the output directory,
// prefixed with a UTF-8 BOM for Excel compatibility.
func (w *CSVWriter) Write(name string, records []domain.RiskRecord) error {
	fullPath := w.resolvePath(name)
	w.logger.Info("writing CSV export",
		slog.String("path", fullPath),
		slog.Int("records", len(records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("create CSV file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(resultHeaders); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	for _, r := range records {
		if err := writer.Write(recordRow(r)); err != nil {
			return fmt.Errorf("write record %s: %w", r.ID, err)
		}
	}
	return writer.Error()
}

func (w *CSVWriter) resolvePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(w.outputDir, name)
}

// recordRow renders one record in the shared column order.
func recordRow(r domain.RiskRecord) []string {
	return []string{
		r.ID,
		r.Country,
		r.Resource,
		strconv.Itoa(r.Year),
		r.Exporter,
		formatValue(r.Score),
		formatValue(r.CF),
		formatValue(r.HHI),
		formatValue(r.ImportRisk),
		formatValue(r.Price),
		formatValue(r.CountryPrice),
		formatValue(r.GlobalPrice),
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
