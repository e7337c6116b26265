// Command assess runs a supply risk assessment from the command line
// and writes the results to the record store and to CSV or XLSX files.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"geopolrisk/internal/assessment"
	"geopolrisk/internal/config"
	"geopolrisk/internal/dataset"
	"geopolrisk/internal/exporter"
	"geopolrisk/internal/infrastructure"
	"geopolrisk/internal/store"
	"geopolrisk/pkg/contracts/domain"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	resources := flag.String("resources", "", "comma-separated resource names or HS codes")
	countries := flag.String("countries", "", "comma-separated country names, ISO codes or region names")
	years := flag.String("years", "", "comma-separated assessment years")
	regions := flag.String("regions", "", "region definitions as name=member1|member2, comma-separated")
	byExporter := flag.Bool("by-exporter", false, "break results down per exporting partner")
	company := flag.Bool("company", false, "assess the company template instead of the trade database")
	format := flag.String("format", "csv", "export format: csv, xlsx or both")
	output := flag.String("output", "results", "base name of the export files")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.EnsureOutputDir(); err != nil {
		slog.Error("Failed to prepare output directory", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	req, err := buildRequest(*resources, *countries, *years, *regions)
	if err != nil {
		logger.Error("Invalid request", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ref, err := dataset.Load(ctx, cfg.Data, logger)
	if err != nil {
		logger.Error("Failed to load reference data", "error", err)
		os.Exit(1)
	}

	engine := assessment.NewCachedHHI(assessment.NewHHIEngine(ref, logger), logger)
	batch := assessment.NewBatch(ref, engine, logger, nil)

	if *company {
		flows, err := ref.LoadCompanyTrade(cfg.Data.CompanyTemplate, dataset.CompanySheet, logger)
		if err != nil {
			logger.Error("Failed to load company template", "error", err)
			os.Exit(1)
		}
		batch.UseTrade(flows)
		req.Countries = []string{domain.CompanyReporterName}
		logger.Info("Assessing company procurement data", "flows", len(flows))
	}

	run := batch.Run
	if *byExporter {
		run = batch.RunByExporter
	}
	resp, err := run(ctx, req)
	if err != nil {
		logger.Error("Assessment failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Assessment complete", "run_id", resp.RunID, "records", len(resp.Records))

	sink, err := store.Open(cfg.Output.RecordsDB, logger)
	if err != nil {
		logger.Error("Failed to open record store", "error", err)
		os.Exit(1)
	}
	defer sink.Close()
	if err := sink.Upsert(ctx, resp.Records); err != nil {
		logger.Error("Failed to persist records", "error", err)
		os.Exit(1)
	}

	if err := export(cfg, logger, *format, *output, resp.Records); err != nil {
		logger.Error("Export failed", "error", err)
		os.Exit(1)
	}
}

// buildRequest parses the flag values into an assessment request.
func buildRequest(resources, countries, years, regions string) (domain.AssessmentRequest, error) {
	var req domain.AssessmentRequest

	req.Resources = splitList(resources)
	if len(req.Resources) == 0 {
		return req, fmt.Errorf("at least one resource is required")
	}
	req.Countries = splitList(countries)
	if len(req.Countries) == 0 {
		return req, fmt.Errorf("at least one country is required")
	}
	for _, y := range splitList(years) {
		year, err := strconv.Atoi(y)
		if err != nil {
			return req, fmt.Errorf("invalid year %q", y)
		}
		req.Periods = append(req.Periods, year)
	}
	if len(req.Periods) == 0 {
		return req, fmt.Errorf("at least one year is required")
	}

	if regions != "" {
		req.Regions = make(map[string][]string)
		for _, def := range splitList(regions) {
			name, members, ok := strings.Cut(def, "=")
			if !ok {
				return req, fmt.Errorf("invalid region definition %q, expected name=member1|member2", def)
			}
			req.Regions[strings.TrimSpace(name)] = strings.Split(members, "|")
		}
	}
	return req, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func export(cfg *config.Config, logger *slog.Logger, format, base string, records []domain.RiskRecord) error {
	switch format {
	case "csv":
		return exporter.NewCSVWriter(cfg.Output.Dir, logger).Write(base+".csv", records)
	case "xlsx":
		return exporter.NewXLSXWriter(cfg.Output.Dir, logger).Write(base+".xlsx", records)
	case "both":
		if err := exporter.NewCSVWriter(cfg.Output.Dir, logger).Write(base+".csv", records); err != nil {
			return err
		}
		return exporter.NewXLSXWriter(cfg.Output.Dir, logger).Write(base+".xlsx", records)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
