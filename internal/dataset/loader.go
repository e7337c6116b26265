package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	"geopolrisk/internal/config"
	"geopolrisk/pkg/contracts/domain"
)

// Table names the loader requires in the mining database.
const (
	tableCountryISO = "Country_ISO"
	tableHSCodeMap  = "HS Code Map"
	tableWGI        = "Normalized"
	tableTrade      = "baci_trade"
)

// Load opens the three reference databases, extracts their tables into
// indexed in-memory structures and returns the immutable reference
// set. A missing file or a missing required table is fatal.
func Load(ctx context.Context, cfg config.DataConfig, logger *slog.Logger) (*Ref, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, path := range []string{cfg.MiningDB, cfg.WGIDB, cfg.TradeDB} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("reference database %s not found: %w", path, err)
		}
	}

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

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ref.loadMining(gctx, cfg.MiningDB, logger) })
	g.Go(func() error { return ref.loadWGI(gctx, cfg.WGIDB) })
	g.Go(func() error { return ref.loadTrade(gctx, cfg.TradeDB) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "reference data loaded",
		slog.Int("resources", len(ref.resources)),
		slog.Int("countries", len(ref.countries)),
		slog.Int("production_tables", len(ref.production)),
		slog.Int("trade_rows", len(ref.trade)))
	return ref, nil
}

func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return db, nil
}

// hasTable checks sqlite_master for the table or view.
func hasTable(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var found string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE (type='table' OR type='view') AND name = ?", name).
		Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func requireTables(ctx context.Context, db *sql.DB, path string, names ...string) error {
	for _, name := range names {
		ok, err := hasTable(ctx, db, name)
		if err != nil {
			return fmt.Errorf("verify tables in %s: %w", path, err)
		}
		if !ok {
			return fmt.Errorf("database %s is missing required table %q", path, name)
		}
	}
	return nil
}

func (r *Ref) loadMining(ctx context.Context, path string, logger *slog.Logger) error {
	db, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := requireTables(ctx, db, path, tableCountryISO, tableHSCodeMap); err != nil {
		return err
	}
	if err := r.loadCountries(ctx, db); err != nil {
		return fmt.Errorf("load country map: %w", err)
	}
	if err := r.loadResources(ctx, db); err != nil {
		return fmt.Errorf("load HS code map: %w", err)
	}

	for _, res := range r.resources {
		if res.Sheet == "" {
			continue
		}
		table, err := r.loadProductionTable(ctx, db, res.Sheet)
		if err != nil {
			// A malformed production sheet degrades lookups for that
			// resource to zero values, it never aborts the load.
			logger.WarnContext(ctx, "skipping malformed production table",
				slog.String("sheet", res.Sheet), slog.String("error", err.Error()))
			continue
		}
		r.production[res.Sheet] = table
	}
	return nil
}

func (r *Ref) loadCountries(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `SELECT Country, ISO FROM "Country_ISO"`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name sql.NullString
		var iso sql.NullString
		if err := rows.Scan(&name, &iso); err != nil {
			return err
		}
		code, err := strconv.Atoi(strings.TrimSpace(iso.String))
		if err != nil || name.String == "" {
			continue
		}
		c := domain.Country{Name: name.String, ISO: code}
		r.countries = append(r.countries, c)
		r.countryByName[c.Name] = c
		r.countryByISO[c.ISO] = c
	}
	if err := rows.Err(); err != nil {
		return err
	}
	sort.Slice(r.countries, func(i, j int) bool { return r.countries[i].Name < r.countries[j].Name })
	return nil
}

func (r *Ref) loadResources(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `SELECT ID, "HS Code", Sheet_name FROM "HS Code Map"`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, hs, sheet sql.NullString
		if err := rows.Scan(&id, &hs, &sheet); err != nil {
			return err
		}
		if id.String == "" {
			continue
		}
		res := domain.Resource{Name: id.String, Sheet: sheet.String}
		// Some raw materials carry no HS code ("Not Available"); they
		// stay resolvable by name but not by code.
		if code, err := strconv.Atoi(strings.TrimSpace(hs.String)); err == nil {
			res.HSCode = code
		}
		r.resources = append(r.resources, res)
		r.resourceByName[res.Name] = res
		if res.HSCode != 0 {
			r.resourceByHS[res.HSCode] = res
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	sort.Slice(r.resources, func(i, j int) bool { return r.resources[i].Name < r.resources[j].Name })
	return nil
}

// loadProductionTable reads one resource sheet. Year columns are
// discovered from the column names; everything that parses as an
// integer is a data year.
func (r *Ref) loadProductionTable(ctx context.Context, db *sql.DB, sheet string) (*domain.ProductionTable, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %q", sheet))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	countryIdx, codeIdx, unitIdx := -1, -1, -1
	yearByIdx := make(map[int]int)
	for i, col := range cols {
		switch col {
		case "Country":
			countryIdx = i
		case "Country_Code":
			codeIdx = i
		case "unit":
			unitIdx = i
		default:
			if year, err := strconv.Atoi(strings.TrimSpace(col)); err == nil {
				yearByIdx[i] = year
			}
		}
	}
	if countryIdx < 0 {
		return nil, fmt.Errorf("sheet %q has no Country column", sheet)
	}

	table := &domain.ProductionTable{Resource: sheet}
	for _, year := range yearByIdx {
		table.Years = append(table.Years, year)
	}
	sort.Ints(table.Years)

	values := make([]sql.NullString, len(cols))
	scan := make([]any, len(cols))
	for i := range values {
		scan[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, err
		}
		row := domain.ProductionRow{
			Country:    values[countryIdx].String,
			Quantities: make(map[int]float64, len(yearByIdx)),
		}
		if codeIdx >= 0 {
			row.CountryCode = values[codeIdx].String
		}
		if unitIdx >= 0 && table.Unit == "" {
			table.Unit = values[unitIdx].String
		}
		for i, year := range yearByIdx {
			qty, _ := parseNumeric(values[i])
			row.Quantities[year] = qty
		}
		table.Rows = append(table.Rows, row)
	}
	return table, rows.Err()
}

func (r *Ref) loadWGI(ctx context.Context, path string) error {
	db, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := requireTables(ctx, db, path, tableWGI); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `SELECT * FROM "Normalized"`)
	if err != nil {
		return fmt.Errorf("load WGI table: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	codeIdx := -1
	yearByIdx := make(map[int]int)
	for i, col := range cols {
		if col == "country_code" {
			codeIdx = i
			continue
		}
		if year, err := strconv.Atoi(strings.TrimSpace(col)); err == nil {
			yearByIdx[i] = year
		}
	}
	if codeIdx < 0 {
		return fmt.Errorf("WGI table in %s has no country_code column", path)
	}

	values := make([]sql.NullString, len(cols))
	scan := make([]any, len(cols))
	for i := range values {
		scan[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return err
		}
		code, err := strconv.Atoi(strings.TrimSpace(values[codeIdx].String))
		if err != nil {
			continue
		}
		years := make(map[int]float64, len(yearByIdx))
		for i, year := range yearByIdx {
			if v, ok := parseNumeric(values[i]); ok {
				years[year] = v
			}
		}
		r.wgi[code] = years
	}
	return rows.Err()
}

// loadTrade flattens the bilateral trade table, joining country names
// and the partner's WGI indicator the way the reference database lays
// them out.
func (r *Ref) loadTrade(ctx context.Context, path string) error {
	db, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := requireTables(ctx, db, path, tableTrade); err != nil {
		return err
	}

	const query = `
		SELECT
			b.t            AS period,
			b.j            AS reporterCode,
			rc.country_name AS reporterDesc,
			rc.country_iso3 AS reporterISO,
			b.i            AS partnerCode,
			pc.country_name AS partnerDesc,
			pc.country_iso3 AS partnerISO,
			b.k            AS cmdCode,
			TRIM(b.q)      AS qty,
			TRIM(b.v)      AS cifvalue,
			w.wgi          AS partnerWGI
		FROM baci_trade b
		LEFT JOIN country_codes_V202401b rc ON rc.country_code = b.j
		LEFT JOIN country_codes_V202401b pc ON pc.country_code = b.i
		LEFT JOIN v_wgi_year_country w ON w.Year = b.t AND w.country_code = b.i`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("load trade table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var period, reporter, partner, cmd sql.NullString
		var reporterName, reporterISO, partnerName, partnerISO sql.NullString
		var qty, value, wgi sql.NullString
		if err := rows.Scan(&period, &reporter, &reporterName, &reporterISO,
			&partner, &partnerName, &partnerISO, &cmd, &qty, &value, &wgi); err != nil {
			return err
		}

		flow := domain.TradeFlow{
			ReporterName: reporterName.String,
			ReporterISO:  reporterISO.String,
			PartnerName:  partnerName.String,
			PartnerISO:   partnerISO.String,
		}
		flow.Period, _ = strconv.Atoi(strings.TrimSpace(period.String))
		flow.ReporterCode, _ = strconv.Atoi(strings.TrimSpace(reporter.String))
		flow.PartnerCode, _ = strconv.Atoi(strings.TrimSpace(partner.String))
		flow.CmdCode, _ = strconv.Atoi(strings.TrimSpace(cmd.String))
		flow.Qty, _ = parseNumeric(qty)
		flow.CIFValue, _ = parseNumeric(value)
		if v, ok := parseNumeric(wgi); ok {
			flow.PartnerWGI = v
		} else {
			flow.WGIMissing = true
		}
		r.trade = append(r.trade, flow)
	}
	return rows.Err()
}

// isSentinel recognizes the missing-value forms of the source data.
func isSentinel(s string) bool {
	trimmed := strings.TrimSpace(s)
	return trimmed == "" || trimmed == "NA"
}

// parseNumeric coerces a nullable string cell to a float. Sentinel
// forms and coercion failures degrade to zero, never to an error.
func parseNumeric(v sql.NullString) (float64, bool) {
	if !v.Valid || isSentinel(v.String) {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.String), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
