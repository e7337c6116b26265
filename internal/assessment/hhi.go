package assessment

import (
	"fmt"
	"log/slog"

	"geopolrisk/internal/dataset"
	"geopolrisk/internal/errors"
	"geopolrisk/pkg/contracts/domain"
)

// millionCbmToTons converts million cubic meter production figures to
// metric ton equivalents.
const millionCbmToTons = 0.0008

// HHIEngine computes the Herfindahl-Hirschman index of a resource's
// global production and the production quantity of a requested scope,
// normalized to metric tons.
type HHIEngine struct {
	ref    *dataset.Ref
	logger *slog.Logger
}

// NewHHIEngine creates an engine over the loaded reference data.
func NewHHIEngine(ref *dataset.Ref, logger *slog.Logger) *HHIEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &HHIEngine{ref: ref, logger: logger}
}

// Compute returns the production quantity for the scope and the HHI of
// the resource's production in the given year.
//
// The scope is always an explicit, pre-normalized tuple of member
// country names: a singleton for a plain country, the member list for
// a region, the full country set for world production. There is no
// implicit "no country" form.
//
// A missing year column or an unknown resource is data absence, not an
// error: the result degrades to (0, 0) with a debug log. The one hard
// failure is a production unit outside the recognized set, which
// surfaces as a ValidationError alongside the zero result.
func (e *HHIEngine) Compute(resource string, year int, scope []string) (domain.HHIResult, error) {
	res, ok := e.ref.ResourceByName(resource)
	if !ok {
		e.logger.Debug("no production mapping for resource",
			slog.String("resource", resource), slog.Int("year", year))
		return domain.HHIResult{}, nil
	}
	table, ok := e.ref.Production(res.Sheet)
	if !ok {
		e.logger.Debug("no production table for resource",
			slog.String("resource", resource), slog.String("sheet", res.Sheet))
		return domain.HHIResult{}, nil
	}
	if !table.HasYear(year) {
		e.logger.Debug("no production data column for year",
			slog.String("resource", resource), slog.Int("year", year))
		return domain.HHIResult{}, nil
	}

	inScope := make(map[string]bool, len(scope))
	for _, member := range scope {
		inScope[member] = true
	}

	var sum, sumSquares, quantity float64
	for _, row := range table.Rows {
		if row.Withdrawn() {
			continue
		}
		qty := row.Quantities[year]
		sum += qty
		sumSquares += qty * qty
		if inScope[row.Country] {
			quantity += qty
		}
	}

	var hhi float64
	if sum > 0 {
		hhi = sumSquares / (sum * sum)
	}

	quantity, err := normalizeQuantity(quantity, table.Unit)
	if err != nil {
		return domain.HHIResult{}, err
	}
	return domain.HHIResult{Quantity: quantity, HHI: hhi}, nil
}

// normalizeQuantity converts a production quantity to metric tons so it
// is additive with trade quantities. The HHI itself is unit-invariant
// and never normalized.
func normalizeQuantity(qty float64, unit string) (float64, error) {
	switch unit {
	case domain.UnitMetricTons:
		return qty, nil
	case domain.UnitKilograms:
		return qty / 1000, nil
	case domain.UnitMillionCbm:
		return qty * millionCbmToTons, nil
	default:
		return 0, errors.NewValidationError("unit", fmt.Sprintf("unexpected production unit %q", unit))
	}
}
