package assessment

import (
	"log/slog"
	"sort"

	"geopolrisk/internal/dataset"
	apperrors "geopolrisk/internal/errors"
	"geopolrisk/pkg/contracts/domain"
)

// TradePosition is the aggregate import position of one importer (or
// region) for a commodity and period.
type TradePosition struct {
	// Numerator is the WGI-weighted import quantity in kilograms.
	Numerator float64
	// TotalTrade is the unweighted import quantity in kilograms.
	TotalTrade float64
	// Price is the CIF-derived unit price in USD per kilogram, or
	// zero when no quantity was traded.
	Price float64
}

// ExporterPosition is the share of one exporting partner in an
// importer's supply mix.
type ExporterPosition struct {
	Exporter   string
	Numerator  float64
	TotalTrade float64
}

// TradeAggregator folds bilateral trade flows into the positions the
// risk formula consumes. Flows carry their partner's governance
// indicator; missing indicators were already replaced by the neutral
// value at load time.
type TradeAggregator struct {
	slice  *dataset.TradeSlice
	logger *slog.Logger
}

// NewTradeAggregator builds an aggregator over a pre-filtered trade slice.
func NewTradeAggregator(slice *dataset.TradeSlice, logger *slog.Logger) *TradeAggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &TradeAggregator{slice: slice, logger: logger}
}

// Direct aggregates the import position of a single reporter.
func (a *TradeAggregator) Direct(period, reporterCode, cmdCode int) TradePosition {
	return a.fold(a.slice.Reporter(period, reporterCode, cmdCode))
}

// Regional aggregates the combined import position of a set of
// reporters, e.g. the members of a declared region.
func (a *TradeAggregator) Regional(period int, reporterCodes []int, cmdCode int) TradePosition {
	var flows []domain.TradeFlow
	for _, code := range reporterCodes {
		member := a.slice.Reporter(period, code, cmdCode)
		if len(member) == 0 {
			a.logger.Debug("region member has no trade flows",
				slog.Int("reporter", code),
				slog.Int("period", period),
				slog.Int("commodity", cmdCode))
			continue
		}
		flows = append(flows, member...)
	}
	return a.fold(flows)
}

// fold sums quantity, weighted quantity and value over the flows and
// derives the unit price. Quantities and values are taken as loaded;
// zero-quantity flow sets contribute a zero position.
func (a *TradeAggregator) fold(flows []domain.TradeFlow) TradePosition {
	var pos TradePosition
	var totalValue float64
	for _, f := range flows {
		pos.TotalTrade += f.Qty
		pos.Numerator += f.Qty * f.WGI()
		totalValue += f.CIFValue
	}
	if pos.TotalTrade > 0 {
		pos.Price = totalValue / pos.TotalTrade
	}
	return pos
}

// ByExporter breaks an importer's position down per exporting partner
// and appends a synthetic global row covering all reporters. It also
// derives the importer's own unit price and the global unit price for
// the commodity. Returns ErrNoData when the importer recorded no flows
// for the combination.
func (a *TradeAggregator) ByExporter(period, reporterCode, cmdCode int) ([]ExporterPosition, float64, float64, error) {
	flows := a.slice.Reporter(period, reporterCode, cmdCode)
	if len(flows) == 0 {
		return nil, 0, 0, apperrors.ErrNoData
	}

	byPartner := make(map[string]*ExporterPosition)
	var totalQty, totalValue float64
	global := &ExporterPosition{Exporter: domain.GlobalExporter}
	for _, f := range flows {
		pos, ok := byPartner[f.PartnerName]
		if !ok {
			pos = &ExporterPosition{Exporter: f.PartnerName}
			byPartner[f.PartnerName] = pos
		}
		pos.TotalTrade += f.Qty
		pos.Numerator += f.Qty * f.WGI()
		global.TotalTrade += f.Qty
		global.Numerator += f.Qty * f.WGI()
		totalQty += f.Qty
		totalValue += f.CIFValue
	}

	positions := make([]ExporterPosition, 0, len(byPartner)+1)
	for _, pos := range byPartner {
		positions = append(positions, *pos)
	}
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Exporter < positions[j].Exporter
	})
	positions = append(positions, *global)

	var countryPrice float64
	if totalQty > 0 {
		countryPrice = totalValue / totalQty
	}
	return positions, countryPrice, a.GlobalPrice(period, cmdCode), nil
}

// GlobalPrice derives the worldwide unit price of a commodity for a
// period across all reporters.
func (a *TradeAggregator) GlobalPrice(period, cmdCode int) float64 {
	flows := a.slice.PeriodCommodity(period, cmdCode)
	var qty, value float64
	for _, f := range flows {
		qty += f.Qty
		value += f.CIFValue
	}
	if qty <= 0 {
		return 0
	}
	return value / qty
}
