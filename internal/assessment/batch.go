package assessment

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"geopolrisk/internal/dataset"
	"geopolrisk/internal/infrastructure"
	"geopolrisk/pkg/contracts/domain"
)

// Batch orchestrates an assessment run over the cross product of the
// requested resources, periods and countries. Combinations are
// isolated: a failure inside one combination never aborts the run, it
// yields a zero-valued placeholder record or, when the identifiers
// themselves cannot be resolved, skips the combination with a warning.
type Batch struct {
	ref      *dataset.Ref
	resolver *Resolver
	hhi      *CachedHHI
	logger   *slog.Logger
	metrics  *infrastructure.BatchMetrics

	mu    sync.RWMutex
	trade []domain.TradeFlow
}

// NewBatch wires an orchestrator over loaded reference data.
func NewBatch(ref *dataset.Ref, hhi *CachedHHI, logger *slog.Logger, metrics *infrastructure.BatchMetrics) *Batch {
	if logger == nil {
		logger = slog.Default()
	}
	return &Batch{
		ref:      ref,
		resolver: NewResolver(ref),
		hhi:      hhi,
		logger:   logger,
		metrics:  metrics,
	}
}

// resolvedResource pairs a canonical resource with the identifier the
// caller used for it.
type resolvedResource struct {
	resource domain.Resource
	hs       int
}

// Run executes the assessment and returns one record per viable
// combination. Region definitions are validated up front into a
// request-scoped registry; an invalid definition rejects the whole run
// before any computation starts. The shared reference data is never
// mutated, so concurrent runs are safe.
func (b *Batch) Run(ctx context.Context, req domain.AssessmentRequest) (domain.AssessmentResponse, error) {
	runID := uuid.New().String()
	start := time.Now()

	regions, err := b.ref.ResolveRegions(req.Regions)
	if err != nil {
		return domain.AssessmentResponse{}, err
	}

	resources := b.resolveResources(req.Resources)
	agg := b.newAggregator(req.Periods, resources)

	var records []domain.RiskRecord
	var combinations, degraded int64
	hitsBefore, computesBefore := b.hhi.Hits(), b.hhi.Computations()

	for _, res := range resources {
		for _, period := range req.Periods {
			for _, country := range req.Countries {
				if err := ctx.Err(); err != nil {
					return domain.AssessmentResponse{}, err
				}
				record, ok := b.assess(agg, regions, res, period, country)
				if !ok {
					continue
				}
				combinations++
				if record.Score == 0 && record.CF == 0 && record.ImportRisk == 0 {
					degraded++
				}
				records = append(records, record)
			}
		}
	}

	b.finish(ctx, runID, start, combinations, degraded, hitsBefore, computesBefore)
	b.logger.Info("assessment run complete",
		slog.String("run_id", runID),
		slog.Int("records", len(records)),
		slog.Int64("degraded", degraded),
		slog.Duration("elapsed", time.Since(start)))
	return domain.AssessmentResponse{RunID: runID, Records: records}, nil
}

// assess computes one combination. The second return is false when the
// identifiers could not be resolved and the combination was skipped.
func (b *Batch) assess(agg *TradeAggregator, regions *dataset.Regions, res resolvedResource, period int, country string) (domain.RiskRecord, bool) {
	scope, codes, label, ok := b.resolveCountry(regions, country)
	if !ok {
		return domain.RiskRecord{}, false
	}

	hhiResult := b.hhi.Compute(res.resource.Name, period, scope)

	var pos TradePosition
	if len(codes) == 1 {
		pos = agg.Direct(period, codes[0], res.hs)
	} else {
		pos = agg.Regional(period, codes, res.hs)
	}

	score, cf, wta := ComposeRisk(pos.Numerator, pos.TotalTrade, pos.Price, hhiResult.Quantity, hhiResult.HHI)
	return domain.RiskRecord{
		ID:         domain.RecordID(res.hs, label, period),
		Country:    country,
		Resource:   res.resource.Name,
		Year:       period,
		Score:      score,
		CF:         cf,
		HHI:        hhiResult.HHI,
		ImportRisk: wta,
		Price:      pos.Price,
	}, true
}

// RunByExporter executes the assessment broken down per exporting
// partner, with a synthetic global row per combination. Combinations
// without any recorded trade are skipped rather than padded with
// placeholders, since the breakdown of an empty flow set is empty.
func (b *Batch) RunByExporter(ctx context.Context, req domain.AssessmentRequest) (domain.AssessmentResponse, error) {
	runID := uuid.New().String()
	start := time.Now()

	regions, err := b.ref.ResolveRegions(req.Regions)
	if err != nil {
		return domain.AssessmentResponse{}, err
	}

	resources := b.resolveResources(req.Resources)
	agg := b.newAggregator(req.Periods, resources)

	var records []domain.RiskRecord
	var combinations, degraded int64
	hitsBefore, computesBefore := b.hhi.Hits(), b.hhi.Computations()

	for _, res := range resources {
		for _, period := range req.Periods {
			for _, country := range req.Countries {
				if err := ctx.Err(); err != nil {
					return domain.AssessmentResponse{}, err
				}
				scope, codes, label, ok := b.resolveCountry(regions, country)
				if !ok || len(codes) != 1 {
					if ok {
						b.logger.Warn("exporter breakdown supports single countries only, skipping",
							slog.String("country", country))
					}
					continue
				}

				positions, countryPrice, globalPrice, err := agg.ByExporter(period, codes[0], res.hs)
				if err != nil {
					b.logger.Debug("no trade recorded, skipping combination",
						slog.String("resource", res.resource.Name),
						slog.Int("period", period),
						slog.String("country", country))
					continue
				}

				hhiResult := b.hhi.Compute(res.resource.Name, period, scope)
				for _, pos := range positions {
					combinations++
					score, cf, wta := ComposeRisk(pos.Numerator, pos.TotalTrade, countryPrice, hhiResult.Quantity, hhiResult.HHI)
					if score == 0 && cf == 0 && wta == 0 {
						degraded++
					}
					records = append(records, domain.RiskRecord{
						ID:           domain.RecordID(res.hs, label, period) + "-" + pos.Exporter,
						Country:      country,
						Resource:     res.resource.Name,
						Year:         period,
						Score:        score,
						CF:           cf,
						HHI:          hhiResult.HHI,
						ImportRisk:   wta,
						Price:        countryPrice,
						Exporter:     pos.Exporter,
						CountryPrice: countryPrice,
						GlobalPrice:  globalPrice,
					})
				}
			}
		}
	}

	b.finish(ctx, runID, start, combinations, degraded, hitsBefore, computesBefore)
	b.logger.Info("exporter assessment run complete",
		slog.String("run_id", runID),
		slog.Int("records", len(records)),
		slog.Int64("degraded", degraded),
		slog.Duration("elapsed", time.Since(start)))
	return domain.AssessmentResponse{RunID: runID, Records: records}, nil
}

// resolveResources canonicalizes the requested resource identifiers.
// Unresolvable identifiers are skipped with a warning so the rest of
// the request still runs.
func (b *Batch) resolveResources(ids []string) []resolvedResource {
	out := make([]resolvedResource, 0, len(ids))
	for _, id := range ids {
		res, err := b.resolver.Resource(id)
		if err != nil {
			b.logger.Warn("skipping unresolvable resource", slog.String("resource", id))
			continue
		}
		hs, err := b.resolver.ResourceHS(id)
		if err != nil {
			b.logger.Warn("resource has no commodity code, skipping",
				slog.String("resource", res.Name))
			continue
		}
		out = append(out, resolvedResource{resource: res, hs: hs})
	}
	return out
}

// UseTrade replaces the reference trade table with caller-supplied
// flows, e.g. a company's own procurement records loaded from the
// template workbook. Safe to call between runs; runs started after the
// call see the new flows.
func (b *Batch) UseTrade(flows []domain.TradeFlow) {
	b.mu.Lock()
	b.trade = flows
	b.mu.Unlock()
}

// resolveCountry expands a country-or-region identifier into the
// production scope, the trade reporter codes and the label used for
// record identity. The synthetic Company entity maps to its reserved
// reporter code and owns no domestic production.
func (b *Batch) resolveCountry(regions *dataset.Regions, id string) (scope []string, codes []int, label string, ok bool) {
	if id == domain.CompanyReporterName {
		return []string{domain.CompanyReporterName},
			[]int{domain.CompanyReporterCode},
			strconv.Itoa(domain.CompanyReporterCode), true
	}
	if members, isRegion := regions.Members(id); isRegion {
		codes = make([]int, 0, len(members))
		for _, member := range members {
			c, found := b.ref.CountryByName(member)
			if !found {
				b.logger.Warn("region member missing from reference data, skipping region",
					slog.String("region", id), slog.String("member", member))
				return nil, nil, "", false
			}
			codes = append(codes, c.ISO)
		}
		return regions.Scope(id), codes, id, true
	}

	c, err := b.resolver.Country(id)
	if err != nil {
		b.logger.Warn("skipping unresolvable country", slog.String("country", id))
		return nil, nil, "", false
	}
	return []string{c.Name}, []int{c.ISO}, strconv.Itoa(c.ISO), true
}

// newAggregator pre-filters the trade table down to the requested
// periods and commodities so the per-combination lookups scan a small
// slice instead of the full table.
func (b *Batch) newAggregator(periods []int, resources []resolvedResource) *TradeAggregator {
	b.mu.RLock()
	trade := b.trade
	b.mu.RUnlock()
	if trade != nil {
		return NewTradeAggregator(dataset.NewTradeSlice(trade), b.logger)
	}
	hsCodes := make([]int, 0, len(resources))
	for _, res := range resources {
		hsCodes = append(hsCodes, res.hs)
	}
	return NewTradeAggregator(b.ref.FilterTrade(periods, hsCodes), b.logger)
}

func (b *Batch) finish(ctx context.Context, runID string, start time.Time, combinations, degraded, hitsBefore, computesBefore int64) {
	if b.metrics == nil {
		return
	}
	b.metrics.RecordBatch(ctx, runID, start, combinations, degraded)
	b.metrics.CacheHits.Add(ctx, b.hhi.Hits()-hitsBefore)
	b.metrics.CacheComputes.Add(ctx, b.hhi.Computations()-computesBefore)
}
