package dataset

import "geopolrisk/pkg/contracts/domain"

type reporterKey struct {
	Period   int
	Reporter int
	Cmd      int
}

type periodCmdKey struct {
	Period int
	Cmd    int
}

// TradeSlice is the trade table pre-filtered to the periods and
// commodities of one batch run, indexed for O(1) per-combination
// lookups. Building it once per run avoids re-scanning the full trade
// table for every combination.
type TradeSlice struct {
	rows        []domain.TradeFlow
	byReporter  map[reporterKey][]int
	byPeriodCmd map[periodCmdKey][]int
}

// FilterTrade builds the pre-filtered slice for the requested periods
// and HS commodity codes.
func (r *Ref) FilterTrade(periods []int, hsCodes []int) *TradeSlice {
	wantPeriod := make(map[int]bool, len(periods))
	for _, p := range periods {
		wantPeriod[p] = true
	}
	wantCmd := make(map[int]bool, len(hsCodes))
	for _, c := range hsCodes {
		wantCmd[c] = true
	}

	s := &TradeSlice{
		byReporter:  make(map[reporterKey][]int),
		byPeriodCmd: make(map[periodCmdKey][]int),
	}
	for _, flow := range r.trade {
		if !wantPeriod[flow.Period] || !wantCmd[flow.CmdCode] {
			continue
		}
		idx := len(s.rows)
		s.rows = append(s.rows, flow)
		rk := reporterKey{Period: flow.Period, Reporter: flow.ReporterCode, Cmd: flow.CmdCode}
		s.byReporter[rk] = append(s.byReporter[rk], idx)
		pk := periodCmdKey{Period: flow.Period, Cmd: flow.CmdCode}
		s.byPeriodCmd[pk] = append(s.byPeriodCmd[pk], idx)
	}
	return s
}

// NewTradeSlice indexes an already filtered set of rows. Used for
// company-level trade ingested from the template workbook and for
// test fixtures.
func NewTradeSlice(rows []domain.TradeFlow) *TradeSlice {
	s := &TradeSlice{
		byReporter:  make(map[reporterKey][]int),
		byPeriodCmd: make(map[periodCmdKey][]int),
	}
	for _, flow := range rows {
		idx := len(s.rows)
		s.rows = append(s.rows, flow)
		rk := reporterKey{Period: flow.Period, Reporter: flow.ReporterCode, Cmd: flow.CmdCode}
		s.byReporter[rk] = append(s.byReporter[rk], idx)
		pk := periodCmdKey{Period: flow.Period, Cmd: flow.CmdCode}
		s.byPeriodCmd[pk] = append(s.byPeriodCmd[pk], idx)
	}
	return s
}

// Len returns the number of rows in the slice.
func (s *TradeSlice) Len() int {
	return len(s.rows)
}

// Reporter returns the rows reported by one importer for a commodity
// and period.
func (s *TradeSlice) Reporter(period, reporterCode, cmdCode int) []domain.TradeFlow {
	return s.collect(s.byReporter[reporterKey{Period: period, Reporter: reporterCode, Cmd: cmdCode}])
}

// PeriodCommodity returns every row for a commodity and period across
// all reporters.
func (s *TradeSlice) PeriodCommodity(period, cmdCode int) []domain.TradeFlow {
	return s.collect(s.byPeriodCmd[periodCmdKey{Period: period, Cmd: cmdCode}])
}

func (s *TradeSlice) collect(indices []int) []domain.TradeFlow {
	if len(indices) == 0 {
		return nil
	}
	out := make([]domain.TradeFlow, 0, len(indices))
	for _, i := range indices {
		out = append(out, s.rows[i])
	}
	return out
}
