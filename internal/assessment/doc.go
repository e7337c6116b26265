// Package assessment implements the geopolitical supply risk
// calculation engine: identifier resolution, production concentration
// (HHI) with unit normalization, trade-based import risk aggregation,
// the risk composition formula and the batch orchestrator that sweeps a
// cross-product of periods, countries and resources into a result set.
//
// Every calculation is a pure function over the immutable reference
// data; the only mutable state is the HHI memoization cache, which is
// write-once per key. Rerunning a batch with the same inputs against
// unchanged reference data reproduces identical results.
//
// The error policy is deliberate: data gaps (a missing year column, an
// empty trade slice, an absent country row) degrade to zero-valued
// results and are logged at debug level; per-combination failures are
// caught at the orchestrator boundary and represented as zero-valued
// placeholder records; only setup-time validation (unknown identifiers
// in a region definition, missing reference tables) aborts a run.
package assessment
