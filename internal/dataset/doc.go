// Package dataset is the reference-data provider of the assessment
// engine. It loads the three backing databases (country-level mining
// production, the bilateral trade table and the WGI political
// stability index) once at startup into indexed in-memory structures,
// and exposes them read-only for the remainder of the run.
//
// The package also owns the region registry: a named set of member
// countries aggregated as a single reporting unit. Preset regions live
// on Ref; each run resolves its own definitions into a request-scoped
// Regions overlay, validated against the country reference data before
// any computation starts. A region with an unresolvable member rejects
// the whole set, and Ref is never mutated after load.
package dataset
