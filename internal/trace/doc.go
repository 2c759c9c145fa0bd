// Package trace records what the generator does while it runs.
//
// A run is traced as nested spans: the whole batch (ScopeRun), each output
// artifact (ScopeArtifact) and each table compiled into it (ScopeTable).
// Point events carry per-table facts such as optimizer row counts.
//
// # Usage
//
//	dgen gen --trace=- --trace-level=detail tables/arm32.yaml
//
// # Tracers
//
//   - Nop: discards everything, used when tracing is off
//   - StreamTracer: writes each event as it happens (text or NDJSON)
//   - RingTracer: keeps the last N events in memory
//   - MultiTracer: fans out to several tracers
//
// # Levels
//
//   - LevelOff: nothing
//   - LevelError: nothing is streamed; the ring is dumped on failure
//   - LevelPhase: run and artifact spans
//   - LevelDetail: table spans and optimizer points
//   - LevelDebug: everything, row-level events included
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeArtifact, "emit", parentID)
//	defer span.End("")
package trace
