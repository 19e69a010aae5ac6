// Package telemetry provides the shared sample store that connects the
// simulation worker to its consumers.
//
// The store is a growing multi-series table of float64 samples indexed by a
// single record index:
//
//   - [Store]: append-only series storage with commit-gated visibility
//   - [Record]: one value per series at a single index
//   - [Series]: name of one tracked quantity (velocity, motor power, ...)
//
// # Example
//
//	ts := telemetry.NewStore()
//	i := ts.BeginRecord()
//	ts.WriteField(i, telemetry.SeriesTime, 0.25)
//	...
//	ts.CommitRecord()
//
// # Thread Safety
//
// Exactly one goroutine may write (BeginRecord/WriteField/CommitRecord).
// Any number of goroutines may read concurrently with the writer and with
// each other. Readers only ever observe fully committed records: the
// committed index is published atomically as the last step of CommitRecord,
// so a partially written tail is structurally invisible.
package telemetry
