// Package orchestrator runs a simulation request across a pool of execution
// units and merges their statistics into one aggregate.
//
// A run is started with Start, which validates and partitions the request,
// spawns one unit per non-empty shard and returns immediately. Unit replies
// are consumed by a single reaction goroutine per run, the only writer of the
// run aggregate. The run resolves exactly once: on the first unit failure
// (OnError), once merged iterations reach the requested total (OnSuccess),
// or when the caller cancels it (OnError with context.Canceled). Resolution
// terminates every remaining unit.
package orchestrator
