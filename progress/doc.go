// Package progress tracks shard and iteration counters of a single
// simulation run and notifies an optional listener on every change.
package progress
