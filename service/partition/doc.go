// Package partition splits a run request into per-unit shards.
//
// Unit i receives floor((total+pool-1-i)/pool) iterations, so shard sizes
// differ by at most one, earlier units take the larger shares and the sizes
// always sum to the requested total. Every shard owns a deep copy of the request
// configuration; when the configuration is seeded, shard seeds are offset by
// the iterations consumed by the preceding shards so that the per-trial seed
// ranges of all shards tile [seed, seed+total) without overlap.
package partition
