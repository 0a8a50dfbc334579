// Package simrun runs Monte-Carlo style simulations in parallel.
//
// A run request splits a number of iterations across a pool of execution
// units. Every unit runs its shard against a simulation engine with a private
// copy of the configuration; the orchestrator merges the per-unit statistics
// into one aggregate (min, max, weighted mean, histogram, elapsed time) or
// reports the first unit failure.
//
// End-users typically interact with the high-level Service facade:
//
//	srv, _ := simrun.New(simrun.WithConfigBaseURL("file:///etc/sims"))
//	rt := srv.Runtime()
//	cfg, _ := rt.LoadConfig(ctx, "fire.yaml", "rngSeed=42")
//	req, _ := rt.NewRequest(8, 100000, cfg)
//	result, _ := rt.Run(ctx, req, time.Minute)
//
// Lower level packages are usable on their own: service/partition,
// service/reducer, service/unit and service/orchestrator.
package simrun
