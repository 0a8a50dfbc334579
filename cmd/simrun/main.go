// Command simrun loads a simulation config and runs it across a pool of
// execution units, printing the aggregate result as JSON.
//
//	simrun -c fire.yaml -w 8 -n 100000 --seed 42 --set targets=3
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/viant/simrun"
	"github.com/viant/simrun/progress"
	"github.com/viant/simrun/tracing"
)

type options struct {
	Config     string        `arg:"-c,required,help:simulation config URL or path (yaml or json)"`
	Workers    int           `arg:"-w,help:number of execution units (defaults to CPU count)"`
	Iterations int           `arg:"-n,help:total number of trials"`
	Seed       int64         `arg:"help:base rng seed; 0 keeps the config seed"`
	Set        []string      `arg:"help:config overrides in key=value form"`
	Timeout    time.Duration `arg:"help:run timeout"`
	Trace      string        `arg:"help:write OpenTelemetry spans to this file"`
	Progress   bool          `arg:"-p,help:log progress to stderr"`
}

func main() {
	args := options{Iterations: 10000, Timeout: 10 * time.Minute}
	arg.MustParse(&args)
	if err := run(args); err != nil {
		log.Fatalf("simrun: %v", err)
	}
}

func run(args options) error {
	var serviceOptions []simrun.Option
	if args.Trace != "" {
		serviceOptions = append(serviceOptions, simrun.WithTracing("simrun", "1.0", args.Trace))
		defer func() { _ = tracing.Shutdown(context.Background()) }()
	}
	if args.Progress {
		serviceOptions = append(serviceOptions, simrun.WithProgressListener(func(p progress.Progress) {
			log.Printf("run %v: %d/%d shards, %.1f%%", p.RunID, p.CompletedShards, p.TotalShards, 100*p.Fraction())
		}))
	}
	srv, err := simrun.New(serviceOptions...)
	if err != nil {
		return err
	}
	runtime := srv.Runtime()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	config, err := runtime.LoadConfig(ctx, args.Config, args.Set...)
	if err != nil {
		return err
	}
	if args.Seed != 0 {
		config.RngSeed = args.Seed
	}
	request, err := runtime.NewRequest(args.Workers, args.Iterations, config)
	if err != nil {
		return err
	}
	result, err := runtime.Run(ctx, request, args.Timeout)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}
