// Command simrund serves the simulation runtime over HTTP and keeps run
// history in SQLite. Settings come from SIMRUN_* environment variables and
// can be overridden by flags.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/caarlos0/env/v11"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/viant/simrun"
	"github.com/viant/simrun/api"
	"github.com/viant/simrun/service/dao/run/sqlite"
	"github.com/viant/simrun/tracing"
)

const version = "0.1.0"

type options struct {
	Addr          string `arg:"-a,help:listen address" env:"SIMRUN_ADDR" envDefault:":8080"`
	Database      string `arg:"-d,help:SQLite database file for run history" env:"SIMRUN_DATABASE" envDefault:"simrun.db"`
	ConfigBaseURL string `arg:"--configs,help:base URL of simulation configs" env:"SIMRUN_CONFIG_BASE_URL"`
	Trace         string `arg:"help:write OpenTelemetry spans to this file" env:"SIMRUN_TRACE_FILE"`
}

func main() {
	var opts options
	if err := env.Parse(&opts); err != nil {
		log.Fatalf("simrund: parse env: %v", err)
	}
	arg.MustParse(&opts)
	if err := serve(opts); err != nil {
		log.Fatalf("simrund: %v", err)
	}
}

func serve(opts options) error {
	config, err := simrun.ConfigFromEnv()
	if err != nil {
		return err
	}
	runDAO, err := sqlite.New(opts.Database)
	if err != nil {
		return err
	}
	defer runDAO.Close()

	serviceOptions := []simrun.Option{
		simrun.WithConfig(config),
		simrun.WithRunDAO(runDAO),
		simrun.WithConfigBaseURL(opts.ConfigBaseURL),
	}
	if opts.Trace != "" {
		serviceOptions = append(serviceOptions, simrun.WithTracing("simrund", version, opts.Trace))
		defer func() { _ = tracing.Shutdown(context.Background()) }()
	}
	srv, err := simrun.New(serviceOptions...)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	api.NewHandler(srv.Runtime(), version).RegisterRoutes(e)

	log.Printf("Starting simrund %v on %v (pool units: %d, database: %v)", version, opts.Addr, config.Pool.Units, opts.Database)
	go func() {
		if err := e.Start(opts.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("simrund: server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("simrund: server shutdown: %v", err)
	}
	return srv.Runtime().Shutdown(ctx)
}
