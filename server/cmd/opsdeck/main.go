package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/opsdeck/opsdeck/server/internal/aggregate"
	"github.com/opsdeck/opsdeck/server/internal/api"
	"github.com/opsdeck/opsdeck/server/internal/config"
	"github.com/opsdeck/opsdeck/server/internal/runner"
	"github.com/opsdeck/opsdeck/server/internal/source"
	"github.com/opsdeck/opsdeck/server/internal/ws"
)

const name = "opsdeck"

// overridden during build with ldflags
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "DevOps dashboard backend: containers, alerts and CI runs behind one API",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to YAML config file; defaults and environment are used when empty",
				Sources: cli.EnvVars("OPSDECK_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error); overrides the config file",
				Sources: cli.EnvVars("OPSDECK_LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{serveCmd(), summaryCmd(), checkCmd()},
		Action:   serve,
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the HTTP API and summary stream (default)",
		Action: serve,
	}
}

func summaryCmd() *cli.Command {
	return &cli.Command{
		Name:  "summary",
		Usage: "Build one dashboard summary and print it as JSON",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, _, err := bootstrap(cmd, os.Stderr)
			if err != nil {
				return err
			}
			agg := aggregate.FromSet(source.NewSet(cfg, runner.Exec{Timeout: cfg.Runtime.Timeout}), cfg)
			return printJSON(agg.BuildSummary(ctx))
		},
	}
}

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Run connectivity checks against Prometheus, Grafana and GitHub",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, _, err := bootstrap(cmd, os.Stderr)
			if err != nil {
				return err
			}
			set := source.NewSet(cfg, runner.Exec{Timeout: cfg.Runtime.Timeout})
			return printJSON(set.Checker.All(ctx))
		},
	}
}

// bootstrap loads the configuration and installs the default JSON logger
// writing to out. The returned LevelVar lets config reloads adjust verbosity.
func bootstrap(cmd *cli.Command, out io.Writer) (*config.Config, *slog.LevelVar, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, err
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}

	level := new(slog.LevelVar)
	level.Set(cfg.Level())
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return cfg, level, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, level, err := bootstrap(cmd, os.Stdout)
	if err != nil {
		return err
	}

	slog.Info("opsdeck starting",
		"version", version,
		"http_port", cfg.Server.HTTPPort,
		"environment", cfg.Server.Environment,
		"runtime", cfg.Runtime.Binary,
		"alerting_url", cfg.Alerting.URL,
		"ci_repo", cfg.CI.Repo,
	)

	if path := cmd.String("config"); path != "" {
		pinned := cmd.String("log-level") != ""
		go func() {
			err := config.Watch(ctx, path, func(next *config.Config) {
				if pinned {
					return
				}
				level.Set(next.Level())
			})
			if err != nil {
				slog.Warn("config: watch disabled", "path", path, "err", err)
			}
		}()
	}

	set := source.NewSet(cfg, runner.Exec{Timeout: cfg.Runtime.Timeout})
	agg := aggregate.FromSet(set, cfg)

	go logConnectivity(ctx, set.Checker)

	hub := ws.New(agg, cfg.Server.StreamInterval)
	go hub.Run(ctx)

	handler := api.New(agg, set.Checker, api.Options{
		Version:   version,
		Started:   time.Now(),
		Services:  set.System.Host.Services,
		RateLimit: cfg.Server.RateLimit,
		RateBurst: cfg.Server.RateBurst,
		Stream:    hub,
	})

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("opsdeck shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// logConnectivity runs the startup checks once. Failures only log.
func logConnectivity(ctx context.Context, c *source.Checker) {
	for _, res := range c.All(ctx) {
		switch {
		case !res.Configured:
			slog.Info("startup check: not configured", "service", res.Service)
		case res.Reachable:
			slog.Info("startup check: reachable", "service", res.Service, "endpoint", res.Endpoint, "detail", res.Detail)
		default:
			slog.Warn("startup check: unreachable", "service", res.Service, "endpoint", res.Endpoint, "detail", res.Detail)
		}
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
