package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	_ "go.uber.org/automaxprocs"

	"github.com/bluesky-social/mergetree/internal/mergetree/input"
	"github.com/bluesky-social/mergetree/internal/mergetree/metrics"
	"github.com/bluesky-social/mergetree/internal/mergetree/server"
	"github.com/bluesky-social/mergetree/internal/mergetree/submission"

	"github.com/carlmjohnson/versioninfo"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var (
	version = versioninfo.Short()
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "mergetree",
		Usage:   "merge sort recursion tree visualizer",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log verbosity level (eg: warn, info, debug)",
				Value:   "info",
				EnvVars: []string{"MERGETREE_LOG_LEVEL", "GO_LOG_LEVEL", "LOG_LEVEL"},
			},
			&cli.IntFlag{
				Name:    "max-values",
				Usage:   "maximum number of values accepted in one list (0 for default, negative for no limit)",
				Value:   input.DefaultMaxValues,
				EnvVars: []string{"MERGETREE_MAX_VALUES"},
			},
		},
	}

	app.Commands = []*cli.Command{
		&cli.Command{
			Name:   "serve",
			Usage:  "run the web server",
			Action: runServe,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "bind",
					Usage:   "Specify the local IP/port to bind to",
					Value:   ":8700",
					EnvVars: []string{"MERGETREE_BIND"},
				},
				&cli.StringFlag{
					Name:    "metrics-listen",
					Usage:   "IP or address, and port, to listen on for metrics APIs (empty to disable)",
					Value:   ":8701",
					EnvVars: []string{"MERGETREE_METRICS_LISTEN"},
				},
				&cli.StringFlag{
					Name:    "session-secret",
					Usage:   "random string/token used for session cookie security",
					EnvVars: []string{"MERGETREE_SESSION_SECRET"},
				},
				&cli.DurationFlag{
					Name:    "reveal-delay",
					Usage:   "how long to show the loading placeholder before revealing a sorted tree",
					Value:   time.Second,
					EnvVars: []string{"MERGETREE_REVEAL_DELAY"},
				},
				&cli.DurationFlag{
					Name:    "submission-ttl",
					Usage:   "how long sorted trees are kept in memory",
					Value:   30 * time.Minute,
					EnvVars: []string{"MERGETREE_SUBMISSION_TTL"},
				},
				&cli.IntFlag{
					Name:    "submission-capacity",
					Usage:   "maximum number of sorted trees kept in memory",
					Value:   10_000,
					EnvVars: []string{"MERGETREE_SUBMISSION_CAPACITY"},
				},
				&cli.Float64Flag{
					Name:    "rate-limit",
					Usage:   "max sort submissions per second per client IP (0 to disable)",
					Value:   5,
					EnvVars: []string{"MERGETREE_RATE_LIMIT"},
				},
				&cli.DurationFlag{
					Name:    "shutdown-timeout",
					Usage:   "max time to wait for graceful shutdown",
					Value:   10 * time.Second,
					EnvVars: []string{"MERGETREE_SHUTDOWN_TIMEOUT"},
				},
				&cli.BoolFlag{
					Name:    "debug",
					Usage:   "serve templates and static files from the working directory",
					EnvVars: []string{"DEBUG"},
				},
			},
		},
		&cli.Command{
			Name:      "sort",
			Usage:     "sort a comma-separated list and print the recursion tree",
			ArgsUsage: `<numbers>`,
			Action:    runSort,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "json",
					Usage: "print the tree as JSON",
				},
				&cli.IntFlag{
					Name:  "random",
					Usage: "sort this many random integers instead of an argument, bound by --max-values",
				},
			},
		},
		&cli.Command{
			Name:  "version",
			Usage: "print version",
			Action: func(cctx *cli.Context) error {
				fmt.Println(version)
				return nil
			},
		},
	}

	return app.Run(args)
}

func configLogger(cctx *cli.Context) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cctx.String("log-level")) {
	case "error":
		level = slog.LevelError
	case "warn":
		level = slog.LevelWarn
	case "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

func runServe(cctx *cli.Context) error {
	logger := configLogger(cctx).With("system", "mergetree")

	shutdownTracing, err := configOTEL(cctx.Context, "mergetree")
	if err != nil {
		return err
	}
	defer shutdownTracing()

	srv, err := server.New(server.Config{
		Logger:        logger,
		Debug:         cctx.Bool("debug"),
		SessionSecret: []byte(cctx.String("session-secret")),
		MaxValues:     cctx.Int("max-values"),
		RateLimit:     cctx.Float64("rate-limit"),
		Submissions: submission.Config{
			Capacity: cctx.Int("submission-capacity"),
			TTL:      cctx.Duration("submission-ttl"),
			Delay:    cctx.Duration("reveal-delay"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to construct server: %w", err)
	}

	ctx, cancel := context.WithCancel(cctx.Context)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(cctx.String("bind")); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return metrics.RunServer(ctx, cctx.String("metrics-listen"), version)
	})

	// Wait for a signal to exit, or for a listener to fail.
	g.Go(func() error {
		exitSignals := make(chan os.Signal, 1)
		signal.Notify(exitSignals, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(exitSignals)

		select {
		case sig := <-exitSignals:
			logger.Info("received OS exit signal", "signal", sig)
		case <-ctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cctx.Duration("shutdown-timeout"))
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("graceful shutdown complete")
	return nil
}
