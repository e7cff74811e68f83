package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/weather-voice/internal/api/http"
	"github.com/i474232898/weather-voice/internal/dispatch"
	"github.com/i474232898/weather-voice/internal/metrics"
	"github.com/i474232898/weather-voice/internal/scheduler"
	"github.com/i474232898/weather-voice/internal/store"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Poll Telegram and send scheduled briefings from one long-running process",
		Long: `Run the dispatch cycle every POLL_INTERVAL and the briefing on BRIEFING_CRON
(in TZ_NAME), and serve /health, /metrics and /api/v1/runs on PORT.
Triggered briefings run in-process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(true)
			if err != nil {
				return err
			}
			defer a.close()
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(parent context.Context) error {
	cfg := a.cfg

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// In-memory run history with configured retention.
	history := store.NewMemoryStore(cfg.RunHistoryMax, cfg.RunHistoryMaxAge)

	tg, err := a.telegram()
	if err != nil {
		return err
	}

	runner, err := a.runner(tg, m, history)
	if err != nil {
		return err
	}
	brief := func(ctx context.Context) error {
		_, err := runner.Run(ctx)
		return err
	}

	d := a.dispatcher(tg, dispatch.FuncInvoker(brief), m)
	poll := func(ctx context.Context) error {
		started := time.Now()
		res, err := d.Cycle(ctx)
		if res.Fetched == 0 && err == nil {
			return nil
		}
		rec := store.RunRecord{
			ID:         uuid.NewString(),
			Kind:       store.KindDispatch,
			StartedAt:  started,
			FinishedAt: time.Now(),
			Outcome:    res.Outcome(),
		}
		if err != nil {
			rec.Outcome = "failed"
			rec.Error = err.Error()
		}
		history.Save(rec)
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(poll, brief, a.logger, scheduler.Options{
		PollInterval: cfg.PollInterval,
		BriefingCron: cfg.BriefingCron,
		Timezone:     cfg.Timezone,
	})
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-voice",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, history, registry)

	go func() {
		a.logger.Info("http server listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			a.logger.Error("fiber server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		a.logger.Error("error during shutdown", "error", err)
	}
	return nil
}
