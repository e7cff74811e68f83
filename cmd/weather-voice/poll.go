package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-voice/internal/dispatch"
)

func pollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Check Telegram for a weather command and run the briefing",
		Long: `Run one dispatch cycle: reset the webhook, fetch updates since the saved
cursor, advance the cursor and, if the authorized chat sent "weather" or "w",
acknowledge it and run "weather-voice brief" as a child process.

Once configuration is loaded the command always exits 0; failures are logged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(false)
			if err != nil {
				return err
			}
			defer a.close()

			tg, err := a.telegram()
			if err != nil {
				a.logger.Error("telegram client unavailable", "error", err)
				return nil
			}

			invoker, err := dispatch.NewSelfInvoker("brief")
			if err != nil {
				a.logger.Error("cannot locate own executable", "error", err)
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := a.dispatcher(tg, invoker, nil).Cycle(ctx)
			if err != nil {
				a.logger.Error("dispatch cycle failed", "error", err)
				return nil
			}
			a.logger.Info("dispatch cycle done",
				"outcome", res.Outcome(),
				"fetched", res.Fetched,
				"cursor", res.Cursor,
				"triggered", res.Triggered)
			return nil
		},
	}
}
