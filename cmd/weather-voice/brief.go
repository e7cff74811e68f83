package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func briefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "brief",
		Short: "Fetch today's weather and send the voice briefing",
		Long: `Fetch today's forecast, render the script, synthesize the MP3 and send it
with a caption to TG_CHAT_ID. On failure a text alert is sent to the same chat
and the command exits non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(true)
			if err != nil {
				return err
			}
			defer a.close()

			tg, err := a.telegram()
			if err != nil {
				a.logger.Error("telegram client unavailable", "error", err)
				return err
			}

			runner, err := a.runner(tg, nil, nil)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			_, err = runner.Run(ctx)
			return err
		},
	}
}
