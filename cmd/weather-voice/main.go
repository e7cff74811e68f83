package main

import (
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "weather-voice",
	Short: "Daily weather voice briefings delivered to Telegram",
	Long: `weather-voice fetches today's forecast, turns it into a short spoken
script, synthesizes it to MP3 and sends it to a Telegram chat.

All settings come from the environment (a .env file is loaded if present).
`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(briefCmd())
	rootCmd.AddCommand(pollCmd())
	rootCmd.AddCommand(serveCmd())
}
