package cmd

import (
	"github.com/rabnra2016/issue-tracker-mvp/internal/api"
	"github.com/rabnra2016/issue-tracker-mvp/internal/config"
	"github.com/rabnra2016/issue-tracker-mvp/internal/telemetry"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the issue tracker API server",
	Run: func(cmd *cobra.Command, args []string) {
		conf := config.ReadConfig()

		shutdownTelemetry := telemetry.NewProvider(conf.OTEL_EXPORTER_OTLP_ENDPOINT)
		defer shutdownTelemetry()

		s := api.New()
		s.Start()
	},
}

// Register the "server" command
func init() {
	rootCmd.AddCommand(serverCmd)
}
