package main

import (
	"os"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "config.toml"

func main() {
	rootCmd := &cobra.Command{
		Use:   "hms-appointments",
		Short: "HMS appointment service: doctor schedules and booking",
		// Без подкоманды запускается HTTP сервер
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(defaultConfigPath)
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(slotsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
