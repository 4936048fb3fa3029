package main

import (
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/operator-framework/cost-forecaster/cmd/helpers"
	"github.com/operator-framework/cost-forecaster/pkg/config"
)

const envPrefix = "COST_FORECASTER"

var (
	cfg        = config.Default()
	configPath string
	logger     log.FieldLogger = log.StandardLogger()
)

var rootCmd = &cobra.Command{
	Use:           "cost-forecaster",
	Short:         "publishes AWS Cost Explorer forecasts for every account and region to S3",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
	PersistentPreRunE: setupConfig,
}

func AddCommands() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(lambdaCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func init() {
	// globally set time to UTC
	time.Local = time.UTC

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML configuration file, flags and environment variables take precedence over it")
	config.BindFlags(rootCmd.PersistentFlags(), &cfg)
}

// setupConfig layers environment variables and the config file under the
// parsed flags, then creates the logger.
func setupConfig(cmd *cobra.Command, _ []string) error {
	fs := cmd.Flags()
	if err := helpers.SetFlagsFromEnv(fs, envPrefix); err != nil {
		return err
	}
	if configPath != "" {
		if err := config.LoadFile(configPath, &cfg, fs); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var err error
	logger, err = helpers.SetupLogger(cfg.LogLevel, cfg.LogFormat, log.Fields{"app": "cost-forecaster"})
	return err
}

func main() {
	AddCommands()

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("error executing command")
		os.Exit(1)
	}
}
