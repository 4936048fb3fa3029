package main

import (
	"encoding/json"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/operator-framework/cost-forecaster/cmd/helpers"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "runs the forecast once and uploads the reports",
	RunE:  runOnce,
}

func runOnce(cmd *cobra.Command, _ []string) error {
	j, err := setupJob(logger, cfg)
	if err != nil {
		return err
	}

	params := cfg.Params()
	logger.Infof("forecasting to %s", describe(params))
	status, err := j.Run(helpers.SetupSignals(logger), params)
	pushMetrics(logger, cfg.PushgatewayURL, prometheus.DefaultGatherer)
	if err != nil {
		return err
	}
	return json.NewEncoder(cmd.OutOrStdout()).Encode(status)
}
