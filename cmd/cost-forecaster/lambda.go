package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/operator-framework/cost-forecaster/pkg/config"
	"github.com/operator-framework/cost-forecaster/pkg/job"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "serves the forecast as an AWS Lambda function handler",
	RunE: func(_ *cobra.Command, _ []string) error {
		j, err := setupJob(logger, cfg)
		if err != nil {
			return err
		}
		lambda.Start(newHandler(j, cfg, prometheus.DefaultGatherer))
		return nil
	},
}

type handlerFunc func(ctx context.Context, event job.Params) (job.Status, error)

// newHandler answers invocation events shaped like
// {"S3Bucket": ..., "S3FolderPath": ..., "ForecastMonths": ...}. Fields missing
// from the event fall back to the configuration.
func newHandler(j *job.Job, cfg config.Config, gatherer prometheus.Gatherer) handlerFunc {
	return func(ctx context.Context, event job.Params) (job.Status, error) {
		params := cfg.MergeParams(event)
		logger.Infof("invoked, forecasting to %s", describe(params))
		status, err := j.Run(ctx, params)
		pushMetrics(logger, cfg.PushgatewayURL, gatherer)
		return status, err
	}
}
