package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	log "github.com/sirupsen/logrus"

	awsclient "github.com/operator-framework/cost-forecaster/pkg/aws"
	"github.com/operator-framework/cost-forecaster/pkg/config"
	"github.com/operator-framework/cost-forecaster/pkg/forecast"
	"github.com/operator-framework/cost-forecaster/pkg/job"
	"github.com/operator-framework/cost-forecaster/pkg/report"
	"github.com/operator-framework/cost-forecaster/pkg/storage"
)

const pushgatewayJobName = "cost_forecaster"

// newJob wires the clients into the components of a forecast job.
func newJob(logger log.FieldLogger, cfg config.Config, clients *awsclient.Clients) (*job.Job, error) {
	inventory := awsclient.NewInventory(logger, clients.EC2, clients.Organizations)

	fetcher, err := forecast.NewCachingFetcher(forecast.NewFetcher(logger, clients.CostExplorer), cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	collector := report.NewCollector(logger, inventory, fetcher, cfg.CollectorConfig())

	uploader, err := storage.Setup(cfg.Destination, storage.NewS3Uploader(logger, clients.S3))
	if err != nil {
		return nil, err
	}

	opts, err := cfg.JobOptions()
	if err != nil {
		return nil, err
	}
	return job.New(logger, collector, uploader, opts)
}

// setupJob creates the AWS clients from the configuration and the job using
// them.
func setupJob(logger log.FieldLogger, cfg config.Config) (*job.Job, error) {
	clients, err := awsclient.NewClients(cfg.AWSConfig())
	if err != nil {
		return nil, err
	}
	return newJob(logger, cfg, clients)
}

// pushMetrics sends every registered metric to the Pushgateway, if one is
// configured.
func pushMetrics(logger log.FieldLogger, url string, gatherer prometheus.Gatherer) {
	if url == "" {
		return
	}
	if err := push.New(url, pushgatewayJobName).Gatherer(gatherer).Push(); err != nil {
		logger.WithError(err).Warnf("could not push metrics to %s", url)
		return
	}
	logger.Debugf("pushed metrics to %s", url)
}

func describe(params job.Params) string {
	return fmt.Sprintf("s3://%s/%s over %d months", params.S3Bucket, params.S3FolderPath, params.ForecastMonths)
}
