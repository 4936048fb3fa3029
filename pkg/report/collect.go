package report

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	awsclient "github.com/operator-framework/cost-forecaster/pkg/aws"
	"github.com/operator-framework/cost-forecaster/pkg/forecast"
)

// PairResult is the forecast outcome for one account/region pair. Exactly
// one of Points and Err is meaningful.
type PairResult struct {
	Account string
	Region  string
	Points  forecast.Result
	Err     error
}

// Collection holds the outcome of one pass over every pair. Results is
// indexed account-major: the pair of Accounts[a] and Regions[r] is at
// a*len(Regions)+r.
type Collection struct {
	Accounts []string
	Regions  []string
	Results  []PairResult
}

// AccountResults returns the results of Accounts[a] in region order.
func (c *Collection) AccountResults(a int) []PairResult {
	n := len(c.Regions)
	return c.Results[a*n : (a+1)*n]
}

// CollectorConfig tunes how forecasts are requested.
type CollectorConfig struct {
	// Concurrency is the number of pairs fetched in parallel. Values below 1
	// mean sequential.
	Concurrency int
	// RequestsPerSecond limits Cost Explorer calls. Zero disables the limit.
	RequestsPerSecond float64
}

// Collector fetches the forecast of every active account in every active
// region.
type Collector struct {
	logger     log.FieldLogger
	enumerator awsclient.Enumerator
	fetcher    forecast.Fetcher
	limiter    *rate.Limiter
	cfg        CollectorConfig
}

func NewCollector(logger log.FieldLogger, enumerator awsclient.Enumerator, fetcher forecast.Fetcher, cfg CollectorConfig) *Collector {
	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.Concurrency > burst {
		burst = cfg.Concurrency
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Collector{
		logger:     logger.WithField("component", "collector"),
		enumerator: enumerator,
		fetcher:    fetcher,
		limiter:    rate.NewLimiter(limit, burst),
		cfg:        cfg,
	}
}

// Reset drops forecasts the fetcher remembered from earlier collections.
func (c *Collector) Reset() {
	if p, ok := c.fetcher.(forecast.Purger); ok {
		p.Purge()
	}
}

// Collect fetches one PairResult per account/region pair, accounts outer and
// regions inner, in the order the enumerator listed them. Enumeration errors
// abort the collection; a failed pair is recorded in its PairResult and never
// affects the others.
func (c *Collector) Collect(ctx context.Context, period forecast.TimePeriod) (*Collection, error) {
	regions, err := c.enumerator.ActiveRegions(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := c.enumerator.ActiveAccounts(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]PairResult, 0, len(accounts)*len(regions))
	for _, account := range accounts {
		for _, region := range regions {
			results = append(results, PairResult{Account: account, Region: region})
		}
	}
	c.logger.Infof("collecting forecasts for %d accounts in %d regions over %s", len(accounts), len(regions), period)

	// create a channel to act as a semaphore to limit the number of
	// requests in flight
	semaphore := make(chan struct{}, c.cfg.Concurrency)
	g, ctx := errgroup.WithContext(ctx)

	for i := range results {
		i := i
		select {
		case semaphore <- struct{}{}:
		case <-ctx.Done():
			if err := g.Wait(); err != nil {
				return nil, err
			}
			return nil, ctx.Err()
		}
		g.Go(func() error {
			defer func() {
				<-semaphore
			}()
			return c.fetchPair(ctx, &results[i], period)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Collection{
		Accounts: accounts,
		Regions:  regions,
		Results:  results,
	}, nil
}

// fetchPair only returns an error when the collection as a whole must stop.
func (c *Collector) fetchPair(ctx context.Context, res *PairResult, period forecast.TimePeriod) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting to request forecast: %w", err)
	}

	logger := c.logger.WithFields(log.Fields{
		"account": res.Account,
		"region":  res.Region,
	})
	logger.Debugf("getting forecast")

	points, err := c.fetcher.Fetch(ctx, forecast.Query{
		Account: res.Account,
		Region:  res.Region,
		Period:  period,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		res.Err = err
		if forecast.IsNoData(err) {
			logger.WithError(err).Info("forecast data not available, skipping pair")
		} else {
			logger.WithError(err).Warn("failed to get forecast, skipping pair")
		}
		return nil
	}
	res.Points = points
	return nil
}
