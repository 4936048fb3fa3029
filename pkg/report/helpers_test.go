package report

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/operator-framework/cost-forecaster/pkg/forecast"
)

var testPeriod = forecast.NewWindow(time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC), 60)

type fakeEnumerator struct {
	accounts    []string
	regions     []string
	accountsErr error
	regionsErr  error
}

func (e *fakeEnumerator) ActiveRegions(context.Context) ([]string, error) {
	return e.regions, e.regionsErr
}

func (e *fakeEnumerator) ActiveAccounts(context.Context) ([]string, error) {
	return e.accounts, e.accountsErr
}

type pairKey struct{ account, region string }

type fakeFetcher struct {
	mu      sync.Mutex
	results map[pairKey]forecast.Result
	errs    map[pairKey]error
	calls   []pairKey
	delay   time.Duration
}

func (f *fakeFetcher) Fetch(ctx context.Context, q forecast.Query) (forecast.Result, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	key := pairKey{q.Account, q.Region}
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	return f.results[key], nil
}

func points(values ...float64) forecast.Result {
	var result forecast.Result
	start := testPeriod.Start
	for _, v := range values {
		end := start.AddDate(0, 1, 0)
		result = append(result, forecast.Point{
			Period:    forecast.TimePeriod{Start: start, End: end},
			MeanValue: v,
		})
		start = end
	}
	return result
}

func noDataErr(account, region string) error {
	return &forecast.FetchError{Kind: forecast.KindNoData, Account: account, Region: region, Err: errors.New("DataUnavailableException")}
}
