package forecast

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/costexplorer"
	"github.com/aws/aws-sdk-go/service/costexplorer/costexploreriface"
	log "github.com/sirupsen/logrus"
)

// Query identifies one forecast request.
type Query struct {
	Account string
	Region  string
	Period  TimePeriod
}

// Point is the forecast mean for one month.
type Point struct {
	Period    TimePeriod
	MeanValue float64
}

// Result is the ordered list of monthly points for one query.
type Result []Point

// Fetcher retrieves monthly cost forecasts.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) (Result, error)
}

type costExplorerFetcher struct {
	logger log.FieldLogger
	ce     costexploreriface.CostExplorerAPI
}

// NewFetcher returns a Fetcher that asks Cost Explorer for the unblended cost
// forecast at monthly granularity.
func NewFetcher(logger log.FieldLogger, ce costexploreriface.CostExplorerAPI) Fetcher {
	return &costExplorerFetcher{
		logger: logger.WithField("component", "forecastFetcher"),
		ce:     ce,
	}
}

func (f *costExplorerFetcher) Fetch(ctx context.Context, q Query) (Result, error) {
	logger := f.logger.WithFields(log.Fields{
		"account": q.Account,
		"region":  q.Region,
	})
	logger.Debugf("requesting forecast for %s", q.Period)

	start := time.Now()
	out, err := f.ce.GetCostForecastWithContext(ctx, &costexplorer.GetCostForecastInput{
		TimePeriod: &costexplorer.DateInterval{
			Start: aws.String(q.Period.StartDate()),
			End:   aws.String(q.Period.EndDate()),
		},
		Metric:      aws.String(costexplorer.MetricUnblendedCost),
		Granularity: aws.String(costexplorer.GranularityMonthly),
		Filter:      BuildFilter(q.Account, q.Region),
	})
	forecastRequestDurationHistogram.Observe(time.Since(start).Seconds())

	var result Result
	if err != nil {
		err = &FetchError{Kind: classify(err), Account: q.Account, Region: q.Region, Err: err}
	} else if result, err = parseForecast(out); err != nil {
		err = &FetchError{Kind: KindMalformed, Account: q.Account, Region: q.Region, Err: err}
	}
	if err != nil {
		kind, _ := KindOf(err)
		forecastRequestsCounter.WithLabelValues(kind.String()).Inc()
		return nil, err
	}

	forecastRequestsCounter.WithLabelValues("success").Inc()
	logger.Debugf("received %d forecast points", len(result))
	return result, nil
}

func classify(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTransient
	}
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return KindAPI
	}
	switch aerr.Code() {
	case costexplorer.ErrCodeDataUnavailableException:
		return KindNoData
	case costexplorer.ErrCodeLimitExceededException,
		request.CanceledErrorCode,
		request.ErrCodeRequestError,
		request.ErrCodeResponseTimeout:
		return KindTransient
	}
	if request.IsErrorThrottle(err) {
		return KindTransient
	}
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() >= 500 {
		return KindTransient
	}
	return KindAPI
}

func parseForecast(out *costexplorer.GetCostForecastOutput) (Result, error) {
	if out == nil || out.ForecastResultsByTime == nil {
		return nil, errMissingResults
	}

	result := make(Result, 0, len(out.ForecastResultsByTime))
	for i, fr := range out.ForecastResultsByTime {
		if fr == nil || fr.TimePeriod == nil || fr.TimePeriod.Start == nil {
			return nil, fmt.Errorf("result %d: %w", i, errMissingPeriod)
		}
		if fr.MeanValue == nil {
			return nil, fmt.Errorf("result %d: %w", i, errMissingMeanValue)
		}

		start, err := time.Parse(DateFormat, *fr.TimePeriod.Start)
		if err != nil {
			return nil, fmt.Errorf("result %d: invalid period start %q: %v", i, *fr.TimePeriod.Start, err)
		}
		// the last period of a window may come back without an end
		end := firstOfNextMonth(start)
		if fr.TimePeriod.End != nil {
			if end, err = time.Parse(DateFormat, *fr.TimePeriod.End); err != nil {
				return nil, fmt.Errorf("result %d: invalid period end %q: %v", i, *fr.TimePeriod.End, err)
			}
		}

		mean, err := strconv.ParseFloat(*fr.MeanValue, 64)
		if err != nil {
			return nil, fmt.Errorf("result %d: invalid MeanValue %q: %v", i, *fr.MeanValue, err)
		}

		result = append(result, Point{
			Period:    TimePeriod{Start: start, End: end},
			MeanValue: mean,
		})
	}
	return result, nil
}
