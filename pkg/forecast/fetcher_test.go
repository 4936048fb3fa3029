package forecast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/costexplorer"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/cost-forecaster/pkg/aws/awstest"
)

var testWindow = NewWindow(time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC), 60)

func TestBuildFilter(t *testing.T) {
	filter := BuildFilter("111111111111", "us-east-1")
	require.Len(t, filter.And, 2)
	assert.Nil(t, filter.Dimensions)

	assert.Equal(t, costexplorer.DimensionLinkedAccount, aws.StringValue(filter.And[0].Dimensions.Key))
	assert.Equal(t, []string{"111111111111"}, aws.StringValueSlice(filter.And[0].Dimensions.Values))
	assert.Equal(t, costexplorer.DimensionRegion, aws.StringValue(filter.And[1].Dimensions.Key))
	assert.Equal(t, []string{"us-east-1"}, aws.StringValueSlice(filter.And[1].Dimensions.Values))
}

func TestFetchRequest(t *testing.T) {
	ce := &awstest.MockCostExplorer{
		Forecast: func(account, region string, in *costexplorer.GetCostForecastInput) (*costexplorer.GetCostForecastOutput, error) {
			return awstest.ForecastOutput(
				awstest.Point{Start: "2024-07-01", End: "2024-08-01", MeanValue: "2500.4"},
				awstest.Point{Start: "2024-08-01", End: "2024-09-01", MeanValue: "0.3"},
			), nil
		},
	}
	fetcher := NewFetcher(logrus.New(), ce)

	result, err := fetcher.Fetch(context.Background(), Query{Account: "111111111111", Region: "us-east-1", Period: testWindow})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "2024-07-01", result[0].Period.StartDate())
	assert.Equal(t, "2024-08-01", result[0].Period.EndDate())
	assert.InDelta(t, 2500.4, result[0].MeanValue, 0.0001)
	assert.InDelta(t, 0.3, result[1].MeanValue, 0.0001)

	requests := ce.Requests()
	require.Len(t, requests, 1)
	in := requests[0]
	assert.Equal(t, "2024-07-01", aws.StringValue(in.TimePeriod.Start))
	assert.Equal(t, "2024-09-01", aws.StringValue(in.TimePeriod.End))
	assert.Equal(t, costexplorer.MetricUnblendedCost, aws.StringValue(in.Metric))
	assert.Equal(t, costexplorer.GranularityMonthly, aws.StringValue(in.Granularity))
	account, region := awstest.FilterValues(in.Filter)
	assert.Equal(t, "111111111111", account)
	assert.Equal(t, "us-east-1", region)
}

func TestFetchErrors(t *testing.T) {
	missingEnd := awstest.ForecastOutput(awstest.Point{Start: "2024-07-01", MeanValue: "10"})
	missingEnd.ForecastResultsByTime[0].TimePeriod.End = nil

	missingMean := awstest.ForecastOutput(awstest.Point{Start: "2024-07-01", End: "2024-08-01"})
	missingMean.ForecastResultsByTime[0].MeanValue = nil

	tests := map[string]struct {
		output       *costexplorer.GetCostForecastOutput
		err          error
		expectedKind ErrorKind
		expectedOK   bool
	}{
		"data unavailable is no data": {
			err:          awserr.New(costexplorer.ErrCodeDataUnavailableException, "no data", nil),
			expectedKind: KindNoData,
		},
		"throttling is transient": {
			err:          awserr.New("ThrottlingException", "Rate exceeded", nil),
			expectedKind: KindTransient,
		},
		"limit exceeded is transient": {
			err:          awserr.New(costexplorer.ErrCodeLimitExceededException, "slow down", nil),
			expectedKind: KindTransient,
		},
		"deadline is transient": {
			err:          context.DeadlineExceeded,
			expectedKind: KindTransient,
		},
		"5xx is transient": {
			err:          awserr.NewRequestFailure(awserr.New("InternalServerError", "oops", nil), 503, "req-1"),
			expectedKind: KindTransient,
		},
		"validation error is an API error": {
			err:          awserr.New("ValidationException", "bad filter", nil),
			expectedKind: KindAPI,
		},
		"nil results are malformed": {
			output:       &costexplorer.GetCostForecastOutput{},
			expectedKind: KindMalformed,
		},
		"missing mean value is malformed": {
			output:       missingMean,
			expectedKind: KindMalformed,
		},
		"unparsable mean value is malformed": {
			output:       awstest.ForecastOutput(awstest.Point{Start: "2024-07-01", End: "2024-08-01", MeanValue: "lots"}),
			expectedKind: KindMalformed,
		},
		"unparsable start is malformed": {
			output:       awstest.ForecastOutput(awstest.Point{Start: "July", End: "2024-08-01", MeanValue: "12"}),
			expectedKind: KindMalformed,
		},
		"missing end is accepted": {
			output:     missingEnd,
			expectedOK: true,
		},
		"empty results are accepted": {
			output:     awstest.ForecastOutput(),
			expectedOK: true,
		},
	}

	for testName, tt := range tests {
		testName := testName
		tt := tt
		t.Run(testName, func(t *testing.T) {
			ce := &awstest.MockCostExplorer{
				Forecast: func(string, string, *costexplorer.GetCostForecastInput) (*costexplorer.GetCostForecastOutput, error) {
					return tt.output, tt.err
				},
			}
			fetcher := NewFetcher(logrus.New(), ce)
			before := testutil.ToFloat64(forecastRequestsCounter.WithLabelValues(tt.expectedKind.String()))

			result, err := fetcher.Fetch(context.Background(), Query{Account: "111111111111", Region: "eu-west-1", Period: testWindow})
			if tt.expectedOK {
				require.NoError(t, err)
				assert.NotNil(t, result)
				return
			}
			require.Error(t, err)
			assert.Nil(t, result)

			kind, ok := KindOf(err)
			assert.True(t, ok, "expected a *FetchError")
			assert.Equal(t, tt.expectedKind, kind)
			assert.Contains(t, err.Error(), "account 111111111111 in region eu-west-1")
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err), "expected the API error to be wrapped")
			}
			assert.Equal(t, before+1, testutil.ToFloat64(forecastRequestsCounter.WithLabelValues(tt.expectedKind.String())))
		})
	}
}

func TestMissingEndDefaultsToNextMonth(t *testing.T) {
	out := awstest.ForecastOutput(awstest.Point{Start: "2024-12-01", MeanValue: "10"})
	out.ForecastResultsByTime[0].TimePeriod.End = nil

	result, err := parseForecast(out)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "2025-01-01", result[0].Period.EndDate())
}

func TestErrorKindHelpers(t *testing.T) {
	noData := &FetchError{Kind: KindNoData, Err: errors.New("x")}
	transient := &FetchError{Kind: KindTransient, Err: errors.New("x")}
	malformed := &FetchError{Kind: KindMalformed, Err: errors.New("x")}
	wrapped := errors.Join(errors.New("outer"), transient)

	assert.True(t, IsNoData(noData))
	assert.False(t, IsNoData(transient))
	assert.True(t, IsTransient(transient))
	assert.True(t, IsTransient(wrapped))
	assert.True(t, IsMalformed(malformed))
	assert.False(t, IsMalformed(errors.New("plain")))

	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)
}
