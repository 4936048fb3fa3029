// Package awstest provides in-memory fakes of the AWS APIs used by the
// forecaster. Each fake embeds the SDK interface and overrides only the calls
// the forecaster makes; anything else panics.
package awstest

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/costexplorer"
	"github.com/aws/aws-sdk-go/service/costexplorer/costexploreriface"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/aws/aws-sdk-go/service/organizations"
	"github.com/aws/aws-sdk-go/service/organizations/organizationsiface"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// MockEC2 returns a fixed region list.
type MockEC2 struct {
	ec2iface.EC2API
	Regions []string
	Err     error
}

func (m *MockEC2) DescribeRegionsWithContext(_ aws.Context, in *ec2.DescribeRegionsInput, _ ...request.Option) (*ec2.DescribeRegionsOutput, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if aws.BoolValue(in.AllRegions) {
		return nil, fmt.Errorf("unexpected AllRegions=true")
	}
	out := &ec2.DescribeRegionsOutput{}
	for _, name := range m.Regions {
		out.Regions = append(out.Regions, &ec2.Region{
			RegionName:  aws.String(name),
			OptInStatus: aws.String("opt-in-not-required"),
		})
	}
	return out, nil
}

// Account is an organization member with its status.
type Account struct {
	ID     string
	Status string
}

// MockOrganizations returns a fixed account list as a single page.
type MockOrganizations struct {
	organizationsiface.OrganizationsAPI
	Accounts  []Account
	NextToken string
	Err       error
}

func (m *MockOrganizations) ListAccountsWithContext(_ aws.Context, _ *organizations.ListAccountsInput, _ ...request.Option) (*organizations.ListAccountsOutput, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := &organizations.ListAccountsOutput{}
	for _, acct := range m.Accounts {
		out.Accounts = append(out.Accounts, &organizations.Account{
			Id:     aws.String(acct.ID),
			Status: aws.String(acct.Status),
		})
	}
	if m.NextToken != "" {
		out.NextToken = aws.String(m.NextToken)
	}
	return out, nil
}

// ForecastFunc answers a GetCostForecast call for one linked account and region.
type ForecastFunc func(account, region string, in *costexplorer.GetCostForecastInput) (*costexplorer.GetCostForecastOutput, error)

// MockCostExplorer records every forecast request and delegates the answer to
// Forecast.
type MockCostExplorer struct {
	costexploreriface.CostExplorerAPI
	Forecast ForecastFunc

	mu       sync.Mutex
	requests []*costexplorer.GetCostForecastInput
}

func (m *MockCostExplorer) GetCostForecastWithContext(_ aws.Context, in *costexplorer.GetCostForecastInput, _ ...request.Option) (*costexplorer.GetCostForecastOutput, error) {
	m.mu.Lock()
	m.requests = append(m.requests, in)
	m.mu.Unlock()

	account, region := FilterValues(in.Filter)
	return m.Forecast(account, region, in)
}

// Requests returns the forecast requests received so far.
func (m *MockCostExplorer) Requests() []*costexplorer.GetCostForecastInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*costexplorer.GetCostForecastInput(nil), m.requests...)
}

// FilterValues extracts the LINKED_ACCOUNT and REGION values from an And
// filter expression.
func FilterValues(expr *costexplorer.Expression) (account, region string) {
	if expr == nil {
		return "", ""
	}
	for _, clause := range expr.And {
		if clause.Dimensions == nil || len(clause.Dimensions.Values) == 0 {
			continue
		}
		switch aws.StringValue(clause.Dimensions.Key) {
		case costexplorer.DimensionLinkedAccount:
			account = aws.StringValue(clause.Dimensions.Values[0])
		case costexplorer.DimensionRegion:
			region = aws.StringValue(clause.Dimensions.Values[0])
		}
	}
	return account, region
}

// Point is a shorthand for one forecast result.
type Point struct {
	Start, End string
	MeanValue  string
}

// ForecastOutput builds a GetCostForecast response from points.
func ForecastOutput(points ...Point) *costexplorer.GetCostForecastOutput {
	out := &costexplorer.GetCostForecastOutput{
		ForecastResultsByTime: []*costexplorer.ForecastResult{},
	}
	for _, p := range points {
		out.ForecastResultsByTime = append(out.ForecastResultsByTime, &costexplorer.ForecastResult{
			TimePeriod: &costexplorer.DateInterval{
				Start: aws.String(p.Start),
				End:   aws.String(p.End),
			},
			MeanValue: aws.String(p.MeanValue),
		})
	}
	return out
}

func NewMockS3() *MockS3 {
	return &MockS3{
		buckets: map[string]map[string][]byte{},
	}
}

// MockS3 mimics an S3 blob store for testing.
type MockS3 struct {
	sync.RWMutex
	buckets map[string]map[string][]byte
	puts    int
	s3iface.S3API

	// PutErr, when set, fails every PutObject call.
	PutErr error
}

func (m *MockS3) NewBucket(name string) {
	m.Lock()
	defer m.Unlock()
	m.buckets[name] = map[string][]byte{}
}

func (m *MockS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if m.PutErr != nil {
		return nil, m.PutErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	m.Lock()
	defer m.Unlock()

	bucket, ok := m.buckets[*in.Bucket]
	if !ok {
		return nil, fmt.Errorf("bucket '%s' does not exist", *in.Bucket)
	}

	bucket[*in.Key] = data
	m.puts++
	return &s3.PutObjectOutput{}, nil
}

// Object returns the stored body of bucket/key.
func (m *MockS3) Object(bucket, key string) ([]byte, bool) {
	m.RLock()
	defer m.RUnlock()
	data, ok := m.buckets[bucket][key]
	return bytes.Clone(data), ok
}

// Keys returns every key stored in bucket.
func (m *MockS3) Keys(bucket string) []string {
	m.RLock()
	defer m.RUnlock()
	var keys []string
	for key := range m.buckets[bucket] {
		keys = append(keys, key)
	}
	return keys
}

// Puts is the number of successful PutObject calls.
func (m *MockS3) Puts() int {
	m.RLock()
	defer m.RUnlock()
	return m.puts
}
