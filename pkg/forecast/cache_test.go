package forecast

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFetcher struct {
	calls  map[Query]int
	result Result
	err    error
}

func (f *countingFetcher) Fetch(_ context.Context, q Query) (Result, error) {
	if f.calls == nil {
		f.calls = map[Query]int{}
	}
	f.calls[q]++
	return f.result, f.err
}

func TestCachingFetcher(t *testing.T) {
	next := &countingFetcher{result: Result{{Period: testWindow, MeanValue: 42}}}
	fetcher, err := NewCachingFetcher(next, 8)
	require.NoError(t, err)

	q := Query{Account: "111111111111", Region: "us-east-1", Period: testWindow}
	other := Query{Account: "111111111111", Region: "us-west-2", Period: testWindow}

	for i := 0; i < 3; i++ {
		result, err := fetcher.Fetch(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, next.result, result)
	}
	_, err = fetcher.Fetch(context.Background(), other)
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls[q])
	assert.Equal(t, 1, next.calls[other])
}

func TestCachingFetcherDoesNotCacheFailures(t *testing.T) {
	next := &countingFetcher{err: &FetchError{Kind: KindTransient, Err: errors.New("throttled")}}
	fetcher, err := NewCachingFetcher(next, 8)
	require.NoError(t, err)

	q := Query{Account: "111111111111", Region: "us-east-1", Period: testWindow}
	for i := 0; i < 2; i++ {
		_, err := fetcher.Fetch(context.Background(), q)
		assert.True(t, IsTransient(err))
	}
	assert.Equal(t, 2, next.calls[q])
}

func TestCachingFetcherPurge(t *testing.T) {
	next := &countingFetcher{result: Result{{Period: testWindow, MeanValue: 42}}}
	fetcher, err := NewCachingFetcher(next, 8)
	require.NoError(t, err)
	purger, ok := fetcher.(Purger)
	require.True(t, ok)

	q := Query{Account: "111111111111", Region: "us-east-1", Period: testWindow}
	_, err = fetcher.Fetch(context.Background(), q)
	require.NoError(t, err)
	purger.Purge()
	_, err = fetcher.Fetch(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 2, next.calls[q])
}

func TestCachingFetcherDisabled(t *testing.T) {
	next := &countingFetcher{}
	fetcher, err := NewCachingFetcher(next, 0)
	require.NoError(t, err)
	assert.Same(t, next, fetcher)
}
