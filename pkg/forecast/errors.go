package forecast

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a forecast could not be fetched for a pair.
type ErrorKind int

const (
	// KindAPI is any API error not covered by a more specific kind.
	KindAPI ErrorKind = iota
	// KindNoData means Cost Explorer has no data to forecast from.
	KindNoData
	// KindTransient covers throttling, retryable service errors and timeouts.
	KindTransient
	// KindMalformed means the response was missing or had unparsable fields.
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindNoData:
		return "no_data"
	case KindTransient:
		return "transient"
	case KindMalformed:
		return "malformed"
	default:
		return "api_error"
	}
}

// FetchError is returned when the forecast for one account/region pair fails.
type FetchError struct {
	Kind    ErrorKind
	Account string
	Region  string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("forecast for account %s in region %s failed (%s): %v", e.Account, e.Region, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a FetchError in err's chain. The second result
// is false when err is not a FetchError.
func KindOf(err error) (ErrorKind, bool) {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Kind, true
	}
	return KindAPI, false
}

// IsNoData reports whether err means there was nothing to forecast.
func IsNoData(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindNoData
}

// IsTransient reports whether err may succeed if the request is repeated.
func IsTransient(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindTransient
}

// IsMalformed reports whether err was caused by an unusable response.
func IsMalformed(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindMalformed
}

var (
	errMissingResults   = errors.New("response has no ForecastResultsByTime")
	errMissingPeriod    = errors.New("forecast result has no TimePeriod start")
	errMissingMeanValue = errors.New("forecast result has no MeanValue")
)
