package report

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
)

// minValidValue is the smallest rounded forecast that is reported. Zero and
// one dollar forecasts are what Cost Explorer returns for idle pairs.
const minValidValue = 2

// RoundValue rounds a forecast mean to whole dollars, halves to even, and
// reports whether the result is a valid value.
func RoundValue(mean float64) (int64, bool) {
	rounded := int64(math.RoundToEven(mean))
	return rounded, rounded >= minValidValue
}

// InvalidValuePolicy decides how the wide format renders an invalid value.
type InvalidValuePolicy string

const (
	// InvalidValueEmpty leaves the cell empty.
	InvalidValueEmpty InvalidValuePolicy = "empty"
	// InvalidValueSentinel writes a fixed marker such as N/A.
	InvalidValueSentinel InvalidValuePolicy = "sentinel"
	// InvalidValuePlaceholder writes random test data in
	// [PlaceholderMin, PlaceholderMax].
	InvalidValuePlaceholder InvalidValuePolicy = "placeholder"

	DefaultSentinel = "N/A"

	PlaceholderMin = 500
	PlaceholderMax = 5000
)

// ParseInvalidValuePolicy validates a policy name. An empty name selects
// InvalidValueEmpty.
func ParseInvalidValuePolicy(s string) (InvalidValuePolicy, error) {
	switch p := InvalidValuePolicy(s); p {
	case "":
		return InvalidValueEmpty, nil
	case InvalidValueEmpty, InvalidValueSentinel, InvalidValuePlaceholder:
		return p, nil
	default:
		return "", fmt.Errorf("unknown invalid value policy %q, must be one of %s, %s or %s",
			s, InvalidValueEmpty, InvalidValueSentinel, InvalidValuePlaceholder)
	}
}

// ValuePolicy renders forecast values into cells. Both output formats use
// RoundValue to decide validity; the long format drops invalid points and
// the wide format asks the policy for a cell so columns stay aligned.
type ValuePolicy struct {
	Invalid  InvalidValuePolicy
	Sentinel string
	// Rand is the source for placeholder values. Nil uses the global source.
	Rand *rand.Rand
}

// Cell is one rendered wide-format value.
type Cell struct {
	Text  string
	Value int64
	// Numeric is true when Value holds a number, real or placeholder.
	Numeric bool
	Valid   bool
}

// Cell renders mean according to the policy.
func (p ValuePolicy) Cell(mean float64) Cell {
	if value, ok := RoundValue(mean); ok {
		return Cell{Text: strconv.FormatInt(value, 10), Value: value, Numeric: true, Valid: true}
	}

	switch p.Invalid {
	case InvalidValueSentinel:
		sentinel := p.Sentinel
		if sentinel == "" {
			sentinel = DefaultSentinel
		}
		return Cell{Text: sentinel}
	case InvalidValuePlaceholder:
		value := int64(p.intn(PlaceholderMax-PlaceholderMin+1) + PlaceholderMin)
		return Cell{Text: strconv.FormatInt(value, 10), Value: value, Numeric: true}
	default:
		return Cell{}
	}
}

func (p ValuePolicy) intn(n int) int {
	if p.Rand != nil {
		return p.Rand.Intn(n)
	}
	return rand.Intn(n)
}
