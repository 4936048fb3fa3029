package report

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// FormatLong renders a collection as headerless long-format CSV for QuickSight,
// one "account,periodStart,region,value" row per valid point. Failed pairs
// and invalid points produce no rows.
func FormatLong(c *Collection) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, res := range c.Results {
		if res.Err != nil {
			continue
		}
		for _, point := range res.Points {
			value, ok := RoundValue(point.MeanValue)
			if !ok {
				continue
			}
			// writes to a bytes.Buffer cannot fail
			_ = w.Write([]string{
				res.Account,
				point.Period.StartDate(),
				res.Region,
				strconv.FormatInt(value, 10),
			})
		}
	}
	w.Flush()
	return buf.String()
}
