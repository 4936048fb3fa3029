package report

import (
	"bytes"
	"encoding/csv"
)

// AccountTag is prepended to account IDs in the wide format so spreadsheets
// keep them as text instead of numbers.
const AccountTag = "a-"

// RowKind tells header, data and separator rows apart.
type RowKind int

const (
	DataRow RowKind = iota
	HeaderRow
	SeparatorRow
)

// separatorWidth is the number of empty fields in a separator row.
const separatorWidth = 5

// WideRow is one line of the wide format.
type WideRow struct {
	Kind RowKind
	// Periods holds the period starts of a header row.
	Periods []string
	Region  string
	Account string
	Cells   []Cell
}

// WideTable is the wide format before rendering: one data row per
// account/region pair with at least one valid value, one column per month.
type WideTable struct {
	Rows []WideRow
}

// BuildWide lays out a collection in the wide format. A header row with the
// period starts of the first successful pair is placed where that pair was
// reached; each account's region rows are followed by a separator row, even
// when the account produced no data rows.
func BuildWide(c *Collection, policy ValuePolicy) *WideTable {
	table := &WideTable{}
	headerDone := false

	for a := range c.Accounts {
		for _, res := range c.AccountResults(a) {
			if res.Err != nil {
				continue
			}

			if !headerDone {
				periods := make([]string, 0, len(res.Points))
				for _, point := range res.Points {
					periods = append(periods, point.Period.StartDate())
				}
				table.Rows = append(table.Rows, WideRow{Kind: HeaderRow, Periods: periods})
				headerDone = true
			}

			cells := make([]Cell, 0, len(res.Points))
			anyValid := false
			for _, point := range res.Points {
				cell := policy.Cell(point.MeanValue)
				anyValid = anyValid || cell.Valid
				cells = append(cells, cell)
			}
			if !anyValid {
				continue
			}
			table.Rows = append(table.Rows, WideRow{
				Kind:    DataRow,
				Region:  res.Region,
				Account: res.Account,
				Cells:   cells,
			})
		}
		table.Rows = append(table.Rows, WideRow{Kind: SeparatorRow})
	}
	return table
}

// Records returns the table as CSV records.
func (t *WideTable) Records() [][]string {
	records := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		var record []string
		switch row.Kind {
		case HeaderRow:
			record = append([]string{"", ""}, row.Periods...)
		case SeparatorRow:
			record = make([]string, separatorWidth)
		default:
			record = make([]string, 0, len(row.Cells)+2)
			record = append(record, row.Region, AccountTag+row.Account)
			for _, cell := range row.Cells {
				record = append(record, cell.Text)
			}
		}
		records = append(records, record)
	}
	return records
}

// CSV renders the table as wide-format CSV.
func (t *WideTable) CSV() string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	// writes to a bytes.Buffer cannot fail
	_ = w.WriteAll(t.Records())
	return buf.String()
}

// FormatWide renders a collection as wide-format CSV for spreadsheets.
func FormatWide(c *Collection, policy ValuePolicy) string {
	return BuildWide(c, policy).CSV()
}
