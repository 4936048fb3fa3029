package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWideTableXLSX(t *testing.T) {
	accounts := []string{"111111111111", "222222222222"}
	regions := []string{"us-east-1"}
	c := collection(accounts, regions,
		PairResult{Account: accounts[0], Region: regions[0], Points: points(2500.4, 0.2)},
		PairResult{Account: accounts[1], Region: regions[0], Points: points(7, 8)},
	)

	data, err := BuildWide(c, ValuePolicy{Invalid: InvalidValueSentinel}).XLSX()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{XLSXSheetName}, f.GetSheetList())

	rows, err := f.GetRows(XLSXSheetName)
	require.NoError(t, err)
	// separator rows stay blank, trailing ones are not reported at all
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"", "", "2024-07-01", "2024-08-01"}, rows[0])
	assert.Equal(t, []string{"us-east-1", "a-111111111111", "2500", "N/A"}, rows[1])
	assert.Empty(t, rows[2])
	assert.Equal(t, []string{"us-east-1", "a-222222222222", "7", "8"}, rows[3])

	cellType, err := f.GetCellType(XLSXSheetName, "C2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)
	assert.NotEqual(t, excelize.CellTypeInlineString, cellType)
}
