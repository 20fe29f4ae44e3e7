package collector

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tableHead = `<thead><tr><th>Date</th><th>Open</th><th>High</th><th>Low</th>` +
	`<th>Close*</th><th>Adj Close**</th><th>Volume</th></tr></thead>`

func historyTable(rows ...string) string {
	return `<table data-test="historical-prices">` + tableHead +
		`<tbody>` + strings.Join(rows, "") + `</tbody>` +
		`<tfoot><tr><td colspan="7">*Close price adjusted for splits.</td></tr></tfoot></table>`
}

func historyPage(rows ...string) string {
	return `<!DOCTYPE html><html><body><div id="quote">` + historyTable(rows...) + `</div></body></html>`
}

func priceRow(fields ...string) string {
	var b strings.Builder
	b.WriteString("<tr>")
	for _, f := range fields {
		fmt.Fprintf(&b, "<td><span>%s</span></td>", f)
	}
	b.WriteString("</tr>")
	return b.String()
}

func dividendRow(date string) string {
	return `<tr><td><span>` + date + `</span></td><td colspan="6"><strong>0.25</strong> <span>Dividend</span></td></tr>`
}

func TestNormalize_ChronologicalAndFiltered(t *testing.T) {
	page := historyPage(
		priceRow("Oct 13, 2026", "12.10", "12.60", "12.00", "12.50", "12.50", "1,000"),
		dividendRow("Oct 12, 2026"),
		priceRow("Oct 12, 2026", "-", "-", "-", "-", "-", "-"),
		priceRow("Oct 09, 2026", "9.80", "10.10", "9.70", "9.75", "9.75", "3,000"),
		priceRow("Oct 8, 2026", "9.90", "10.20", "9.85", "10.00", "10.00", "2,000"),
	)

	res, err := Normalize(page)
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, 2, res.Skipped)

	assert.Equal(t, time.Date(2026, time.October, 8, 0, 0, 0, 0, time.UTC), res.Rows[0].Date)
	assert.Equal(t, time.Date(2026, time.October, 9, 0, 0, 0, 0, time.UTC), res.Rows[1].Date)
	assert.Equal(t, time.Date(2026, time.October, 13, 0, 0, 0, 0, time.UTC), res.Rows[2].Date)
	for i := 1; i < len(res.Rows); i++ {
		assert.True(t, res.Rows[i-1].Date.Before(res.Rows[i].Date))
	}

	first := res.Rows[0]
	assert.Equal(t, 9.90, first.Open)
	assert.Equal(t, 10.20, first.High)
	assert.Equal(t, 9.85, first.Low)
	assert.Equal(t, 10.00, first.Close)
	assert.Equal(t, 10.00, first.AdjClose)
	assert.Equal(t, int64(2000), first.Volume)
}

func TestNormalize_PlaceholderVolumeBecomesZero(t *testing.T) {
	page := historyPage(priceRow("Jan 5, 2026", "1,234.50", "1,240.00", "1,230.25", "1,238.00", "1,238.00", "-"))

	res, err := Normalize(page)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int64(0), res.Rows[0].Volume)
	assert.Equal(t, 1234.50, res.Rows[0].Open)
	assert.Equal(t, 1238.00, res.Rows[0].AdjClose)
}

func TestNormalize_PlaceholderPriceDropsRow(t *testing.T) {
	page := historyPage(
		priceRow("Jan 6, 2026", "10.00", "10.50", "9.90", "-", "-", "5,000"),
		priceRow("Jan 5, 2026", "10.00", "10.50", "9.90", "10.20", "10.20", "12,345,678"),
	)

	res, err := Normalize(page)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, int64(12345678), res.Rows[0].Volume)
}

func TestNormalize_EmptyTable(t *testing.T) {
	res, err := Normalize(historyPage())
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Zero(t, res.Skipped)
}

func TestNormalize_MissingTable(t *testing.T) {
	_, err := Normalize(`<html><body><table class="other"><tr><td>x</td></tr></table></body></html>`)
	assert.ErrorIs(t, err, ErrParse)
}

func TestNormalize_MultipleTables(t *testing.T) {
	page := `<html><body>` + historyTable() + historyTable() + `</body></html>`
	_, err := Normalize(page)
	assert.ErrorIs(t, err, ErrParse)
}

func TestNormalize_UnparseableValue(t *testing.T) {
	page := historyPage(priceRow("Jan 5, 2026", "ten", "10.50", "9.90", "10.20", "10.20", "100"))
	_, err := Normalize(page)
	assert.ErrorIs(t, err, ErrParse)

	page = historyPage(priceRow("5 Jan 2026", "10.00", "10.50", "9.90", "10.20", "10.20", "100"))
	_, err = Normalize(page)
	assert.ErrorIs(t, err, ErrParse)
}

func TestCountHistoryTables(t *testing.T) {
	n, err := CountHistoryTables(historyPage())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = CountHistoryTables(`<html><body><p>Symbol not found</p></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = CountHistoryTables(`<html><body>` + historyTable() + historyTable() + `</body></html>`)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNormalizeField(t *testing.T) {
	assert.Equal(t, "0", normalizeField(Placeholder))
	assert.Equal(t, "1,000", normalizeField("1,000"))
}
