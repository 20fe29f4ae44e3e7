package collector

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"Instagraph/internal/model"
)

const (
	// HistoryTableSelector matches the historical-prices table on quote history pages.
	HistoryTableSelector = `table[data-test="historical-prices"]`

	// Placeholder is what the site prints in place of a missing value.
	Placeholder = "-"

	fieldCount = 7
)

var dateLayouts = []string{"Jan 2, 2006", "January 2, 2006", "2006-01-02"}

// TableResult is the outcome of normalizing one history page.
type TableResult struct {
	Rows    []model.PriceRow // oldest first
	Skipped int              // dividend, split and incomplete rows
}

// CountHistoryTables returns how many historical-prices tables a page contains.
func CountHistoryTables(page string) (int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return doc.Find(HistoryTableSelector).Length(), nil
}

// Normalize locates the historical-prices table in page and converts its data rows
// into typed PriceRows in chronological order. The site lists rows newest first.
//
// A row is admitted when it has exactly seven cells and none of the date or price
// cells hold the placeholder; dividend and split rows fail this and are skipped.
// A placeholder volume becomes zero.
func Normalize(page string) (*TableResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	tables := doc.Find(HistoryTableSelector)
	if n := tables.Length(); n != 1 {
		return nil, fmt.Errorf("%w: expected 1 historical-prices table, found %d", ErrParse, n)
	}

	var raw [][]string
	skipped := 0
	tables.Find("tbody > tr").Each(func(_ int, tr *goquery.Selection) {
		fields := cellTexts(tr)
		if !admit(fields) {
			skipped++
			return
		}
		raw = append(raw, fields)
	})

	result := &TableResult{Rows: make([]model.PriceRow, 0, len(raw)), Skipped: skipped}
	for i := len(raw) - 1; i >= 0; i-- {
		row, err := toPriceRow(raw[i])
		if err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

func cellTexts(tr *goquery.Selection) []string {
	cells := tr.ChildrenFiltered("td")
	fields := make([]string, 0, cells.Length())
	cells.Each(func(_ int, td *goquery.Selection) {
		fields = append(fields, strings.TrimSpace(td.Text()))
	})
	return fields
}

// admit reports whether a row is a trading day. Only the volume cell may be a placeholder.
func admit(fields []string) bool {
	if len(fields) != fieldCount {
		return false
	}
	for _, f := range fields[:fieldCount-1] {
		if f == Placeholder || f == "" {
			return false
		}
	}
	return true
}

// normalizeField substitutes the literal "0" for the placeholder.
func normalizeField(f string) string {
	if f == Placeholder {
		return "0"
	}
	return f
}

func toPriceRow(fields []string) (model.PriceRow, error) {
	var row model.PriceRow
	date, err := parseDate(fields[0])
	if err != nil {
		return row, fmt.Errorf("%w: %v", ErrParse, err)
	}
	row.Date = date

	prices := []*float64{&row.Open, &row.High, &row.Low, &row.Close, &row.AdjClose}
	for i, dst := range prices {
		v, err := parseDecimal(fields[i+1])
		if err != nil {
			return row, fmt.Errorf("%w: %s: field %d: %v", ErrParse, fields[0], i+1, err)
		}
		*dst = v
	}

	vol, err := parseVolume(normalizeField(fields[6]))
	if err != nil {
		return row, fmt.Errorf("%w: %s: volume: %v", ErrParse, fields[0], err)
	}
	row.Volume = vol
	return row, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseDecimal(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

func parseVolume(s string) (int64, error) {
	return strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
}
