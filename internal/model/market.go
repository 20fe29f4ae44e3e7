package model

import "time"

// PriceRow is one trading day of historical prices.
type PriceRow struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   int64
}

// Dataset is the ordered, date-ascending sequence of rows assembled by one session.
type Dataset struct {
	Symbol   string
	Exchange string
	Rows     []PriceRow
}

// NewDataset creates an empty dataset for the given symbol and exchange qualifier.
func NewDataset(symbol, exchange string) *Dataset {
	return &Dataset{Symbol: symbol, Exchange: exchange}
}

// Append adds rows in order and returns how many were accepted.
// Rows not strictly after the current last date are skipped, which keeps the
// dataset unique by date when adjacent windows both publish a seam day.
func (d *Dataset) Append(rows ...PriceRow) int {
	added := 0
	for _, r := range rows {
		if n := len(d.Rows); n > 0 && !r.Date.After(d.Rows[n-1].Date) {
			continue
		}
		d.Rows = append(d.Rows, r)
		added++
	}
	return added
}

// Len returns the number of rows assembled so far.
func (d *Dataset) Len() int { return len(d.Rows) }

// Last returns the most recent row. ok is false for an empty dataset.
func (d *Dataset) Last() (row PriceRow, ok bool) {
	if len(d.Rows) == 0 {
		return PriceRow{}, false
	}
	return d.Rows[len(d.Rows)-1], true
}

// AdjCloses returns the adjusted close column.
func (d *Dataset) AdjCloses() []float64 {
	out := make([]float64, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r.AdjClose
	}
	return out
}

// Dates returns the date column.
func (d *Dataset) Dates() []time.Time {
	out := make([]time.Time, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r.Date
	}
	return out
}
