package model

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Number formats handed to the spreadsheet renderer.
const (
	PriceFormatWhole = "_($* 0_);_($* (0);_($* '-'??_);_(@_)"
	PriceFormatCents = "_($* 0.00_);_($* (0.00);_($* '-'??_);_(@_)"
	VolumeFormat     = "_(* #,##0_);_(* (#,##0);_(* ' - '??_);_(@_)"
	DateFormat       = "m/d/yyyy"
	ChartDateFormat  = "mmm-yyyy"
)

// DerivedStats summarises a finished dataset. It is recomputed whenever the dataset changes.
type DerivedStats struct {
	MaxAdjClose   float64
	MinAdjClose   float64
	AverageVolume float64 // unrounded mean
	ADTV          int64   // AverageVolume rounded for display
	ScaleMax      float64
	ScaleMin      float64
	PriceFormat   string
}

// Summary holds the values shown in the summary box.
type Summary struct {
	Company   string
	Date      time.Time
	LastPrice float64
	High      float64
	Low       float64
	ADTV      int64
}

// DisplayPrice renders v as dollars, keeping cents only for the cents format.
func DisplayPrice(v float64, priceFormat string) string {
	if priceFormat == PriceFormatWhole {
		return "$" + humanize.FormatFloat("#,###.", v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// DisplayVolume renders a share count with thousands separators.
func DisplayVolume(v int64) string { return humanize.Comma(v) }
