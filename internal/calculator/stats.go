package calculator

import (
	"math"

	"Instagraph/internal/model"
)

const (
	MaxScaleFactor = 1.05 // headroom above the highest price
	MinScaleFactor = 0.95 // room below the lowest price

	// Above this price the axis snaps to multiples of 5 and drops the cents.
	wholeDollarThreshold = 10.0
	scaleStep            = 5.0
)

// ScaleBounds returns the chart's y-axis limits for the given price range.
func ScaleBounds(maxPrice, minPrice float64) (scaleMax, scaleMin float64) {
	scaleMax = math.Ceil(maxPrice * MaxScaleFactor)
	scaleMin = math.Floor(minPrice * MinScaleFactor)
	if scaleMin > wholeDollarThreshold {
		scaleMax = math.RoundToEven(scaleMax/scaleStep) * scaleStep
		scaleMin = math.RoundToEven(scaleMin/scaleStep) * scaleStep
	}
	return scaleMax, scaleMin
}

// ChoosePriceFormat picks whole-dollar currency for series whose minimum exceeds $10.
func ChoosePriceFormat(minPrice float64) string {
	if minPrice > wholeDollarThreshold {
		return model.PriceFormatWhole
	}
	return model.PriceFormatCents
}

// Derive computes the summary statistics of a finished dataset.
func Derive(ds *model.Dataset) (*model.DerivedStats, error) {
	if ds == nil {
		return nil, ErrEmptyDataset
	}
	high, low, err := AdjCloseRange(ds.Rows)
	if err != nil {
		return nil, err
	}
	avg, err := AverageVolume(ds.Rows)
	if err != nil {
		return nil, err
	}
	scaleMax, scaleMin := ScaleBounds(high, low)
	return &model.DerivedStats{
		MaxAdjClose:   high,
		MinAdjClose:   low,
		AverageVolume: avg,
		ADTV:          int64(math.RoundToEven(avg)),
		ScaleMax:      scaleMax,
		ScaleMin:      scaleMin,
		PriceFormat:   ChoosePriceFormat(low),
	}, nil
}

// Summarize builds the summary box values from a dataset and its statistics.
func Summarize(ds *model.Dataset, stats *model.DerivedStats) (*model.Summary, error) {
	last, ok := ds.Last()
	if !ok || stats == nil {
		return nil, ErrEmptyDataset
	}
	return &model.Summary{
		Company:   ds.Symbol,
		Date:      last.Date,
		LastPrice: last.AdjClose,
		High:      stats.MaxAdjClose,
		Low:       stats.MinAdjClose,
		ADTV:      stats.ADTV,
	}, nil
}
