package calculator

import (
	"errors"
	"math"

	"Instagraph/internal/model"
)

// ErrEmptyDataset is returned when statistics are requested before any row was assembled.
var ErrEmptyDataset = errors.New("no price rows provided")

// AdjCloseRange scans every row and returns the highest and lowest adjusted close.
func AdjCloseRange(rows []model.PriceRow) (high, low float64, err error) {
	if len(rows) == 0 {
		return 0, 0, ErrEmptyDataset
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, r := range rows {
		if r.AdjClose > high {
			high = r.AdjClose
		}
		if r.AdjClose < low {
			low = r.AdjClose
		}
	}
	return high, low, nil
}

// AverageVolume returns the arithmetic mean volume over all rows (ADTV).
func AverageVolume(rows []model.PriceRow) (float64, error) {
	if len(rows) == 0 {
		return 0, ErrEmptyDataset
	}
	var sum float64
	for _, r := range rows {
		sum += float64(r.Volume)
	}
	return sum / float64(len(rows)), nil
}
