package render

import (
	"errors"

	"Instagraph/internal/model"
)

// ErrNoData is returned when a report has nothing to draw.
var ErrNoData = errors.New("render: no data")

// Report bundles everything drawn for one session.
type Report struct {
	Quote   string // display symbol, e.g. "SHOP.TO"
	Dataset *model.Dataset
	Stats   *model.DerivedStats
	Summary *model.Summary
}

func (r *Report) check(minRows int) error {
	if r == nil || r.Dataset == nil || r.Stats == nil || r.Summary == nil || r.Dataset.Len() < minRows {
		return ErrNoData
	}
	return nil
}
