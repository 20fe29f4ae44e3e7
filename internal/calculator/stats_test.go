package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Instagraph/internal/model"
)

func dataset(adj []float64, vols []int64) *model.Dataset {
	ds := model.NewDataset("TEST", "")
	start := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	for i := range adj {
		ds.Append(model.PriceRow{
			Date:     start.AddDate(0, 0, i),
			Open:     adj[i],
			High:     adj[i],
			Low:      adj[i],
			Close:    adj[i],
			AdjClose: adj[i],
			Volume:   vols[i],
		})
	}
	return ds
}

func TestDerive_SmallCap(t *testing.T) {
	ds := dataset([]float64{10.00, 12.50, 9.75}, []int64{100, 200, 300})
	st, err := Derive(ds)
	require.NoError(t, err)

	assert.Equal(t, 12.50, st.MaxAdjClose)
	assert.Equal(t, 9.75, st.MinAdjClose)
	assert.Equal(t, 14.0, st.ScaleMax)
	assert.Equal(t, 9.0, st.ScaleMin)
	assert.Equal(t, 200.0, st.AverageVolume)
	assert.Equal(t, int64(200), st.ADTV)
	assert.Equal(t, model.PriceFormatCents, st.PriceFormat)
}

func TestDerive_LargeCapSnapsToFive(t *testing.T) {
	ds := dataset([]float64{152.30, 181.10, 140.20}, []int64{1_000_000, 1_500_001, 2_000_000})
	st, err := Derive(ds)
	require.NoError(t, err)

	// ceil(181.10*1.05)=191 -> 190, floor(140.2*0.95)=133 -> 135
	assert.Equal(t, 190.0, st.ScaleMax)
	assert.Equal(t, 135.0, st.ScaleMin)
	assert.Equal(t, int64(1_500_000), st.ADTV)
	assert.Equal(t, model.PriceFormatWhole, st.PriceFormat)
}

func TestScaleBounds_Threshold(t *testing.T) {
	// floor(10.60*0.95)=10 is not above 10, so no snapping
	hi, lo := ScaleBounds(11.20, 10.60)
	assert.Equal(t, 12.0, hi)
	assert.Equal(t, 10.0, lo)

	// floor(12*0.95)=11 -> 10, ceil(12*1.05)=13 -> 15
	hi, lo = ScaleBounds(12, 12)
	assert.Equal(t, 15.0, hi)
	assert.Equal(t, 10.0, lo)
}

func TestScaleBounds_Snapping(t *testing.T) {
	// ceil(26.5*1.05)=28 -> 30, floor(26.5*0.95)=25 stays 25
	hi, lo := ScaleBounds(26.5, 26.5)
	assert.Equal(t, 30.0, hi)
	assert.Equal(t, 25.0, lo)

	// ceil(21*1.05)=23 -> 25, floor(18.95*0.95)=18 -> 20
	hi, lo = ScaleBounds(21, 18.95)
	assert.Equal(t, 25.0, hi)
	assert.Equal(t, 20.0, lo)
}

func TestChoosePriceFormat(t *testing.T) {
	assert.Equal(t, model.PriceFormatCents, ChoosePriceFormat(10))
	assert.Equal(t, model.PriceFormatWhole, ChoosePriceFormat(10.01))
}

func TestDerive_Empty(t *testing.T) {
	_, err := Derive(model.NewDataset("X", ""))
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = Derive(nil)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = AverageVolume(nil)
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestAverageVolume_RoundsHalfToEven(t *testing.T) {
	ds := dataset([]float64{1, 2}, []int64{1, 4})
	st, err := Derive(ds)
	require.NoError(t, err)
	assert.Equal(t, 2.5, st.AverageVolume)
	assert.Equal(t, int64(2), st.ADTV)
}

func TestSummarize(t *testing.T) {
	ds := dataset([]float64{10.00, 12.50, 9.75}, []int64{100, 200, 300})
	st, err := Derive(ds)
	require.NoError(t, err)

	sum, err := Summarize(ds, st)
	require.NoError(t, err)
	assert.Equal(t, "TEST", sum.Company)
	assert.Equal(t, time.Date(2026, time.January, 7, 0, 0, 0, 0, time.UTC), sum.Date)
	assert.Equal(t, 9.75, sum.LastPrice)
	assert.Equal(t, 12.50, sum.High)
	assert.Equal(t, 9.75, sum.Low)
	assert.Equal(t, int64(200), sum.ADTV)

	_, err = Summarize(model.NewDataset("X", ""), st)
	assert.ErrorIs(t, err, ErrEmptyDataset)
}
