package notifier

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"Instagraph/internal/collector"
	"Instagraph/internal/model"
)

func TestFormatSummary(t *testing.T) {
	s := &model.Summary{
		Company:   "AAPL",
		Date:      time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC),
		LastPrice: 181.1,
		High:      181.1,
		Low:       140.2,
		ADTV:      52345678,
	}
	stats := &model.DerivedStats{ScaleMax: 190, ScaleMin: 135, PriceFormat: model.PriceFormatWhole}

	msg := FormatSummary(s, stats, "AAPL")
	assert.Contains(t, msg, "<b>AAPL</b>")
	assert.Contains(t, msg, "Date: Oct 13, 2026")
	assert.Contains(t, msg, "Last Price: $181\n")
	assert.Contains(t, msg, "Low: $140\n")
	assert.Contains(t, msg, "ADTV: 52,345,678")
	assert.Contains(t, msg, "$135 to $190")
}

func TestFormatSummary_Cents(t *testing.T) {
	s := &model.Summary{Date: time.Now(), LastPrice: 9.75, High: 12.5, Low: 9.75, ADTV: 900}
	stats := &model.DerivedStats{ScaleMax: 14, ScaleMin: 9, PriceFormat: model.PriceFormatCents}

	msg := FormatSummary(s, stats, "ABC.V")
	assert.Contains(t, msg, "Last Price: $9.75")
	assert.Contains(t, msg, "High: $12.50")
}

func TestFormatFailure(t *testing.T) {
	msg := FormatFailure("XYZ", fmt.Errorf("%w: %q", collector.ErrInvalidExchange, "LSE"), 0)
	assert.Contains(t, msg, "unsupported exchange")

	msg = FormatFailure("ZZZZ", fmt.Errorf("%w: no table", collector.ErrValidationFailed), 0)
	assert.Contains(t, msg, "ticker not found")

	werr := &collector.WindowError{Index: 2, Err: fmt.Errorf("%w: %w", collector.ErrRetrieval, errors.New("timeout"))}
	msg = FormatFailure("AAPL", werr, 120)
	assert.Contains(t, msg, "session failed")
	assert.Contains(t, msg, "Partial data kept: 120 rows from 2 of 4 windows")
}

func TestFormatWatchlist(t *testing.T) {
	assert.Equal(t, "Watchlist is empty.", FormatWatchlist(nil))
	assert.Equal(t, "👀 <b>Watchlist</b>\n• AAPL\n• SHOP.TO", FormatWatchlist([]string{"AAPL", "SHOP.TO"}))
}
