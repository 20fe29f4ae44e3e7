package notifier

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"Instagraph/internal/collector"
	"Instagraph/internal/model"
)

// FormatSummary formats the summary box of a finished session into a Telegram message.
func FormatSummary(s *model.Summary, stats *model.DerivedStats, quote string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📈 <b>%s</b> | 1-Year Historical Price Summary\n\n", html.EscapeString(quote)))
	b.WriteString(fmt.Sprintf("Date: %s\n", s.Date.Format("Jan 2, 2006")))
	b.WriteString(fmt.Sprintf("Last Price: %s\n", model.DisplayPrice(s.LastPrice, stats.PriceFormat)))
	b.WriteString(fmt.Sprintf("High: %s\n", model.DisplayPrice(s.High, stats.PriceFormat)))
	b.WriteString(fmt.Sprintf("Low: %s\n", model.DisplayPrice(s.Low, stats.PriceFormat)))
	b.WriteString(fmt.Sprintf("ADTV: %s\n", model.DisplayVolume(s.ADTV)))
	b.WriteString(fmt.Sprintf("\nChart axis: %s to %s",
		model.DisplayPrice(stats.ScaleMin, stats.PriceFormat),
		model.DisplayPrice(stats.ScaleMax, stats.PriceFormat)))

	return b.String()
}

// FormatFailure describes a failed session. rows is the size of the partial dataset kept.
func FormatFailure(quote string, err error, rows int) string {
	var b strings.Builder

	switch {
	case errors.Is(err, collector.ErrInvalidExchange):
		b.WriteString(fmt.Sprintf("❌ <b>%s</b>: unsupported exchange\n", html.EscapeString(quote)))
	case errors.Is(err, collector.ErrValidationFailed):
		b.WriteString(fmt.Sprintf("❌ <b>%s</b>: ticker not found\n", html.EscapeString(quote)))
	default:
		b.WriteString(fmt.Sprintf("❌ <b>%s</b>: session failed\n", html.EscapeString(quote)))
	}
	b.WriteString(html.EscapeString(err.Error()))

	var werr *collector.WindowError
	if errors.As(err, &werr) && rows > 0 {
		b.WriteString(fmt.Sprintf("\n\nPartial data kept: %d rows from %d of %d windows",
			rows, werr.Index, collector.WindowCount))
	}
	return b.String()
}

// FormatWatchlist lists the symbols refreshed on the schedule.
func FormatWatchlist(quotes []string) string {
	if len(quotes) == 0 {
		return "Watchlist is empty."
	}
	var b strings.Builder
	b.WriteString("👀 <b>Watchlist</b>\n")
	for _, q := range quotes {
		b.WriteString(fmt.Sprintf("• %s\n", html.EscapeString(q)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// HelpText lists the supported commands.
const HelpText = "Available commands:\n" +
	"• /graph SYMBOL [EXCHANGE] - one-year chart and summary\n" +
	"• /watchlist - scheduled symbols\n" +
	"• /help - this message\n\n" +
	"Exchanges: NYSE, NASDAQ, TSX (TSE, TO), CVE (V)"
