package collector

import "context"

// Fetcher retrieves raw quote pages from the finance site.
type Fetcher interface {
	// FetchQuotePage returns the undated history page used to validate a symbol.
	FetchQuotePage(ctx context.Context, symbol, suffix string) (string, error)
	// FetchHistory returns the history page for one window.
	FetchHistory(ctx context.Context, symbol, suffix string, w Window) (string, error)
	Name() string
}
