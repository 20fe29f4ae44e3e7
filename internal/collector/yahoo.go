package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://ca.finance.yahoo.com"
	DefaultUserAgent = "Mozilla/5.0"
	DefaultTimeout   = 30 * time.Second
)

// YahooOptions configures a YahooFetcher. Zero values fall back to defaults.
type YahooOptions struct {
	BaseURL         string
	UserAgent       string
	Proxy           string
	Timeout         time.Duration
	RequestInterval time.Duration // minimum spacing between requests, 0 disables pacing
}

// YahooFetcher implements Fetcher against the Yahoo Finance quote history pages.
type YahooFetcher struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
	limiter   *rate.Limiter
}

// NewYahooFetcher creates a fetcher with optional proxy support.
func NewYahooFetcher(opts YahooOptions) *YahooFetcher {
	transport := &http.Transport{}
	if opts.Proxy != "" {
		if u, err := url.Parse(opts.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	limit := rate.Inf
	if opts.RequestInterval > 0 {
		limit = rate.Every(opts.RequestInterval)
	}
	return &YahooFetcher{
		BaseURL:   strings.TrimRight(opts.BaseURL, "/"),
		UserAgent: opts.UserAgent,
		Client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// QuoteURL is the undated history page for a symbol.
func QuoteURL(baseURL, symbol, suffix string) string {
	return fmt.Sprintf("%s/quote/%s/history", baseURL, url.PathEscape(QuoteSymbol(symbol, suffix)))
}

// HistoryURL is the daily history page for one window, bounds in Unix seconds.
func HistoryURL(baseURL, symbol, suffix string, w Window) string {
	return fmt.Sprintf("%s?period1=%d&period2=%d&interval=1d&filter=history&frequency=1d",
		QuoteURL(baseURL, symbol, suffix), w.Start.Unix(), w.End.Unix())
}

func (f *YahooFetcher) FetchQuotePage(ctx context.Context, symbol, suffix string) (string, error) {
	return f.get(ctx, QuoteURL(f.BaseURL, symbol, suffix))
}

func (f *YahooFetcher) FetchHistory(ctx context.Context, symbol, suffix string, w Window) (string, error) {
	return f.get(ctx, HistoryURL(f.BaseURL, symbol, suffix, w))
}

func (f *YahooFetcher) get(ctx context.Context, u string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("yahoo wait: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("yahoo: status %d", resp.StatusCode)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("yahoo: empty response")
	}
	return string(body), nil
}
