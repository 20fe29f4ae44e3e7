package collector

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"Instagraph/internal/model"
)

// MockFetcher serves fixed pages for development and testing.
type MockFetcher struct {
	QuotePage string
	QuoteErr  error
	Pages     []string // indexed by window, oldest first
	Errs      []error  // indexed by window

	mu    sync.Mutex
	Calls []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchQuotePage(_ context.Context, symbol, suffix string) (string, error) {
	m.record("quote " + QuoteSymbol(symbol, suffix))
	return m.QuotePage, m.QuoteErr
}

func (m *MockFetcher) FetchHistory(_ context.Context, symbol, suffix string, w Window) (string, error) {
	i := m.HistoryCalls()
	m.record(fmt.Sprintf("history %s %s", QuoteSymbol(symbol, suffix), w))

	if i < len(m.Errs) && m.Errs[i] != nil {
		return "", m.Errs[i]
	}
	if i < len(m.Pages) {
		return m.Pages[i], nil
	}
	return "", fmt.Errorf("mock: no page for window %d", i)
}

func (m *MockFetcher) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

// HistoryCalls returns how many windowed fetches were issued.
func (m *MockFetcher) HistoryCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if strings.HasPrefix(c, "history ") {
			n++
		}
	}
	return n
}

// Result is the outcome of one scraping session. Dataset is never nil once a
// session has started fetching; on failure it holds the rows of completed windows.
type Result struct {
	ID        string
	Symbol    string
	Exchange  string
	StartedAt time.Time
	Dataset   *model.Dataset
	Complete  bool
}

// Collector drives scraping sessions: validate the symbol, then fetch and normalize
// the four windows in chronological order into one dataset.
type Collector struct {
	Fetcher Fetcher
	Log     zerolog.Logger
	Now     func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, log zerolog.Logger) *Collector {
	return &Collector{Fetcher: fetcher, Log: log, Now: time.Now}
}

// Collect runs one session for symbol on the raw exchange name. The returned Result
// is non-nil whenever the input was valid, including when a later window fails.
func (c *Collector) Collect(ctx context.Context, symbol, exchange string) (*Result, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty ticker", ErrInvalidSymbol)
	}
	suffix, err := ResolveExchange(exchange)
	if err != nil {
		return nil, err
	}

	res := &Result{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Exchange:  suffix,
		StartedAt: c.Now(),
		Dataset:   model.NewDataset(symbol, suffix),
	}
	log := c.Log.With().Str("session", res.ID).Str("symbol", QuoteSymbol(symbol, suffix)).Logger()

	if err := c.validate(ctx, symbol, suffix); err != nil {
		log.Warn().Err(err).Msg("validation failed")
		return res, err
	}

	for i, w := range Windows(res.StartedAt) {
		page, err := c.Fetcher.FetchHistory(ctx, symbol, suffix, w)
		if err != nil {
			werr := &WindowError{Index: i, Window: w, Err: fmt.Errorf("%w: %w", ErrRetrieval, err)}
			log.Error().Err(werr).Int("rows", res.Dataset.Len()).Msg("window fetch failed, keeping partial dataset")
			return res, werr
		}
		table, err := Normalize(page)
		if err != nil {
			werr := &WindowError{Index: i, Window: w, Err: err}
			log.Error().Err(werr).Int("rows", res.Dataset.Len()).Msg("window parse failed, keeping partial dataset")
			return res, werr
		}
		added := res.Dataset.Append(table.Rows...)
		log.Debug().
			Int("window", i+1).
			Stringer("range", w).
			Int("parsed", len(table.Rows)).
			Int("added", added).
			Int("skipped", table.Skipped).
			Msg("window normalized")
	}

	res.Complete = true
	log.Info().Int("rows", res.Dataset.Len()).Msg("session complete")
	return res, nil
}

// validate checks that the undated history page carries exactly one price table.
func (c *Collector) validate(ctx context.Context, symbol, suffix string) error {
	page, err := c.Fetcher.FetchQuotePage(ctx, symbol, suffix)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	n, err := CountHistoryTables(page)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	if n != 1 {
		return fmt.Errorf("%w: %s has %d historical-prices tables", ErrValidationFailed, QuoteSymbol(symbol, suffix), n)
	}
	return nil
}
