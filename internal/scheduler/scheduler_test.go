package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Instagraph/internal/collector"
	"Instagraph/internal/config"
	"Instagraph/internal/recorder"
)

var sessionNow = time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)

func page(rows ...[]string) string {
	var b strings.Builder
	b.WriteString(`<html><body><table data-test="historical-prices"><tbody>`)
	for _, r := range rows {
		b.WriteString("<tr>")
		for _, c := range r {
			fmt.Fprintf(&b, "<td>%s</td>", c)
		}
		b.WriteString("</tr>")
	}
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}

func quarter(newer, older, price string) string {
	return page(
		[]string{newer, price, price, price, price, price, "1,000"},
		[]string{older, price, price, price, price, price, "3,000"},
	)
}

func fourWindows() []string {
	return []string{
		quarter("Dec 1, 2025", "Nov 3, 2025", "150.00"),
		quarter("Mar 2, 2026", "Feb 2, 2026", "160.00"),
		quarter("Jun 1, 2026", "May 4, 2026", "170.00"),
		quarter("Oct 13, 2026", "Sep 1, 2026", "181.10"),
	}
}

type fakeNotifier struct {
	mu       sync.Mutex
	texts    []string
	photos   []string
	photoErr error
}

func (f *fakeNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeNotifier) SendPhoto(_ context.Context, filename string, _ []byte, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.photoErr != nil {
		return f.photoErr
	}
	f.photos = append(f.photos, filename+"|"+caption)
	return nil
}

type memRecorder struct {
	records []*recorder.SessionRecord
}

func (m *memRecorder) RecordSession(rec *recorder.SessionRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memRecorder) Close() error { return nil }

func newTestScheduler(t *testing.T, f collector.Fetcher, n Notifier, rec recorder.Recorder) *Scheduler {
	t.Helper()
	col := collector.NewCollector(f, zerolog.Nop())
	col.Now = func() time.Time { return sessionNow }
	opts := Options{
		OutputDir:  t.TempDir(),
		WriteXLSX:  true,
		WriteChart: true,
		Watchlist:  []config.WatchItem{{Symbol: "AAPL"}, {Symbol: "SHOP", Exchange: "TSX"}},
	}
	return NewScheduler(context.Background(), col, n, rec, opts, zerolog.Nop())
}

func TestRunSession_WritesOutputsAndRecords(t *testing.T) {
	rec := &memRecorder{}
	f := &collector.MockFetcher{QuotePage: page(), Pages: fourWindows()}
	s := newTestScheduler(t, f, nil, rec)

	out, err := s.RunSession(context.Background(), "shop", "tsx")
	require.NoError(t, err)

	assert.Equal(t, "SHOP.TO", out.Quote)
	require.NotNil(t, out.Stats)
	assert.Equal(t, 181.10, out.Stats.MaxAdjClose)
	assert.Equal(t, 150.00, out.Stats.MinAdjClose)
	assert.Equal(t, int64(2000), out.Stats.ADTV)
	assert.Equal(t, 181.10, out.Summary.LastPrice)

	require.Len(t, out.Files, 2)
	for _, p := range out.Files {
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}
	assert.NotEmpty(t, out.Chart)

	require.Len(t, rec.records, 1)
	assert.True(t, rec.records[0].Complete)
	assert.Empty(t, rec.records[0].Error)
	assert.Equal(t, 8, rec.records[0].Dataset.Len())
}

func TestRunSession_PartialFailureIsRecorded(t *testing.T) {
	rec := &memRecorder{}
	pages := fourWindows()
	f := &collector.MockFetcher{
		QuotePage: page(),
		Pages:     pages,
		Errs:      []error{nil, nil, errors.New("connection reset")},
	}
	s := newTestScheduler(t, f, nil, rec)

	out, err := s.RunSession(context.Background(), "AAPL", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, collector.ErrRetrieval)

	require.NotNil(t, out)
	assert.Nil(t, out.Stats)
	assert.Empty(t, out.Files)
	assert.Equal(t, 4, out.Result.Dataset.Len())

	require.Len(t, rec.records, 1)
	assert.False(t, rec.records[0].Complete)
	assert.Contains(t, rec.records[0].Error, "connection reset")
}

func TestRunSession_InvalidExchange(t *testing.T) {
	rec := &memRecorder{}
	s := newTestScheduler(t, &collector.MockFetcher{}, nil, rec)

	out, err := s.RunSession(context.Background(), "VOD", "LSE")
	assert.ErrorIs(t, err, collector.ErrInvalidExchange)
	assert.Nil(t, out)
	assert.Empty(t, rec.records)
}

func TestHandleCommand_Graph(t *testing.T) {
	n := &fakeNotifier{}
	f := &collector.MockFetcher{QuotePage: page(), Pages: fourWindows()}
	s := newTestScheduler(t, f, n, recorder.NewNoopRecorder())

	reply := s.HandleCommand(context.Background(), "/graph@InstagraphBot aapl")
	assert.Empty(t, reply)
	require.Len(t, n.photos, 1)
	assert.True(t, strings.HasPrefix(n.photos[0], "AAPL.png|"))
	assert.Contains(t, n.photos[0], "ADTV: 2,000")
}

func TestHandleCommand_GraphFallsBackToText(t *testing.T) {
	n := &fakeNotifier{photoErr: errors.New("too large")}
	f := &collector.MockFetcher{QuotePage: page(), Pages: fourWindows()}
	s := newTestScheduler(t, f, n, recorder.NewNoopRecorder())

	assert.Empty(t, s.HandleCommand(context.Background(), "/graph AAPL"))
	require.Len(t, n.texts, 1)
	assert.Contains(t, n.texts[0], "Last Price: $181")
}

func TestHandleCommand_GraphFailure(t *testing.T) {
	f := &collector.MockFetcher{QuotePage: `<html><body>no table</body></html>`}
	s := newTestScheduler(t, f, &fakeNotifier{}, recorder.NewNoopRecorder())

	reply := s.HandleCommand(context.Background(), "/graph ZZZZ")
	assert.Contains(t, reply, "ticker not found")
	assert.Contains(t, reply, "<b>ZZZZ</b>")

	assert.Contains(t, s.HandleCommand(context.Background(), "/graph VOD LSE"), "unsupported exchange")
	assert.Contains(t, s.HandleCommand(context.Background(), "/graph"), "Usage")
}

func TestHandleCommand_WatchlistAndHelp(t *testing.T) {
	s := newTestScheduler(t, &collector.MockFetcher{}, nil, recorder.NewNoopRecorder())

	assert.Equal(t, "👀 <b>Watchlist</b>\n• AAPL\n• SHOP.TO", s.HandleCommand(context.Background(), "/watchlist"))
	assert.Contains(t, s.HandleCommand(context.Background(), "/help"), "/graph SYMBOL [EXCHANGE]")
	assert.Contains(t, s.HandleCommand(context.Background(), "hello"), "Available commands")
}

func TestRefreshNow_NotifiesEachSymbol(t *testing.T) {
	n := &fakeNotifier{}
	// The mock serves one session's pages; the second symbol fails its windows.
	f := &collector.MockFetcher{QuotePage: page(), Pages: fourWindows()}
	s := newTestScheduler(t, f, n, &memRecorder{})
	s.Opts.WriteChart = false

	s.RefreshNow()

	require.Len(t, n.texts, 2)
	assert.Contains(t, n.texts[0], "<b>AAPL</b>")
	assert.Contains(t, n.texts[1], "<b>SHOP.TO</b>")
	assert.Contains(t, n.texts[1], "session failed")
	assert.Empty(t, n.photos)
}

func TestRegisterAll_RejectsBadSchedule(t *testing.T) {
	s := newTestScheduler(t, &collector.MockFetcher{}, nil, recorder.NewNoopRecorder())
	assert.Error(t, s.RegisterAll("every tuesday"))
	assert.NoError(t, s.RegisterAll("0 30 17 * * 1-5"))
}
