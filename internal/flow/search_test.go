package flow

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fundbridge/donate/internal/domain"
)

func tickerSource(calls *int32, queries chan<- string) *mockGateway {
	return &mockGateway{
		TickersFunc: func(_ context.Context, q domain.TickerQuery) (*domain.TickerPage, error) {
			atomic.AddInt32(calls, 1)
			if queries != nil {
				queries <- q.Filters.Name
			}
			return &domain.TickerPage{Tickers: []domain.Ticker{{Name: "Apple Inc", Ticker: "AAPL"}}}, nil
		},
	}
}

func TestSearchIgnoresShortQueries(t *testing.T) {
	var calls int32
	search := NewTickerSearch(tickerSource(&calls, nil), testFlowConfig)

	got, err := search.Search(context.Background(), "s", " a ")
	if err != nil || len(got) != 0 {
		t.Errorf("Search() = %v, %v", got, err)
	}
	if calls != 0 {
		t.Error("short queries must not reach the gateway")
	}
}

func TestSearchCachesByNormalisedQuery(t *testing.T) {
	var calls int32
	search := NewTickerSearch(tickerSource(&calls, nil), testFlowConfig)
	ctx := context.Background()

	if _, err := search.Search(ctx, "s", "Apple"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	got, err := search.Search(ctx, "other", " apple ")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 1 || got[0].Ticker != "AAPL" {
		t.Errorf("Search() = %v", got)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("gateway called %d times, want 1", n)
	}
}

func TestSearchOnlyRunsLatestQueryOfABurst(t *testing.T) {
	var calls int32
	queries := make(chan string, 4)
	search := NewTickerSearch(tickerSource(&calls, queries), testFlowConfig)
	waiting := make(chan chan time.Time)
	search.after = func(time.Duration) <-chan time.Time {
		c := make(chan time.Time, 1)
		waiting <- c
		return c
	}
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 3)
	var timers []chan time.Time
	for i, q := range []string{"ap", "app", "appl"} {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			_, errs[i] = search.Search(ctx, "s", q)
		}(i, q)
		timers = append(timers, <-waiting)
	}
	for _, c := range timers {
		c <- time.Now()
	}
	wg.Wait()
	close(queries)

	if errs[2] != nil {
		t.Errorf("latest query error = %v", errs[2])
	}
	for _, err := range errs[:2] {
		if !errors.Is(err, ErrSuperseded) {
			t.Errorf("earlier query error = %v, want ErrSuperseded", err)
		}
	}
	var sent []string
	for q := range queries {
		sent = append(sent, q)
	}
	if len(sent) != 1 || sent[0] != "appl" {
		t.Errorf("gateway queries = %v, want [appl]", sent)
	}
}

func TestSearchHonoursCancellation(t *testing.T) {
	var calls int32
	search := NewTickerSearch(tickerSource(&calls, nil), testFlowConfig)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := search.Search(ctx, "s", "apple"); !errors.Is(err, context.Canceled) {
		t.Errorf("Search() error = %v", err)
	}
}
