package flow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fundbridge/donate/internal/domain"
	"github.com/fundbridge/donate/pkg/config"
)

// ErrSuperseded is returned to a search that a newer keystroke replaced.
var ErrSuperseded = errors.New("search superseded by a newer query")

const maxCachedQueries = 512

type TickerSource interface {
	Tickers(ctx context.Context, query domain.TickerQuery) (*domain.TickerPage, error)
}

// TickerSearch debounces stock lookups per session. Within a cooldown window
// only the most recent query of a session reaches the gateway, and results
// are memoised per normalised query.
type TickerSearch struct {
	source   TickerSource
	cooldown time.Duration
	minLen   int
	pageSize int

	mu      sync.Mutex
	seq     uint64
	latest  map[string]uint64
	results map[string][]domain.Ticker
	group   singleflight.Group

	after func(time.Duration) <-chan time.Time
}

func NewTickerSearch(source TickerSource, cfg config.FlowConfig) *TickerSearch {
	return &TickerSearch{
		source:   source,
		cooldown: cfg.SearchCooldown,
		minLen:   cfg.SearchMinLength,
		pageSize: cfg.SearchPageSize,
		latest:   make(map[string]uint64),
		results:  make(map[string][]domain.Ticker),
		after:    time.After,
	}
}

// Search returns tickers whose name or symbol matches query. Queries shorter
// than the minimum length return no results without a lookup.
func (t *TickerSearch) Search(ctx context.Context, session, query string) ([]domain.Ticker, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < t.minLen {
		return []domain.Ticker{}, nil
	}
	key := strings.ToLower(query)

	t.mu.Lock()
	if cached, ok := t.results[key]; ok {
		t.mu.Unlock()
		return cached, nil
	}
	t.seq++
	gen := t.seq
	t.latest[session] = gen
	t.mu.Unlock()

	select {
	case <-ctx.Done():
		t.release(session, gen)
		return nil, ctx.Err()
	case <-t.after(t.cooldown):
	}
	if !t.current(session, gen) {
		return nil, ErrSuperseded
	}

	v, err, _ := t.group.Do(key, func() (interface{}, error) {
		page, err := t.source.Tickers(ctx, domain.TickerQuery{
			Filters:    &domain.TickerFilters{Name: query, Ticker: query},
			Pagination: &domain.Pagination{Page: 1, ItemsPerPage: t.pageSize},
		})
		if err != nil {
			return nil, err
		}
		tickers := page.Tickers
		if tickers == nil {
			tickers = []domain.Ticker{}
		}
		t.store(key, tickers)
		return tickers, nil
	})
	t.release(session, gen)
	if err != nil {
		return nil, err
	}
	return v.([]domain.Ticker), nil
}

func (t *TickerSearch) current(session string, gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest[session] == gen
}

// release forgets the session once its latest query has finished.
func (t *TickerSearch) release(session string, gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.latest[session] == gen {
		delete(t.latest, session)
	}
}

func (t *TickerSearch) store(key string, tickers []domain.Ticker) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.results) >= maxCachedQueries {
		t.results = make(map[string][]domain.Ticker)
	}
	t.results[key] = tickers
}
