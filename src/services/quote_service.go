package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/walletpulse/backend/src/logger"
	"github.com/username/walletpulse/backend/src/models"
	"golang.org/x/sync/singleflight"
)

// QuoteService fronts a QuoteProvider with a per-symbol TTL cache. Concurrent misses for
// the same symbol set share one upstream call. Fresh quotes are persisted so the last known
// price survives provider outages and restarts.
type QuoteService struct {
	provider QuoteProvider
	store    QuoteStore
	cache    *cache.Cache
	group    singleflight.Group
	timeout  time.Duration
}

// NewQuoteService creates the service. store may be nil, in which case nothing is persisted.
func NewQuoteService(provider QuoteProvider, store QuoteStore, ttl, timeout time.Duration) *QuoteService {
	return &QuoteService{
		provider: provider,
		store:    store,
		cache:    cache.New(ttl, 2*ttl),
		timeout:  timeout,
	}
}

// GetQuotes returns quotes for the symbols it can price. When the provider fails, it still
// returns whatever is cached or persisted, together with an error wrapping ErrQuoteBatchFailed.
func (s *QuoteService) GetQuotes(ctx context.Context, symbols []string) (map[string]models.MarketQuote, error) {
	result := make(map[string]models.MarketQuote, len(symbols))
	var misses []string
	seen := make(map[string]bool, len(symbols))
	for _, sym := range symbols {
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		if q, found := s.cache.Get(sym); found {
			result[sym] = q.(models.MarketQuote)
			continue
		}
		misses = append(misses, sym)
	}
	if len(misses) == 0 {
		return result, nil
	}
	sort.Strings(misses)

	v, err, shared := s.group.Do(strings.Join(misses, ","), func() (interface{}, error) {
		return s.fetchAndStore(ctx, misses)
	})
	if err != nil {
		logger.FromContext(ctx).Warn("Quote batch failed, using last known quotes", "symbols", misses, "error", err)
		s.fillFromStore(ctx, misses, result)
		return result, fmt.Errorf("%w: %v", ErrQuoteBatchFailed, err)
	}
	if shared {
		logger.FromContext(ctx).Debug("Quote batch shared with concurrent request", "symbols", len(misses))
	}
	for sym, q := range v.(map[string]models.MarketQuote) {
		result[sym] = q
	}
	return result, nil
}

func (s *QuoteService) fetchAndStore(ctx context.Context, symbols []string) (map[string]models.MarketQuote, error) {
	// The shared call must not be cut short by one caller going away.
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	quotes, err := s.provider.GetQuotes(fetchCtx, symbols)
	if err != nil {
		return nil, err
	}

	fresh := make([]models.MarketQuote, 0, len(quotes))
	for sym, q := range quotes {
		if q.FetchedAt.IsZero() {
			q.FetchedAt = time.Now().UTC()
			quotes[sym] = q
		}
		s.cache.Set(sym, q, cache.DefaultExpiration)
		fresh = append(fresh, q)
	}
	if s.store != nil && len(fresh) > 0 {
		if err := s.store.UpsertQuotes(fetchCtx, fresh); err != nil {
			logger.FromContext(ctx).Error("Failed to persist quotes", "error", err)
		}
	}
	return quotes, nil
}

func (s *QuoteService) fillFromStore(ctx context.Context, symbols []string, result map[string]models.MarketQuote) {
	if s.store == nil {
		return
	}
	stored, err := s.store.GetLatestQuotes(ctx, symbols)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to load persisted quotes", "error", err)
		return
	}
	for sym, q := range stored {
		if _, ok := result[sym]; !ok {
			result[sym] = q
		}
	}
}
