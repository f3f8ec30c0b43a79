package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/username/walletpulse/backend/src/database"
	"github.com/username/walletpulse/backend/src/models"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := database.Open("file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return NewSQLStore(db)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr(v int64) *int64 { return &v }

// fakeProvider serves fixed quotes and counts calls. When gate is set, each call
// signals entered and blocks until gate is closed.
type fakeProvider struct {
	mu      sync.Mutex
	quotes  map[string]models.MarketQuote
	err     error
	calls   atomic.Int32
	entered chan struct{}
	gate    chan struct{}
	asked   [][]string
}

func newFakeProvider(quotes ...models.MarketQuote) *fakeProvider {
	m := make(map[string]models.MarketQuote, len(quotes))
	for _, q := range quotes {
		m[q.Symbol] = q
	}
	return &fakeProvider{quotes: m}
}

func (f *fakeProvider) GetQuotes(ctx context.Context, symbols []string) (map[string]models.MarketQuote, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.asked = append(f.asked, append([]string(nil), symbols...))
	f.mu.Unlock()
	if f.gate != nil {
		f.entered <- struct{}{}
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[string]models.MarketQuote)
	for _, s := range symbols {
		if q, ok := f.quotes[s]; ok {
			out[s] = q
		}
	}
	return out, nil
}

func quote(symbol, price, currency string) models.MarketQuote {
	return models.MarketQuote{Symbol: symbol, Price: dec(price), Currency: currency}
}
