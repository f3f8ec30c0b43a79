package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/username/walletpulse/backend/src/models"
)

func TestResolveBaseCurrency(t *testing.T) {
	r := NewRateResolver(DefaultTables(), nil)

	for _, code := range []string{"TRY", "try", ""} {
		rate, ok := r.Resolve(code)
		assert.True(t, ok)
		assertDecimal(t, "1", rate, code)
	}
}

func TestResolveChain(t *testing.T) {
	tests := []struct {
		name     string
		quotes   map[string]models.MarketQuote
		code     string
		want     string
		resolved bool
	}{
		{
			name:     "exact symbol",
			quotes:   quoteMap(quote("THYAO.IS", "300", "TRY")),
			code:     "THYAO.IS",
			want:     "300",
			resolved: true,
		},
		{
			name:     "mapped symbol",
			quotes:   quoteMap(quote("USDTRY=X", "35", "TRY")),
			code:     "USD",
			want:     "35",
			resolved: true,
		},
		{
			name:     "cross rate through quoted currency",
			quotes:   quoteMap(quote("BTC-USD", "60000", "USD"), quote("USDTRY=X", "35", "TRY")),
			code:     "BTC",
			want:     "2100000",
			resolved: true,
		},
		{
			name:     "cross rate through fallback currency",
			quotes:   quoteMap(quote("AAPL", "200", "USD")),
			code:     "AAPL",
			want:     "6800",
			resolved: true,
		},
		{
			name:     "static fallback",
			quotes:   nil,
			code:     "EUR",
			want:     "36",
			resolved: true,
		},
		{
			name:     "zero price quote ignored",
			quotes:   quoteMap(quote("EURTRY=X", "0", "TRY")),
			code:     "EUR",
			want:     "36",
			resolved: true,
		},
		{
			name:     "unknown code",
			quotes:   nil,
			code:     "ZZZ",
			want:     "1",
			resolved: false,
		},
		{
			name:     "cross rate cycle",
			quotes:   quoteMap(quote("AAA", "2", "BBB"), quote("BBB", "3", "AAA")),
			code:     "AAA",
			want:     "1",
			resolved: false,
		},
		{
			name:     "unresolvable quote currency falls back on code",
			quotes:   quoteMap(quote("BTC-USD", "60000", "XXX")),
			code:     "BTC",
			want:     "3000000",
			resolved: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRateResolver(DefaultTables(), tt.quotes)
			rate, ok := r.Resolve(tt.code)
			assert.Equal(t, tt.resolved, ok)
			assertDecimal(t, tt.want, rate)
		})
	}
}
