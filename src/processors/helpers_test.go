package processors

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/username/walletpulse/backend/src/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

func date(s string) time.Time {
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func quote(symbol, price, currency string) models.MarketQuote {
	return models.MarketQuote{Symbol: symbol, Price: dec(price), Currency: currency}
}

func quoteMap(qs ...models.MarketQuote) map[string]models.MarketQuote {
	m := make(map[string]models.MarketQuote, len(qs))
	for _, q := range qs {
		m[q.Symbol] = q
	}
	return m
}

func entry(dir models.Direction, amount, code string, at time.Time) models.LedgerEntry {
	return models.LedgerEntry{AccountID: 1, Direction: dir, Amount: dec(amount), InstrumentCode: code, OccurredAt: at}
}
