package processors

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/walletpulse/backend/src/models"
)

// maxCrossDepth bounds how many currencies a cross-rate may chain through.
const maxCrossDepth = 4

// RateResolver converts currency and instrument codes into base-currency rates
// from a fixed snapshot of quotes. It performs no I/O and is safe for concurrent use.
type RateResolver struct {
	tables *Tables
	quotes map[string]models.MarketQuote
}

// NewRateResolver builds a resolver over the quotes returned for one report batch.
func NewRateResolver(tables *Tables, quotes map[string]models.MarketQuote) *RateResolver {
	if quotes == nil {
		quotes = map[string]models.MarketQuote{}
	}
	return &RateResolver{tables: tables, quotes: quotes}
}

// Resolve returns the price of one unit of code in the base currency.
// Lookup order: quote for the code as given, quote for its mapped market symbol
// (chained through the quote's own currency when that is not the base),
// the static fallback table, and finally a neutral 1 with resolved=false.
func (r *RateResolver) Resolve(code string) (decimal.Decimal, bool) {
	return r.resolve(code, 0, map[string]bool{})
}

func (r *RateResolver) resolve(code string, depth int, visiting map[string]bool) (decimal.Decimal, bool) {
	code = strings.TrimSpace(code)
	upper := normalizeCode(code)
	if upper == "" || upper == r.tables.BaseCurrency {
		return decimal.NewFromInt(1), true
	}

	if depth <= maxCrossDepth && !visiting[upper] {
		if quote, ok := r.lookupQuote(code, upper); ok {
			visiting[upper] = true
			rate, ok := r.priceInBase(quote, depth, visiting)
			delete(visiting, upper)
			if ok {
				return rate, true
			}
		}
	}

	if rate, ok := r.tables.FallbackRates[upper]; ok {
		return rate, true
	}
	return decimal.NewFromInt(1), false
}

func (r *RateResolver) lookupQuote(code, upper string) (models.MarketQuote, bool) {
	if q, ok := r.quotes[code]; ok && q.Price.IsPositive() {
		return q, true
	}
	if q, ok := r.quotes[upper]; ok && q.Price.IsPositive() {
		return q, true
	}
	if mapped, ok := r.tables.SymbolMap[upper]; ok {
		if q, ok := r.quotes[mapped]; ok && q.Price.IsPositive() {
			return q, true
		}
	}
	return models.MarketQuote{}, false
}

// priceInBase applies the cross-rate when the quote is denominated in another currency.
func (r *RateResolver) priceInBase(q models.MarketQuote, depth int, visiting map[string]bool) (decimal.Decimal, bool) {
	currency := normalizeCode(q.Currency)
	if currency == "" || currency == r.tables.BaseCurrency {
		return q.Price, true
	}
	if visiting[currency] {
		return decimal.Zero, false
	}
	cross, ok := r.resolve(currency, depth+1, visiting)
	if !ok {
		return decimal.Zero, false
	}
	return q.Price.Mul(cross), true
}
