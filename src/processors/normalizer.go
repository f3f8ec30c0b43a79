package processors

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/walletpulse/backend/src/models"
)

// NormalizedEntry pairs a ledger entry with its base-currency value.
type NormalizedEntry struct {
	Entry    models.LedgerEntry
	Rate     decimal.Decimal
	Value    decimal.Decimal
	Resolved bool
}

// NormalizedHolding pairs a holding with its base-currency market value and cost basis.
type NormalizedHolding struct {
	Holding   models.AssetHolding
	Rate      decimal.Decimal
	Value     decimal.Decimal
	CostBasis decimal.Decimal
	Resolved  bool
}

type NormalizedDebt struct {
	Debt     models.DebtObligation
	Rate     decimal.Decimal
	Value    decimal.Decimal
	Resolved bool
}

type NormalizedRule struct {
	Rule     models.RecurringRule
	Rate     decimal.Decimal
	Value    decimal.Decimal
	Resolved bool
}

// NormalizedSet is the base-currency view of one account's records.
// Unresolved lists every code that fell through to the neutral multiplier, sorted.
type NormalizedSet struct {
	Entries    []NormalizedEntry
	Holdings   []NormalizedHolding
	Debts      []NormalizedDebt
	Rules      []NormalizedRule
	Unresolved []string
}

// HoldingCode returns the code a holding is priced by: its market symbol when set.
func HoldingCode(h models.AssetHolding) string {
	if s := strings.TrimSpace(h.Symbol); s != "" {
		return s
	}
	return h.InstrumentCode
}

// NativeCodes lists every code the records are denominated in, for building a quote batch.
func NativeCodes(entries []models.LedgerEntry, holdings []models.AssetHolding, debts []models.DebtObligation, rules []models.RecurringRule) []string {
	codes := make([]string, 0, len(entries)+len(holdings)+len(debts)+len(rules))
	for _, e := range entries {
		codes = append(codes, e.InstrumentCode)
	}
	for _, h := range holdings {
		codes = append(codes, HoldingCode(h))
	}
	for _, d := range debts {
		codes = append(codes, d.CurrencyCode)
	}
	for _, r := range rules {
		codes = append(codes, r.InstrumentCode)
	}
	return codes
}

// Normalize converts every record into base currency through the resolver.
// Inputs are copied, never modified. Unknown codes are valued at a rate of 1.
func Normalize(entries []models.LedgerEntry, holdings []models.AssetHolding, debts []models.DebtObligation, rules []models.RecurringRule, resolver *RateResolver) NormalizedSet {
	unresolved := map[string]struct{}{}
	rate := func(code string) (decimal.Decimal, bool) {
		r, ok := resolver.Resolve(code)
		if !ok {
			unresolved[normalizeCode(code)] = struct{}{}
		}
		return r, ok
	}

	set := NormalizedSet{
		Entries:  make([]NormalizedEntry, 0, len(entries)),
		Holdings: make([]NormalizedHolding, 0, len(holdings)),
		Debts:    make([]NormalizedDebt, 0, len(debts)),
		Rules:    make([]NormalizedRule, 0, len(rules)),
	}

	for _, e := range entries {
		r, ok := rate(e.InstrumentCode)
		set.Entries = append(set.Entries, NormalizedEntry{Entry: e, Rate: r, Value: e.Amount.Mul(r), Resolved: ok})
	}
	for _, h := range holdings {
		r, ok := rate(HoldingCode(h))
		set.Holdings = append(set.Holdings, NormalizedHolding{
			Holding:   h,
			Rate:      r,
			Value:     h.Quantity.Mul(r),
			CostBasis: h.Quantity.Mul(h.AverageCost),
			Resolved:  ok,
		})
	}
	for _, d := range debts {
		r, ok := rate(d.CurrencyCode)
		set.Debts = append(set.Debts, NormalizedDebt{Debt: d, Rate: r, Value: d.Amount.Mul(r), Resolved: ok})
	}
	for _, rule := range rules {
		r, ok := rate(rule.InstrumentCode)
		set.Rules = append(set.Rules, NormalizedRule{Rule: rule, Rate: r, Value: rule.Amount.Mul(r), Resolved: ok})
	}

	set.Unresolved = make([]string, 0, len(unresolved))
	for code := range unresolved {
		set.Unresolved = append(set.Unresolved, code)
	}
	sort.Strings(set.Unresolved)
	return set
}
