package processors

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// IdentityTier names the financial identity for an average score strictly above MinScore.
type IdentityTier struct {
	MinScore float64 `json:"min_score"`
	Name     string  `json:"name"`
}

// WatchItem is a market symbol shown on the rates board with its display name.
type WatchItem struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Tables holds every lookup table the report engine consults. The built-in
// version comes from DefaultTables; deployments can overlay it with LoadTables.
type Tables struct {
	Version      string `json:"version"`
	BaseCurrency string `json:"base_currency"`

	// SymbolMap maps a bare currency/commodity code to the market symbol quoting it in some currency.
	SymbolMap map[string]string `json:"symbol_map"`
	// CrossAnchors are always requested in a quote batch so cross-rates can be chained through them.
	CrossAnchors []string `json:"cross_anchors"`
	// FallbackRates are approximate base-currency rates used when no quote is available.
	FallbackRates map[string]decimal.Decimal `json:"fallback_rates"`

	// CodeBuckets classifies an instrument code into an allocation bucket.
	CodeBuckets map[string]string `json:"code_buckets"`
	// LegacyLabels are holding category labels too vague to chart; such holdings are reclassified by code.
	LegacyLabels []string          `json:"legacy_labels"`
	BucketColors map[string]string `json:"bucket_colors"`
	DefaultColor string            `json:"default_color"`

	IncomePalette []string `json:"income_palette"`

	IdentityTiers []IdentityTier `json:"identity_tiers"`
	LowestTier    string         `json:"lowest_tier"`

	Watchlist []WatchItem `json:"watchlist"`
}

// DefaultTables returns a fresh copy of the built-in lookup tables.
func DefaultTables() *Tables {
	return &Tables{
		Version:      "2026.1",
		BaseCurrency: "TRY",
		SymbolMap: map[string]string{
			"USD":    "USDTRY=X",
			"EUR":    "EURTRY=X",
			"GBP":    "GBPTRY=X",
			"GA":     "XAUTRY=X",
			"XAU":    "XAUTRY=X",
			"XAUTRY": "XAUTRY=X",
			"XAG":    "XAGTRY=X",
			"BTC":    "BTC-USD",
			"ETH":    "ETH-USD",
		},
		CrossAnchors: []string{"USD", "EUR"},
		FallbackRates: map[string]decimal.Decimal{
			"USD":    decimal.NewFromInt(34),
			"EUR":    decimal.NewFromInt(36),
			"XAUTRY": decimal.NewFromInt(2800),
			"GA":     decimal.NewFromInt(2800),
			"XAU":    decimal.NewFromInt(2800),
			"BTC":    decimal.NewFromInt(3000000),
		},
		CodeBuckets: map[string]string{
			"TRY":    "cash",
			"USD":    "cash",
			"EUR":    "cash",
			"GBP":    "cash",
			"XAU":    "commodities",
			"XAUTRY": "commodities",
			"GA":     "commodities",
			"XAG":    "commodities",
			"EMT":    "commodities",
			"BTC":    "crypto",
			"ETH":    "crypto",
			"STK":    "stock",
			"FON":    "fund",
			"BOND":   "bond",
		},
		LegacyLabels: []string{"other", "diğer", "döviz", "altın", "currency", "asset"},
		BucketColors: map[string]string{
			"stock":       "#3b82f6",
			"crypto":      "#f59e0b",
			"gold":        "#eab308",
			"commodities": "#eab308",
			"cash":        "#22c55e",
			"forex":       "#10b981",
			"debt":        "#ef4444",
		},
		DefaultColor:  "#6b7280",
		IncomePalette: []string{"#10b981", "#3b82f6", "#f59e0b", "#8b5cf6", "#ec4899"},
		IdentityTiers: []IdentityTier{
			{MinScore: 85, Name: "Financial Emperor"},
			{MinScore: 70, Name: "Strategist"},
			{MinScore: 50, Name: "Builder"},
			{MinScore: 30, Name: "Recoverer"},
		},
		LowestTier: "Apprentice",
		Watchlist: []WatchItem{
			{Symbol: "USDTRY=X", Name: "USD/TRY"},
			{Symbol: "EURTRY=X", Name: "EUR/TRY"},
			{Symbol: "GBPTRY=X", Name: "GBP/TRY"},
			{Symbol: "XAUTRY=X", Name: "Gram Gold (TRY)"},
			{Symbol: "XU100.IS", Name: "BIST 100"},
			{Symbol: "EURUSD=X", Name: "EUR/USD"},
			{Symbol: "BTC-USD", Name: "Bitcoin (BTC/USD)"},
			{Symbol: "ETH-USD", Name: "Ethereum (ETH/USD)"},
			{Symbol: "^GSPC", Name: "S&P 500"},
			{Symbol: "GC=F", Name: "Gold Futures"},
		},
	}
}

// LoadTables overlays the JSON file at path on top of DefaultTables.
// Map entries in the file are merged into the defaults; lists replace them.
// An empty path returns the defaults.
func LoadTables(path string) (*Tables, error) {
	t := DefaultTables()
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lookup tables %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, t); err != nil {
		return nil, fmt.Errorf("parsing lookup tables %s: %w", path, err)
	}
	t.canonicalize()
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("lookup tables %s: %w", path, err)
	}
	return t, nil
}

// canonicalize upper-cases code keys so lookups are case-insensitive.
func (t *Tables) canonicalize() {
	t.BaseCurrency = normalizeCode(t.BaseCurrency)
	t.SymbolMap = upperKeys(t.SymbolMap)
	t.CodeBuckets = upperKeys(t.CodeBuckets)
	rates := make(map[string]decimal.Decimal, len(t.FallbackRates))
	for k, v := range t.FallbackRates {
		rates[normalizeCode(k)] = v
	}
	t.FallbackRates = rates
	sort.SliceStable(t.IdentityTiers, func(i, j int) bool {
		return t.IdentityTiers[i].MinScore > t.IdentityTiers[j].MinScore
	})
}

// Validate checks that the tables can drive a report.
func (t *Tables) Validate() error {
	var errs []error
	if strings.TrimSpace(t.Version) == "" {
		errs = append(errs, errors.New("version is required"))
	}
	if t.BaseCurrency == "" {
		errs = append(errs, errors.New("base_currency is required"))
	}
	for code, rate := range t.FallbackRates {
		if !rate.IsPositive() {
			errs = append(errs, fmt.Errorf("fallback rate for %s must be positive", code))
		}
	}
	if len(t.IncomePalette) == 0 {
		errs = append(errs, errors.New("income_palette must not be empty"))
	}
	if t.LowestTier == "" {
		errs = append(errs, errors.New("lowest_tier is required"))
	}
	for i := 1; i < len(t.IdentityTiers); i++ {
		if t.IdentityTiers[i].MinScore >= t.IdentityTiers[i-1].MinScore {
			errs = append(errs, errors.New("identity_tiers must have distinct thresholds"))
			break
		}
	}
	return errors.Join(errs...)
}

// QuoteSymbols turns the native codes a report needs into the deduplicated,
// sorted list of market symbols to request in a single batch.
func (t *Tables) QuoteSymbols(codes []string) []string {
	seen := make(map[string]struct{})
	add := func(code string) {
		code = strings.TrimSpace(code)
		upper := normalizeCode(code)
		if upper == "" || upper == t.BaseCurrency {
			return
		}
		if mapped, ok := t.SymbolMap[upper]; ok {
			seen[mapped] = struct{}{}
			return
		}
		seen[code] = struct{}{}
	}
	for _, code := range codes {
		add(code)
	}
	for _, anchor := range t.CrossAnchors {
		add(anchor)
	}

	symbols := make([]string, 0, len(seen))
	for s := range seen {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// BucketFor returns the allocation bucket of a holding given its label and native code.
func (t *Tables) BucketFor(label, code string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	if label != "" && !t.isLegacyLabel(label) {
		return label
	}
	if bucket, ok := t.CodeBuckets[normalizeCode(code)]; ok {
		return bucket
	}
	return "other"
}

func (t *Tables) isLegacyLabel(label string) bool {
	for _, l := range t.LegacyLabels {
		if strings.EqualFold(l, label) {
			return true
		}
	}
	return false
}

func (t *Tables) ColorFor(bucket string) string {
	if c, ok := t.BucketColors[strings.ToLower(bucket)]; ok {
		return c
	}
	return t.DefaultColor
}

// IdentityFor maps an average health score onto the identity tiers.
func (t *Tables) IdentityFor(avg float64) string {
	for _, tier := range t.IdentityTiers {
		if avg > tier.MinScore {
			return tier.Name
		}
	}
	return t.LowestTier
}

// WatchName returns the display name of a watchlist symbol, or the symbol itself.
func (t *Tables) WatchName(symbol string) string {
	for _, w := range t.Watchlist {
		if w.Symbol == symbol {
			return w.Name
		}
	}
	return symbol
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func upperKeys(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[normalizeCode(k)] = v
	}
	return out
}
