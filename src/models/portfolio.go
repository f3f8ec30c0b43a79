package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetHolding represents a position the account holds.
type AssetHolding struct {
	ID             int64           `json:"id,omitempty"`
	AccountID      int64           `json:"account_id"`
	InstrumentCode string          `json:"instrument_code"`
	Symbol         string          `json:"symbol,omitempty"` // Market symbol, overrides InstrumentCode for pricing when set
	Quantity       decimal.Decimal `json:"quantity"`
	AverageCost    decimal.Decimal `json:"average_cost"` // Per unit, in base currency
	Category       string          `json:"category"`     // Free-form label, e.g. "stock", "gold", "Döviz"
}

// DebtObligation represents a liability of the account.
type DebtObligation struct {
	ID                    int64               `json:"id,omitempty"`
	AccountID             int64               `json:"account_id"`
	Title                 string              `json:"title"`
	Amount                decimal.Decimal     `json:"amount"` // Outstanding, in CurrencyCode units
	CurrencyCode          string              `json:"currency_code"`
	OriginalAmount        decimal.NullDecimal `json:"original_amount"`
	InterestRate          decimal.Decimal     `json:"interest_rate"`
	TotalInstallments     int                 `json:"total_installments"`
	RemainingInstallments int                 `json:"remaining_installments"`
	DueDate               string              `json:"due_date,omitempty"` // YYYY-MM-DD
}

// MarketQuote is a price for one market symbol as supplied by the quote provider.
type MarketQuote struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	FetchedAt     time.Time       `json:"fetched_at"`
}
