// backend/src/services/interfaces.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/username/walletpulse/backend/src/models"
)

// Define common service errors
var (
	ErrNoAccountContext = errors.New("no account context")
	ErrQuoteBatchFailed = errors.New("quote batch failed")
	ErrRuleNotFound     = errors.New("recurring rule not found")
	ErrRunInProgress    = errors.New("recurring run already in progress")
)

// ReportStore is the read side of the ledger needed to build a report.
type ReportStore interface {
	ListLedgerEntries(ctx context.Context, accountID int64, since time.Time) ([]models.LedgerEntry, error)
	ListHoldings(ctx context.Context, accountID int64) ([]models.AssetHolding, error)
	ListDebts(ctx context.Context, accountID int64) ([]models.DebtObligation, error)
	ListActiveRecurringRules(ctx context.Context, accountID int64) ([]models.RecurringRule, error)
}

// LedgerStore covers the write endpoints and the recurring rule catalogue.
type LedgerStore interface {
	ReportStore
	CreateLedgerEntry(ctx context.Context, entry models.LedgerEntry) (int64, error)
	ListRecurringRules(ctx context.Context, accountID int64) ([]models.RecurringRule, error)
	CreateRecurringRule(ctx context.Context, rule models.RecurringRule) (int64, error)
	SetRuleActive(ctx context.Context, accountID, ruleID int64, active bool) (bool, error)
}

// MaterializationStore is what the recurring worker needs. MaterializeRule must write the
// entry and the day stamp atomically and report false when the stamp was already present.
type MaterializationStore interface {
	ListAllActiveRecurringRules(ctx context.Context) ([]models.RecurringRule, error)
	MaterializeRule(ctx context.Context, ruleID int64, day string, entry models.LedgerEntry) (bool, error)
}

// QuoteStore persists the last known quote per symbol.
type QuoteStore interface {
	UpsertQuotes(ctx context.Context, quotes []models.MarketQuote) error
	GetLatestQuotes(ctx context.Context, symbols []string) (map[string]models.MarketQuote, error)
}

// QuoteProvider fetches current quotes in one batch. Symbols it cannot price are
// omitted from the result; an error means the whole batch failed.
type QuoteProvider interface {
	GetQuotes(ctx context.Context, symbols []string) (map[string]models.MarketQuote, error)
}
