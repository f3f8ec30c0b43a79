package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/username/walletpulse/backend/src/model"
	"github.com/username/walletpulse/backend/src/models"
)

// SQLStore implements the store interfaces on top of the SQLite database.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) ListLedgerEntries(ctx context.Context, accountID int64, since time.Time) ([]models.LedgerEntry, error) {
	return model.ListLedgerEntries(ctx, s.db, accountID, since)
}

func (s *SQLStore) ListHoldings(ctx context.Context, accountID int64) ([]models.AssetHolding, error) {
	return model.ListHoldings(ctx, s.db, accountID)
}

func (s *SQLStore) ListDebts(ctx context.Context, accountID int64) ([]models.DebtObligation, error) {
	return model.ListDebts(ctx, s.db, accountID)
}

func (s *SQLStore) ListActiveRecurringRules(ctx context.Context, accountID int64) ([]models.RecurringRule, error) {
	return model.ListActiveRecurringRules(ctx, s.db, accountID)
}

func (s *SQLStore) CreateLedgerEntry(ctx context.Context, entry models.LedgerEntry) (int64, error) {
	return model.CreateLedgerEntry(ctx, s.db, entry)
}

func (s *SQLStore) ListRecurringRules(ctx context.Context, accountID int64) ([]models.RecurringRule, error) {
	return model.ListRecurringRules(ctx, s.db, accountID)
}

func (s *SQLStore) CreateRecurringRule(ctx context.Context, rule models.RecurringRule) (int64, error) {
	return model.CreateRecurringRule(ctx, s.db, rule)
}

func (s *SQLStore) SetRuleActive(ctx context.Context, accountID, ruleID int64, active bool) (bool, error) {
	return model.SetRuleActive(ctx, s.db, accountID, ruleID, active)
}

func (s *SQLStore) UpdateRuleLastMaterialized(ctx context.Context, ruleID int64, day string) (bool, error) {
	return model.UpdateRuleLastMaterialized(ctx, s.db, ruleID, day)
}

func (s *SQLStore) ListAllActiveRecurringRules(ctx context.Context) ([]models.RecurringRule, error) {
	return model.ListAllActiveRecurringRules(ctx, s.db)
}

func (s *SQLStore) MaterializeRule(ctx context.Context, ruleID int64, day string, entry models.LedgerEntry) (bool, error) {
	return model.MaterializeRule(ctx, s.db, ruleID, day, entry)
}

func (s *SQLStore) CreateHolding(ctx context.Context, h models.AssetHolding) (int64, error) {
	return model.CreateHolding(ctx, s.db, h)
}

func (s *SQLStore) CreateDebt(ctx context.Context, d models.DebtObligation) (int64, error) {
	return model.CreateDebt(ctx, s.db, d)
}

func (s *SQLStore) UpsertQuotes(ctx context.Context, quotes []models.MarketQuote) error {
	return model.UpsertQuotes(ctx, s.db, quotes)
}

func (s *SQLStore) GetLatestQuotes(ctx context.Context, symbols []string) (map[string]models.MarketQuote, error) {
	return model.GetLatestQuotes(ctx, s.db, symbols)
}
