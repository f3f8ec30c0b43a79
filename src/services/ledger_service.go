package services

import (
	"context"
	"fmt"
	"time"

	"github.com/username/walletpulse/backend/src/logger"
	"github.com/username/walletpulse/backend/src/models"
	"github.com/username/walletpulse/backend/src/security/validation"
)

// ManualEntryInput is a ledger entry as submitted by a client.
type ManualEntryInput struct {
	Title          string    `json:"title"`
	Amount         string    `json:"amount"`
	InstrumentCode string    `json:"instrument_code"`
	Direction      string    `json:"direction"`
	CategoryID     *int64    `json:"category_id"`
	SourceID       *int64    `json:"source_id"`
	OccurredAt     time.Time `json:"occurred_at"` // Defaults to now
}

// RecurringRuleInput is a recurring rule as submitted by a client.
type RecurringRuleInput struct {
	Title          string `json:"title"`
	Amount         string `json:"amount"`
	InstrumentCode string `json:"instrument_code"`
	Direction      string `json:"direction"`
	Frequency      string `json:"frequency"`
	DayOfMonth     int    `json:"day_of_month"`
	DayOfWeek      int    `json:"day_of_week"` // 0 = Sunday ... 6 = Saturday
	CategoryID     *int64 `json:"category_id"`
	SourceID       *int64 `json:"source_id"`
}

// LedgerService validates and stores client writes and serves the plain listings.
type LedgerService struct {
	store LedgerStore
}

func NewLedgerService(store LedgerStore) *LedgerService {
	return &LedgerService{store: store}
}

func (s *LedgerService) ListTransactions(ctx context.Context, accountID int64, since time.Time) ([]models.LedgerEntry, error) {
	if accountID <= 0 {
		return nil, ErrNoAccountContext
	}
	entries, err := s.store.ListLedgerEntries(ctx, accountID, since)
	if err != nil {
		return nil, fmt.Errorf("listing ledger entries: %w", err)
	}
	if entries == nil {
		entries = []models.LedgerEntry{}
	}
	return entries, nil
}

// CreateManualEntry validates the input and stores it as a new ledger entry.
func (s *LedgerService) CreateManualEntry(ctx context.Context, accountID int64, in ManualEntryInput, now time.Time) (*models.LedgerEntry, error) {
	if accountID <= 0 {
		return nil, ErrNoAccountContext
	}
	title := validation.CleanTitle(in.Title)
	if err := validation.ValidateTitle(title); err != nil {
		return nil, err
	}
	amount, err := validation.ValidateAmount(in.Amount, "amount")
	if err != nil {
		return nil, err
	}
	code, err := validation.NormalizeInstrumentCode(in.InstrumentCode)
	if err != nil {
		return nil, err
	}
	direction := models.Direction(in.Direction)
	if !direction.Valid() {
		return nil, fmt.Errorf("%w: direction must be INCOME or EXPENSE", validation.ErrValidationFailed)
	}
	if err := validation.ValidateOptionalID(in.CategoryID, "category_id"); err != nil {
		return nil, err
	}
	if err := validation.ValidateOptionalID(in.SourceID, "source_id"); err != nil {
		return nil, err
	}
	occurredAt := in.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = now
	}

	entry := models.LedgerEntry{
		AccountID:      accountID,
		InstrumentCode: code,
		CategoryID:     in.CategoryID,
		SourceID:       in.SourceID,
		Direction:      direction,
		Amount:         amount,
		Title:          title,
		OccurredAt:     occurredAt.UTC().Truncate(time.Second),
	}
	id, err := s.store.CreateLedgerEntry(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("creating ledger entry: %w", err)
	}
	entry.ID = id
	logger.FromContext(ctx).Info("Manual ledger entry created", "entryID", id, "direction", direction)
	return &entry, nil
}

func (s *LedgerService) ListRules(ctx context.Context, accountID int64) ([]models.RecurringRule, error) {
	if accountID <= 0 {
		return nil, ErrNoAccountContext
	}
	rules, err := s.store.ListRecurringRules(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing recurring rules: %w", err)
	}
	if rules == nil {
		rules = []models.RecurringRule{}
	}
	return rules, nil
}

// CreateRule validates and stores a new active recurring rule.
func (s *LedgerService) CreateRule(ctx context.Context, accountID int64, in RecurringRuleInput) (*models.RecurringRule, error) {
	if accountID <= 0 {
		return nil, ErrNoAccountContext
	}
	title := validation.CleanTitle(in.Title)
	if err := validation.ValidateTitle(title); err != nil {
		return nil, err
	}
	amount, err := validation.ValidateAmount(in.Amount, "amount")
	if err != nil {
		return nil, err
	}
	code, err := validation.NormalizeInstrumentCode(in.InstrumentCode)
	if err != nil {
		return nil, err
	}
	direction := models.Direction(in.Direction)
	if !direction.Valid() {
		return nil, fmt.Errorf("%w: direction must be INCOME or EXPENSE", validation.ErrValidationFailed)
	}
	frequency := models.Frequency(in.Frequency)
	if !frequency.Valid() {
		return nil, fmt.Errorf("%w: frequency must be MONTHLY or WEEKLY", validation.ErrValidationFailed)
	}

	rule := models.RecurringRule{
		AccountID:      accountID,
		Title:          title,
		Amount:         amount,
		CategoryID:     in.CategoryID,
		SourceID:       in.SourceID,
		InstrumentCode: code,
		Direction:      direction,
		Frequency:      frequency,
		DayOfMonth:     1,
		IsActive:       true,
	}
	switch frequency {
	case models.FrequencyMonthly:
		if err := validation.ValidateIntRange(in.DayOfMonth, "day_of_month", 1, 31); err != nil {
			return nil, err
		}
		rule.DayOfMonth = in.DayOfMonth
	case models.FrequencyWeekly:
		if err := validation.ValidateIntRange(in.DayOfWeek, "day_of_week", 0, 6); err != nil {
			return nil, err
		}
		rule.DayOfWeek = time.Weekday(in.DayOfWeek)
	}
	if err := validation.ValidateOptionalID(in.CategoryID, "category_id"); err != nil {
		return nil, err
	}
	if err := validation.ValidateOptionalID(in.SourceID, "source_id"); err != nil {
		return nil, err
	}

	id, err := s.store.CreateRecurringRule(ctx, rule)
	if err != nil {
		return nil, fmt.Errorf("creating recurring rule: %w", err)
	}
	rule.ID = id
	logger.FromContext(ctx).Info("Recurring rule created", "ruleID", id, "frequency", frequency)
	return &rule, nil
}

// SetRuleActive toggles a rule between active and inactive.
func (s *LedgerService) SetRuleActive(ctx context.Context, accountID, ruleID int64, active bool) error {
	if accountID <= 0 {
		return ErrNoAccountContext
	}
	found, err := s.store.SetRuleActive(ctx, accountID, ruleID, active)
	if err != nil {
		return fmt.Errorf("updating recurring rule: %w", err)
	}
	if !found {
		return ErrRuleNotFound
	}
	logger.FromContext(ctx).Info("Recurring rule toggled", "ruleID", ruleID, "active", active)
	return nil
}
