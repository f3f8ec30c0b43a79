package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the flow direction of a ledger entry or recurring rule.
type Direction string

const (
	DirectionIncome  Direction = "INCOME"
	DirectionExpense Direction = "EXPENSE"
)

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	return d == DirectionIncome || d == DirectionExpense
}

// Frequency is how often a recurring rule fires.
type Frequency string

const (
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyWeekly  Frequency = "WEEKLY"
)

func (f Frequency) Valid() bool {
	return f == FrequencyMonthly || f == FrequencyWeekly
}

// DateLayout is the calendar-day format used for rule stamps and due dates.
const DateLayout = "2006-01-02"

// LedgerEntry is a single income or expense record of an account.
type LedgerEntry struct {
	ID              int64           `json:"id,omitempty"`
	AccountID       int64           `json:"account_id"`
	InstrumentCode  string          `json:"instrument_code"` // Currency or instrument the amount is expressed in
	CategoryID      *int64          `json:"category_id,omitempty"`
	CategoryName    string          `json:"category,omitempty"` // Resolved from the category catalogue on read
	SourceID        *int64          `json:"source_id,omitempty"`
	SourceName      string          `json:"source,omitempty"`
	Direction       Direction       `json:"direction"`
	Amount          decimal.Decimal `json:"amount"` // Non-negative, in InstrumentCode units
	Title           string          `json:"title"`
	OccurredAt      time.Time       `json:"occurred_at"` // UTC
	RecurringRuleID *int64          `json:"recurring_rule_id,omitempty"`
}

// RecurringRule describes an obligation or income that repeats monthly or weekly.
type RecurringRule struct {
	ID             int64           `json:"id,omitempty"`
	AccountID      int64           `json:"account_id"`
	Title          string          `json:"title"`
	Amount         decimal.Decimal `json:"amount"`
	CategoryID     *int64          `json:"category_id,omitempty"`
	CategoryName   string          `json:"category,omitempty"`
	SourceID       *int64          `json:"source_id,omitempty"`
	InstrumentCode string          `json:"instrument_code"`
	Direction      Direction       `json:"direction"`
	Frequency      Frequency       `json:"frequency"`
	DayOfMonth     int             `json:"day_of_month"` // 1-31, used by monthly rules
	DayOfWeek      time.Weekday    `json:"day_of_week"`  // Used by weekly rules
	IsActive       bool            `json:"is_active"`
	// LastMaterialized is the YYYY-MM-DD day the rule last produced an entry, empty if never.
	LastMaterialized string `json:"last_materialized,omitempty"`
}
