package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report is the aggregated view of one account, expressed in the base currency.
// It is built per request and never stored.
type Report struct {
	AccountID    int64     `json:"account_id"`
	BaseCurrency string    `json:"base_currency"`
	GeneratedAt  time.Time `json:"generated_at"`

	TotalAssets            decimal.Decimal `json:"total_assets"`
	TotalDebts             decimal.Decimal `json:"total_debts"`
	CashBalance            decimal.Decimal `json:"cash_balance"`
	NetWorth               decimal.Decimal `json:"net_worth"`
	TotalCostBasis         decimal.Decimal `json:"total_cost_basis"`
	TotalProfitLoss        decimal.Decimal `json:"total_profit_loss"`
	TotalProfitLossPercent decimal.Decimal `json:"total_profit_loss_percent"`

	MonthlyBurnRate decimal.Decimal `json:"monthly_burn_rate"`
	SavingsRate     decimal.Decimal `json:"savings_rate"`    // Percent
	SurvivalMonths  decimal.Decimal `json:"survival_months"` // 999 when there is no spending

	Allocation       []AllocationSlice   `json:"allocation"`
	TopCategories    []CategorySpending  `json:"top_categories"`
	MonthlyTrend     []MonthlyTrendPoint `json:"monthly_trend"`
	CategoryTrends   []CategoryTrend     `json:"category_trends"`
	WeeklyRhythm     []WeekdaySpending   `json:"weekly_rhythm"`
	IncomeSources    []IncomeSource      `json:"income_sources"`
	ExpenseStructure ExpenseStructure    `json:"expense_structure"`

	Health     HealthScores      `json:"health"`
	Projection []ProjectionPoint `json:"projection"`
	Upcoming   []UpcomingPayment `json:"upcoming"`

	UnresolvedCodes []string `json:"unresolved_codes"`
	QuotesDegraded  bool     `json:"quotes_degraded"`
}

type AllocationSlice struct {
	Bucket    string          `json:"bucket"`
	Value     decimal.Decimal `json:"value"`
	Percent   decimal.Decimal `json:"percent"`
	Color     string          `json:"color"`
	Synthetic bool            `json:"synthetic,omitempty"` // Cash/debt rows injected for charts, not part of holdings
}

type CategorySpending struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Percent  decimal.Decimal `json:"percent"`
}

// MonthlyTrendPoint holds the flows of one calendar month. Label is derived from Year/Month.
type MonthlyTrendPoint struct {
	Year    int             `json:"year"`
	Month   time.Month      `json:"month"`
	Label   string          `json:"label"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

type CategoryTrend struct {
	Year       int                        `json:"year"`
	Month      time.Month                 `json:"month"`
	Label      string                     `json:"label"`
	Categories map[string]decimal.Decimal `json:"categories"`
}

// WeekdaySpending is expense per day of week; Day runs from 1 (Monday) to 7 (Sunday).
type WeekdaySpending struct {
	Day    int             `json:"day"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type IncomeSource struct {
	Source  string          `json:"source"`
	Amount  decimal.Decimal `json:"amount"`
	Percent decimal.Decimal `json:"percent"`
	Color   string          `json:"color"`
}

type ExpenseStructure struct {
	FixedCosts    decimal.Decimal `json:"fixed_costs"`
	VariableCosts decimal.Decimal `json:"variable_costs"`
	AverageIncome decimal.Decimal `json:"average_income"`
	Savings       decimal.Decimal `json:"savings"`
	Flexibility   decimal.Decimal `json:"flexibility"` // 0-100
}

// HealthScores are five 0-100 sub-scores plus the identity label derived from four of them.
type HealthScores struct {
	Liquidity       float64 `json:"liquidity"`
	Solvency        float64 `json:"solvency"`
	Growth          float64 `json:"growth"`
	Diversification float64 `json:"diversification"`
	Stability       float64 `json:"stability"`
	Average         float64 `json:"average"`
	Identity        string  `json:"identity"`
}

type ProjectionPoint struct {
	MonthsAhead int             `json:"months_ahead"`
	Label       string          `json:"label"`
	NetWorth    decimal.Decimal `json:"net_worth"`
	Projected   bool            `json:"projected"`
}

// UpcomingPayment is a recurring rule whose next occurrence falls inside the upcoming window.
type UpcomingPayment struct {
	RuleID    int64           `json:"rule_id"`
	Title     string          `json:"title"`
	Category  string          `json:"category,omitempty"`
	Direction Direction       `json:"direction"`
	Amount    decimal.Decimal `json:"amount"` // Base currency
	DueDate   string          `json:"due_date"`
	DaysLeft  int             `json:"days_left"`
}
