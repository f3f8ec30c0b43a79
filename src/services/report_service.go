package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/walletpulse/backend/src/logger"
	"github.com/username/walletpulse/backend/src/models"
	"github.com/username/walletpulse/backend/src/processors"
)

// ReportOptions are the tunables of report generation.
type ReportOptions struct {
	ProjectionHorizonMonths int
	UpcomingWindowDays      int
	IncludeCash             bool
	IncludeDebt             bool
}

// ReportService builds account reports. It holds no per-account state, so one instance
// serves any number of concurrent requests.
type ReportService struct {
	store  ReportStore
	quotes QuoteProvider
	tables *processors.Tables
	opts   ReportOptions
}

func NewReportService(store ReportStore, quotes QuoteProvider, tables *processors.Tables, opts ReportOptions) *ReportService {
	if tables == nil {
		tables = processors.DefaultTables()
	}
	if opts.ProjectionHorizonMonths < 1 {
		opts.ProjectionHorizonMonths = 12
	}
	if opts.UpcomingWindowDays < 0 {
		opts.UpcomingWindowDays = 30
	}
	return &ReportService{store: store, quotes: quotes, tables: tables, opts: opts}
}

type accountData struct {
	entries  []models.LedgerEntry
	holdings []models.AssetHolding
	debts    []models.DebtObligation
	rules    []models.RecurringRule
}

// GenerateReport computes the full report for the account as of now.
// Quote failures degrade the report instead of failing it.
func (s *ReportService) GenerateReport(ctx context.Context, accountID int64, now time.Time) (*models.Report, error) {
	if accountID <= 0 {
		return nil, ErrNoAccountContext
	}
	log := logger.FromContext(ctx)
	now = now.UTC()

	data, err := s.load(ctx, accountID)
	if err != nil {
		return nil, err
	}

	codes := processors.NativeCodes(data.entries, data.holdings, data.debts, data.rules)
	resolver, degraded := s.resolver(ctx, codes)
	set := processors.Normalize(data.entries, data.holdings, data.debts, data.rules, resolver)
	if len(set.Unresolved) > 0 {
		log.Warn("Codes valued at neutral rate", "accountID", accountID, "codes", set.Unresolved)
	}

	window := processors.DefaultWindow(now)
	window.IncludeCash = s.opts.IncludeCash
	window.IncludeDebt = s.opts.IncludeDebt
	totals := processors.Aggregate(set, window, s.tables)

	report := &models.Report{
		AccountID:    accountID,
		BaseCurrency: s.tables.BaseCurrency,
		GeneratedAt:  now,

		TotalAssets:            totals.TotalAssets.Round(2),
		TotalDebts:             totals.TotalDebts.Round(2),
		CashBalance:            totals.CashBalance.Round(2),
		NetWorth:               totals.NetWorth.Round(2),
		TotalCostBasis:         totals.TotalCostBasis.Round(2),
		TotalProfitLoss:        totals.ProfitLoss.Round(2),
		TotalProfitLossPercent: totals.ProfitLossPercent.Round(2),

		MonthlyBurnRate: totals.MonthlyBurnRate.Round(2),
		SavingsRate:     totals.SavingsRate.Round(2),
		SurvivalMonths:  totals.SurvivalMonths.Round(1),

		Allocation:       roundAllocation(totals.Allocation),
		TopCategories:    roundCategories(totals.TopCategories),
		MonthlyTrend:     roundMonthlyTrend(totals.MonthlyTrend),
		CategoryTrends:   roundCategoryTrends(totals.CategoryTrends),
		WeeklyRhythm:     roundWeeklyRhythm(totals.WeeklyRhythm),
		IncomeSources:    roundIncomeSources(totals.IncomeSources),
		ExpenseStructure: roundExpenseStructure(totals.ExpenseStructure),

		Health:     processors.Score(totals, s.tables),
		Projection: processors.Project(totals.NetWorth.Round(2), totals.ExpenseStructure.Savings.Round(2), s.opts.ProjectionHorizonMonths, now),
		Upcoming:   roundUpcoming(processors.Upcoming(set.Rules, now, s.opts.UpcomingWindowDays)),

		UnresolvedCodes: set.Unresolved,
		QuotesDegraded:  degraded,
	}

	log.Info("Report generated", "accountID", accountID, "entries", len(data.entries), "holdings", len(data.holdings),
		"netWorth", report.NetWorth.String(), "degraded", degraded)
	return report, nil
}

// Upcoming lists the account's upcoming recurring payments in base currency.
func (s *ReportService) Upcoming(ctx context.Context, accountID int64, now time.Time) ([]models.UpcomingPayment, error) {
	if accountID <= 0 {
		return nil, ErrNoAccountContext
	}
	rules, err := s.store.ListActiveRecurringRules(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing recurring rules: %w", err)
	}
	resolver, _ := s.resolver(ctx, processors.NativeCodes(nil, nil, nil, rules))
	set := processors.Normalize(nil, nil, nil, rules, resolver)
	return roundUpcoming(processors.Upcoming(set.Rules, now.UTC(), s.opts.UpcomingWindowDays)), nil
}

// MarketRates returns the current quotes of the watchlist, in watchlist order.
// Symbols without a quote are left out.
func (s *ReportService) MarketRates(ctx context.Context) ([]models.MarketQuote, error) {
	symbols := make([]string, 0, len(s.tables.Watchlist))
	for _, w := range s.tables.Watchlist {
		symbols = append(symbols, w.Symbol)
	}
	quotes, err := s.quotes.GetQuotes(ctx, symbols)
	if err != nil && len(quotes) == 0 {
		return nil, err
	}
	if err != nil {
		logger.FromContext(ctx).Warn("Serving partial market rates", "error", err)
	}

	rates := make([]models.MarketQuote, 0, len(quotes))
	for _, w := range s.tables.Watchlist {
		q, ok := quotes[w.Symbol]
		if !ok {
			continue
		}
		q.Name = w.Name
		q.ChangePercent = q.ChangePercent.Round(2)
		rates = append(rates, q)
	}
	return rates, nil
}

func (s *ReportService) load(ctx context.Context, accountID int64) (accountData, error) {
	var d accountData
	var err error
	if d.entries, err = s.store.ListLedgerEntries(ctx, accountID, time.Time{}); err != nil {
		return d, fmt.Errorf("listing ledger entries: %w", err)
	}
	if d.holdings, err = s.store.ListHoldings(ctx, accountID); err != nil {
		return d, fmt.Errorf("listing holdings: %w", err)
	}
	if d.debts, err = s.store.ListDebts(ctx, accountID); err != nil {
		return d, fmt.Errorf("listing debts: %w", err)
	}
	if d.rules, err = s.store.ListActiveRecurringRules(ctx, accountID); err != nil {
		return d, fmt.Errorf("listing recurring rules: %w", err)
	}
	return d, nil
}

// resolver issues the single quote batch for the codes and reports whether it degraded.
func (s *ReportService) resolver(ctx context.Context, codes []string) (*processors.RateResolver, bool) {
	symbols := s.tables.QuoteSymbols(codes)
	quotes, err := s.quotes.GetQuotes(ctx, symbols)
	degraded := false
	if err != nil {
		degraded = true
		if !errors.Is(err, ErrQuoteBatchFailed) {
			logger.FromContext(ctx).Warn("Quote lookup failed", "symbols", len(symbols), "error", err)
		}
	}
	return processors.NewRateResolver(s.tables, quotes), degraded
}

// Money in the report is rounded to cents on the way out; processors keep full precision.
const moneyPlaces = 2

func roundAllocation(in []models.AllocationSlice) []models.AllocationSlice {
	out := make([]models.AllocationSlice, len(in))
	for i, a := range in {
		a.Value = a.Value.Round(moneyPlaces)
		a.Percent = a.Percent.Round(moneyPlaces)
		out[i] = a
	}
	return out
}

func roundCategories(in []models.CategorySpending) []models.CategorySpending {
	out := make([]models.CategorySpending, len(in))
	for i, c := range in {
		c.Amount = c.Amount.Round(moneyPlaces)
		c.Percent = c.Percent.Round(moneyPlaces)
		out[i] = c
	}
	return out
}

func roundMonthlyTrend(in []models.MonthlyTrendPoint) []models.MonthlyTrendPoint {
	out := make([]models.MonthlyTrendPoint, len(in))
	for i, p := range in {
		p.Income = p.Income.Round(moneyPlaces)
		p.Expense = p.Expense.Round(moneyPlaces)
		out[i] = p
	}
	return out
}

func roundCategoryTrends(in []models.CategoryTrend) []models.CategoryTrend {
	out := make([]models.CategoryTrend, len(in))
	for i, ct := range in {
		categories := make(map[string]decimal.Decimal, len(ct.Categories))
		for name, amount := range ct.Categories {
			categories[name] = amount.Round(moneyPlaces)
		}
		ct.Categories = categories
		out[i] = ct
	}
	return out
}

func roundWeeklyRhythm(in []models.WeekdaySpending) []models.WeekdaySpending {
	out := make([]models.WeekdaySpending, len(in))
	for i, d := range in {
		d.Amount = d.Amount.Round(moneyPlaces)
		out[i] = d
	}
	return out
}

func roundIncomeSources(in []models.IncomeSource) []models.IncomeSource {
	out := make([]models.IncomeSource, len(in))
	for i, src := range in {
		src.Amount = src.Amount.Round(moneyPlaces)
		src.Percent = src.Percent.Round(moneyPlaces)
		out[i] = src
	}
	return out
}

func roundExpenseStructure(es models.ExpenseStructure) models.ExpenseStructure {
	es.FixedCosts = es.FixedCosts.Round(moneyPlaces)
	es.VariableCosts = es.VariableCosts.Round(moneyPlaces)
	es.AverageIncome = es.AverageIncome.Round(moneyPlaces)
	es.Savings = es.Savings.Round(moneyPlaces)
	es.Flexibility = es.Flexibility.Round(moneyPlaces)
	return es
}

func roundUpcoming(in []models.UpcomingPayment) []models.UpcomingPayment {
	out := make([]models.UpcomingPayment, len(in))
	for i, u := range in {
		u.Amount = u.Amount.Round(moneyPlaces)
		out[i] = u
	}
	return out
}
