package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/walletpulse/backend/src/models"
	"github.com/username/walletpulse/backend/src/processors"
)

var reportNow = time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

func seedExampleAccount(t *testing.T, store *SQLStore, accountID int64) {
	t.Helper()
	ctx := context.Background()
	_, err := store.CreateHolding(ctx, models.AssetHolding{
		AccountID: accountID, InstrumentCode: "STK", Symbol: "ACME", Quantity: dec("10"), AverageCost: dec("40"), Category: "stock",
	})
	require.NoError(t, err)
	_, err = store.CreateLedgerEntry(ctx, models.LedgerEntry{
		AccountID: accountID, InstrumentCode: "TRY", CategoryID: ptr(1), Direction: models.DirectionIncome,
		Amount: dec("1000"), Title: "Salary", OccurredAt: time.Date(2026, time.October, 5, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = store.CreateLedgerEntry(ctx, models.LedgerEntry{
		AccountID: accountID, InstrumentCode: "TRY", CategoryID: ptr(10), Direction: models.DirectionExpense,
		Amount: dec("600"), Title: "Market", OccurredAt: time.Date(2026, time.October, 6, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
}

func TestGenerateReportExampleScenario(t *testing.T) {
	store := newTestStore(t)
	seedExampleAccount(t, store, 1)
	provider := newFakeProvider(quote("ACME", "50", "TRY"))
	svc := NewReportService(store, provider, processors.DefaultTables(), ReportOptions{})

	report, err := svc.GenerateReport(context.Background(), 1, reportNow)
	require.NoError(t, err)

	assert.Equal(t, int64(1), report.AccountID)
	assert.Equal(t, "TRY", report.BaseCurrency)
	assert.True(t, dec("500").Equal(report.TotalAssets), report.TotalAssets.String())
	assert.True(t, dec("400").Equal(report.CashBalance))
	assert.True(t, dec("900").Equal(report.NetWorth))
	assert.True(t, dec("100").Equal(report.TotalProfitLoss))
	assert.True(t, dec("25").Equal(report.TotalProfitLossPercent))
	assert.True(t, dec("100").Equal(report.MonthlyBurnRate))
	assert.True(t, dec("40").Equal(report.SavingsRate))
	assert.True(t, dec("4").Equal(report.SurvivalMonths))
	assert.False(t, report.QuotesDegraded)
	assert.Empty(t, report.UnresolvedCodes)

	assert.Equal(t, 100.0, report.Health.Growth)
	assert.Len(t, report.MonthlyTrend, 12)
	assert.Len(t, report.WeeklyRhythm, 7)
	require.Len(t, report.Projection, 13)
	assert.Equal(t, "Now", report.Projection[0].Label)
	require.NotEmpty(t, report.TopCategories)
	assert.Equal(t, "Groceries", report.TopCategories[0].Category)

	require.Len(t, provider.asked, 1, "one quote batch per report")
	assert.Contains(t, provider.asked[0], "ACME")
}

func TestGenerateReportIsolatesAccounts(t *testing.T) {
	store := newTestStore(t)
	seedExampleAccount(t, store, 1)
	svc := NewReportService(store, newFakeProvider(), nil, ReportOptions{})

	report, err := svc.GenerateReport(context.Background(), 2, reportNow)
	require.NoError(t, err)
	assert.True(t, report.NetWorth.IsZero())
	assert.True(t, report.TotalAssets.IsZero())
}

func TestGenerateReportDegradesOnQuoteFailure(t *testing.T) {
	store := newTestStore(t)
	seedExampleAccount(t, store, 1)
	provider := newFakeProvider()
	provider.err = errors.New("timeout")
	svc := NewReportService(store, NewQuoteService(provider, store, time.Minute, time.Second), nil, ReportOptions{})

	report, err := svc.GenerateReport(context.Background(), 1, reportNow)
	require.NoError(t, err)
	assert.True(t, report.QuotesDegraded)
	assert.Equal(t, []string{"ACME"}, report.UnresolvedCodes)
	assert.True(t, dec("10").Equal(report.TotalAssets), "unpriced holding counts at the neutral rate")
}

func TestGenerateReportRequiresAccount(t *testing.T) {
	svc := NewReportService(newTestStore(t), newFakeProvider(), nil, ReportOptions{})

	_, err := svc.GenerateReport(context.Background(), 0, reportNow)
	assert.ErrorIs(t, err, ErrNoAccountContext)
	_, err = svc.Upcoming(context.Background(), -1, reportNow)
	assert.ErrorIs(t, err, ErrNoAccountContext)
}

func TestUpcomingConvertsToBaseCurrency(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	_, err := store.CreateRecurringRule(ctx, models.RecurringRule{
		AccountID: 1, Title: "Netflix", Amount: dec("10"), InstrumentCode: "USD", CategoryID: ptr(16),
		Direction: models.DirectionExpense, Frequency: models.FrequencyMonthly, DayOfMonth: 20, IsActive: true,
	})
	require.NoError(t, err)
	svc := NewReportService(store, newFakeProvider(quote("USDTRY=X", "40", "TRY")), nil, ReportOptions{UpcomingWindowDays: 30})

	upcoming, err := svc.Upcoming(ctx, 1, reportNow)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "Netflix", upcoming[0].Title)
	assert.Equal(t, 2, upcoming[0].DaysLeft)
	assert.True(t, dec("400").Equal(upcoming[0].Amount), upcoming[0].Amount.String())
}

func TestMarketRatesFollowsWatchlist(t *testing.T) {
	provider := newFakeProvider(
		models.MarketQuote{Symbol: "EURTRY=X", Price: dec("48.2"), Currency: "TRY", ChangePercent: dec("-0.4567")},
		quote("USDTRY=X", "41.5", "TRY"),
	)
	svc := NewReportService(newTestStore(t), provider, nil, ReportOptions{})

	rates, err := svc.MarketRates(context.Background())
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, "USDTRY=X", rates[0].Symbol)
	assert.Equal(t, "USD/TRY", rates[0].Name)
	assert.Equal(t, "EUR/TRY", rates[1].Name)
	assert.True(t, dec("-0.46").Equal(rates[1].ChangePercent))
}

func TestMarketRatesFailsWithoutAnyQuote(t *testing.T) {
	provider := newFakeProvider()
	provider.err = errors.New("down")
	svc := NewReportService(newTestStore(t), NewQuoteService(provider, nil, time.Minute, time.Second), nil, ReportOptions{})

	_, err := svc.MarketRates(context.Background())
	assert.ErrorIs(t, err, ErrQuoteBatchFailed)
}

func TestGenerateReportRoundsMoneyToCents(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	_, err := store.CreateRecurringRule(ctx, models.RecurringRule{
		AccountID: 1, Title: "Netflix", Amount: dec("10"), InstrumentCode: "USD", CategoryID: ptr(16),
		Direction: models.DirectionExpense, Frequency: models.FrequencyMonthly, DayOfMonth: 20, IsActive: true,
	})
	require.NoError(t, err)
	_, err = store.CreateLedgerEntry(ctx, models.LedgerEntry{
		AccountID: 1, InstrumentCode: "USD", CategoryID: ptr(10), Direction: models.DirectionExpense,
		Amount: dec("5"), Title: "Market", OccurredAt: time.Date(2026, time.October, 6, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	provider := newFakeProvider(quote("USDTRY=X", "40.123456", "TRY"))
	svc := NewReportService(store, provider, nil, ReportOptions{UpcomingWindowDays: 30})

	report, err := svc.GenerateReport(ctx, 1, reportNow)
	require.NoError(t, err)

	assert.True(t, dec("401.23").Equal(report.ExpenseStructure.FixedCosts), report.ExpenseStructure.FixedCosts.String())
	require.Len(t, report.Upcoming, 1)
	assert.True(t, dec("401.23").Equal(report.Upcoming[0].Amount), report.Upcoming[0].Amount.String())
	require.NotEmpty(t, report.TopCategories)
	assert.True(t, dec("200.62").Equal(report.TopCategories[0].Amount), report.TopCategories[0].Amount.String())

	cents := func(d decimal.Decimal) bool { return d.Equal(d.Round(2)) }
	es := report.ExpenseStructure
	for _, d := range []decimal.Decimal{es.FixedCosts, es.VariableCosts, es.AverageIncome, es.Savings} {
		assert.True(t, cents(d), d.String())
	}
	for _, a := range report.Allocation {
		assert.True(t, cents(a.Value), a.Value.String())
	}
	for _, p := range report.MonthlyTrend {
		assert.True(t, cents(p.Expense), p.Expense.String())
	}
	for _, ct := range report.CategoryTrends {
		for _, amount := range ct.Categories {
			assert.True(t, cents(amount), amount.String())
		}
	}
	for _, d := range report.WeeklyRhythm {
		assert.True(t, cents(d.Amount), d.Amount.String())
	}

	upcoming, err := svc.Upcoming(ctx, 1, reportNow)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.True(t, dec("401.23").Equal(upcoming[0].Amount), upcoming[0].Amount.String())
}
