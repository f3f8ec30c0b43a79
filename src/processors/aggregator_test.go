package processors

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/walletpulse/backend/src/models"
)

var testNow = time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

func aggregate(t *testing.T, quotes map[string]models.MarketQuote, entries []models.LedgerEntry, holdings []models.AssetHolding, debts []models.DebtObligation, rules []models.RecurringRule) Totals {
	t.Helper()
	tables := DefaultTables()
	set := Normalize(entries, holdings, debts, rules, NewRateResolver(tables, quotes))
	return Aggregate(set, DefaultWindow(testNow), tables)
}

func TestAggregateExampleScenario(t *testing.T) {
	holdings := []models.AssetHolding{{Symbol: "ACME", InstrumentCode: "STK", Quantity: dec("10"), AverageCost: dec("40"), Category: "stock"}}
	entries := []models.LedgerEntry{
		entry(models.DirectionIncome, "1000", "TRY", date("2026-10-05")),
		entry(models.DirectionExpense, "600", "TRY", date("2026-10-06")),
	}

	totals := aggregate(t, quoteMap(quote("ACME", "50", "TRY")), entries, holdings, nil, nil)

	assertDecimal(t, "500", totals.TotalAssets)
	assertDecimal(t, "400", totals.TotalCostBasis)
	assertDecimal(t, "100", totals.ProfitLoss)
	assertDecimal(t, "25", totals.ProfitLossPercent)
	assertDecimal(t, "100", totals.MonthlyBurnRate)
	assertDecimal(t, "40", totals.SavingsRate)
	assertDecimal(t, "4", totals.SurvivalMonths)
	assertDecimal(t, "400", totals.CashBalance)
	assertDecimal(t, "900", totals.NetWorth)
	assert.False(t, totals.NoExpenses)

	scores := Score(totals, DefaultTables())
	assert.Equal(t, 100.0, scores.Growth)
}

func TestAggregateNoExpensesUsesSentinel(t *testing.T) {
	holdings := []models.AssetHolding{{InstrumentCode: "TRY", Quantity: dec("1000")}}
	entries := []models.LedgerEntry{entry(models.DirectionIncome, "500", "TRY", date("2026-10-01"))}

	totals := aggregate(t, nil, entries, holdings, nil, nil)

	assert.True(t, totals.NoExpenses)
	assertDecimal(t, "999", totals.SurvivalMonths)
	assertDecimal(t, "1", totals.MonthlyBurnRate)
	assert.Equal(t, 100.0, Score(totals, DefaultTables()).Liquidity)
}

func TestAggregateFlowWindowExcludesOldEntries(t *testing.T) {
	entries := []models.LedgerEntry{
		entry(models.DirectionExpense, "1200", "TRY", date("2026-01-10")),
		entry(models.DirectionExpense, "60", "TRY", date("2026-09-10")),
		entry(models.DirectionIncome, "2000", "TRY", date("2025-01-10")),
	}

	totals := aggregate(t, nil, entries, nil, nil, nil)

	assertDecimal(t, "10", totals.MonthlyBurnRate)
	assertDecimal(t, "740", totals.CashBalance)
	assertDecimal(t, "0", totals.SavingsRate)
}

func TestAggregateZeroCostBasis(t *testing.T) {
	holdings := []models.AssetHolding{{InstrumentCode: "TRY", Quantity: dec("100")}}

	totals := aggregate(t, nil, nil, holdings, nil, nil)

	assertDecimal(t, "100", totals.ProfitLoss)
	assertDecimal(t, "0", totals.ProfitLossPercent)
}

func TestAllocationPercentagesSumToHundred(t *testing.T) {
	holdings := []models.AssetHolding{
		{InstrumentCode: "TRY", Quantity: dec("333.33"), Category: "Döviz"},
		{InstrumentCode: "USD", Quantity: dec("7"), Category: ""},
		{InstrumentCode: "GA", Quantity: dec("0.5"), Category: "altın"},
		{Symbol: "ACME", Quantity: dec("3"), Category: "stock"},
		{InstrumentCode: "BTC", Quantity: dec("0.0001")},
	}

	totals := aggregate(t, quoteMap(quote("ACME", "77.7", "TRY")), nil, holdings, nil, nil)

	sum := decimal.Zero
	buckets := map[string]bool{}
	for _, s := range totals.Allocation {
		sum = sum.Add(s.Percent)
		buckets[s.Bucket] = true
		assert.NotEmpty(t, s.Color)
	}
	assert.InDelta(t, 100.0, sum.InexactFloat64(), 0.1)
	assert.Equal(t, map[string]bool{"cash": true, "commodities": true, "stock": true, "crypto": true}, buckets)
	for i := 1; i < len(totals.Allocation); i++ {
		assert.True(t, totals.Allocation[i-1].Value.GreaterThanOrEqual(totals.Allocation[i].Value))
	}
}

func TestAllocationSyntheticRows(t *testing.T) {
	tables := DefaultTables()
	holdings := []models.AssetHolding{{InstrumentCode: "TRY", Quantity: dec("100"), Category: "cash"}}
	debts := []models.DebtObligation{{Amount: dec("40"), CurrencyCode: "TRY"}}
	entries := []models.LedgerEntry{entry(models.DirectionIncome, "30", "TRY", date("2026-10-01"))}
	set := Normalize(entries, holdings, debts, nil, NewRateResolver(tables, nil))

	w := DefaultWindow(testNow)
	w.IncludeCash = true
	w.IncludeDebt = true
	totals := Aggregate(set, w, tables)

	require.Len(t, totals.Allocation, 3)
	assert.False(t, totals.Allocation[0].Synthetic)
	assertDecimal(t, "100", totals.Allocation[0].Percent)
	assert.Equal(t, "cash_balance", totals.Allocation[1].Bucket)
	assert.True(t, totals.Allocation[1].Synthetic)
	assert.Equal(t, "debt", totals.Allocation[2].Bucket)
	assert.Equal(t, "#ef4444", totals.Allocation[2].Color)
	assert.Equal(t, 0.0, Score(totals, tables).Diversification)
}

func TestTopCategoriesCollapseRemainder(t *testing.T) {
	names := []string{"Rent", "Groceries", "Bills", "Transport", "Health", "Shopping", ""}
	amounts := []string{"700", "600", "500", "400", "300", "200", "100"}
	var entries []models.LedgerEntry
	for i, n := range names {
		e := entry(models.DirectionExpense, amounts[i], "TRY", date("2026-08-01"))
		e.CategoryName = n
		entries = append(entries, e)
	}

	totals := aggregate(t, nil, entries, nil, nil, nil)

	require.Len(t, totals.TopCategories, 6)
	assert.Equal(t, "Rent", totals.TopCategories[0].Category)
	assertDecimal(t, "25", totals.TopCategories[0].Percent)
	last := totals.TopCategories[5]
	assert.Equal(t, "Other", last.Category)
	assertDecimal(t, "300", last.Amount)
}

func TestMonthlyTrendIsChronological(t *testing.T) {
	entries := []models.LedgerEntry{
		entry(models.DirectionExpense, "50", "TRY", date("2025-12-15")),
		entry(models.DirectionIncome, "80", "TRY", date("2026-10-02")),
		entry(models.DirectionExpense, "999", "TRY", date("2025-10-31")),
	}

	totals := aggregate(t, nil, entries, nil, nil, nil)

	require.Len(t, totals.MonthlyTrend, 12)
	assert.Equal(t, "Nov 2025", totals.MonthlyTrend[0].Label)
	assert.Equal(t, "Dec 2025", totals.MonthlyTrend[1].Label)
	assert.Equal(t, "Jan 2026", totals.MonthlyTrend[2].Label)
	assert.Equal(t, "Oct 2026", totals.MonthlyTrend[11].Label)
	assertDecimal(t, "0", totals.MonthlyTrend[0].Expense)
	assertDecimal(t, "50", totals.MonthlyTrend[1].Expense)
	assertDecimal(t, "80", totals.MonthlyTrend[11].Income)

	require.Len(t, totals.CategoryTrends, 12)
	assertDecimal(t, "50", totals.CategoryTrends[1].Categories["Uncategorized"])
	assert.Len(t, totals.RecentMonthlyExpenses, 6)
}

func TestWeeklyRhythm(t *testing.T) {
	entries := []models.LedgerEntry{
		entry(models.DirectionExpense, "10", "TRY", date("2026-10-12")), // Monday
		entry(models.DirectionExpense, "25", "TRY", date("2026-10-11")), // Sunday
		entry(models.DirectionIncome, "99", "TRY", date("2026-10-12")),
	}

	totals := aggregate(t, nil, entries, nil, nil, nil)

	require.Len(t, totals.WeeklyRhythm, 7)
	assert.Equal(t, 1, totals.WeeklyRhythm[0].Day)
	assert.Equal(t, "Monday", totals.WeeklyRhythm[0].Name)
	assertDecimal(t, "10", totals.WeeklyRhythm[0].Amount)
	assert.Equal(t, "Sunday", totals.WeeklyRhythm[6].Name)
	assertDecimal(t, "25", totals.WeeklyRhythm[6].Amount)
	assertDecimal(t, "0", totals.WeeklyRhythm[2].Amount)
}

func TestIncomeSources(t *testing.T) {
	var entries []models.LedgerEntry
	for i, src := range []string{"Bank Account", "", "Cash", "Bank Account", "Rent", "Dividends", "Gifts"} {
		e := entry(models.DirectionIncome, []string{"100", "50", "30", "100", "20", "10", "5"}[i], "TRY", date("2026-09-01"))
		e.SourceName = src
		entries = append(entries, e)
	}

	totals := aggregate(t, nil, entries, nil, nil, nil)

	require.Len(t, totals.IncomeSources, 6)
	assert.Equal(t, "Bank Account", totals.IncomeSources[0].Source)
	assertDecimal(t, "200", totals.IncomeSources[0].Amount)
	assert.Equal(t, "Other", totals.IncomeSources[1].Source)
	assert.Equal(t, "#10b981", totals.IncomeSources[0].Color)
	assert.Equal(t, "#3b82f6", totals.IncomeSources[1].Color)
	assert.Equal(t, "#10b981", totals.IncomeSources[5].Color)

	sum := decimal.Zero
	for _, s := range totals.IncomeSources {
		sum = sum.Add(s.Percent)
	}
	assert.InDelta(t, 100.0, sum.InexactFloat64(), 0.1)
}

func TestExpenseStructure(t *testing.T) {
	rules := []models.RecurringRule{
		{Amount: dec("100"), InstrumentCode: "TRY", Direction: models.DirectionExpense, Frequency: models.FrequencyMonthly, IsActive: true},
		{Amount: dec("120"), InstrumentCode: "TRY", Direction: models.DirectionExpense, Frequency: models.FrequencyWeekly, IsActive: true},
		{Amount: dec("900"), InstrumentCode: "TRY", Direction: models.DirectionExpense, Frequency: models.FrequencyMonthly, IsActive: false},
	}
	entries := []models.LedgerEntry{
		entry(models.DirectionIncome, "12000", "TRY", date("2026-10-01")),
		entry(models.DirectionExpense, "4800", "TRY", date("2026-10-02")),
	}

	totals := aggregate(t, nil, entries, nil, nil, rules)
	es := totals.ExpenseStructure

	assertDecimal(t, "220", es.FixedCosts)
	assertDecimal(t, "580", es.VariableCosts)
	assertDecimal(t, "2000", es.AverageIncome)
	assertDecimal(t, "1200", es.Savings)
	assertDecimal(t, "89", es.Flexibility)
}

func TestExpenseStructureSumsEveryActiveRule(t *testing.T) {
	rules := []models.RecurringRule{
		{Amount: dec("100"), InstrumentCode: "TRY", Direction: models.DirectionExpense, Frequency: models.FrequencyMonthly, IsActive: true},
		{Amount: dec("120"), InstrumentCode: "TRY", Direction: models.DirectionExpense, Frequency: models.FrequencyWeekly, IsActive: true},
		{Amount: dec("5000"), InstrumentCode: "TRY", Direction: models.DirectionIncome, Frequency: models.FrequencyMonthly, IsActive: true},
	}
	entries := []models.LedgerEntry{
		entry(models.DirectionIncome, "12000", "TRY", date("2026-10-01")),
		entry(models.DirectionExpense, "4800", "TRY", date("2026-10-02")),
	}

	totals := aggregate(t, nil, entries, nil, nil, rules)
	es := totals.ExpenseStructure

	assertDecimal(t, "5220", es.FixedCosts)
	assertDecimal(t, "0", es.VariableCosts)
	assertDecimal(t, "1200", es.Savings)
	assertDecimal(t, "0", es.Flexibility)
}

func TestExpenseStructureWithoutIncome(t *testing.T) {
	rules := []models.RecurringRule{
		{Amount: dec("100"), InstrumentCode: "TRY", Direction: models.DirectionExpense, Frequency: models.FrequencyMonthly, IsActive: true},
	}

	totals := aggregate(t, nil, nil, nil, nil, rules)

	assertDecimal(t, "0", totals.ExpenseStructure.Flexibility)
	assertDecimal(t, "0", totals.ExpenseStructure.Savings)
	assertDecimal(t, "0", totals.ExpenseStructure.VariableCosts)
}
