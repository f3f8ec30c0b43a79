package processors

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/walletpulse/backend/src/models"
)

const (
	// InfiniteRunway is reported as survival months when there is no spending.
	InfiniteRunway = 999

	topCategoryCount  = 5
	liquidAssetsShare = "0.8"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Window controls the trailing periods used by Aggregate.
type Window struct {
	Now         time.Time
	FlowMonths  int // burn rate, savings rate, average income
	TrendMonths int // monthly trend, top categories, weekly rhythm, income sources

	IncludeCash bool // add the cash balance as a synthetic allocation row
	IncludeDebt bool // add total debts as a synthetic allocation row
}

// DefaultWindow is the 6 month flow / 12 month trend window ending at now.
func DefaultWindow(now time.Time) Window {
	return Window{Now: now, FlowMonths: 6, TrendMonths: 12}
}

// Totals is everything derived from a normalized set that the scorer, projector and report need.
type Totals struct {
	TotalAssets       decimal.Decimal
	TotalDebts        decimal.Decimal
	CashBalance       decimal.Decimal
	NetWorth          decimal.Decimal
	TotalCostBasis    decimal.Decimal
	ProfitLoss        decimal.Decimal
	ProfitLossPercent decimal.Decimal

	FlowIncome  decimal.Decimal
	FlowExpense decimal.Decimal

	MonthlyBurnRate decimal.Decimal
	SavingsRate     decimal.Decimal
	SurvivalMonths  decimal.Decimal
	NoExpenses      bool

	Allocation       []models.AllocationSlice
	TopCategories    []models.CategorySpending
	MonthlyTrend     []models.MonthlyTrendPoint
	CategoryTrends   []models.CategoryTrend
	WeeklyRhythm     []models.WeekdaySpending
	IncomeSources    []models.IncomeSource
	ExpenseStructure models.ExpenseStructure

	// RecentMonthlyExpenses is expense per calendar month for the last FlowMonths months, oldest first.
	RecentMonthlyExpenses []decimal.Decimal
}

// Aggregate computes totals, groupings and flow metrics from normalized data.
func Aggregate(set NormalizedSet, w Window, tables *Tables) Totals {
	if w.FlowMonths < 1 {
		w.FlowMonths = 6
	}
	if w.TrendMonths < w.FlowMonths {
		w.TrendMonths = w.FlowMonths
	}

	var t Totals
	for _, h := range set.Holdings {
		t.TotalAssets = t.TotalAssets.Add(h.Value)
		t.TotalCostBasis = t.TotalCostBasis.Add(h.CostBasis)
	}
	for _, d := range set.Debts {
		t.TotalDebts = t.TotalDebts.Add(d.Value)
	}

	flowStart := w.Now.AddDate(0, -w.FlowMonths, 0)
	var income, expense decimal.Decimal
	for _, e := range set.Entries {
		inFlow := !e.Entry.OccurredAt.Before(flowStart)
		switch e.Entry.Direction {
		case models.DirectionIncome:
			income = income.Add(e.Value)
			if inFlow {
				t.FlowIncome = t.FlowIncome.Add(e.Value)
			}
		case models.DirectionExpense:
			expense = expense.Add(e.Value)
			if inFlow {
				t.FlowExpense = t.FlowExpense.Add(e.Value)
			}
		}
	}
	t.CashBalance = income.Sub(expense)
	t.NetWorth = t.TotalAssets.Sub(t.TotalDebts).Add(t.CashBalance)

	t.ProfitLoss = t.TotalAssets.Sub(t.TotalCostBasis)
	t.ProfitLossPercent = percentOf(t.ProfitLoss, t.TotalCostBasis)

	flowMonths := decimal.NewFromInt(int64(w.FlowMonths))
	t.MonthlyBurnRate = decimal.Max(t.FlowExpense.Div(flowMonths), one)
	t.NoExpenses = !t.FlowExpense.IsPositive()
	t.SavingsRate = percentOf(t.FlowIncome.Sub(t.FlowExpense), t.FlowIncome)
	if t.NoExpenses {
		t.SurvivalMonths = decimal.NewFromInt(InfiniteRunway)
	} else {
		t.SurvivalMonths = t.TotalAssets.Mul(decimal.RequireFromString(liquidAssetsShare)).Div(t.MonthlyBurnRate)
	}

	t.Allocation = allocation(set.Holdings, t, w, tables)

	months := monthRange(w.Now, w.TrendMonths)
	trendStart := months[0]
	var windowEntries []NormalizedEntry
	for _, e := range set.Entries {
		if !e.Entry.OccurredAt.In(w.Now.Location()).Before(trendStart) {
			windowEntries = append(windowEntries, e)
		}
	}

	t.MonthlyTrend, t.CategoryTrends = monthlySeries(windowEntries, months, w.Now.Location())
	t.TopCategories = topCategories(windowEntries)
	t.WeeklyRhythm = weeklyRhythm(windowEntries, w.Now.Location())
	t.IncomeSources = incomeSources(windowEntries, tables)

	for _, p := range t.MonthlyTrend[len(t.MonthlyTrend)-w.FlowMonths:] {
		t.RecentMonthlyExpenses = append(t.RecentMonthlyExpenses, p.Expense)
	}

	t.ExpenseStructure = expenseStructure(set.Rules, t, flowMonths)
	return t
}

// percentOf returns part/whole*100, or 0 when whole is not positive.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

func allocation(holdings []NormalizedHolding, t Totals, w Window, tables *Tables) []models.AllocationSlice {
	byBucket := map[string]decimal.Decimal{}
	for _, h := range holdings {
		bucket := tables.BucketFor(h.Holding.Category, h.Holding.InstrumentCode)
		byBucket[bucket] = byBucket[bucket].Add(h.Value)
	}

	slices := make([]models.AllocationSlice, 0, len(byBucket)+2)
	for bucket, value := range byBucket {
		slices = append(slices, models.AllocationSlice{
			Bucket:  bucket,
			Value:   value,
			Percent: percentOf(value, t.TotalAssets).Round(2),
			Color:   tables.ColorFor(bucket),
		})
	}
	sort.Slice(slices, func(i, j int) bool {
		if c := slices[i].Value.Cmp(slices[j].Value); c != 0 {
			return c > 0
		}
		return slices[i].Bucket < slices[j].Bucket
	})

	if w.IncludeCash && t.CashBalance.IsPositive() {
		slices = append(slices, models.AllocationSlice{
			Bucket: "cash_balance", Value: t.CashBalance, Percent: decimal.Zero,
			Color: tables.ColorFor("cash"), Synthetic: true,
		})
	}
	if w.IncludeDebt && t.TotalDebts.IsPositive() {
		slices = append(slices, models.AllocationSlice{
			Bucket: "debt", Value: t.TotalDebts, Percent: decimal.Zero,
			Color: tables.ColorFor("debt"), Synthetic: true,
		})
	}
	return slices
}

// monthRange returns the first instant of each of the n calendar months ending with now's month.
func monthRange(now time.Time, n int) []time.Time {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	months := make([]time.Time, n)
	for i := 0; i < n; i++ {
		months[i] = first.AddDate(0, i-(n-1), 0)
	}
	return months
}

// MonthLabel renders a calendar month as "Jan 2026".
func MonthLabel(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", month.String()[:3], year)
}

func monthlySeries(entries []NormalizedEntry, months []time.Time, loc *time.Location) ([]models.MonthlyTrendPoint, []models.CategoryTrend) {
	type ym struct {
		year  int
		month time.Month
	}
	index := make(map[ym]int, len(months))
	trend := make([]models.MonthlyTrendPoint, len(months))
	cats := make([]models.CategoryTrend, len(months))
	for i, m := range months {
		index[ym{m.Year(), m.Month()}] = i
		label := MonthLabel(m.Year(), m.Month())
		trend[i] = models.MonthlyTrendPoint{Year: m.Year(), Month: m.Month(), Label: label}
		cats[i] = models.CategoryTrend{Year: m.Year(), Month: m.Month(), Label: label, Categories: map[string]decimal.Decimal{}}
	}

	for _, e := range entries {
		at := e.Entry.OccurredAt.In(loc)
		i, ok := index[ym{at.Year(), at.Month()}]
		if !ok {
			continue
		}
		switch e.Entry.Direction {
		case models.DirectionIncome:
			trend[i].Income = trend[i].Income.Add(e.Value)
		case models.DirectionExpense:
			trend[i].Expense = trend[i].Expense.Add(e.Value)
			name := categoryName(e.Entry)
			cats[i].Categories[name] = cats[i].Categories[name].Add(e.Value)
		}
	}
	return trend, cats
}

func categoryName(e models.LedgerEntry) string {
	if e.CategoryName != "" {
		return e.CategoryName
	}
	return "Uncategorized"
}

func topCategories(entries []NormalizedEntry) []models.CategorySpending {
	byCategory := map[string]decimal.Decimal{}
	total := decimal.Zero
	for _, e := range entries {
		if e.Entry.Direction != models.DirectionExpense {
			continue
		}
		name := categoryName(e.Entry)
		byCategory[name] = byCategory[name].Add(e.Value)
		total = total.Add(e.Value)
	}

	ranked := make([]models.CategorySpending, 0, len(byCategory))
	for name, amount := range byCategory {
		ranked = append(ranked, models.CategorySpending{Category: name, Amount: amount})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if c := ranked[i].Amount.Cmp(ranked[j].Amount); c != 0 {
			return c > 0
		}
		return ranked[i].Category < ranked[j].Category
	})

	if len(ranked) > topCategoryCount {
		rest := decimal.Zero
		for _, c := range ranked[topCategoryCount:] {
			rest = rest.Add(c.Amount)
		}
		ranked = append(ranked[:topCategoryCount], models.CategorySpending{Category: "Other", Amount: rest})
	}
	for i := range ranked {
		ranked[i].Percent = percentOf(ranked[i].Amount, total).Round(2)
	}
	return ranked
}

func weeklyRhythm(entries []NormalizedEntry, loc *time.Location) []models.WeekdaySpending {
	days := make([]models.WeekdaySpending, 7)
	for i := range days {
		wd := time.Weekday((i + 1) % 7)
		days[i] = models.WeekdaySpending{Day: i + 1, Name: wd.String()}
	}
	for _, e := range entries {
		if e.Entry.Direction != models.DirectionExpense {
			continue
		}
		idx := IsoWeekday(e.Entry.OccurredAt.In(loc).Weekday()) - 1
		days[idx].Amount = days[idx].Amount.Add(e.Value)
	}
	return days
}

// IsoWeekday numbers days from 1 (Monday) to 7 (Sunday).
func IsoWeekday(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}

func incomeSources(entries []NormalizedEntry, tables *Tables) []models.IncomeSource {
	bySource := map[string]decimal.Decimal{}
	total := decimal.Zero
	for _, e := range entries {
		if e.Entry.Direction != models.DirectionIncome {
			continue
		}
		name := e.Entry.SourceName
		if name == "" {
			name = "Other"
		}
		bySource[name] = bySource[name].Add(e.Value)
		total = total.Add(e.Value)
	}

	sources := make([]models.IncomeSource, 0, len(bySource))
	for name, amount := range bySource {
		sources = append(sources, models.IncomeSource{Source: name, Amount: amount, Percent: percentOf(amount, total).Round(2)})
	}
	sort.Slice(sources, func(i, j int) bool {
		if c := sources[i].Amount.Cmp(sources[j].Amount); c != 0 {
			return c > 0
		}
		return sources[i].Source < sources[j].Source
	})
	for i := range sources {
		sources[i].Color = tables.IncomePalette[i%len(tables.IncomePalette)]
	}
	return sources
}

// expenseStructure takes the fixed cost as the plain sum of every active rule's
// base-currency amount, whatever its direction or frequency.
func expenseStructure(rules []NormalizedRule, t Totals, flowMonths decimal.Decimal) models.ExpenseStructure {
	fixed := decimal.Zero
	for _, r := range rules {
		if r.Rule.IsActive {
			fixed = fixed.Add(r.Value)
		}
	}
	avgIncome := t.FlowIncome.Div(flowMonths)

	es := models.ExpenseStructure{
		FixedCosts:    fixed,
		VariableCosts: decimal.Max(t.MonthlyBurnRate.Sub(fixed), decimal.Zero),
		AverageIncome: avgIncome,
		Savings:       decimal.Max(avgIncome.Sub(t.MonthlyBurnRate), decimal.Zero),
		Flexibility:   decimal.Zero,
	}
	if avgIncome.IsPositive() {
		locked := decimal.Min(decimal.Max(fixed.Div(avgIncome), decimal.Zero), one)
		es.Flexibility = one.Sub(locked).Mul(hundred).Round(2)
	}
	return es
}
