package processors

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/username/walletpulse/backend/src/models"
)

const (
	runwayTargetMonths     = 6.0
	growthTargetRate       = 20.0
	diversificationPerType = 20.0
	concentrationLimit     = 0.7
	stabilityBaseline      = 75.0
)

// Score derives the five health sub-scores and the identity label from aggregated totals.
func Score(t Totals, tables *Tables) models.HealthScores {
	hs := models.HealthScores{
		Liquidity:       liquidityScore(t),
		Solvency:        solvencyScore(t.TotalAssets, t.TotalDebts),
		Growth:          growthScore(t.SavingsRate),
		Diversification: diversificationScore(t.Allocation, t.TotalAssets),
		Stability:       stabilityScore(t.RecentMonthlyExpenses),
	}
	// The tier is chosen from the unrounded average.
	avg := (hs.Liquidity + hs.Solvency + hs.Growth + hs.Diversification) / 4
	hs.Average = round2(avg)
	hs.Identity = tables.IdentityFor(avg)
	return hs
}

func liquidityScore(t Totals) float64 {
	if t.NoExpenses {
		return 100
	}
	months := t.SurvivalMonths.InexactFloat64()
	return round2(clamp(math.Min(months/runwayTargetMonths, 1)*100))
}

func solvencyScore(assets, debts decimal.Decimal) float64 {
	if !debts.IsPositive() {
		return 100
	}
	if !assets.IsPositive() {
		return 0
	}
	ratio := debts.Div(assets).InexactFloat64()
	if ratio >= 1 {
		return 0
	}
	return round2(clamp((1 - ratio) * 100))
}

func growthScore(savingsRate decimal.Decimal) float64 {
	rate := savingsRate.InexactFloat64()
	switch {
	case rate <= 0:
		return 0
	case rate >= growthTargetRate:
		return 100
	default:
		return round2(rate / growthTargetRate * 100)
	}
}

// diversificationScore ignores synthetic cash/debt rows.
func diversificationScore(allocation []models.AllocationSlice, totalAssets decimal.Decimal) float64 {
	count := 0
	concentrated := false
	limit := decimal.NewFromFloat(concentrationLimit)
	for _, s := range allocation {
		if s.Synthetic {
			continue
		}
		count++
		if totalAssets.IsPositive() && s.Value.Div(totalAssets).GreaterThan(limit) {
			concentrated = true
		}
	}
	score := float64(count) * diversificationPerType
	if concentrated {
		score -= diversificationPerType
	}
	return clamp(score)
}

// stabilityScore is 100 minus the coefficient of variation (in percent) of monthly
// spending across the months that had any. With fewer than two such months there is
// not enough data and the fixed baseline of 75 is returned.
func stabilityScore(monthly []decimal.Decimal) float64 {
	var values []float64
	for _, m := range monthly {
		if m.IsPositive() {
			values = append(values, m.InexactFloat64())
		}
	}
	if len(values) < 2 {
		return stabilityBaseline
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	stddev := math.Sqrt(sq / float64(len(values)))
	return round2(clamp((1 - stddev/mean) * 100))
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
