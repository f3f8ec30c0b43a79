package processors

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/walletpulse/backend/src/models"
)

// Project extends net worth linearly: a "Now" point followed by one projected point
// per month, each adding monthlySavings. No compounding or variance is modelled.
func Project(netWorth, monthlySavings decimal.Decimal, horizonMonths int, now time.Time) []models.ProjectionPoint {
	if horizonMonths < 0 {
		horizonMonths = 0
	}
	points := make([]models.ProjectionPoint, 0, horizonMonths+1)
	points = append(points, models.ProjectionPoint{Label: "Now", NetWorth: netWorth})

	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	running := netWorth
	for i := 1; i <= horizonMonths; i++ {
		running = running.Add(monthlySavings)
		m := first.AddDate(0, i, 0)
		points = append(points, models.ProjectionPoint{
			MonthsAhead: i,
			Label:       MonthLabel(m.Year(), m.Month()),
			NetWorth:    running,
			Projected:   true,
		})
	}
	return points
}
