package processors

import (
	"sort"
	"time"

	"github.com/username/walletpulse/backend/src/models"
)

// AutoTitleSuffix marks ledger entries produced from recurring rules.
const AutoTitleSuffix = " (auto)"

// Materialization is one due occurrence: the entry to create and the rule stamped for today.
type Materialization struct {
	Rule  models.RecurringRule
	Entry models.LedgerEntry
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayKey formats the calendar day of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format(models.DateLayout)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// anchorDay clamps a monthly anchor into the given month, so 31 fires on the last day of short months.
func anchorDay(anchor, year int, month time.Month, loc *time.Location) int {
	if anchor < 1 {
		anchor = 1
	}
	if last := daysIn(year, month, loc); anchor > last {
		return last
	}
	return anchor
}

// IsDue reports whether the rule's schedule falls on the calendar day of day.
// The active flag and the last-materialized stamp are not considered.
func IsDue(rule models.RecurringRule, day time.Time) bool {
	switch rule.Frequency {
	case models.FrequencyWeekly:
		return day.Weekday() == rule.DayOfWeek
	case models.FrequencyMonthly:
		return day.Day() == anchorDay(rule.DayOfMonth, day.Year(), day.Month(), day.Location())
	default:
		return false
	}
}

// NextDueDate returns the first day on or after from's calendar day on which the rule is due.
func NextDueDate(rule models.RecurringRule, from time.Time) time.Time {
	today := Day(from)
	switch rule.Frequency {
	case models.FrequencyWeekly:
		ahead := (int(rule.DayOfWeek) - int(today.Weekday()) + 7) % 7
		return today.AddDate(0, 0, ahead)
	default:
		loc := today.Location()
		candidate := time.Date(today.Year(), today.Month(), anchorDay(rule.DayOfMonth, today.Year(), today.Month(), loc), 0, 0, 0, 0, loc)
		if candidate.Before(today) {
			next := time.Date(today.Year(), today.Month()+1, 1, 0, 0, 0, 0, loc)
			candidate = time.Date(next.Year(), next.Month(), anchorDay(rule.DayOfMonth, next.Year(), next.Month(), loc), 0, 0, 0, 0, loc)
		}
		return candidate
	}
}

// MaterializeDue returns one new ledger entry for every active rule due on today's
// calendar day that has not already been stamped with that day. The returned rules
// carry the new stamp; the inputs are left untouched. Persisting entry and stamp
// together is the caller's job, and until that happens the rule stays eligible.
func MaterializeDue(rules []models.RecurringRule, today time.Time) []Materialization {
	key := DayKey(today)
	var out []Materialization
	for _, rule := range rules {
		if !rule.IsActive || rule.LastMaterialized == key || !IsDue(rule, today) {
			continue
		}
		ruleID := rule.ID
		entry := models.LedgerEntry{
			AccountID:       rule.AccountID,
			InstrumentCode:  rule.InstrumentCode,
			CategoryID:      copyID(rule.CategoryID),
			CategoryName:    rule.CategoryName,
			SourceID:        copyID(rule.SourceID),
			Direction:       rule.Direction,
			Amount:          rule.Amount,
			Title:           rule.Title + AutoTitleSuffix,
			OccurredAt:      today.UTC(),
			RecurringRuleID: &ruleID,
		}
		stamped := rule
		stamped.LastMaterialized = key
		out = append(out, Materialization{Rule: stamped, Entry: entry})
	}
	return out
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// Upcoming lists active rules whose next occurrence is within windowDays of today,
// soonest first. A rule already materialized today is projected to its following occurrence.
func Upcoming(rules []NormalizedRule, today time.Time, windowDays int) []models.UpcomingPayment {
	start := Day(today)
	key := DayKey(today)
	upcoming := []models.UpcomingPayment{}
	for _, r := range rules {
		if !r.Rule.IsActive {
			continue
		}
		from := start
		if r.Rule.LastMaterialized == key {
			from = start.AddDate(0, 0, 1)
		}
		due := NextDueDate(r.Rule, from)
		daysLeft := daysBetween(start, due)
		if daysLeft > windowDays {
			continue
		}
		upcoming = append(upcoming, models.UpcomingPayment{
			RuleID:    r.Rule.ID,
			Title:     r.Rule.Title,
			Category:  r.Rule.CategoryName,
			Direction: r.Rule.Direction,
			Amount:    r.Value,
			DueDate:   DayKey(due),
			DaysLeft:  daysLeft,
		})
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		if upcoming[i].DaysLeft != upcoming[j].DaysLeft {
			return upcoming[i].DaysLeft < upcoming[j].DaysLeft
		}
		return upcoming[i].RuleID < upcoming[j].RuleID
	})
	return upcoming
}

// daysBetween counts calendar days from a to b, both at midnight in the same location.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
