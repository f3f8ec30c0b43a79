package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/username/walletpulse/backend/src/models"
)

const ruleSelect = `
	SELECT r.id, r.account_id, r.title, r.amount, r.category_id, c.name, r.source_id, r.instrument_code,
	       r.direction, r.frequency, r.day_of_month, r.day_of_week, r.is_active, r.last_materialized
	FROM recurring_rules r
	LEFT JOIN categories c ON c.id = r.category_id`

func scanRules(rows *sql.Rows) ([]models.RecurringRule, error) {
	defer rows.Close()
	var rules []models.RecurringRule
	for rows.Next() {
		var (
			r                    models.RecurringRule
			categoryID, sourceID sql.NullInt64
			categoryName, last   sql.NullString
			direction, frequency string
			dayOfWeek            int
		)
		if err := rows.Scan(&r.ID, &r.AccountID, &r.Title, &r.Amount, &categoryID, &categoryName, &sourceID,
			&r.InstrumentCode, &direction, &frequency, &r.DayOfMonth, &dayOfWeek, &r.IsActive, &last); err != nil {
			return nil, err
		}
		r.CategoryID = nullInt64Ptr(categoryID)
		r.CategoryName = categoryName.String
		r.SourceID = nullInt64Ptr(sourceID)
		r.Direction = models.Direction(direction)
		r.Frequency = models.Frequency(frequency)
		r.DayOfWeek = time.Weekday(dayOfWeek)
		r.LastMaterialized = last.String
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// ListRecurringRules returns all rules of the account, active or not.
func ListRecurringRules(ctx context.Context, db DBTX, accountID int64) ([]models.RecurringRule, error) {
	rows, err := db.QueryContext(ctx, ruleSelect+` WHERE r.account_id = ? ORDER BY r.id`, accountID)
	if err != nil {
		return nil, err
	}
	return scanRules(rows)
}

func ListActiveRecurringRules(ctx context.Context, db DBTX, accountID int64) ([]models.RecurringRule, error) {
	rows, err := db.QueryContext(ctx, ruleSelect+` WHERE r.account_id = ? AND r.is_active = 1 ORDER BY r.id`, accountID)
	if err != nil {
		return nil, err
	}
	return scanRules(rows)
}

// ListAllActiveRecurringRules returns the active rules of every account, for the materializer.
func ListAllActiveRecurringRules(ctx context.Context, db DBTX) ([]models.RecurringRule, error) {
	rows, err := db.QueryContext(ctx, ruleSelect+` WHERE r.is_active = 1 ORDER BY r.account_id, r.id`)
	if err != nil {
		return nil, err
	}
	return scanRules(rows)
}

func CreateRecurringRule(ctx context.Context, db DBTX, r models.RecurringRule) (int64, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO recurring_rules (account_id, title, amount, category_id, source_id, instrument_code, direction,
		                             frequency, day_of_month, day_of_week, is_active, last_materialized)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.AccountID, r.Title, r.Amount.String(), nullableID(r.CategoryID), nullableID(r.SourceID), r.InstrumentCode,
		string(r.Direction), string(r.Frequency), r.DayOfMonth, int(r.DayOfWeek), r.IsActive, nullableString(r.LastMaterialized))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SetRuleActive toggles a rule of the account. It reports false when no such rule exists.
func SetRuleActive(ctx context.Context, db DBTX, accountID, ruleID int64, active bool) (bool, error) {
	res, err := db.ExecContext(ctx, `UPDATE recurring_rules SET is_active = ? WHERE id = ? AND account_id = ?`, active, ruleID, accountID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UpdateRuleLastMaterialized stamps the rule with day unless it already carries that stamp
// or has been deactivated. It reports whether this call performed the stamp.
func UpdateRuleLastMaterialized(ctx context.Context, db DBTX, ruleID int64, day string) (bool, error) {
	res, err := db.ExecContext(ctx, `
		UPDATE recurring_rules SET last_materialized = ?
		WHERE id = ? AND is_active = 1 AND (last_materialized IS NULL OR last_materialized <> ?)`, day, ruleID, day)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// errAlreadyMaterialized rolls back a transaction whose stamp lost the race.
var errAlreadyMaterialized = errors.New("rule already materialized for this day")

// MaterializeRule stamps the rule with day and inserts its entry in one transaction.
// It returns false, writing nothing, when the rule already carries the stamp for day
// or was deactivated since it was listed.
// On any error nothing is written and the rule remains eligible.
func MaterializeRule(ctx context.Context, db *sql.DB, ruleID int64, day string, entry models.LedgerEntry) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin materialize tx: %w", err)
	}
	defer tx.Rollback()

	err = func() error {
		stamped, err := UpdateRuleLastMaterialized(ctx, tx, ruleID, day)
		if err != nil {
			return fmt.Errorf("stamp rule %d: %w", ruleID, err)
		}
		if !stamped {
			return errAlreadyMaterialized
		}
		if _, err := CreateLedgerEntry(ctx, tx, entry); err != nil {
			return fmt.Errorf("insert entry for rule %d: %w", ruleID, err)
		}
		return nil
	}()
	if errors.Is(err, errAlreadyMaterialized) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit materialize tx: %w", err)
	}
	return true, nil
}
