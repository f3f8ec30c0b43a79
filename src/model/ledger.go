package model

import (
	"context"
	"database/sql"
	"time"

	"github.com/username/walletpulse/backend/src/models"
)

const ledgerSelect = `
	SELECT e.id, e.account_id, e.instrument_code, e.category_id, c.name, e.source_id, s.name,
	       e.direction, e.amount, e.title, e.occurred_at, e.recurring_rule_id
	FROM ledger_entries e
	LEFT JOIN categories c ON c.id = e.category_id
	LEFT JOIN sources s ON s.id = e.source_id`

// ListLedgerEntries returns the account's entries at or after since, oldest first.
// A zero since returns the full history.
func ListLedgerEntries(ctx context.Context, db DBTX, accountID int64, since time.Time) ([]models.LedgerEntry, error) {
	query := ledgerSelect + ` WHERE e.account_id = ?`
	args := []any{accountID}
	if !since.IsZero() {
		query += ` AND e.occurred_at >= ?`
		args = append(args, formatTime(since))
	}
	query += ` ORDER BY e.occurred_at ASC, e.id ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var (
			e                        models.LedgerEntry
			categoryID, sourceID     sql.NullInt64
			ruleID                   sql.NullInt64
			categoryName, sourceName sql.NullString
			direction, occurredAt    string
		)
		if err := rows.Scan(&e.ID, &e.AccountID, &e.InstrumentCode, &categoryID, &categoryName, &sourceID, &sourceName,
			&direction, &e.Amount, &e.Title, &occurredAt, &ruleID); err != nil {
			return nil, err
		}
		if e.OccurredAt, err = parseTime(occurredAt); err != nil {
			return nil, err
		}
		e.Direction = models.Direction(direction)
		e.CategoryID = nullInt64Ptr(categoryID)
		e.CategoryName = categoryName.String
		e.SourceID = nullInt64Ptr(sourceID)
		e.SourceName = sourceName.String
		e.RecurringRuleID = nullInt64Ptr(ruleID)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CreateLedgerEntry inserts the entry and returns its id.
func CreateLedgerEntry(ctx context.Context, db DBTX, e models.LedgerEntry) (int64, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO ledger_entries (account_id, instrument_code, category_id, source_id, direction, amount, title, occurred_at, recurring_rule_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.AccountID, e.InstrumentCode, nullableID(e.CategoryID), nullableID(e.SourceID), string(e.Direction),
		e.Amount.String(), e.Title, formatTime(e.OccurredAt), nullableID(e.RecurringRuleID))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
