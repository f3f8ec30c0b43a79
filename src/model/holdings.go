package model

import (
	"context"
	"database/sql"

	"github.com/username/walletpulse/backend/src/models"
)

func ListHoldings(ctx context.Context, db DBTX, accountID int64) ([]models.AssetHolding, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, account_id, instrument_code, symbol, quantity, average_cost, category
		FROM asset_holdings WHERE account_id = ? ORDER BY id`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holdings []models.AssetHolding
	for rows.Next() {
		var h models.AssetHolding
		var symbol sql.NullString
		if err := rows.Scan(&h.ID, &h.AccountID, &h.InstrumentCode, &symbol, &h.Quantity, &h.AverageCost, &h.Category); err != nil {
			return nil, err
		}
		h.Symbol = symbol.String
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

func CreateHolding(ctx context.Context, db DBTX, h models.AssetHolding) (int64, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO asset_holdings (account_id, instrument_code, symbol, quantity, average_cost, category)
		VALUES (?, ?, ?, ?, ?, ?)`,
		h.AccountID, h.InstrumentCode, nullableString(h.Symbol), h.Quantity.String(), h.AverageCost.String(), h.Category)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func ListDebts(ctx context.Context, db DBTX, accountID int64) ([]models.DebtObligation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, account_id, title, amount, currency_code, original_amount, interest_rate,
		       total_installments, remaining_installments, due_date
		FROM debt_obligations WHERE account_id = ? ORDER BY id`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var debts []models.DebtObligation
	for rows.Next() {
		var d models.DebtObligation
		var due sql.NullString
		if err := rows.Scan(&d.ID, &d.AccountID, &d.Title, &d.Amount, &d.CurrencyCode, &d.OriginalAmount,
			&d.InterestRate, &d.TotalInstallments, &d.RemainingInstallments, &due); err != nil {
			return nil, err
		}
		d.DueDate = due.String
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

func CreateDebt(ctx context.Context, db DBTX, d models.DebtObligation) (int64, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO debt_obligations (account_id, title, amount, currency_code, original_amount, interest_rate,
		                              total_installments, remaining_installments, due_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.AccountID, d.Title, d.Amount.String(), d.CurrencyCode, nullableDecimal(d.OriginalAmount), d.InterestRate.String(),
		d.TotalInstallments, d.RemainingInstallments, nullableString(d.DueDate))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
