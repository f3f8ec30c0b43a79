package model

import (
	"context"
	"time"

	"github.com/username/walletpulse/backend/src/logger"
	"github.com/username/walletpulse/backend/src/models"
)

// UpsertQuotes saves the quotes as the last known price of each symbol for the day they were fetched.
func UpsertQuotes(ctx context.Context, db DBTX, quotes []models.MarketQuote) error {
	// Using ON CONFLICT (UPSERT) is efficient and safe for concurrent operations.
	query := `
        INSERT INTO market_quotes (symbol, date, price, currency, change_percent, fetched_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(symbol, date) DO UPDATE SET
            price = excluded.price,
            currency = excluded.currency,
            change_percent = excluded.change_percent,
            fetched_at = excluded.fetched_at;
    `
	for _, q := range quotes {
		fetched := q.FetchedAt
		if fetched.IsZero() {
			fetched = time.Now()
		}
		_, err := db.ExecContext(ctx, query, q.Symbol, fetched.UTC().Format(models.DateLayout), q.Price.String(),
			q.Currency, q.ChangePercent.String(), formatTime(fetched))
		if err != nil {
			logger.L.Error("Failed to insert or update market quote", "symbol", q.Symbol, "error", err)
			return err
		}
	}
	return nil
}

// GetLatestQuotes returns the most recent stored quote for each requested symbol that has one.
func GetLatestQuotes(ctx context.Context, db DBTX, symbols []string) (map[string]models.MarketQuote, error) {
	quotes := make(map[string]models.MarketQuote)
	if len(symbols) == 0 {
		return quotes, nil
	}
	query := `
		SELECT q.symbol, q.price, q.currency, q.change_percent, q.fetched_at
		FROM market_quotes q
		JOIN (SELECT symbol, MAX(date) AS date FROM market_quotes WHERE symbol IN (` + placeholders(len(symbols)) + `) GROUP BY symbol) latest
		  ON latest.symbol = q.symbol AND latest.date = q.date`
	args := make([]any, len(symbols))
	for i, s := range symbols {
		args[i] = s
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var q models.MarketQuote
		var fetched string
		if err := rows.Scan(&q.Symbol, &q.Price, &q.Currency, &q.ChangePercent, &fetched); err != nil {
			logger.L.Error("Error scanning quote row", "error", err)
			continue
		}
		if q.FetchedAt, err = parseTime(fetched); err != nil {
			logger.L.Warn("Stored quote has invalid timestamp", "symbol", q.Symbol, "error", err)
		}
		quotes[q.Symbol] = q
	}
	return quotes, rows.Err()
}
