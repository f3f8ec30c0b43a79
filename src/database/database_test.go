package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateCreatesSchemaAndSeeds(t *testing.T) {
	db, err := Open("file::memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))

	for _, table := range []string{"ledger_entries", "asset_holdings", "debt_obligations", "recurring_rules", "market_quotes", "categories", "sources"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	var categories int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&categories))
	assert.Greater(t, categories, 0)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := Open("file::memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	assert.NoError(t, Migrate(db))
}

func TestMigrateNilDB(t *testing.T) {
	assert.Error(t, Migrate(nil))
}
