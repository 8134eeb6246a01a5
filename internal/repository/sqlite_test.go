package repository

import (
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"context"
	"database/sql"
	"testing"
)

func TestSQLite(t *testing.T) {
	testLedger(t, func(t *testing.T) Ledger {
		db, err := sql.Open("sqlite3", ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() {
			require.NoError(t, db.Close())
		})
		r := NewSQLite(db)
		require.NoError(t, r.Migrate(context.Background()))
		return r
	})
}
