package repository

import (
	"github.com/chucky-1/papertrade/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLite works with a sqlite database opened through the go-sqlite3 driver
type SQLite struct {
	db *sql.DB
}

// NewSQLite is constructor. The handle must come from sql.Open("sqlite3", ...)
func NewSQLite(db *sql.DB) *SQLite {
	// sqlite has a single writer; one connection keeps transactions from failing with SQLITE_BUSY
	db.SetMaxOpenConns(1)
	return &SQLite{db: db}
}

// Migrate creates the portfolio table
func (r *SQLite) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS "+schemaPortfolio+" ("+
		"id TEXT PRIMARY KEY, "+
		"user_id INTEGER NOT NULL, "+
		"coin TEXT NOT NULL, "+
		"amount TEXT NOT NULL, "+
		"buy_price TEXT NOT NULL, "+
		"time_open INTEGER NOT NULL)")
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS portfolio_user_coin ON "+schemaPortfolio+" (user_id, coin)")
	return err
}

// Positions returns all lots of the user
func (r *SQLite) Positions(ctx context.Context, userID int64) ([]*model.Position, error) {
	return (&sqliteTx{q: r.db}).Positions(ctx, userID)
}

// PositionsByAsset returns the user's lots of asset
func (r *SQLite) PositionsByAsset(ctx context.Context, userID int64, asset string) ([]*model.Position, error) {
	return (&sqliteTx{q: r.db}).PositionsByAsset(ctx, userID, asset)
}

// Atomic runs fn in a transaction
func (r *SQLite) Atomic(ctx context.Context, userID int64, fn func(tx Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		err := tx.Rollback()
		if err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Error(err)
		}
	}()

	if err = fn(&sqliteTx{q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

type sqlQuerier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type sqliteTx struct {
	q sqlQuerier
}

const selectSQLite = "SELECT id, user_id, coin, amount, buy_price, time_open FROM " + schemaPortfolio

func (t *sqliteTx) Positions(ctx context.Context, userID int64) ([]*model.Position, error) {
	rows, err := t.q.QueryContext(ctx, selectSQLite+" WHERE user_id = ? ORDER BY rowid", userID)
	if err != nil {
		return nil, err
	}
	return scanSQLite(rows)
}

func (t *sqliteTx) PositionsByAsset(ctx context.Context, userID int64, asset string) ([]*model.Position, error) {
	rows, err := t.q.QueryContext(ctx, selectSQLite+" WHERE user_id = ? AND coin = ? ORDER BY rowid", userID, asset)
	if err != nil {
		return nil, err
	}
	return scanSQLite(rows)
}

func (t *sqliteTx) Insert(ctx context.Context, position *model.Position) error {
	if err := validPosition(position); err != nil {
		return err
	}
	_, err := t.q.ExecContext(ctx, "INSERT INTO "+schemaPortfolio+" (id, user_id, coin, amount, buy_price, time_open) "+
		"VALUES (?, ?, ?, ?, ?, ?)",
		position.ID.String(), position.UserID, position.Asset,
		position.Amount.String(), position.BuyPrice.String(), position.TimeOpen.UnixNano())
	return err
}

func (t *sqliteTx) UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("position %s: amount must be positive, got %s", id, amount)
	}
	res, err := t.q.ExecContext(ctx, "UPDATE "+schemaPortfolio+" SET amount = ? WHERE id = ?", amount.String(), id.String())
	if err != nil {
		return err
	}
	return affected(res)
}

func (t *sqliteTx) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := t.q.ExecContext(ctx, "DELETE FROM "+schemaPortfolio+" WHERE id = ?", id.String())
	if err != nil {
		return err
	}
	return affected(res)
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPositionNotFound
	}
	return nil
}

func scanSQLite(rows *sql.Rows) ([]*model.Position, error) {
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			log.Error(err)
		}
	}(rows)

	positions := make([]*model.Position, 0)
	for rows.Next() {
		var (
			id, amount, buyPrice string
			position             model.Position
			timeOpen             int64
		)
		err := rows.Scan(&id, &position.UserID, &position.Asset, &amount, &buyPrice, &timeOpen)
		if err != nil {
			return nil, err
		}
		if err = fillPosition(&position, id, amount, buyPrice); err != nil {
			return nil, err
		}
		position.TimeOpen = time.Unix(0, timeOpen)
		positions = append(positions, &position)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return positions, nil
}
