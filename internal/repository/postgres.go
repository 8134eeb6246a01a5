package repository

import (
	"github.com/chucky-1/papertrade/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"context"
	"errors"
	"fmt"
	"time"
)

// Postgres works with postgres
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres is constructor
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the portfolio table
func (r *Postgres) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "CREATE TABLE IF NOT EXISTS "+schemaPortfolio+" ("+
		"id uuid PRIMARY KEY, "+
		"seq bigserial, "+
		"user_id bigint NOT NULL, "+
		"coin text NOT NULL, "+
		"amount numeric NOT NULL CHECK (amount > 0), "+
		"buy_price numeric NOT NULL, "+
		"time_open timestamptz NOT NULL)")
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS portfolio_user_coin ON "+schemaPortfolio+" (user_id, coin)")
	return err
}

// Positions returns all lots of the user
func (r *Postgres) Positions(ctx context.Context, userID int64) ([]*model.Position, error) {
	return (&postgresTx{q: r.pool}).Positions(ctx, userID)
}

// PositionsByAsset returns the user's lots of asset
func (r *Postgres) PositionsByAsset(ctx context.Context, userID int64, asset string) ([]*model.Position, error) {
	return (&postgresTx{q: r.pool}).PositionsByAsset(ctx, userID, asset)
}

// Atomic runs fn in a transaction holding the user's advisory lock
func (r *Postgres) Atomic(ctx context.Context, userID int64, fn func(tx Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		err := tx.Rollback(ctx)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.Error(err)
		}
	}()

	if _, err = tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", userID); err != nil {
		return err
	}
	if err = fn(&postgresTx{q: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type postgresTx struct {
	q querier
}

const selectPostgres = "SELECT id::text, user_id, coin, amount::text, buy_price::text, time_open FROM " + schemaPortfolio

func (t *postgresTx) Positions(ctx context.Context, userID int64) ([]*model.Position, error) {
	rows, err := t.q.Query(ctx, selectPostgres+" WHERE user_id = $1 ORDER BY seq", userID)
	if err != nil {
		return nil, err
	}
	return scanPostgres(rows)
}

func (t *postgresTx) PositionsByAsset(ctx context.Context, userID int64, asset string) ([]*model.Position, error) {
	rows, err := t.q.Query(ctx, selectPostgres+" WHERE user_id = $1 AND coin = $2 ORDER BY seq", userID, asset)
	if err != nil {
		return nil, err
	}
	return scanPostgres(rows)
}

func (t *postgresTx) Insert(ctx context.Context, position *model.Position) error {
	if err := validPosition(position); err != nil {
		return err
	}
	_, err := t.q.Exec(ctx, "INSERT INTO "+schemaPortfolio+" (id, user_id, coin, amount, buy_price, time_open) "+
		"VALUES ($1::uuid, $2, $3, $4::numeric, $5::numeric, $6)",
		position.ID.String(), position.UserID, position.Asset,
		position.Amount.String(), position.BuyPrice.String(), position.TimeOpen)
	return err
}

func (t *postgresTx) UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("position %s: amount must be positive, got %s", id, amount)
	}
	tag, err := t.q.Exec(ctx, "UPDATE "+schemaPortfolio+" SET amount = $1::numeric WHERE id = $2::uuid",
		amount.String(), id.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPositionNotFound
	}
	return nil
}

func (t *postgresTx) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := t.q.Exec(ctx, "DELETE FROM "+schemaPortfolio+" WHERE id = $1::uuid", id.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPositionNotFound
	}
	return nil
}

func scanPostgres(rows pgx.Rows) ([]*model.Position, error) {
	defer rows.Close()

	positions := make([]*model.Position, 0)
	for rows.Next() {
		var (
			id, amount, buyPrice string
			position             model.Position
			timeOpen             time.Time
		)
		err := rows.Scan(&id, &position.UserID, &position.Asset, &amount, &buyPrice, &timeOpen)
		if err != nil {
			return nil, err
		}
		if err = fillPosition(&position, id, amount, buyPrice); err != nil {
			return nil, err
		}
		position.TimeOpen = timeOpen
		positions = append(positions, &position)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return positions, nil
}

// fillPosition parses the text columns of a row
func fillPosition(position *model.Position, id, amount, buyPrice string) error {
	var err error
	position.ID, err = uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("parse id: %w", err)
	}
	position.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return fmt.Errorf("parse amount: %w", err)
	}
	position.BuyPrice, err = decimal.NewFromString(buyPrice)
	if err != nil {
		return fmt.Errorf("parse buy price: %w", err)
	}
	return nil
}
