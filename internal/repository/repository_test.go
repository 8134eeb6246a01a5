package repository

import (
	"github.com/chucky-1/papertrade/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"context"
	"errors"
	"testing"
	"time"
)

func newPosition(userID int64, asset, amount, price string) *model.Position {
	return &model.Position{
		ID:       uuid.New(),
		UserID:   userID,
		Asset:    asset,
		Amount:   decimal.RequireFromString(amount),
		BuyPrice: decimal.RequireFromString(price),
		TimeOpen: time.Now(),
	}
}

func insert(t *testing.T, ledger Ledger, positions ...*model.Position) {
	t.Helper()
	for _, p := range positions {
		err := ledger.Atomic(context.Background(), p.UserID, func(tx Tx) error {
			return tx.Insert(context.Background(), p)
		})
		require.NoError(t, err)
	}
}

// testLedger checks the behaviour every Ledger implementation must share
func testLedger(t *testing.T, newLedger func(t *testing.T) Ledger) {
	ctx := context.Background()

	t.Run("empty user", func(t *testing.T) {
		ledger := newLedger(t)
		positions, err := ledger.Positions(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, positions)
	})

	t.Run("lots keep insertion order and values", func(t *testing.T) {
		ledger := newLedger(t)
		first := newPosition(1, "btc", "0.5", "30000.12")
		second := newPosition(1, "eth", "2", "1800")
		third := newPosition(1, "btc", "1.25", "31000")
		other := newPosition(2, "btc", "9", "1")
		insert(t, ledger, first, second, third, other)

		positions, err := ledger.Positions(ctx, 1)
		require.NoError(t, err)
		require.Len(t, positions, 3)
		assert.Equal(t, first.ID, positions[0].ID)
		assert.Equal(t, second.ID, positions[1].ID)
		assert.Equal(t, third.ID, positions[2].ID)
		assert.True(t, positions[0].Amount.Equal(first.Amount))
		assert.True(t, positions[0].BuyPrice.Equal(first.BuyPrice))
		assert.Equal(t, "btc", positions[0].Asset)
		assert.Equal(t, int64(1), positions[0].UserID)

		btc, err := ledger.PositionsByAsset(ctx, 1, "btc")
		require.NoError(t, err)
		require.Len(t, btc, 2)
		assert.Equal(t, first.ID, btc[0].ID)
		assert.Equal(t, third.ID, btc[1].ID)
	})

	t.Run("update and delete", func(t *testing.T) {
		ledger := newLedger(t)
		p := newPosition(3, "sol", "10", "20")
		insert(t, ledger, p)

		err := ledger.Atomic(ctx, 3, func(tx Tx) error {
			return tx.UpdateAmount(ctx, p.ID, decimal.RequireFromString("4.5"))
		})
		require.NoError(t, err)
		positions, err := ledger.PositionsByAsset(ctx, 3, "sol")
		require.NoError(t, err)
		require.Len(t, positions, 1)
		assert.Equal(t, "4.5", positions[0].Amount.String())
		assert.True(t, positions[0].BuyPrice.Equal(decimal.NewFromInt(20)))

		err = ledger.Atomic(ctx, 3, func(tx Tx) error {
			return tx.Delete(ctx, p.ID)
		})
		require.NoError(t, err)
		positions, err = ledger.Positions(ctx, 3)
		require.NoError(t, err)
		assert.Empty(t, positions)
	})

	t.Run("missing lot", func(t *testing.T) {
		ledger := newLedger(t)
		err := ledger.Atomic(ctx, 4, func(tx Tx) error {
			return tx.Delete(ctx, uuid.New())
		})
		assert.ErrorIs(t, err, ErrPositionNotFound)
		err = ledger.Atomic(ctx, 4, func(tx Tx) error {
			return tx.UpdateAmount(ctx, uuid.New(), decimal.NewFromInt(1))
		})
		assert.ErrorIs(t, err, ErrPositionNotFound)
	})

	t.Run("zero amount is never stored", func(t *testing.T) {
		ledger := newLedger(t)
		p := newPosition(5, "ada", "3", "1")
		insert(t, ledger, p)

		err := ledger.Atomic(ctx, 5, func(tx Tx) error {
			return tx.UpdateAmount(ctx, p.ID, decimal.Zero)
		})
		assert.Error(t, err)
		err = ledger.Atomic(ctx, 5, func(tx Tx) error {
			zero := newPosition(5, "ada", "0", "1")
			return tx.Insert(ctx, zero)
		})
		assert.Error(t, err)

		positions, err := ledger.Positions(ctx, 5)
		require.NoError(t, err)
		require.Len(t, positions, 1)
		assert.Equal(t, "3", positions[0].Amount.String())
	})

	t.Run("failed callback rolls back", func(t *testing.T) {
		ledger := newLedger(t)
		p := newPosition(6, "dot", "1", "5")
		insert(t, ledger, p)

		boom := errors.New("boom")
		err := ledger.Atomic(ctx, 6, func(tx Tx) error {
			if err := tx.Insert(ctx, newPosition(6, "dot", "2", "6")); err != nil {
				return err
			}
			if err := tx.Delete(ctx, p.ID); err != nil {
				return err
			}
			inTx, err := tx.Positions(ctx, 6)
			require.NoError(t, err)
			assert.Len(t, inTx, 1)
			return boom
		})
		assert.ErrorIs(t, err, boom)

		positions, err := ledger.Positions(ctx, 6)
		require.NoError(t, err)
		require.Len(t, positions, 1)
		assert.Equal(t, p.ID, positions[0].ID)
	})
}

func TestMemory(t *testing.T) {
	testLedger(t, func(t *testing.T) Ledger {
		return NewMemory()
	})
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ledger := NewMemory()
	p := newPosition(1, "btc", "1", "1")
	insert(t, ledger, p)

	positions, err := ledger.Positions(context.Background(), 1)
	require.NoError(t, err)
	positions[0].Amount = decimal.NewFromInt(100)

	positions, err = ledger.Positions(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "1", positions[0].Amount.String())
}

func TestMemory_TxScopedToUser(t *testing.T) {
	ledger := NewMemory()
	err := ledger.Atomic(context.Background(), 1, func(tx Tx) error {
		return tx.Insert(context.Background(), newPosition(2, "btc", "1", "1"))
	})
	assert.Error(t, err)
}
