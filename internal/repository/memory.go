package repository

import (
	"github.com/chucky-1/papertrade/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"context"
	"fmt"
	"sync"
)

// Memory keeps positions in process memory
type Memory struct {
	mu        sync.RWMutex
	positions map[int64][]model.Position // map[userID][]position
}

// NewMemory is constructor
func NewMemory() *Memory {
	return &Memory{positions: make(map[int64][]model.Position)}
}

// Positions returns all lots of the user
func (m *Memory) Positions(ctx context.Context, userID int64) ([]*model.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return filter(m.positions[userID], ""), nil
}

// PositionsByAsset returns the user's lots of asset
func (m *Memory) PositionsByAsset(ctx context.Context, userID int64, asset string) ([]*model.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return filter(m.positions[userID], asset), nil
}

// Atomic applies fn to a copy of the user's lots and swaps it in on success
func (m *Memory) Atomic(ctx context.Context, userID int64, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	staged := make([]model.Position, len(m.positions[userID]))
	copy(staged, m.positions[userID])
	tx := &memoryTx{userID: userID, positions: staged}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(tx.positions) == 0 {
		delete(m.positions, userID)
		return nil
	}
	m.positions[userID] = tx.positions
	return nil
}

type memoryTx struct {
	userID    int64
	positions []model.Position
}

func (t *memoryTx) check(userID int64) error {
	if userID != t.userID {
		return fmt.Errorf("transaction of user %d can't touch user %d", t.userID, userID)
	}
	return nil
}

func (t *memoryTx) Positions(ctx context.Context, userID int64) ([]*model.Position, error) {
	if err := t.check(userID); err != nil {
		return nil, err
	}
	return filter(t.positions, ""), nil
}

func (t *memoryTx) PositionsByAsset(ctx context.Context, userID int64, asset string) ([]*model.Position, error) {
	if err := t.check(userID); err != nil {
		return nil, err
	}
	return filter(t.positions, asset), nil
}

func (t *memoryTx) Insert(ctx context.Context, position *model.Position) error {
	if err := t.check(position.UserID); err != nil {
		return err
	}
	if err := validPosition(position); err != nil {
		return err
	}
	t.positions = append(t.positions, *position)
	return nil
}

func (t *memoryTx) UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	for i := range t.positions {
		if t.positions[i].ID == id {
			t.positions[i].Amount = amount
			return validPosition(&t.positions[i])
		}
	}
	return ErrPositionNotFound
}

func (t *memoryTx) Delete(ctx context.Context, id uuid.UUID) error {
	for i := range t.positions {
		if t.positions[i].ID == id {
			t.positions = append(t.positions[:i:i], t.positions[i+1:]...)
			return nil
		}
	}
	return ErrPositionNotFound
}

// filter copies lots out so callers never share memory with the store
func filter(positions []model.Position, asset string) []*model.Position {
	result := make([]*model.Position, 0, len(positions))
	for i := range positions {
		if asset != "" && positions[i].Asset != asset {
			continue
		}
		p := positions[i]
		result = append(result, &p)
	}
	return result
}
