// Package user serializes work on each user's positions
package user

import (
	"sync"
)

// Locks keeps one mutex per user. Entries live only while someone holds or waits for them
type Locks struct {
	mu    sync.Mutex
	users map[int64]*entry // map[userID]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// NewLocks is constructor
func NewLocks() *Locks {
	return &Locks{users: make(map[int64]*entry)}
}

// Lock blocks until the caller owns userID and returns the unlock func
func (l *Locks) Lock(userID int64) func() {
	l.mu.Lock()
	e, ok := l.users[userID]
	if !ok {
		e = &entry{}
		l.users[userID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			l.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(l.users, userID)
			}
			l.mu.Unlock()
		})
	}
}

// Len returns the number of users currently locked or waited for
func (l *Locks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.users)
}
