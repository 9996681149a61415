package memoryengine

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

type state struct {
	books map[uuid.UUID]recordstore.Book
	users map[uuid.UUID]recordstore.User
	loans map[uuid.UUID]recordstore.Loan
}

func newState() state {
	return state{
		books: map[uuid.UUID]recordstore.Book{},
		users: map[uuid.UUID]recordstore.User{},
		loans: map[uuid.UUID]recordstore.Loan{},
	}
}

func (s state) clone() state {
	cp := state{
		books: make(map[uuid.UUID]recordstore.Book, len(s.books)),
		users: make(map[uuid.UUID]recordstore.User, len(s.users)),
		loans: make(map[uuid.UUID]recordstore.Loan, len(s.loans)),
	}
	for k, v := range s.books {
		cp.books[k] = v
	}
	for k, v := range s.users {
		cp.users[k] = v
	}
	for k, v := range s.loans {
		cp.loans[k] = v
	}

	return cp
}

// Store is an in-memory record store. The zero value is not usable, use NewStore.
type Store struct {
	mu    sync.RWMutex
	state state
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{state: newState()}
}

// Begin starts a transaction.
// With recordstore.EventualConsistency in the context the transaction is read-only.
func (s *Store) Begin(ctx context.Context) (recordstore.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if recordstore.GetConsistencyLevel(ctx) == recordstore.EventualConsistency {
		s.mu.RLock()
		return &tx{store: s, state: s.state, readOnly: true}, nil
	}

	s.mu.Lock()

	return &tx{store: s, state: s.state.clone()}, nil
}
