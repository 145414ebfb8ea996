// Package memory is a process-local store implementing the same unit of work
// contract as the postgres repositories. It backs local runs and tests.
//
// An open transaction holds the store lock from Begin until Commit or
// Rollback, so transactions are fully serialized. Repositories taken from a
// unit of work outside a transaction lock per call.
package memory

import (
	"context"
	"fmt"
	"sync"

	"ai-medical-chat-be/internal/entity"
	"ai-medical-chat-be/internal/repository/contract"
	"ai-medical-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.Mutex

	users        map[uuid.UUID]*entity.User
	usersByEmail map[string]uuid.UUID
	sessions     map[uuid.UUID]*entity.ChatSession
	messages     map[uuid.UUID][]*entity.ChatMessage
}

func NewStore() *Store {
	return &Store{
		users:        make(map[uuid.UUID]*entity.User),
		usersByEmail: make(map[string]uuid.UUID),
		sessions:     make(map[uuid.UUID]*entity.ChatSession),
		messages:     make(map[uuid.UUID][]*entity.ChatMessage),
	}
}

var _ unitofwork.RepositoryFactory = (*Store)(nil)

func (s *Store) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{store: s}
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// access runs fn with the store lock held unless tx already holds it.
type access struct {
	store *Store
	tx    *txState
}

func (a access) do(fn func(undo func(func()))) {
	if a.tx != nil {
		fn(a.tx.record)
		return
	}
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	fn(func(func()) {})
}

type txState struct {
	undo []func()
}

func (t *txState) record(fn func()) {
	t.undo = append(t.undo, fn)
}

type unitOfWork struct {
	store *Store
	tx    *txState
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	u.store.mu.Lock()
	u.tx = &txState{}
	return nil
}

func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	u.tx = nil
	u.store.mu.Unlock()
	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	for i := len(u.tx.undo) - 1; i >= 0; i-- {
		u.tx.undo[i]()
	}
	u.tx = nil
	u.store.mu.Unlock()
	return nil
}

func (u *unitOfWork) access() access {
	return access{store: u.store, tx: u.tx}
}

func (u *unitOfWork) UserRepository() contract.UserRepository {
	return &userRepository{access: u.access()}
}

func (u *unitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return &chatSessionRepository{access: u.access()}
}

func (u *unitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return &chatMessageRepository{access: u.access()}
}
