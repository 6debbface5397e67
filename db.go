package main

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the document-store boundary for identity records. Uniqueness of
// email and username is the store's responsibility; CreateUser returns
// ErrDuplicate when either index rejects the insert.
type Store interface {
	Ping(ctx context.Context) error
	EnsureIndexes(ctx context.Context) error
	CreateUser(ctx context.Context, u *User) error
	UserByEmail(ctx context.Context, email string) (*User, error)
	UserByID(ctx context.Context, id string) (*User, error)
	Close(ctx context.Context) error
}

// MemStore is an in-memory Store used by tests and DB_ADAPTER=memory.
type MemStore struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byEmail map[string]string
	byName  map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{
		byID:    map[string]*User{},
		byEmail: map[string]string{},
		byName:  map[string]string{},
	}
}

func (m *MemStore) Ping(ctx context.Context) error          { return nil }
func (m *MemStore) EnsureIndexes(ctx context.Context) error { return nil }
func (m *MemStore) Close(ctx context.Context) error         { return nil }

func (m *MemStore) CreateUser(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return ErrDuplicate
	}
	if _, ok := m.byName[u.Username]; ok {
		return ErrDuplicate
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	cp := *u
	id := u.ID.Hex()
	m.byID[id] = &cp
	m.byEmail[u.Email] = id
	m.byName[u.Username] = id
	return nil
}

func (m *MemStore) UserByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.byID[id]
	return &cp, nil
}

func (m *MemStore) UserByID(ctx context.Context, id string) (*User, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, ErrInvalidID
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}
