// Package tokenstore persists the single bearer token of the client.
//
// Writing an empty token removes the persisted value; reading returns
// ok=false when nothing is stored. The token is opaque here: structure and
// expiry are the server's business.
package tokenstore

import (
	"context"
	"sync"
)

// Store reads and writes the persisted bearer token.
type Store interface {
	Read(ctx context.Context) (token string, ok bool, err error)
	Write(ctx context.Context, token string) error
}

// MemoryStore keeps the token in process memory only.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore returns a MemoryStore pre-filled with token ("" = empty).
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) Read(_ context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != "", nil
}

func (m *MemoryStore) Write(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}
