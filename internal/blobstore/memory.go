package blobstore

import (
	"context"
	"sync"

	"github.com/hhvault/hhvault/internal/common"
)

// MemoryStore keeps blobs in a map. Used by tests and offline development.
type MemoryStore struct {
	mu          sync.RWMutex
	blobs       map[string][]byte
	gatewayBase string
}

func NewMemoryStore(gatewayBase string) *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte), gatewayBase: gatewayBase}
}

func (m *MemoryStore) Pin(ctx context.Context, name string, data []byte) (string, error) {
	cid := ContentID(data)

	cp := make([]byte, len(data))
	copy(cp, data)

	m.mu.Lock()
	m.blobs[cid] = cp
	m.mu.Unlock()

	return cid, nil
}

func (m *MemoryStore) Fetch(ctx context.Context, cid string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[cid]
	if !ok {
		return nil, common.ErrNotFound
	}
	return data, nil
}

func (m *MemoryStore) GatewayURL(cid string) string {
	return m.gatewayBase + "/" + cid
}
