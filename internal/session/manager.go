package session

import (
	"sync"
	"time"

	"github.com/hhvault/hhvault/internal/common"
	"github.com/hhvault/hhvault/internal/models"
)

// Manager holds the single session principal for this process. It is set at
// login, read by every guarded operation, and cleared on logout or when the
// signer reports an account change (forcing re-resolution).
type Manager struct {
	mu        sync.RWMutex
	principal *models.Identity

	secretKey []byte
	validity  time.Duration
}

func NewManager(secretKey string, validity time.Duration) *Manager {
	return &Manager{secretKey: []byte(secretKey), validity: validity}
}

// Establish stores id as the session principal and mints a token for it.
func (m *Manager) Establish(id *models.Identity) (string, error) {
	token, err := GenerateToken(id, m.secretKey, m.validity)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.principal = id
	m.mu.Unlock()

	return token, nil
}

// Principal returns the current session principal, or nil when logged out.
func (m *Manager) Principal() *models.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.principal
}

// Clear drops the session principal. Safe to call when already cleared.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.principal = nil
	m.mu.Unlock()
}

// Verify validates the token signature and expiry and checks that the token
// still matches the live principal. A stale token (principal cleared or
// replaced since it was minted) is unauthorized: the in-flight operation was
// invalidated and the caller must re-identify.
func (m *Manager) Verify(token string) (*Claims, error) {
	claims, err := ParseToken(token, m.secretKey)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	p := m.principal
	m.mu.RUnlock()

	if p == nil || p.Role != claims.Role || p.HHNumber != claims.HHNumber {
		return nil, common.ErrUnauthorized
	}

	return claims, nil
}
