// Package registry defines the read-only identity registry port and its
// ledger-backed implementation. Registration itself happens out of band
// (cmd/hhregadm); this core only checks, validates, and looks up.
package registry

import (
	"context"

	"github.com/hhvault/hhvault/internal/models"
)

// Registry is the external identity collaborator. It is authoritative for
// who is registered, which wallet they registered with, and whether a
// presented password matches.
type Registry interface {
	// IsRegistered reports whether hhNumber is registered under role.
	IsRegistered(ctx context.Context, role models.Role, hhNumber string) (bool, error)

	// ValidatePassword checks password against the registered verifier.
	// It returns false (not an error) for an unknown identity.
	ValidatePassword(ctx context.Context, role models.Role, hhNumber, password string) (bool, error)

	// GetDetails returns the full identity record, or common.ErrNotFound.
	GetDetails(ctx context.Context, role models.Role, hhNumber string) (*models.Identity, error)
}
