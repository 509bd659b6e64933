package registry

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hhvault/hhvault/internal/common"
	"github.com/hhvault/hhvault/internal/ledger"
	"github.com/hhvault/hhvault/internal/models"
)

// LedgerRegistry reads identity registrations from the embedded ledger.
type LedgerRegistry struct {
	ledger *ledger.Ledger
}

func NewLedgerRegistry(l *ledger.Ledger) *LedgerRegistry {
	return &LedgerRegistry{ledger: l}
}

func (r *LedgerRegistry) IsRegistered(ctx context.Context, role models.Role, hhNumber string) (bool, error) {
	return r.ledger.HasIdentity(role, hhNumber)
}

func (r *LedgerRegistry) ValidatePassword(ctx context.Context, role models.Role, hhNumber, password string) (bool, error) {
	rec, err := r.ledger.GetIdentity(role, hhNumber)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	candidate := DeriveVerifier(password, rec.PasswordSalt)
	return CheckVerifier(rec.PasswordVerifier, candidate), nil
}

func (r *LedgerRegistry) GetDetails(ctx context.Context, role models.Role, hhNumber string) (*models.Identity, error) {
	rec, err := r.ledger.GetIdentity(role, hhNumber)
	if err != nil {
		return nil, err
	}
	id := rec.Identity
	return &id, nil
}

// Register writes a new identity record. This is the administrative write
// path used by hhregadm, not part of the Registry read interface.
func (r *LedgerRegistry) Register(ctx context.Context, id models.Identity, password string) error {
	if !id.Role.Valid() {
		return common.ErrValidation
	}
	if !common.ValidHHNumber(id.HHNumber) {
		return common.ErrValidation
	}
	if password == "" || id.WalletAddress == "" {
		return common.ErrValidation
	}
	id.WalletAddress = strings.ToLower(id.WalletAddress)

	salt := common.GenerateRandByteArray(16)
	rec := &ledger.IdentityRecord{
		Identity:         id,
		PasswordSalt:     salt,
		PasswordVerifier: DeriveVerifier(password, salt),
		RegisteredAt:     time.Now(),
	}
	return r.ledger.PutIdentity(rec)
}
