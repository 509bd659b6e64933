// Package services contains the core business logic: identity resolution,
// access grants, record references, and the upload pipeline.
package services

import (
	"context"
	"strings"

	"github.com/hhvault/hhvault/internal/common"
	"github.com/hhvault/hhvault/internal/logging"
	"github.com/hhvault/hhvault/internal/models"
	"github.com/hhvault/hhvault/internal/registry"
	"github.com/hhvault/hhvault/internal/session"
	"github.com/hhvault/hhvault/internal/wallet"
)

// IdentityService resolves a wallet-bound registered identity and
// establishes it as the session principal.
type IdentityService struct {
	registry registry.Registry
	signer   wallet.Signer
	sessions *session.Manager
	logger   logging.Logger
}

func NewIdentityService(reg registry.Registry, signer wallet.Signer, sessions *session.Manager, logger logging.Logger) *IdentityService {
	return &IdentityService{
		registry: reg,
		signer:   signer,
		sessions: sessions,
		logger:   logger.With("module", "identity"),
	}
}

// Login resolves (role, hhNumber, password) against the registry and binds
// the result to the currently connected wallet. On success the identity
// becomes the session principal and a session token is returned.
//
// Every failure is terminal for the attempt; nothing is retried here.
func (s *IdentityService) Login(ctx context.Context, role models.Role, hhNumber, password string) (*models.Identity, string, error) {
	if !role.Valid() || !common.ValidHHNumber(hhNumber) || password == "" {
		return nil, "", common.ErrValidation
	}

	connected, err := s.signer.CurrentAddress(ctx)
	if err != nil {
		return nil, "", err
	}

	registered, err := s.registry.IsRegistered(ctx, role, hhNumber)
	if err != nil {
		return nil, "", err
	}
	if !registered {
		return nil, "", common.ErrNotRegistered
	}

	ok, err := s.registry.ValidatePassword(ctx, role, hhNumber, password)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", common.ErrInvalidCredentials
	}

	id, err := s.registry.GetDetails(ctx, role, hhNumber)
	if err != nil {
		return nil, "", err
	}

	if !strings.EqualFold(id.WalletAddress, connected) {
		s.logger.Warn(ctx, "wallet mismatch on login",
			"hhNumber", hhNumber, "connected", connected)
		return nil, "", common.ErrWalletMismatch
	}

	token, err := s.sessions.Establish(id)
	if err != nil {
		return nil, "", common.ErrInternal
	}

	s.logger.Info(ctx, "session established", "role", role, "hhNumber", hhNumber)
	return id, token, nil
}

// Logout clears the session principal.
func (s *IdentityService) Logout() {
	s.sessions.Clear()
}

// Current returns the session principal, nil when logged out.
func (s *IdentityService) Current() *models.Identity {
	return s.sessions.Principal()
}

// WatchAccountChanges clears the session whenever the signer reports a new
// active account, invalidating any in-flight operation and forcing the user
// to re-identify. Runs until ctx is done.
func (s *IdentityService) WatchAccountChanges(ctx context.Context) {
	for {
		select {
		case addr, ok := <-s.signer.AccountChanges():
			if !ok {
				return
			}
			s.logger.Warn(ctx, "wallet account changed, clearing session", "address", addr)
			s.sessions.Clear()
		case <-ctx.Done():
			return
		}
	}
}
