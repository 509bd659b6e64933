package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hhvault/hhvault/internal/common"
	"github.com/hhvault/hhvault/internal/logging"
	"github.com/hhvault/hhvault/internal/models"
	"github.com/hhvault/hhvault/internal/notify"
	"github.com/hhvault/hhvault/internal/registry"
	"github.com/hhvault/hhvault/internal/repositories/repomanager"
	"github.com/hhvault/hhvault/internal/session"
	"github.com/hhvault/hhvault/internal/wallet"
)

// GrantService mutates and queries the access-grant store. Every mutation
// requires the acting principal to be the patient owning the grant list,
// re-checked against the live wallet address on each call.
type GrantService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	registry registry.Registry
	signer   wallet.Signer
	sessions *session.Manager
	broker   *notify.Broker
	logger   logging.Logger
}

func NewGrantService(db *sql.DB, repos repomanager.RepositoryManager, reg registry.Registry,
	signer wallet.Signer, sessions *session.Manager, broker *notify.Broker, logger logging.Logger) *GrantService {
	return &GrantService{
		db:       db,
		repos:    repos,
		registry: reg,
		signer:   signer,
		sessions: sessions,
		broker:   broker,
		logger:   logger.With("module", "grants"),
	}
}

// requirePatientOwner verifies the session token, requires the patient role,
// and compares the registered wallet with the currently connected one. On a
// mismatch the session is cleared so the caller is forced to re-identify
// instead of silently proceeding with a stale principal.
func (s *GrantService) requirePatientOwner(ctx context.Context, token string) (*session.Claims, error) {
	claims, err := s.sessions.Verify(token)
	if err != nil {
		return nil, err
	}
	if claims.Role != models.RolePatient {
		return nil, common.ErrUnauthorized
	}

	connected, err := s.signer.CurrentAddress(ctx)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(connected, claims.WalletAddress) {
		s.logger.Warn(ctx, "wallet mismatch, invalidating session",
			"hhNumber", claims.HHNumber, "connected", connected)
		s.sessions.Clear()
		return nil, common.ErrWalletMismatch
	}

	return claims, nil
}

// Grant allows doctorHH to view the acting patient's records. Granting an
// already-granted doctor is a successful no-op.
func (s *GrantService) Grant(ctx context.Context, token, doctorHH string) error {
	claims, err := s.requirePatientOwner(ctx, token)
	if err != nil {
		return err
	}

	if !common.ValidHHNumber(doctorHH) {
		return fmt.Errorf("%w: doctor HH number must be exactly 6 digits", common.ErrValidation)
	}

	registered, err := s.registry.IsRegistered(ctx, models.RoleDoctor, doctorHH)
	if err != nil {
		return err
	}
	if !registered {
		return common.ErrNotRegistered
	}

	grant := &models.AccessGrant{
		PatientHH: claims.HHNumber,
		DoctorHH:  doctorHH,
		GrantedAt: time.Now(),
	}
	if err := s.repos.Grants(s.db).Upsert(ctx, grant); err != nil {
		return err
	}

	s.logger.Info(ctx, "access granted", "patient", claims.HHNumber, "doctor", doctorHH)
	s.broker.Publish(notify.Event{Kind: notify.KindGrants, PatientHH: claims.HHNumber, Op: "grant"})
	return nil
}

// Revoke removes doctorHH's access. Revoking an absent grant is a no-op.
func (s *GrantService) Revoke(ctx context.Context, token, doctorHH string) error {
	claims, err := s.requirePatientOwner(ctx, token)
	if err != nil {
		return err
	}

	if !common.ValidHHNumber(doctorHH) {
		return fmt.Errorf("%w: doctor HH number must be exactly 6 digits", common.ErrValidation)
	}

	if err := s.repos.Grants(s.db).Delete(ctx, claims.HHNumber, doctorHH); err != nil {
		return err
	}

	s.logger.Info(ctx, "access revoked", "patient", claims.HHNumber, "doctor", doctorHH)
	s.broker.Publish(notify.Event{Kind: notify.KindGrants, PatientHH: claims.HHNumber, Op: "revoke"})
	return nil
}

// ListGrantedDoctors returns the patient's grants in insertion order.
func (s *GrantService) ListGrantedDoctors(ctx context.Context, patientHH string) ([]models.AccessGrant, error) {
	return s.repos.Grants(s.db).ListByPatient(ctx, patientHH)
}

// ListAuthorizedPatients returns the patients visible to doctorHH. A patient
// is visible iff a grant (patient, doctor) exists; no other field matters.
func (s *GrantService) ListAuthorizedPatients(ctx context.Context, doctorHH string) ([]string, error) {
	return s.repos.Grants(s.db).ListPatientsByDoctor(ctx, doctorHH)
}

// HasAccess reports whether a grant (patientHH, doctorHH) currently exists.
func (s *GrantService) HasAccess(ctx context.Context, patientHH, doctorHH string) (bool, error) {
	return s.repos.Grants(s.db).Exists(ctx, patientHH, doctorHH)
}
