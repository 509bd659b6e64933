package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hhvault/hhvault/internal/common"
	"github.com/hhvault/hhvault/internal/dbx"
	"github.com/hhvault/hhvault/internal/logging"
	"github.com/hhvault/hhvault/internal/models"
	"github.com/hhvault/hhvault/internal/notify"
	"github.com/hhvault/hhvault/internal/repositories/repomanager"
	"github.com/hhvault/hhvault/internal/session"
	"github.com/hhvault/hhvault/internal/wallet"
)

// RecordService owns the per-patient record reference lists.
type RecordService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	grants   *GrantService
	signer   wallet.Signer
	sessions *session.Manager
	broker   *notify.Broker
	logger   logging.Logger
}

func NewRecordService(db *sql.DB, repos repomanager.RepositoryManager, grants *GrantService,
	signer wallet.Signer, sessions *session.Manager, broker *notify.Broker, logger logging.Logger) *RecordService {
	return &RecordService{
		db:       db,
		repos:    repos,
		grants:   grants,
		signer:   signer,
		sessions: sessions,
		broker:   broker,
		logger:   logger.With("module", "records"),
	}
}

// Append adds ref to the end of the patient's list, assigning RecordID and
// UploadedAt. By contract this step does not fail under correct use; a
// storage error is still propagated rather than swallowed.
func (s *RecordService) Append(ctx context.Context, ref *models.RecordReference) (*models.RecordReference, error) {
	if ref.RecordID == "" {
		ref.RecordID = uuid.NewString()
	}
	ref.UploadedAt = time.Now()

	if err := s.repos.Records(s.db).Append(ctx, ref); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "record reference appended",
		"patient", ref.PatientHH, "recordId", ref.RecordID, "cid", ref.CID)
	s.broker.Publish(notify.Event{Kind: notify.KindRecords, PatientHH: ref.PatientHH, Op: "append"})
	return ref, nil
}

// List returns the patient's record references in chronological order.
func (s *RecordService) List(ctx context.Context, patientHH string) ([]models.RecordReference, error) {
	return s.repos.Records(s.db).ListByPatient(ctx, patientHH)
}

// ListForDoctor returns one patient's records to an authenticated doctor,
// but only while that doctor holds a grant from the patient.
func (s *RecordService) ListForDoctor(ctx context.Context, token, patientHH string) ([]models.RecordReference, error) {
	claims, err := s.sessions.Verify(token)
	if err != nil {
		return nil, err
	}
	if claims.Role != models.RoleDoctor {
		return nil, common.ErrUnauthorized
	}

	allowed, err := s.grants.HasAccess(ctx, patientHH, claims.HHNumber)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, common.ErrUnauthorized
	}

	return s.List(ctx, patientHH)
}

// Delete removes the index-th reference (0-based, list order) from the
// acting patient's own list. Out-of-range indexes fail with
// common.ErrIndexOutOfRange and leave the list unchanged.
//
// This is a pure positional removal with no tombstone: a doctor holding a
// concurrently fetched list may still reference the removed entry.
func (s *RecordService) Delete(ctx context.Context, token string, index int) error {
	claims, err := s.sessions.Verify(token)
	if err != nil {
		return err
	}
	if claims.Role != models.RolePatient {
		return common.ErrUnauthorized
	}

	connected, err := s.signer.CurrentAddress(ctx)
	if err != nil {
		return err
	}
	if !strings.EqualFold(connected, claims.WalletAddress) {
		s.sessions.Clear()
		return common.ErrWalletMismatch
	}

	var deletedID string
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		list, err := s.repos.Records(tx).ListByPatient(ctx, claims.HHNumber)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(list) {
			return common.ErrIndexOutOfRange
		}
		deletedID = list[index].RecordID
		return s.repos.Records(tx).DeleteByID(ctx, claims.HHNumber, deletedID)
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "record reference deleted",
		"patient", claims.HHNumber, "recordId", deletedID)
	s.broker.Publish(notify.Event{Kind: notify.KindRecords, PatientHH: claims.HHNumber, Op: "delete"})
	return nil
}
