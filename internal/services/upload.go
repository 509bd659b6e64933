package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/hhvault/hhvault/internal/blobstore"
	"github.com/hhvault/hhvault/internal/common"
	"github.com/hhvault/hhvault/internal/logging"
	"github.com/hhvault/hhvault/internal/models"
	"github.com/hhvault/hhvault/internal/session"
	"github.com/hhvault/hhvault/internal/wallet"
)

// UploadState is the observable phase of the upload pipeline.
type UploadState string

const (
	StateIdle       UploadState = "idle"
	StateValidating UploadState = "validating"
	StateAttesting  UploadState = "attesting"
	StateUploading  UploadState = "uploading"
	StatePersisting UploadState = "persisting"
	StateDone       UploadState = "done"
	StateFailed     UploadState = "failed"
)

// RequiredReportKeys are the structured fields a doctor or diagnostic-center
// upload must populate. Patient self-uploads carry no structured report.
var RequiredReportKeys = []string{"doctorName", "age", "bloodGroup", "gender"}

// UploadRequest is the input to one pipeline invocation. PatientHH is the
// target list; patients may leave it empty to upload to their own.
type UploadRequest struct {
	PatientHH     string
	FileName      string
	Data          []byte
	ReportDetails map[string]string
}

// UploadPipeline runs the record upload state machine:
//
//	Idle -> Validating -> Attesting -> Uploading -> Persisting -> Done
//
// with Failed(reason) reachable from every step. Steps are strictly
// sequential; a failed invocation leaves no partial store mutation but a
// completed attestation is NOT rolled back when a later step fails; the
// cost is accepted, not compensated. Nothing is retried automatically: the
// caller re-invokes the whole pipeline from Idle.
type UploadPipeline struct {
	signer      wallet.Signer
	blobs       blobstore.Store
	records     *RecordService
	sessions    *session.Manager
	attestValue string
	logger      logging.Logger

	mu         sync.Mutex
	state      UploadState
	failReason string
}

func NewUploadPipeline(signer wallet.Signer, blobs blobstore.Store, records *RecordService,
	sessions *session.Manager, attestValue string, logger logging.Logger) *UploadPipeline {
	return &UploadPipeline{
		signer:      signer,
		blobs:       blobs,
		records:     records,
		sessions:    sessions,
		attestValue: attestValue,
		logger:      logger.With("module", "upload"),
		state:       StateIdle,
	}
}

// State returns the current phase and, when Failed, the reason. A remote
// call that never returns leaves the pipeline visibly in its current phase.
func (p *UploadPipeline) State() (UploadState, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state, p.failReason
}

func (p *UploadPipeline) setState(s UploadState) {
	p.mu.Lock()
	p.state = s
	p.failReason = ""
	p.mu.Unlock()
}

func (p *UploadPipeline) fail(reason string, err error) error {
	p.mu.Lock()
	p.state = StateFailed
	p.failReason = reason
	p.mu.Unlock()
	return err
}

// Run executes one pipeline invocation for the session identified by token.
// A second invocation while one is in flight is rejected.
func (p *UploadPipeline) Run(ctx context.Context, token string, req UploadRequest) (*models.RecordReference, error) {
	p.mu.Lock()
	if p.state != StateIdle && p.state != StateDone && p.state != StateFailed {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: upload already in progress", common.ErrValidation)
	}
	p.state = StateIdle
	p.failReason = ""
	p.mu.Unlock()

	// Validating
	p.setState(StateValidating)
	claims, err := p.sessions.Verify(token)
	if err != nil {
		return nil, p.fail("unauthenticated", err)
	}
	target, err := p.validate(claims, &req)
	if err != nil {
		return nil, p.fail("validation", err)
	}

	// Attesting: minimal-value transfer to the null address. An economic
	// friction gate, not a data write.
	p.setState(StateAttesting)
	receipt, err := p.signer.Attest(ctx, wallet.NullAddress, p.attestValue)
	if err != nil {
		return nil, p.fail("attestation", err)
	}
	p.logger.Info(ctx, "attestation accepted", "tx", receipt.TxHash, "from", receipt.From)

	// Uploading: no automatic retry; the whole pipeline is re-invoked.
	p.setState(StateUploading)
	cid, err := p.blobs.Pin(ctx, req.FileName, req.Data)
	if err != nil {
		p.logger.Error(ctx, "blob upload failed after attestation", "error", err.Error())
		return nil, p.fail("upload", fmt.Errorf("%w: %v", common.ErrUpload, err))
	}

	// Persisting: cannot fail by contract.
	p.setState(StatePersisting)
	ref := &models.RecordReference{
		PatientHH:     target,
		CID:           cid,
		FileName:      req.FileName,
		UploaderRole:  claims.Role,
		UploaderHH:    claims.HHNumber,
		ReportDetails: req.ReportDetails,
	}
	stored, err := p.records.Append(ctx, ref)
	if err != nil {
		return nil, p.fail("persisting", err)
	}

	p.setState(StateDone)
	return stored, nil
}

// validate applies the step-1 rules and resolves the target patient list.
func (p *UploadPipeline) validate(claims *session.Claims, req *UploadRequest) (string, error) {
	if len(req.Data) == 0 || req.FileName == "" {
		return "", fmt.Errorf("%w: a non-empty file is required", common.ErrValidation)
	}

	if claims.Role == models.RolePatient {
		if req.PatientHH != "" && req.PatientHH != claims.HHNumber {
			return "", common.ErrUnauthorized
		}
		return claims.HHNumber, nil
	}

	// Doctor / diagnostic-center flow: explicit target plus a fully
	// populated structured report. No partial submission is possible.
	if !common.ValidHHNumber(req.PatientHH) {
		return "", fmt.Errorf("%w: patient HH number must be exactly 6 digits", common.ErrValidation)
	}
	for _, key := range RequiredReportKeys {
		if req.ReportDetails[key] == "" {
			return "", fmt.Errorf("%w: missing report field %q", common.ErrValidation, key)
		}
	}
	return req.PatientHH, nil
}
