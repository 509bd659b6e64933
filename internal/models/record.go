package models

import "time"

// RecordReference is a pointer to an uploaded record payload. The payload
// itself lives in the blob store under CID; the reference is what patients
// delete and doctors list. CID is immutable once the reference exists.
//
// RecordID is unique within one patient's list (uuid in practice, so
// globally unique too, though nothing relies on that).
type RecordReference struct {
	RecordID      string
	PatientHH     string
	CID           string
	FileName      string
	UploadedAt    time.Time
	UploaderRole  Role
	UploaderHH    string
	ReportDetails map[string]string
}

// AttestReceipt is returned by the signer after the attestation transaction
// is accepted by the ledger.
type AttestReceipt struct {
	TxHash string
	From   string
	To     string
	Value  string
	Height uint64
}
