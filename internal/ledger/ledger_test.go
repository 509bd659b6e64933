package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/hhvault/hhvault/internal/common"
	"github.com/hhvault/hhvault/internal/models"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := OpenStorage(storage.NewMemStorage())
	if err != nil {
		t.Fatalf("OpenStorage error: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestIdentity_PutGetHas(t *testing.T) {
	l := newTestLedger(t)

	rec := &IdentityRecord{
		Identity: models.Identity{
			Role:          models.RolePatient,
			HHNumber:      "123456",
			WalletAddress: "0xabc",
			Name:          "Alice",
		},
		PasswordSalt:     []byte("salt"),
		PasswordVerifier: []byte("verifier"),
		RegisteredAt:     time.Now(),
	}
	if err := l.PutIdentity(rec); err != nil {
		t.Fatalf("PutIdentity error: %v", err)
	}

	got, err := l.GetIdentity(models.RolePatient, "123456")
	if err != nil {
		t.Fatalf("GetIdentity error: %v", err)
	}
	if got.Identity.Name != "Alice" || string(got.PasswordSalt) != "salt" {
		t.Fatalf("unexpected record: %+v", got)
	}

	ok, err := l.HasIdentity(models.RolePatient, "123456")
	if err != nil || !ok {
		t.Fatalf("HasIdentity: ok=%v err=%v", ok, err)
	}
}

func TestIdentity_RoleNamespaces(t *testing.T) {
	l := newTestLedger(t)

	rec := &IdentityRecord{
		Identity: models.Identity{Role: models.RolePatient, HHNumber: "123456", WalletAddress: "0xabc"},
	}
	if err := l.PutIdentity(rec); err != nil {
		t.Fatalf("PutIdentity error: %v", err)
	}

	// the same number under a different role is a different identity
	ok, err := l.HasIdentity(models.RoleDoctor, "123456")
	if err != nil || ok {
		t.Fatalf("doctor namespace must be empty: ok=%v err=%v", ok, err)
	}
}

func TestGetIdentity_NotFound(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.GetIdentity(models.RolePatient, "999999")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSubmitTransaction_AssignsHeightAndHash(t *testing.T) {
	l := newTestLedger(t)

	h, err := l.Height()
	if err != nil || h != 0 {
		t.Fatalf("initial height: %d err=%v", h, err)
	}

	r1, err := l.SubmitTransaction(&Transaction{
		From: "0xaa", To: "0x00", Value: "0.001", Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("SubmitTransaction error: %v", err)
	}
	r2, err := l.SubmitTransaction(&Transaction{
		From: "0xaa", To: "0x00", Value: "0.001", Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("SubmitTransaction error: %v", err)
	}

	if r1.Height != 1 || r2.Height != 2 {
		t.Fatalf("heights: %d, %d", r1.Height, r2.Height)
	}
	if r1.TxHash == "" || r1.TxHash == r2.TxHash {
		t.Fatalf("hashes must be distinct and non-empty: %q %q", r1.TxHash, r2.TxHash)
	}

	h, err = l.Height()
	if err != nil || h != 2 {
		t.Fatalf("height after two txs: %d err=%v", h, err)
	}
}

func TestGetTransaction_ByHash(t *testing.T) {
	l := newTestLedger(t)

	receipt, err := l.SubmitTransaction(&Transaction{
		From: "0xaa", To: "0xbb", Value: "0.001", Timestamp: time.Now(), Signature: []byte("sig"),
	})
	if err != nil {
		t.Fatalf("SubmitTransaction error: %v", err)
	}

	tx, err := l.GetTransaction(receipt.TxHash)
	if err != nil {
		t.Fatalf("GetTransaction error: %v", err)
	}
	if tx.From != "0xaa" || tx.To != "0xbb" || tx.Height != receipt.Height {
		t.Fatalf("unexpected tx: %+v", tx)
	}

	if _, err := l.GetTransaction("deadbeef"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("unknown hash: want ErrNotFound, got %v", err)
	}
}
