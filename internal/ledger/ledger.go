// Package ledger implements the embedded ledger shared by the registry and
// the signer: registered identities live under per-role keys, attestation
// transactions are appended under a monotonically increasing height.
//
// Layout (all values JSON):
//
//	identity_<role>_<hh>  -> IdentityRecord
//	tx_<height>           -> Transaction
//	txhash_<hash>         -> Transaction
//	height_latest         -> decimal height of the newest transaction
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/hhvault/hhvault/internal/common"
	"github.com/hhvault/hhvault/internal/models"
)

// IdentityRecord is what registration writes and the registry reads back:
// the public identity plus the password verifier material.
type IdentityRecord struct {
	Identity         models.Identity `json:"identity"`
	PasswordSalt     []byte          `json:"passwordSalt"`
	PasswordVerifier []byte          `json:"passwordVerifier"`
	RegisteredAt     time.Time       `json:"registeredAt"`
}

// Transaction is a minimal value transfer appended by the signer's Attest.
type Transaction struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Value     string    `json:"value"`
	Timestamp time.Time `json:"timestamp"`
	Signature []byte    `json:"signature"`
	Hash      string    `json:"hash"`
	Height    uint64    `json:"height"`
}

type Ledger struct {
	db *leveldb.DB

	mu sync.Mutex // serializes height allocation
}

// Open opens (or creates) the ledger database at path.
func Open(path string) (*Ledger, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("ledger open: %w", err)
	}
	return &Ledger{db: db}, nil
}

// OpenStorage opens the ledger on an arbitrary leveldb storage backend.
// Tests use storage.NewMemStorage().
func OpenStorage(stor storage.Storage) (*Ledger, error) {
	db, err := leveldb.Open(stor, nil)
	if err != nil {
		return nil, fmt.Errorf("ledger open: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

func identityKey(role models.Role, hhNumber string) []byte {
	return []byte(fmt.Sprintf("identity_%s_%s", role, hhNumber))
}

// PutIdentity stores rec under its role/hh key, overwriting any previous
// registration for the same identity.
func (l *Ledger) PutIdentity(rec *IdentityRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	key := identityKey(rec.Identity.Role, rec.Identity.HHNumber)
	if err := l.db.Put(key, data, nil); err != nil {
		return fmt.Errorf("ledger put: %w", err)
	}
	return nil
}

// GetIdentity returns the registration record for (role, hhNumber), or
// common.ErrNotFound when none exists.
func (l *Ledger) GetIdentity(role models.Role, hhNumber string) (*IdentityRecord, error) {
	data, err := l.db.Get(identityKey(role, hhNumber), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("ledger get: %w", err)
	}

	rec := &IdentityRecord{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// HasIdentity reports whether (role, hhNumber) is registered.
func (l *Ledger) HasIdentity(role models.Role, hhNumber string) (bool, error) {
	ok, err := l.db.Has(identityKey(role, hhNumber), nil)
	if err != nil {
		return false, fmt.Errorf("ledger has: %w", err)
	}
	return ok, nil
}

// Height returns the height of the newest transaction, 0 when none exist.
func (l *Ledger) Height() (uint64, error) {
	data, err := l.db.Get([]byte("height_latest"), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	return strconv.ParseUint(string(data), 10, 64)
}

// SubmitTransaction assigns the next height, hashes and stores tx, and
// returns the receipt. The signature is stored as given; verification is the
// submitter's concern.
func (l *Ledger) SubmitTransaction(tx *Transaction) (*models.AttestReceipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	height, err := l.Height()
	if err != nil {
		return nil, err
	}
	tx.Height = height + 1

	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d|%s",
		tx.From, tx.To, tx.Value, tx.Height, tx.Timestamp.UTC().Format(time.RFC3339Nano))))
	tx.Hash = hex.EncodeToString(sum[:])

	data, err := json.Marshal(tx)
	if err != nil {
		return nil, err
	}

	batch := new(leveldb.Batch)
	batch.Put([]byte(fmt.Sprintf("tx_%d", tx.Height)), data)
	batch.Put([]byte("txhash_"+tx.Hash), data)
	batch.Put([]byte("height_latest"), []byte(strconv.FormatUint(tx.Height, 10)))
	if err := l.db.Write(batch, nil); err != nil {
		return nil, fmt.Errorf("ledger write: %w", err)
	}

	return &models.AttestReceipt{
		TxHash: tx.Hash,
		From:   tx.From,
		To:     tx.To,
		Value:  tx.Value,
		Height: tx.Height,
	}, nil
}

// GetTransaction looks a transaction up by hash.
func (l *Ledger) GetTransaction(hash string) (*Transaction, error) {
	data, err := l.db.Get([]byte("txhash_"+hash), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	tx := &Transaction{}
	if err := json.Unmarshal(data, tx); err != nil {
		return nil, err
	}
	return tx, nil
}
