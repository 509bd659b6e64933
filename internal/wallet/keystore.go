package wallet

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/hhvault/hhvault/internal/common"
	"github.com/hhvault/hhvault/internal/ledger"
	"github.com/hhvault/hhvault/internal/models"
)

// ConfirmFunc is called before an attestation transaction is signed. It
// models the wallet's interactive approval: returning false declines the
// transaction. A nil ConfirmFunc approves everything (non-interactive use).
type ConfirmFunc func(from, to, value string) bool

// Keystore is a file-backed Signer. Each account is an ECDSA P-256 key
// stored as a hex scalar in <address>.key under the keystore directory.
// Exactly one account is active at a time.
type Keystore struct {
	dir    string
	ledger *ledger.Ledger

	mu       sync.RWMutex
	accounts map[string]*ecdsa.PrivateKey
	active   string

	confirm ConfirmFunc
	changes chan string
}

// NewKeystore loads all key files from dir, creating it if needed. The first
// account in address order becomes active; with no accounts the keystore is
// usable but CurrentAddress fails until CreateAccount is called.
func NewKeystore(dir string, l *ledger.Ledger, confirm ConfirmFunc) (*Keystore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("keystore dir: %w", err)
	}

	ks := &Keystore{
		dir:      dir,
		ledger:   l,
		accounts: make(map[string]*ecdsa.PrivateKey),
		confirm:  confirm,
		changes:  make(chan string, 4),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("keystore dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".key") {
			continue
		}
		key, err := loadKeyFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("keystore load %s: %w", e.Name(), err)
		}
		ks.accounts[DeriveAddress(&key.PublicKey)] = key
	}

	if len(ks.accounts) > 0 {
		addrs := ks.Addresses()
		ks.active = addrs[0]
	}

	return ks, nil
}

// Addresses lists all known account addresses in stable order.
func (ks *Keystore) Addresses() []string {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	addrs := make([]string, 0, len(ks.accounts))
	for a := range ks.accounts {
		addrs = append(addrs, a)
	}
	sort.Strings(addrs)
	return addrs
}

// CreateAccount generates a new key, persists it, and returns its address.
// The new account becomes active if none was.
func (ks *Keystore) CreateAccount() (string, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", err
	}
	addr := DeriveAddress(&key.PublicKey)

	path := filepath.Join(ks.dir, addr+".key")
	scalar := hex.EncodeToString(key.D.Bytes())
	if err := os.WriteFile(path, []byte(scalar+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("keystore write: %w", err)
	}

	ks.mu.Lock()
	ks.accounts[addr] = key
	if ks.active == "" {
		ks.active = addr
	}
	ks.mu.Unlock()

	return addr, nil
}

// Use switches the active account and signals the change.
func (ks *Keystore) Use(address string) error {
	address = strings.ToLower(address)

	ks.mu.Lock()
	if _, ok := ks.accounts[address]; !ok {
		ks.mu.Unlock()
		return common.ErrNotFound
	}
	changed := ks.active != address
	ks.active = address
	ks.mu.Unlock()

	if changed {
		select {
		case ks.changes <- address:
		default:
		}
	}
	return nil
}

func (ks *Keystore) CurrentAddress(ctx context.Context) (string, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	if ks.active == "" {
		return "", common.ErrWalletUnavailable
	}
	return ks.active, nil
}

// Attest signs and submits a minimal-value transaction from the active
// account to the given address. The confirm hook runs before signing; a
// decline maps to common.ErrTransactionRejected with no ledger write.
func (ks *Keystore) Attest(ctx context.Context, to, value string) (*models.AttestReceipt, error) {
	ks.mu.RLock()
	from := ks.active
	key := ks.accounts[from]
	confirm := ks.confirm
	ks.mu.RUnlock()

	if from == "" || key == nil {
		return nil, common.ErrWalletUnavailable
	}

	if confirm != nil && !confirm(from, to, value) {
		return nil, common.ErrTransactionRejected
	}

	tx := &ledger.Transaction{
		From:      from,
		To:        to,
		Value:     value,
		Timestamp: time.Now(),
	}

	digest := sha256.Sum256([]byte(tx.From + "|" + tx.To + "|" + tx.Value))
	sig, err := ecdsa.SignASN1(rand.Reader, key, digest[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTransactionRejected, err)
	}
	tx.Signature = sig

	receipt, err := ks.ledger.SubmitTransaction(tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTransactionRejected, err)
	}
	return receipt, nil
}

func (ks *Keystore) AccountChanges() <-chan string {
	return ks.changes
}

// DeriveAddress computes the wallet address for a public key: the last
// 20 bytes of the keccak-256 digest of X||Y, 0x-prefixed lowercase hex.
func DeriveAddress(pub *ecdsa.PublicKey) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(pub.X.Bytes())
	h.Write(pub.Y.Bytes())
	sum := h.Sum(nil)
	return "0x" + hex.EncodeToString(sum[len(sum)-20:])
}

func loadKeyFile(path string) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	scalar, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, err
	}

	curve := elliptic.P256()
	d := new(big.Int).SetBytes(scalar)
	if d.Sign() <= 0 || d.Cmp(curve.Params().N) >= 0 {
		return nil, fmt.Errorf("scalar out of range")
	}

	key := &ecdsa.PrivateKey{D: d}
	key.Curve = curve
	key.X, key.Y = curve.ScalarBaseMult(d.Bytes())
	return key, nil
}
