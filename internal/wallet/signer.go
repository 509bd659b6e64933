// Package wallet defines the signer port: the modal external capability
// that owns the private keys. The core never sees a key, only addresses,
// receipts, and the account-change signal.
package wallet

import (
	"context"

	"github.com/hhvault/hhvault/internal/models"
)

// NullAddress is the fixed recipient of attestation transactions.
const NullAddress = "0x0000000000000000000000000000000000000000"

// Signer is the wallet capability injected into the core.
//
// CurrentAddress fails with common.ErrWalletUnavailable when no account is
// active. Attest submits a minimal-value transaction from the active account
// and fails with common.ErrTransactionRejected when the user declines.
//
// AccountChanges delivers the new active address whenever the user switches
// accounts; consumers must treat any delivery as invalidating the session
// principal.
type Signer interface {
	CurrentAddress(ctx context.Context) (string, error)
	Attest(ctx context.Context, to, value string) (*models.AttestReceipt, error)
	AccountChanges() <-chan string
}
