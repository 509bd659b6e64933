// hhregadm registers identities into the ledger-backed registry. It is the
// administrative counterpart of hhvault: the vault only reads registrations,
// this tool writes them.
//
// Usage:
//
//	hhregadm -ledger ledger -role patient -hh 123456 -name "Alice" \
//	    -wallet 0xabc... [-dob 1990-01-01 -gender F -blood A+ -addr "..." -email a@b.c]
//	hhregadm -ledger ledger -role doctor -hh 654321 -name "Dr. Bob" \
//	    -wallet 0xdef... [-spec cardiology -hospital "General"]
//
// The password is prompted without echo.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/hhvault/hhvault/internal/ledger"
	"github.com/hhvault/hhvault/internal/models"
	"github.com/hhvault/hhvault/internal/registry"
)

func main() {

	var (
		ledgerPath = flag.String("ledger", "ledger", "ledger directory")
		role       = flag.String("role", "", "identity role (patient|doctor|diagnostic)")
		hhNumber   = flag.String("hh", "", "6-digit HH number")
		name       = flag.String("name", "", "display name")
		walletAddr = flag.String("wallet", "", "wallet address (0x-prefixed hex)")

		dob      = flag.String("dob", "", "patient date of birth")
		gender   = flag.String("gender", "", "patient gender")
		blood    = flag.String("blood", "", "patient blood group")
		homeAddr = flag.String("addr", "", "patient home address")
		email    = flag.String("email", "", "patient email")

		spec     = flag.String("spec", "", "doctor specialization")
		hospital = flag.String("hospital", "", "doctor hospital")

		location = flag.String("location", "", "diagnostic-center location")
	)
	flag.Parse()

	r, ok := models.ParseRole(*role)
	if !ok {
		log.Fatalf("unknown role %q", *role)
	}

	fmt.Fprint(os.Stderr, "Password for new identity: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		log.Fatalf("read password: %v", err)
	}

	l, err := ledger.Open(*ledgerPath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer l.Close()

	id := models.Identity{
		Role:          r,
		HHNumber:      *hhNumber,
		WalletAddress: *walletAddr,
		Name:          *name,

		DateOfBirth: *dob,
		Gender:      *gender,
		BloodGroup:  *blood,
		HomeAddress: *homeAddr,
		Email:       *email,

		Specialization: *spec,
		Hospital:       *hospital,

		Location: *location,
	}

	reg := registry.NewLedgerRegistry(l)
	if err := reg.Register(context.Background(), id, string(password)); err != nil {
		log.Fatalf("register: %v", err)
	}

	fmt.Printf("registered %s %s\n", r, *hhNumber)
}
