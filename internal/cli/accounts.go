package cli

import (
	"context"
	"fmt"
)

// Accounts lists the keystore accounts, marking the active one.
func (a *App) Accounts(ctx context.Context) error {
	active, _ := a.keystore.CurrentAddress(ctx)
	addrs := a.keystore.Addresses()

	if len(addrs) == 0 {
		fmt.Fprintln(a.out, "No accounts; run 'newaccount'")
		return nil
	}
	for _, addr := range addrs {
		marker := " "
		if addr == active {
			marker = "*"
		}
		fmt.Fprintf(a.out, "%s %s\n", marker, addr)
	}
	return nil
}

// NewAccount generates and persists a fresh wallet account.
func (a *App) NewAccount(ctx context.Context) error {
	addr, err := a.keystore.CreateAccount()
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err.Error())
		return err
	}
	fmt.Fprintln(a.out, "Created account", addr)
	return nil
}

// UseAccount switches the active wallet account. Switching invalidates any
// established session: the account-change watcher clears the principal.
func (a *App) UseAccount(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: use <address>")
		return nil
	}

	if err := a.keystore.Use(args[0]); err != nil {
		fmt.Fprintln(a.out, "Error:", err.Error())
		return err
	}

	a.token = ""
	fmt.Fprintln(a.out, "Switched to", args[0])
	return nil
}
