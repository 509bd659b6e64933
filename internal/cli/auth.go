package cli

import (
	"context"
	"fmt"

	"github.com/hhvault/hhvault/internal/models"
)

// Login prompts for role, HH number, and password, resolves the identity,
// and keeps the session token for subsequent commands.
func (a *App) Login(ctx context.Context) error {
	roleInput, err := GetSimpleText(a.reader, "Role (patient/doctor/diagnostic)", a.out)
	if err != nil {
		return err
	}
	role, ok := models.ParseRole(roleInput)
	if !ok {
		fmt.Fprintln(a.out, "Unknown role:", roleInput)
		return nil
	}

	hhNumber, err := GetSimpleText(a.reader, "HH Number (6 digits)", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	id, token, err := a.identity.Login(ctx, role, hhNumber, password)
	if err != nil {
		fmt.Fprintln(a.out, "Login failed:", err.Error())
		return err
	}

	a.token = token
	fmt.Fprintf(a.out, "Logged in as %s (%s %s)\n", id.Name, id.Role, id.HHNumber)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.identity.Logout()
	a.token = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	p := a.identity.Current()
	if p == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	fmt.Fprintf(a.out, "%s %s (%s), wallet %s\n", p.Role, p.HHNumber, p.Name, p.WalletAddress)
	return nil
}
