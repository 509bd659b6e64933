package cli

import (
	"context"
	"fmt"
)

// Grant prompts for a doctor HH number and grants them access to the
// logged-in patient's records.
func (a *App) Grant(ctx context.Context) error {
	doctorHH, err := GetSimpleText(a.reader, "Doctor HH Number (6 digits)", a.out)
	if err != nil {
		return err
	}

	if err := a.grants.Grant(ctx, a.token, doctorHH); err != nil {
		fmt.Fprintln(a.out, "Grant failed:", err.Error())
		return err
	}

	fmt.Fprintf(a.out, "Access granted to doctor %s\n", doctorHH)
	return nil
}

// Revoke removes a doctor's access.
func (a *App) Revoke(ctx context.Context) error {
	doctorHH, err := GetSimpleText(a.reader, "Doctor HH Number (6 digits)", a.out)
	if err != nil {
		return err
	}

	if err := a.grants.Revoke(ctx, a.token, doctorHH); err != nil {
		fmt.Fprintln(a.out, "Revoke failed:", err.Error())
		return err
	}

	fmt.Fprintf(a.out, "Access revoked from doctor %s\n", doctorHH)
	return nil
}

// Grants lists the doctors the logged-in patient has granted, in the order
// the grants were made.
func (a *App) Grants(ctx context.Context) error {
	p := a.sessions.Principal()
	if p == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	list, err := a.grants.ListGrantedDoctors(ctx, p.HHNumber)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err.Error())
		return err
	}

	if len(list) == 0 {
		fmt.Fprintln(a.out, "No doctors have access")
		return nil
	}
	for _, g := range list {
		fmt.Fprintf(a.out, "doctor %s, granted %s\n", g.DoctorHH, g.GrantedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// Patients lists the patients visible to the logged-in doctor.
func (a *App) Patients(ctx context.Context) error {
	p := a.sessions.Principal()
	if p == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	patients, err := a.grants.ListAuthorizedPatients(ctx, p.HHNumber)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err.Error())
		return err
	}

	if len(patients) == 0 {
		fmt.Fprintln(a.out, "No patients have granted you access")
		return nil
	}
	for _, hh := range patients {
		fmt.Fprintln(a.out, "patient", hh)
	}
	return nil
}
