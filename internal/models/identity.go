// Package models defines the domain types shared by repositories and
// services: identities, access grants, and record references.
package models

// Role distinguishes the three registered identity namespaces. An HH number
// is unique within one role namespace, not across all of them.
type Role string

const (
	RolePatient          Role = "patient"
	RoleDoctor           Role = "doctor"
	RoleDiagnosticCenter Role = "diagnostic"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleDiagnosticCenter:
		return true
	}
	return false
}

// ParseRole maps user input to a Role, accepting the canonical names.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	if r.Valid() {
		return r, true
	}
	return "", false
}

// Identity is a registered principal as stored by the external registry.
// HHNumber is the 6-digit human-facing identifier; WalletAddress is the
// lowercase hex address of the wallet bound at registration time.
//
// The role-specific fields are populated only for the matching role and
// are carried opaquely by this core.
type Identity struct {
	Role          Role   `json:"role"`
	HHNumber      string `json:"hhNumber"`
	WalletAddress string `json:"walletAddress"`
	Name          string `json:"name"`

	// Patient fields.
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Gender      string `json:"gender,omitempty"`
	BloodGroup  string `json:"bloodGroup,omitempty"`
	HomeAddress string `json:"homeAddress,omitempty"`
	Email       string `json:"email,omitempty"`

	// Doctor fields.
	Specialization string `json:"specialization,omitempty"`
	Hospital       string `json:"hospital,omitempty"`

	// Diagnostic-center fields.
	Location string `json:"location,omitempty"`
}
