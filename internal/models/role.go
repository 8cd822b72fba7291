package models

import "fmt"

type Role string

const (
	RoleCustomer Role = "Customer"
	RoleManager  Role = "Manager"
	RoleAdmin    Role = "Admin"
)

// Capability names one gated operation or view.
type Capability string

const (
	CapViewDashboard    Capability = "dashboard"
	CapTransfer         Capability = "transfer"
	CapViewTransactions Capability = "transactions"
	CapManagerPanel     Capability = "manager"
	CapAdminPanel       Capability = "admin"
)

// capabilities is the single source of truth for role gating.
var capabilities = map[Role][]Capability{
	RoleCustomer: {CapViewDashboard, CapTransfer, CapViewTransactions},
	RoleManager:  {CapViewDashboard, CapTransfer, CapViewTransactions, CapManagerPanel},
	RoleAdmin:    {CapViewDashboard, CapTransfer, CapViewTransactions, CapManagerPanel, CapAdminPanel},
}

// ParseRole accepts exactly the three role names.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleCustomer, RoleManager, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	_, ok := capabilities[r]
	return ok
}

// Can reports whether the role grants the capability.
func (r Role) Can(c Capability) bool {
	for _, granted := range capabilities[r] {
		if granted == c {
			return true
		}
	}
	return false
}

// Capabilities returns the granted capabilities in navigation order.
func (r Role) Capabilities() []Capability {
	out := make([]Capability, len(capabilities[r]))
	copy(out, capabilities[r])
	return out
}
