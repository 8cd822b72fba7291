package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Can(t *testing.T) {
	cases := []struct {
		role Role
		cap  Capability
		want bool
	}{
		{RoleCustomer, CapViewDashboard, true},
		{RoleCustomer, CapTransfer, true},
		{RoleCustomer, CapViewTransactions, true},
		{RoleCustomer, CapManagerPanel, false},
		{RoleCustomer, CapAdminPanel, false},
		{RoleManager, CapManagerPanel, true},
		{RoleManager, CapAdminPanel, false},
		{RoleAdmin, CapManagerPanel, true},
		{RoleAdmin, CapAdminPanel, true},
		{Role("Root"), CapViewDashboard, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, c.role.Can(c.cap), "%s can %s", c.role, c.cap)
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("Manager")
	assert.NoError(t, err)
	assert.Equal(t, RoleManager, r)

	_, err = ParseRole("manager")
	assert.Error(t, err)
}

func TestRole_CapabilitiesIsACopy(t *testing.T) {
	caps := RoleCustomer.Capabilities()
	caps[0] = CapAdminPanel
	assert.False(t, RoleCustomer.Can(CapAdminPanel))
}
