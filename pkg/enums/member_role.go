package enums

import "slices"

// MemberRole is the platform role carried in access tokens.
type MemberRole string

const (
	MemberRoleAdmin    MemberRole = "admin"
	MemberRoleSupplier MemberRole = "supplier"
	MemberRoleCustomer MemberRole = "customer"
)

var memberRoles = []MemberRole{MemberRoleAdmin, MemberRoleSupplier, MemberRoleCustomer}

func (m MemberRole) String() string { return string(m) }

func (m MemberRole) IsValid() bool { return slices.Contains(memberRoles, m) }

// ScopedToSupplier reports whether tokens for this role must carry a supplier id.
func (m MemberRole) ScopedToSupplier() bool { return m == MemberRoleSupplier }

func ParseMemberRole(value string) (MemberRole, error) {
	return parse("member role", value, memberRoles)
}
