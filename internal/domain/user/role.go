package user

import "github.com/go-faster/errors"

// ErrForbidden is returned when an authenticated caller lacks the capability
// an operation requires.
var ErrForbidden = errors.New("access denied")

// Role is the access level carried by an authenticated identity.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// Capability names a privileged action a role may perform.
type Capability string

// CapUpdateOrderStatus allows moving an order through its fulfillment
// lifecycle.
const CapUpdateOrderStatus Capability = "order:update-status"

// grants is the authorization policy: which capabilities each role holds.
// Unknown roles hold nothing.
var grants = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapUpdateOrderStatus: true,
	},
	RoleCustomer: {},
}

// Can reports whether the role holds the given capability.
func (r Role) Can(c Capability) bool {
	return grants[r][c]
}
