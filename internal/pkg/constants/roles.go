package constants

const (
	Superadmin = "superadmin"
	Admin      = "admin"
	Donor      = "donor"
)

// Organization is the session role given to an approved organization after login.
// It never appears in the Users table.
const Organization = "organization"

// ValidRoles is the set of roles a Users row may carry.
var ValidRoles = []string{Donor, Admin, Superadmin}

// IsValidRole returns true if role is one of the allowed user roles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
