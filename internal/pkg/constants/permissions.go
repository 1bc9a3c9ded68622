package constants

const (
	ReviewOrganizations = "review_organizations"
	ManageAdmins        = "manage_admins"
	Donate              = "donate"
	ViewDonations       = "view_donations"
	RunRecurrence       = "run_recurrence"
)

// PermissionRoles maps each permission to the session roles allowed to attempt it.
var PermissionRoles = map[string][]string{
	ReviewOrganizations: {Admin, Superadmin},
	ManageAdmins:        {Superadmin},
	Donate:              {Donor, Admin, Superadmin},
	ViewDonations:       {Donor, Admin, Superadmin},
	RunRecurrence:       {Admin, Superadmin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	for _, r := range PermissionRoles[permission] {
		if r == role {
			return true
		}
	}
	return false
}
