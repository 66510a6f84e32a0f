package tokens

import "github.com/bedside-care/bedside/internal/models"

// DerivePermissions maps a token role onto its capability set. Editors get
// everything; viewers are read-only. RoleUnknown degrades to the viewer set
// but stays distinguishable on the token record itself, so callers can
// surface it instead of treating it as a legitimate viewer.
func DerivePermissions(role models.Role) models.Permissions {
	switch role {
	case models.RoleEditor:
		return models.Permissions{
			CanEdit:                true,
			CanView:                true,
			CanRegisterLiquids:     true,
			CanRegisterMedications: true,
			CanRegisterMeals:       true,
			CanRegisterActivities:  true,
		}
	case models.RoleViewer:
		return models.Permissions{CanView: true}
	default:
		return models.Permissions{CanView: true}
	}
}
