package tokens

import (
	"testing"

	"github.com/bedside-care/bedside/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestDerivePermissions(t *testing.T) {
	editor := DerivePermissions(models.RoleEditor)
	assert.Equal(t, models.Permissions{
		CanEdit:                true,
		CanView:                true,
		CanRegisterLiquids:     true,
		CanRegisterMedications: true,
		CanRegisterMeals:       true,
		CanRegisterActivities:  true,
	}, editor)

	viewer := DerivePermissions(models.RoleViewer)
	assert.Equal(t, models.Permissions{CanView: true}, viewer)

	// unknown roles degrade to the viewer capability set
	unknown := DerivePermissions(models.RoleUnknown)
	assert.Equal(t, viewer, unknown)
	assert.Equal(t, viewer, DerivePermissions(models.Role("admin")))
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, models.RoleEditor, models.ParseRole("editor"))
	assert.Equal(t, models.RoleViewer, models.ParseRole("viewer"))
	assert.Equal(t, models.RoleUnknown, models.ParseRole("admin"))
	assert.Equal(t, models.RoleUnknown, models.ParseRole(""))
}
