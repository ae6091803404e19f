package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/tableorder/models"
	"github.com/yeremiapane/tableorder/services"
	"golang.org/x/crypto/bcrypt"
)

func TestStaffRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	x := f.tenant(t, "bistro-x")
	y := f.tenant(t, "bistro-y")
	staff := services.NewStaffAccounts(f.db)
	staff.HashCost = bcrypt.MinCost

	user, err := staff.Register(f.ctx, x.ID, "Admin", " Admin@Bistro.test ", "s3cret-pass", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "admin@bistro.test", user.Email)
	assert.NotEqual(t, "s3cret-pass", user.Password)

	_, err = staff.Register(f.ctx, x.ID, "Again", "admin@bistro.test", "other", models.RoleStaff)
	assert.ErrorIs(t, err, services.ErrEmailInUse)

	// the same email may exist at another tenant
	_, err = staff.Register(f.ctx, y.ID, "Other", "admin@bistro.test", "pass", models.RoleStaff)
	require.NoError(t, err)

	got, err := staff.Login(f.ctx, x.ID, "ADMIN@bistro.test", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = staff.Login(f.ctx, x.ID, "admin@bistro.test", "wrong")
	assert.ErrorIs(t, err, services.ErrLoginFailed)
	_, err = staff.Login(f.ctx, x.ID, "nobody@bistro.test", "s3cret-pass")
	assert.ErrorIs(t, err, services.ErrLoginFailed)

	list, err := staff.List(f.ctx, x.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = staff.Get(f.ctx, y.ID, user.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}
