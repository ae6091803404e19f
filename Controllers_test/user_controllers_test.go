package Controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/tableorder/models"
	"github.com/yeremiapane/tableorder/utils"
)

func TestStaffLogin(t *testing.T) {
	h := newHarness(t)

	code, env := h.do(http.MethodPost, "/t/bistro-x/staff/login",
		map[string]string{"email": "ADMIN@bistro-x.test", "password": adminPassword}, "")
	require.Equal(t, http.StatusOK, code, env.Message)
	var out struct {
		Token    string `json:"token"`
		UserRole string `json:"user_role"`
	}
	env.decode(t, &out)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, models.RoleAdmin, out.UserRole)
}

func TestStaffLogin_Failures(t *testing.T) {
	h := newHarness(t)

	code, env := h.do(http.MethodPost, "/t/bistro-x/staff/login",
		map[string]string{"email": adminEmail, "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, utils.CodeLoginFailed, env.Code)

	code, env = h.do(http.MethodPost, "/t/bistro-x/staff/login",
		map[string]string{"email": "nobody@bistro-x.test", "password": adminPassword}, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, utils.CodeLoginFailed, env.Code)

	code, env = h.do(http.MethodPost, "/t/bistro-x/staff/login",
		map[string]string{"email": "not-an-email", "password": adminPassword}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, utils.CodeBadRequest, env.Code)
}

func TestGetProfile(t *testing.T) {
	h := newHarness(t)

	code, env := h.do(http.MethodGet, "/t/bistro-x/staff/profile", nil, h.staffToken())
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Profile data retrieved successfully", env.Message)

	var profile map[string]interface{}
	env.decode(t, &profile)
	assert.Equal(t, adminEmail, profile["email"])
	assert.Equal(t, models.RoleAdmin, profile["role"])
}

func TestRegister_AdminOnly(t *testing.T) {
	h := newHarness(t)
	admin := h.staffToken()

	newUser := map[string]string{
		"name":     "Budi",
		"email":    "budi@bistro-x.test",
		"password": "password123",
		"role":     models.RoleStaff,
	}
	code, env := h.do(http.MethodPost, "/t/bistro-x/staff/users", newUser, admin)
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, env = h.do(http.MethodPost, "/t/bistro-x/staff/users", newUser, admin)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, utils.CodeConflict, env.Code)

	code, env = h.do(http.MethodPost, "/t/bistro-x/staff/login",
		map[string]string{"email": newUser["email"], "password": newUser["password"]}, "")
	require.Equal(t, http.StatusOK, code)
	var out struct {
		Token string `json:"token"`
	}
	env.decode(t, &out)

	// staff can run tables but not manage users
	code, _ = h.do(http.MethodGet, "/t/bistro-x/staff/tables", nil, out.Token)
	assert.Equal(t, http.StatusOK, code)
	code, env = h.do(http.MethodGet, "/t/bistro-x/staff/users", nil, out.Token)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, utils.CodeForbidden, env.Code)

	code, env = h.do(http.MethodGet, "/t/bistro-x/staff/users", nil, admin)
	require.Equal(t, http.StatusOK, code)
	var users []models.User
	env.decode(t, &users)
	assert.Len(t, users, 2)
}

func TestStaffSession_DoesNotCrossTenants(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.db.Create(&models.Tenant{Slug: "bistro-y", Name: "Bistro Y", Active: true}).Error)

	code, env := h.do(http.MethodGet, "/t/bistro-y/staff/tables", nil, h.staffToken())
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, utils.CodeUnauthorized, env.Code)
}
