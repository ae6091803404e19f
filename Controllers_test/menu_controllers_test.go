package Controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/tableorder/models"
	"github.com/yeremiapane/tableorder/utils"
)

func TestGetMenu(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.db.Create(&models.MenuItem{
		TenantID: h.seed.Tenant.ID, SKU: "B", Name: "Bagel", Price: 3.5, Available: true,
	}).Error)
	require.NoError(t, h.db.Create(&models.MenuItem{
		TenantID: h.seed.Tenant.ID, SKU: "Z", Name: "Sold out soup", Price: 7, Available: false,
	}).Error)

	code, env := h.do(http.MethodGet, "/t/bistro-x/menu", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "List of menus", env.Message)

	var items []struct {
		SKU   string  `json:"sku"`
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	env.decode(t, &items)
	require.Len(t, items, 2)
	assert.Equal(t, "B", items[0].SKU)
	assert.Equal(t, "A", items[1].SKU)
	assert.Equal(t, 5.0, items[1].Price)
}

func TestGetMenu_UnknownTenant(t *testing.T) {
	h := newHarness(t)

	code, env := h.do(http.MethodGet, "/t/bistro-y/menu", nil, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, utils.CodeNotFound, env.Code)
}

func TestGetMenu_InactiveTenant(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.db.Model(&models.Tenant{}).Where("id = ?", h.seed.Tenant.ID).Update("active", false).Error)

	code, env := h.do(http.MethodGet, "/t/bistro-x/menu", nil, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, utils.CodeNotFound, env.Code)
}
