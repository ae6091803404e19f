package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/tableorder/middlewares"
	"github.com/yeremiapane/tableorder/services"
	"github.com/yeremiapane/tableorder/utils"
)

type MenuController struct {
	Catalog services.Catalog
}

func NewMenuController(catalog services.Catalog) *MenuController {
	return &MenuController{Catalog: catalog}
}

// GetMenu -> items a guest can currently order
func (mc *MenuController) GetMenu(c *gin.Context) {
	items, err := mc.Catalog.List(c.Request.Context(), middlewares.CurrentTenant(c).ID)
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", items)
}
