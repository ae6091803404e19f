package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/tableorder/middlewares"
	"github.com/yeremiapane/tableorder/services"
	"github.com/yeremiapane/tableorder/utils"
)

// GuestController serves the unauthenticated ordering flow. The table a
// guest orders for is only ever taken from a verified token.
type GuestController struct {
	Orders *services.OrderService
}

func NewGuestController(orders *services.OrderService) *GuestController {
	return &GuestController{Orders: orders}
}

// Scan -> verify a QR token and tell the guest which table they are at
func (gc *GuestController) Scan(c *gin.Context) {
	tenant := middlewares.CurrentTenant(c)

	table, err := gc.Orders.VerifyTable(c.Request.Context(), tenant, c.Query("token"))
	if err != nil {
		gc.logIntegrityFailure(c, err)
		respondServiceError(c, err, nil)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table verified", gin.H{
		"table_id": table.ID,
		"label":    table.Label,
	})
}

// SubmitOrder -> turn the guest's cart into an order
func (gc *GuestController) SubmitOrder(c *gin.Context) {
	var req SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondBadRequest(c, err)
		return
	}

	order, err := gc.Orders.Submit(c.Request.Context(), middlewares.CurrentTenant(c), req.Token, req.lines())
	if err != nil {
		gc.logIntegrityFailure(c, err)
		respondServiceError(c, err, nil)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Order submitted", order)
}

// GetOrder -> order status by its public reference
func (gc *GuestController) GetOrder(c *gin.Context) {
	order, err := gc.Orders.GetByReference(c.Request.Context(), middlewares.CurrentTenant(c).ID, c.Param("ref"))
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status", order)
}

// logIntegrityFailure records failed scans without the token itself.
func (gc *GuestController) logIntegrityFailure(c *gin.Context, err error) {
	if !errors.Is(err, services.ErrInvalidToken) && !errors.Is(err, services.ErrUnauthorizedTable) {
		return
	}
	utils.InfoLogger.Printf("Table token rejected (tenant=%s ip=%s): %v",
		middlewares.CurrentTenant(c).Slug, c.ClientIP(), err)
}
