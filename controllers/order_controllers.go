package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/tableorder/middlewares"
	"github.com/yeremiapane/tableorder/services"
	"github.com/yeremiapane/tableorder/utils"
)

// OrderController is the staff view over every open order of the tenant.
type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// GetOpenOrders -> list orders beserta items
func (oc *OrderController) GetOpenOrders(c *gin.Context) {
	orders, err := oc.Orders.ListOpen(c.Request.Context(), middlewares.CurrentTenant(c).ID)
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// UpdateOrderStatus -> forward-only status change by staff
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := paramID(c, "order_id")
	if !ok {
		return
	}

	var req AdvanceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondBadRequest(c, err)
		return
	}

	actor := services.Actor{UserID: middlewares.CurrentUserID(c)}
	order, err := oc.Orders.Advance(c.Request.Context(), middlewares.CurrentTenant(c).ID, orderID, req.Status, actor)
	if err != nil {
		respondServiceError(c, err, order)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}
