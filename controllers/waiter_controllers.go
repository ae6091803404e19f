package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/tableorder/metrics"
	"github.com/yeremiapane/tableorder/middlewares"
	"github.com/yeremiapane/tableorder/models"
	"github.com/yeremiapane/tableorder/services"
	"github.com/yeremiapane/tableorder/utils"
)

// WaiterController is the waiter dashboard API: PIN login, table claims,
// the polled order feed and status changes on claimed tables.
type WaiterController struct {
	Directory *services.WaiterDirectory
	Tables    *services.TableRegistry
	Orders    *services.OrderService
	Feed      *services.DispatchFeed
	Sessions  *utils.SessionIssuer
}

func NewWaiterController(
	directory *services.WaiterDirectory,
	tables *services.TableRegistry,
	orders *services.OrderService,
	feed *services.DispatchFeed,
	sessions *utils.SessionIssuer,
) *WaiterController {
	return &WaiterController{
		Directory: directory,
		Tables:    tables,
		Orders:    orders,
		Feed:      feed,
		Sessions:  sessions,
	}
}

// Login -> PIN login, returns a session token
func (wc *WaiterController) Login(c *gin.Context) {
	tenant := middlewares.CurrentTenant(c)

	var req WaiterLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Validate() != nil {
		// malformed PINs fail like wrong ones
		wc.loginFailed(c)
		return
	}

	waiter, err := wc.Directory.Login(c.Request.Context(), req.PIN, tenant.Slug)
	if err != nil {
		if errors.Is(err, services.ErrLoginFailed) {
			wc.loginFailed(c)
			return
		}
		respondServiceError(c, err, nil)
		return
	}

	token, err := wc.Sessions.IssueWaiter(tenant.ID, waiter.ID)
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":  token,
		"waiter": waiter,
	})
}

func (wc *WaiterController) loginFailed(c *gin.Context) {
	metrics.LoginFailures.WithLabelValues(utils.SessionWaiter).Inc()
	utils.RespondCode(c, http.StatusUnauthorized, utils.CodeLoginFailed, "Login failed", nil)
}

// GetOrders -> the dispatch feed for the calling waiter
func (wc *WaiterController) GetOrders(c *gin.Context) {
	tenant := middlewares.CurrentTenant(c)
	waiter := middlewares.CurrentWaiter(c)

	orders, err := wc.Feed.OrdersForWaiter(c.Request.Context(), tenant.ID, waiter.ID)
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Open orders", gin.H{
		"orders":     orders,
		"fetched_at": time.Now().UTC(),
	})
}

// GetTables -> all tables of the tenant with their current waiter, or only
// the caller's with ?mine=true
func (wc *WaiterController) GetTables(c *gin.Context) {
	tenantID := middlewares.CurrentTenant(c).ID

	var tables []models.Table
	var err error
	if c.Query("mine") == "true" {
		tables, err = wc.Tables.ClaimedBy(c.Request.Context(), tenantID, middlewares.CurrentWaiter(c).ID)
	} else {
		tables, err = wc.Tables.List(c.Request.Context(), tenantID)
	}
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// ClaimTable -> take over a table, replacing whoever had it
func (wc *WaiterController) ClaimTable(c *gin.Context) {
	tableID, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	waiter := middlewares.CurrentWaiter(c)

	table, err := wc.Tables.Claim(c.Request.Context(), middlewares.CurrentTenant(c).ID, tableID, waiter.ID)
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}

	utils.InfoLogger.Printf("Waiter %d claimed table %s", waiter.ID, table.Label)
	utils.RespondJSON(c, http.StatusOK, "Table claimed", table)
}

// ReleaseTable -> give a table back
func (wc *WaiterController) ReleaseTable(c *gin.Context) {
	tableID, ok := paramID(c, "table_id")
	if !ok {
		return
	}

	table, err := wc.Tables.Release(c.Request.Context(), middlewares.CurrentTenant(c).ID, tableID, middlewares.CurrentWaiter(c).ID)
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table released", table)
}

// AdvanceOrder -> move an order on a claimed table forward
func (wc *WaiterController) AdvanceOrder(c *gin.Context) {
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

	actor := services.Actor{WaiterID: middlewares.CurrentWaiter(c).ID}
	order, err := wc.Orders.Advance(c.Request.Context(), middlewares.CurrentTenant(c).ID, orderID, req.Status, actor)
	if err != nil {
		respondServiceError(c, err, order)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}
