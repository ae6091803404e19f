package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/tableorder/middlewares"
	"github.com/yeremiapane/tableorder/services"
	"github.com/yeremiapane/tableorder/utils"
)

// RosterController lets staff manage the tenant's waiters.
type RosterController struct {
	Directory *services.WaiterDirectory
}

func NewRosterController(directory *services.WaiterDirectory) *RosterController {
	return &RosterController{Directory: directory}
}

func (rc *RosterController) GetAllWaiters(c *gin.Context) {
	waiters, err := rc.Directory.List(c.Request.Context(), middlewares.CurrentTenant(c).ID)
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of waiters", waiters)
}

func (rc *RosterController) CreateWaiter(c *gin.Context) {
	var req CreateWaiterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondBadRequest(c, err)
		return
	}

	tenant := middlewares.CurrentTenant(c)
	waiter, err := rc.Directory.Create(c.Request.Context(), tenant.ID, req.Name, req.PIN)
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}

	utils.InfoLogger.Printf("New waiter registered: %s (tenant=%s)", waiter.Name, tenant.Slug)
	utils.RespondJSON(c, http.StatusCreated, "Waiter created", waiter)
}

func (rc *RosterController) ChangePIN(c *gin.Context) {
	waiterID, ok := paramID(c, "waiter_id")
	if !ok {
		return
	}
	var req ChangePINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := rc.Directory.ChangePIN(c.Request.Context(), middlewares.CurrentTenant(c).ID, waiterID, req.PIN); err != nil {
		respondServiceError(c, err, nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "PIN changed", gin.H{"id": waiterID})
}

// SetActive -> activate or deactivate; deactivation ends the waiter's
// sessions and releases their tables
func (rc *RosterController) SetActive(c *gin.Context) {
	waiterID, ok := paramID(c, "waiter_id")
	if !ok {
		return
	}
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondBadRequest(c, err)
		return
	}

	waiter, err := rc.Directory.SetActive(c.Request.Context(), middlewares.CurrentTenant(c).ID, waiterID, *req.Active)
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}
	utils.InfoLogger.Printf("Waiter %d active=%t", waiter.ID, waiter.Active)
	utils.RespondJSON(c, http.StatusOK, "Waiter updated", waiter)
}
