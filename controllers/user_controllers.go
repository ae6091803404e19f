package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/tableorder/metrics"
	"github.com/yeremiapane/tableorder/middlewares"
	"github.com/yeremiapane/tableorder/services"
	"github.com/yeremiapane/tableorder/utils"
)

type UserController struct {
	Staff    *services.StaffAccounts
	Sessions *utils.SessionIssuer
}

func NewUserController(staff *services.StaffAccounts, sessions *utils.SessionIssuer) *UserController {
	return &UserController{Staff: staff, Sessions: sessions}
}

// Register user baru (admin only)
func (uc *UserController) Register(c *gin.Context) {
	var req RegisterStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondBadRequest(c, err)
		return
	}

	user, err := uc.Staff.Register(c.Request.Context(), middlewares.CurrentTenant(c).ID, req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}

	utils.InfoLogger.Printf("New user registered: %s (role=%s)", user.Email, user.Role)
	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{
		"user_id": user.ID,
	})
}

// Login user -> return JWT
func (uc *UserController) Login(c *gin.Context) {
	var req StaffLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondBadRequest(c, err)
		return
	}

	tenant := middlewares.CurrentTenant(c)
	user, err := uc.Staff.Login(c.Request.Context(), tenant.ID, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrLoginFailed) {
			metrics.LoginFailures.WithLabelValues(utils.SessionStaff).Inc()
		}
		respondServiceError(c, err, nil)
		return
	}

	token, err := uc.Sessions.IssueStaff(tenant.ID, user.ID, user.Role)
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}

	utils.InfoLogger.Printf("Login successful for user: %s, role: %s", user.Email, user.Role)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":     token,
		"user_role": user.Role,
	})
}

// GetProfile -> memeriksa user dari JWT
func (uc *UserController) GetProfile(c *gin.Context) {
	user, err := uc.Staff.Get(c.Request.Context(), middlewares.CurrentTenant(c).ID, middlewares.CurrentUserID(c))
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	})
}

// GetAllUsers -> admin only
func (uc *UserController) GetAllUsers(c *gin.Context) {
	users, err := uc.Staff.List(c.Request.Context(), middlewares.CurrentTenant(c).ID)
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All users", users)
}
