package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/tableorder/services"
	"github.com/yeremiapane/tableorder/utils"
)

func bearerClaims(c *gin.Context, sessions *utils.SessionIssuer, kind string) (*utils.SessionClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		utils.RespondCode(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Authorization header missing", nil)
		return nil, false
	}

	claims, err := sessions.Parse(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil || claims.Kind != kind || claims.UserID == 0 {
		utils.RespondCode(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Invalid or expired session", nil)
		return nil, false
	}

	// a session never crosses tenants
	if claims.TenantID != CurrentTenant(c).ID {
		utils.RespondCode(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Invalid or expired session", nil)
		return nil, false
	}
	return claims, true
}

// WaiterAuth accepts a waiter session and re-checks the waiter against the
// roster, so deactivation takes effect on the very next request.
func WaiterAuth(sessions *utils.SessionIssuer, directory *services.WaiterDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, sessions, utils.SessionWaiter)
		if !ok {
			return
		}

		waiter, err := directory.Authenticate(c.Request.Context(), claims.TenantID, claims.UserID)
		if err != nil {
			if errors.Is(err, services.ErrLoginFailed) {
				utils.RespondCode(c, http.StatusUnauthorized, utils.CodeLoginFailed, "Login failed", nil)
				return
			}
			utils.ErrorLogger.Printf("Waiter session check failed: %v", err)
			utils.RespondCode(c, http.StatusInternalServerError, utils.CodeInternal, "Internal error", nil)
			return
		}

		c.Set(ContextWaiter, waiter)
		c.Next()
	}
}

// StaffAuth accepts a staff session whose user still exists in the tenant.
func StaffAuth(sessions *utils.SessionIssuer, staff *services.StaffAccounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, sessions, utils.SessionStaff)
		if !ok {
			return
		}

		user, err := staff.Get(c.Request.Context(), claims.TenantID, claims.UserID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				utils.RespondCode(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Invalid or expired session", nil)
				return
			}
			utils.ErrorLogger.Printf("Staff session check failed: %v", err)
			utils.RespondCode(c, http.StatusInternalServerError, utils.CodeInternal, "Internal error", nil)
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextRole, user.Role)
		c.Next()
	}
}
