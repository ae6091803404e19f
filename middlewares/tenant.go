package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/tableorder/models"
	"github.com/yeremiapane/tableorder/services"
	"github.com/yeremiapane/tableorder/utils"
)

const (
	ContextTenant = "tenant"
	ContextWaiter = "waiter"
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// TenantMiddleware resolves the :tenant path segment. Unknown and inactive
// tenants look the same from outside.
func TenantMiddleware(resolver services.TenantResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant, err := resolver.ResolveSlug(c.Request.Context(), c.Param("tenant"))
		if err != nil {
			if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrTenantInactive) {
				utils.RespondCode(c, http.StatusNotFound, utils.CodeNotFound, "Tenant not found", nil)
				return
			}
			utils.ErrorLogger.Printf("Tenant lookup failed: %v", err)
			utils.RespondCode(c, http.StatusInternalServerError, utils.CodeInternal, "Internal error", nil)
			return
		}
		c.Set(ContextTenant, tenant)
		c.Next()
	}
}

func CurrentTenant(c *gin.Context) models.Tenant {
	tenant, _ := c.MustGet(ContextTenant).(models.Tenant)
	return tenant
}

func CurrentWaiter(c *gin.Context) services.WaiterIdentity {
	waiter, _ := c.MustGet(ContextWaiter).(services.WaiterIdentity)
	return waiter
}

func CurrentUserID(c *gin.Context) uint {
	return c.GetUint(ContextUserID)
}
