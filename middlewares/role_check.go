package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/tableorder/models"
	"github.com/yeremiapane/tableorder/utils"
)

// RoleCheck lets through the listed roles. Admin always passes.
func RoleCheck(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(ContextRole)
		if userRole == "" {
			utils.RespondCode(c, http.StatusUnauthorized, utils.CodeUnauthorized, "unauthorized", nil)
			return
		}
		if userRole == models.RoleAdmin {
			c.Next()
			return
		}
		for _, role := range roles {
			if userRole == role {
				c.Next()
				return
			}
		}
		utils.RespondCode(c, http.StatusForbidden, utils.CodeForbidden, "admin access required", nil)
	}
}
