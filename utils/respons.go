package utils

import (
	"github.com/gin-gonic/gin"
)

// Failure codes clients can switch on.
const (
	CodeInvalidToken      = "INVALID_TOKEN"
	CodeLoginFailed       = "LOGIN_FAILED"
	CodeUnauthorizedTable = "UNAUTHORIZED_TABLE"
	CodeStateConflict     = "STATE_CONFLICT"
	CodeNotFound          = "NOT_FOUND"
	CodeBadRequest        = "BAD_REQUEST"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeConflict          = "CONFLICT"
	CodeTooManyRequests   = "TOO_MANY_REQUESTS"
	CodeInternal          = "INTERNAL"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

// RespondCode sends a failure carrying a machine-readable code. data may be
// nil; a state conflict uses it for the unchanged order.
func RespondCode(c *gin.Context, status int, code, message string, data interface{}) {
	c.AbortWithStatusJSON(status, JSONResponse{
		Status:  false,
		Message: message,
		Code:    code,
		Data:    data,
	})
}
