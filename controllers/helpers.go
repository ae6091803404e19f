package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/tableorder/services"
	"github.com/yeremiapane/tableorder/utils"
)

// respondServiceError maps service errors onto the response envelope.
// data is only sent with a state conflict, where it holds the order as it
// currently stands.
func respondServiceError(c *gin.Context, err error, data interface{}) {
	switch {
	case errors.Is(err, services.ErrInvalidToken):
		utils.RespondCode(c, http.StatusBadRequest, utils.CodeInvalidToken,
			"Table code not recognised, scan again or choose your table manually", nil)
	case errors.Is(err, services.ErrLoginFailed):
		utils.RespondCode(c, http.StatusUnauthorized, utils.CodeLoginFailed, "Login failed", nil)
	case errors.Is(err, services.ErrUnauthorizedTable):
		utils.RespondCode(c, http.StatusForbidden, utils.CodeUnauthorizedTable, "Table is not available to you", nil)
	case errors.Is(err, services.ErrStateConflict):
		utils.RespondCode(c, http.StatusConflict, utils.CodeStateConflict, err.Error(), data)
	case errors.Is(err, services.ErrNotFound):
		utils.RespondCode(c, http.StatusNotFound, utils.CodeNotFound, "Not found", nil)
	case errors.Is(err, services.ErrPINInUse),
		errors.Is(err, services.ErrEmailInUse),
		errors.Is(err, services.ErrTableInUse):
		utils.RespondCode(c, http.StatusConflict, utils.CodeConflict, err.Error(), nil)
	case errors.Is(err, services.ErrInvalidPIN),
		errors.Is(err, services.ErrEmptyOrder),
		errors.Is(err, services.ErrUnknownItem),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidStatus):
		utils.RespondCode(c, http.StatusBadRequest, utils.CodeBadRequest, err.Error(), nil)
	default:
		utils.ErrorLogger.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		utils.RespondCode(c, http.StatusInternalServerError, utils.CodeInternal, "Internal error", nil)
	}
}

func respondBadRequest(c *gin.Context, err error) {
	utils.RespondCode(c, http.StatusBadRequest, utils.CodeBadRequest, err.Error(), nil)
}

// paramID reads a positive numeric path parameter, answering 400 itself
// when it is not one.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondCode(c, http.StatusBadRequest, utils.CodeBadRequest, "invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}
