// Package handlers implements the HTTP handlers for the screening service.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/molscreen/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// respondError maps an application error onto an HTTP status and writes the
// structured body.  Server-side failures are masked; the code survives so
// callers can still correlate with logs.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	resp := ErrorResponse{Code: string(code)}
	if appErr, ok := err.(*errors.AppError); ok && !errors.IsServerError(code) {
		resp.Message = appErr.Message
		resp.Detail = appErr.Detail
	} else {
		resp.Message = errors.DefaultMessageForCode(code)
	}
	c.AbortWithStatusJSON(status, resp)
}
