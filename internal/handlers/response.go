package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tiertok/tiertok-backend/internal/apperr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondAppError maps the error's kind onto an HTTP status so handlers do
// not repeat the table.
func RespondAppError(c *gin.Context, code string, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindConcurrentRun:
		status = http.StatusConflict
	case apperr.KindExternalService:
		status = http.StatusBadGateway
	}
	RespondError(c, status, code, err)
}
