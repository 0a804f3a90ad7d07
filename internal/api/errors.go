package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// NewErrorResponse builds an error body with a fresh correlation ID.
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}
	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: uuid.New().String()[:8],
	}
}

// statusFor maps an application error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, common.ErrGeolocation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrDeviceAccess):
		return http.StatusServiceUnavailable
	case errors.Is(err, common.ErrProviderFailure),
		errors.Is(err, common.ErrMalformedResponse),
		errors.Is(err, common.ErrRateLimit),
		errors.Is(err, common.ErrMaxRetries):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// handleError logs err and writes it as an ErrorResponse.
func (s *Server) handleError(c echo.Context, err error) error {
	code := statusFor(err)
	resp := NewErrorResponse(err, common.UserMessage(err), code)

	level := s.logger.Warn
	if code >= http.StatusInternalServerError {
		level = s.logger.Error
	}
	level("API error",
		"correlation_id", resp.CorrelationID,
		"path", c.Path(),
		"status", code,
		"error", err)

	return c.JSON(code, resp)
}
