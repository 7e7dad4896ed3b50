package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
	"github.com/light-bringer/promo-engine/internal/pkg/logger"
)

// Error codes returned in the envelope.
const (
	ErrCodeValidation          = "ERR_VALIDATION"
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeDeletionBlocked     = "ERR_DELETION_BLOCKED"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeUnavailable         = "ERR_SERVICE_UNAVAILABLE"
	ErrCodeInternal            = "ERR_INTERNAL"
)

// Response is the envelope for every JSON response.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo describes a failed request.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

func accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, Response{Success: true, Data: data})
}

func fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error:   &ErrorInfo{Code: code, Message: message},
	})
}

func badRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, ErrCodeValidation, message)
}

// handleError maps domain errors to HTTP statuses. Anything unknown is
// logged and reported as 500 without leaking its message.
func handleError(c *gin.Context, err error) {
	switch {
	case domain.IsValidationError(err):
		badRequest(c, err.Error())
	case errors.Is(err, domain.ErrPromotionNotFound), errors.Is(err, domain.ErrProductNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicateName):
		fail(c, http.StatusConflict, ErrCodeAlreadyExists, err.Error())
	case errors.Is(err, domain.ErrDeletionBlocked):
		fail(c, http.StatusConflict, ErrCodeDeletionBlocked, err.Error())
	case errors.Is(err, domain.ErrConcurrentModification):
		fail(c, http.StatusConflict, ErrCodeConcurrencyConflict, err.Error())
	case errors.Is(err, contracts.ErrQueueFull):
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, err.Error())
	default:
		_ = c.Error(err)
		logger.FromGin(c).Error("request failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred")
	}
}

// actorID is the caller identity. Authentication happens upstream.
func actorID(c *gin.Context) string {
	return c.GetHeader("X-User-ID")
}
