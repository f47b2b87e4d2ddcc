package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/erp/core/internal/domain/shared"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta represents pagination metadata
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// OK writes a success response
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// OKWithMeta writes a success response with pagination metadata
func OKWithMeta(c *gin.Context, data interface{}, total int64, page, pageSize, totalPages int) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
		},
	})
}

// BadRequest writes a validation error response for malformed input
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error: &ErrorInfo{
			Kind:    string(shared.KindValidationFailed),
			Code:    "INVALID_REQUEST",
			Message: message,
		},
	})
}

// Fail maps a domain error kind onto an HTTP status and writes the response
func Fail(c *gin.Context, err error) {
	var de *shared.DomainError
	if !errors.As(err, &de) {
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error: &ErrorInfo{
				Kind:    string(shared.KindStorageFailure),
				Code:    "INTERNAL_ERROR",
				Message: "internal server error",
			},
		})
		return
	}
	c.JSON(statusForKind(de.Kind), Response{
		Success: false,
		Error: &ErrorInfo{
			Kind:    string(de.Kind),
			Code:    de.Code,
			Message: de.Message,
		},
	})
}

func statusForKind(kind shared.ErrorKind) int {
	switch kind {
	case shared.KindNotFound:
		return http.StatusNotFound
	case shared.KindIllegalTransition, shared.KindConflictRetryable:
		return http.StatusConflict
	case shared.KindForbidden:
		return http.StatusForbidden
	case shared.KindPreconditionFailed:
		return http.StatusUnprocessableEntity
	case shared.KindValidationFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
