package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stayflow/service-hotel/internal/domain"
)

// Envelope is the standard JSON response body.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PaginatedEnvelope wraps list responses with paging metadata.
type PaginatedEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
}

// Success writes a 200 with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 list response with paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, PaginatedEnvelope{
		Success: true,
		Data:    items,
		Total:   total,
		Page:    page,
		Limit:   limit,
	})
}

// BadRequest writes a 400 with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Error: message})
}

// Error maps a domain error to its HTTP status and writes it.
func Error(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, Envelope{Success: false, Error: err.Error()})
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, Envelope{Success: false, Error: err.Error()})
	case domain.IsConflict(err):
		c.JSON(http.StatusConflict, Envelope{Success: false, Error: err.Error()})
	case domain.IsInvalidTransition(err):
		c.JSON(http.StatusUnprocessableEntity, Envelope{Success: false, Error: err.Error()})
	case domain.IsConsistencyViolation(err):
		c.JSON(http.StatusInternalServerError, Envelope{Success: false, Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, Envelope{Success: false, Error: "internal server error"})
	}
}
