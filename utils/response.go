package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every endpoint returns. Error carries a stable
// machine-readable kind; Message is the human explanation.
type Response struct {
	Status  int         `json:"-"`                 // HTTP status code
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"` // Optional message
	Error   string      `json:"error,omitempty"`   // Error kind
	Data    interface{} `json:"data,omitempty"`    // Response data
}

// Success responses
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, &Response{
		Status:  http.StatusOK,
		Success: true,
		Data:    data,
	})
}

func SuccessMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, &Response{
		Status:  http.StatusOK,
		Success: true,
		Message: message,
		Data:    data,
	})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, &Response{
		Status:  http.StatusCreated,
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error responses
func Unauthorized(c *gin.Context, kind, message string) {
	c.JSON(http.StatusUnauthorized, &Response{
		Status:  http.StatusUnauthorized,
		Error:   kind,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, &Response{
		Status:  http.StatusBadRequest,
		Error:   "Bad request",
		Message: message,
	})
}

func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, &Response{
		Status:  http.StatusNotFound,
		Error:   "Not found",
		Message: message,
	})
}

func InternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, &Response{
		Status:  http.StatusInternalServerError,
		Error:   "Internal error",
		Message: message,
	})
}

func TooManyRequests(c *gin.Context, message string, retryAfterSeconds int) {
	c.JSON(http.StatusTooManyRequests, &Response{
		Status:  http.StatusTooManyRequests,
		Error:   "Too many requests",
		Message: message,
		Data:    gin.H{"retry_after": retryAfterSeconds},
	})
}

func Conflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, &Response{
		Status:  http.StatusConflict,
		Error:   "Conflict",
		Message: message,
	})
}

func Forbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, &Response{
		Status:  http.StatusForbidden,
		Error:   "Insufficient permissions",
		Message: message,
	})
}
