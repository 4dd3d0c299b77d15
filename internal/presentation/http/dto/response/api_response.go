package response

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bumisubur/pos-gateway/pkg/apperror"
	"github.com/bumisubur/pos-gateway/pkg/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Notification levels.
const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelWarning = "warning"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message"`
	Data         interface{}   `json:"data,omitempty"`
	Errors       interface{}   `json:"errors,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
	Meta         *Meta         `json:"meta,omitempty"`
}

// Notification is the toast or alert the client shows for a response.
type Notification struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Meta contains metadata about the response
type Meta struct {
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id"`
}

// newMeta creates metadata for the response
func newMeta(c *gin.Context) *Meta {
	requestID := c.GetString("request_id")
	if requestID == "" {
		requestID = c.GetHeader("X-Request-ID")
	}
	if requestID == "" {
		requestID = uuid.New().String()
	}
	return &Meta{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: requestID,
	}
}

// Success sends a success response
func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    newMeta(c),
	})
}

// Notify sends a success response carrying a notification for the client.
func Notify(c *gin.Context, statusCode int, level, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success:      level != LevelError,
		Message:      message,
		Data:         data,
		Notification: &Notification{Level: level, Message: message},
		Meta:         newMeta(c),
	})
}

// SuccessWithPagination sends a success response with pagination
func SuccessWithPagination[T any](c *gin.Context, statusCode int, message string, result *pagination.PaginatedResult[T]) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Message: message,
		Data:    result,
		Meta:    newMeta(c),
	})
}

// Error sends an error response. Every error carries an error notification;
// 503 responses also carry Retry-After.
func Error(c *gin.Context, err error) {
	appErr := apperror.GetAppError(err)
	if appErr.Code == http.StatusServiceUnavailable {
		c.Header("Retry-After", strconv.Itoa(1))
	}
	level := LevelError
	if appErr.Code == http.StatusPreconditionRequired {
		level = LevelWarning
	}
	c.AbortWithStatusJSON(appErr.Code, APIResponse{
		Success:      false,
		Message:      appErr.Message,
		Errors:       appErr.Errors,
		Notification: &Notification{Level: level, Message: appErr.Message},
		Meta:         newMeta(c),
	})
}

// ErrorWithCode sends an error response with a specific status code
func ErrorWithCode(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, APIResponse{
		Success:      false,
		Message:      message,
		Notification: &Notification{Level: LevelError, Message: message},
		Meta:         newMeta(c),
	})
}

// Created sends a 201 Created response
func Created(c *gin.Context, message string, data interface{}) {
	Notify(c, http.StatusCreated, LevelSuccess, message, data)
}

// OK sends a 200 OK response
func OK(c *gin.Context, message string, data interface{}) {
	Success(c, http.StatusOK, message, data)
}

// NotFound sends a 404 Not Found response
func NotFound(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusNotFound, message)
}

// Unauthorized sends a 401 Unauthorized response
func Unauthorized(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusUnauthorized, message)
}

// Forbidden sends a 403 Forbidden response
func Forbidden(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusForbidden, message)
}

// BadRequest sends a 400 Bad Request response
func BadRequest(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusBadRequest, message)
}
