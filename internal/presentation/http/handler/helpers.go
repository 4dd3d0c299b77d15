package handler

import (
	"net/http"
	"strconv"

	"github.com/bumisubur/pos-gateway/internal/domain/entity"
	"github.com/bumisubur/pos-gateway/internal/presentation/http/dto/response"
	"github.com/bumisubur/pos-gateway/pkg/apperror"
	"github.com/bumisubur/pos-gateway/pkg/validation"
	"github.com/gin-gonic/gin"
)

// Context keys set by the session middleware.
const (
	TokenKey   = "token"
	SessionKey = "session"
)

// GetToken extracts the raw token from the Gin context
func GetToken(c *gin.Context) string {
	return c.GetString(TokenKey)
}

// GetSession extracts the resolved session from the Gin context
func GetSession(c *gin.Context) *entity.Session {
	v, exists := c.Get(SessionKey)
	if !exists {
		return nil
	}
	sess, _ := v.(*entity.Session)
	return sess
}

// RequestedBy names the user behind the request for the print journal.
func RequestedBy(c *gin.Context) string {
	sess := GetSession(c)
	if !sess.IsAuthenticated() {
		return ""
	}
	return sess.User.Email
}

// bindJSON binds and validates the body, answering 400 or 422 on failure.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		response.Error(c, validation.FromBindError(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		response.Error(c, validation.FromBindError(err))
		return false
	}
	return true
}

// lineIndex reads the :index path parameter.
func lineIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		response.Error(c, apperror.NewAppError(http.StatusBadRequest, "Invalid line index"))
		return 0, false
	}
	return index, true
}
