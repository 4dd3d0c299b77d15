package middleware

import (
	"errors"
	"strings"

	"github.com/bumisubur/pos-gateway/internal/application/service"
	"github.com/bumisubur/pos-gateway/internal/domain/entity"
	"github.com/bumisubur/pos-gateway/internal/domain/enum"
	"github.com/bumisubur/pos-gateway/internal/presentation/http/dto/response"
	"github.com/bumisubur/pos-gateway/internal/presentation/http/handler"
	"github.com/bumisubur/pos-gateway/pkg/apperror"
	"github.com/gin-gonic/gin"
)

// TokenMiddleware reads the token from the Authorization header, falling
// back to the session cookie. It never rejects a request.
func TokenMiddleware(cookie handler.SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = cookie.Read(c)
		}
		if token != "" {
			c.Set(handler.TokenKey, token)
		}
		c.Next()
	}
}

// SessionMiddleware resolves the session behind the token. A missing or
// rejected token answers 401, a session still being resolved answers 503.
func SessionMiddleware(auth *service.AuthService, cookie handler.SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := auth.Resolve(c.Request.Context(), handler.GetToken(c))
		if err != nil {
			if errors.Is(err, apperror.ErrInvalidToken) {
				cookie.Clear(c)
			}
			response.Error(c, err)
			return
		}
		if sess.Status == entity.SessionResolving {
			response.Error(c, apperror.ErrSessionResolving)
			return
		}

		c.Set(handler.SessionKey, sess)
		c.Next()
	}
}

// RequireRouteRole rejects sessions whose role cannot open routes of class
// rr. The response tells the client where to go instead.
func RequireRouteRole(rr enum.RouteRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := handler.GetSession(c)
		if !sess.IsAuthenticated() {
			response.Unauthorized(c, "Token not found! Please log in.")
			return
		}
		if !enum.HasAccess(sess.Role(), rr) {
			c.Header("X-Redirect-To", sess.Role().DefaultRoute())
			response.Forbidden(c, "Anda tidak memiliki akses ke halaman ini")
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
