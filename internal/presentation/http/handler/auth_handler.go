package handler

import (
	"errors"

	"github.com/bumisubur/pos-gateway/internal/application/service"
	"github.com/bumisubur/pos-gateway/internal/presentation/http/dto/request"
	"github.com/bumisubur/pos-gateway/internal/presentation/http/dto/response"
	"github.com/bumisubur/pos-gateway/pkg/apperror"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService     *service.AuthService
	checkoutService *service.CheckoutService
	cookie          SessionCookie
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, checkoutService *service.CheckoutService, cookie SessionCookie) *AuthHandler {
	return &AuthHandler{authService: authService, checkoutService: checkoutService, cookie: cookie}
}

// Login handles user login
// @Summary Login
// @Description Authenticate against the backend and resolve the session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Login credentials"
// @Success 200 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	output, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.cookie.Set(c, output.Token)
	output.RedirectTo = service.LandingRoute(output.Role, req.Redirect)
	response.Notify(c, 200, response.LevelSuccess, "Login berhasil", output)
}

// Logout handles user logout
// @Summary Logout
// @Description Forget the session and its cart
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} response.APIResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token := GetToken(c)
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}
	h.checkoutService.Drop(token)
	h.cookie.Clear(c)
	response.OK(c, "Logged out successfully", nil)
}

// SessionHandler serves the session state the web client renders from.
type SessionHandler struct {
	authService *service.AuthService
	cookie      SessionCookie
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(authService *service.AuthService, cookie SessionCookie) *SessionHandler {
	return &SessionHandler{authService: authService, cookie: cookie}
}

// sessionView is the session as the client sees it.
type sessionView struct {
	Status       string `json:"status"`
	User         any    `json:"user,omitempty"`
	Role         string `json:"role,omitempty"`
	DefaultRoute string `json:"default_route"`
	SidenavOpen  bool   `json:"sidenav_open"`
}

// Get returns the current session, resolving it on first use.
func (h *SessionHandler) Get(c *gin.Context) {
	sess, err := h.authService.Resolve(c.Request.Context(), GetToken(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	view := sessionView{
		Status:       string(sess.Status),
		DefaultRoute: sess.Role().DefaultRoute(),
		SidenavOpen:  sess.SidenavOpen,
	}
	if sess.IsAuthenticated() {
		view.User = sess.User
		view.Role = sess.Role().String()
	}
	response.OK(c, "Session retrieved", view)
}

// Revalidate refetches the profile behind the token.
func (h *SessionHandler) Revalidate(c *gin.Context) {
	sess, err := h.authService.Revalidate(c.Request.Context(), GetToken(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, "Session revalidated", sess)
}

// ToggleSidenav flips the navigation drawer.
func (h *SessionHandler) ToggleSidenav(c *gin.Context) {
	open, err := h.authService.ToggleSidenav(c.Request.Context(), GetToken(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, "Sidenav updated", gin.H{"sidenav_open": open})
}

// Guard decides whether a page may render for the caller.
func (h *SessionHandler) Guard(c *gin.Context) {
	var req request.GuardRequest
	if !bindQuery(c, &req) {
		return
	}
	rr, ok := service.PageRole(req.Path)
	if !ok {
		response.NotFound(c, "Halaman tidak ditemukan")
		return
	}

	sess, err := h.authService.Resolve(c.Request.Context(), GetToken(c))
	switch {
	case err == nil:
	case errors.Is(err, apperror.ErrUnauthorized), errors.Is(err, apperror.ErrInvalidToken):
		if errors.Is(err, apperror.ErrInvalidToken) {
			h.cookie.Clear(c)
		}
		sess = nil
	default:
		response.Error(c, err)
		return
	}

	response.OK(c, "Guard decided", service.Decide(sess, rr, req.Path, req.Redirect))
}

func (h *SessionHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, apperror.ErrInvalidToken) {
		h.cookie.Clear(c)
	}
	response.Error(c, err)
}
