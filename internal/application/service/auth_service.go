package service

import (
	"context"
	"net/http"
	"time"

	"github.com/bumisubur/pos-gateway/internal/domain/entity"
	"github.com/bumisubur/pos-gateway/internal/domain/enum"
	"github.com/bumisubur/pos-gateway/internal/domain/repository"
	"github.com/bumisubur/pos-gateway/internal/infrastructure/backend"
	"github.com/bumisubur/pos-gateway/pkg/apperror"
	"github.com/bumisubur/pos-gateway/pkg/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// DefaultResolveTimeout bounds how long a session may stay resolving before
// another request is allowed to fetch the profile again.
const DefaultResolveTimeout = 30 * time.Second

// IdentityProvider authenticates users against the backend.
type IdentityProvider interface {
	Login(ctx context.Context, email, password string) (*backend.LoginResult, error)
	Me(ctx context.Context, token string) (*entity.User, error)
}

// AuthService handles login and the per-token session cache. It is the only
// writer of sessions.
type AuthService struct {
	identity       IdentityProvider
	sessions       repository.SessionRepository
	log            *logrus.Logger
	resolveTimeout time.Duration
	now            func() time.Time
	group          singleflight.Group
}

// NewAuthService creates a new auth service
func NewAuthService(identity IdentityProvider, sessions repository.SessionRepository, log *logrus.Logger) *AuthService {
	return &AuthService{
		identity:       identity,
		sessions:       sessions,
		log:            log,
		resolveTimeout: DefaultResolveTimeout,
		now:            time.Now,
	}
}

// LoginOutput represents the login output
type LoginOutput struct {
	Token      string          `json:"token"`
	Role       enum.Role       `json:"role"`
	Session    *entity.Session `json:"session"`
	RedirectTo string          `json:"redirect_to"`
}

// Login exchanges credentials for a token and resolves its session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginOutput, error) {
	res, err := s.identity.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, apperror.ErrInvalidToken
	}

	// Any session left over for the same token is stale.
	_ = s.sessions.Delete(ctx, utils.TokenDigest(res.Token))

	sess, err := s.fetch(ctx, res.Token)
	if err != nil {
		return nil, err
	}

	role := sess.Role()
	if role == enum.RoleUnknown {
		role = enum.ParseRole(res.Role)
	}
	return &LoginOutput{
		Token:      res.Token,
		Role:       role,
		Session:    sess,
		RedirectTo: role.DefaultRoute(),
	}, nil
}

// Resolve returns the session for token, fetching the profile on first use.
// A session that is still being fetched elsewhere is returned as resolving.
func (s *AuthService) Resolve(ctx context.Context, token string) (*entity.Session, error) {
	if token == "" {
		return nil, apperror.ErrUnauthorized
	}
	digest := utils.TokenDigest(token)

	if utils.TokenExpired(token, s.now()) {
		s.clear(ctx, digest)
		return nil, apperror.ErrInvalidToken
	}

	sess, err := s.sessions.Get(ctx, digest)
	if err != nil {
		return nil, err
	}
	if sess.IsAuthenticated() {
		return sess, nil
	}
	if sess != nil && sess.Status == entity.SessionResolving && s.now().Sub(sess.ResolvedAt) < s.resolveTimeout {
		return sess, nil
	}

	return s.fetch(ctx, token)
}

// Revalidate refetches the profile behind token, clearing the session when
// the token is missing, expired or rejected.
func (s *AuthService) Revalidate(ctx context.Context, token string) (*entity.Session, error) {
	if token == "" {
		return nil, apperror.ErrUnauthorized
	}
	if utils.TokenExpired(token, s.now()) {
		s.clear(ctx, utils.TokenDigest(token))
		return nil, apperror.ErrInvalidToken
	}
	return s.fetch(ctx, token)
}

// Session returns the cached session without contacting the backend.
func (s *AuthService) Session(ctx context.Context, token string) (*entity.Session, error) {
	if token == "" {
		return nil, nil
	}
	return s.sessions.Get(ctx, utils.TokenDigest(token))
}

// Logout forgets the session of token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, utils.TokenDigest(token))
}

// ToggleSidenav flips the navigation drawer flag and returns the new value.
func (s *AuthService) ToggleSidenav(ctx context.Context, token string) (bool, error) {
	sess, err := s.Session(ctx, token)
	if err != nil {
		return false, err
	}
	if !sess.IsAuthenticated() {
		return false, apperror.ErrUnauthorized
	}
	sess.SidenavOpen = !sess.SidenavOpen
	if err := s.sessions.Save(ctx, sess); err != nil {
		return false, err
	}
	return sess.SidenavOpen, nil
}

// fetch loads the profile for token once per token at a time and stores the
// resulting session.
func (s *AuthService) fetch(ctx context.Context, token string) (*entity.Session, error) {
	digest := utils.TokenDigest(token)

	v, err, _ := s.group.Do(digest, func() (interface{}, error) {
		prev, err := s.sessions.Get(ctx, digest)
		if err != nil {
			return nil, err
		}
		sidenav := prev != nil && prev.SidenavOpen

		pending := &entity.Session{
			TokenDigest: digest,
			Status:      entity.SessionResolving,
			SidenavOpen: sidenav,
			ResolvedAt:  s.now(),
		}
		if err := s.sessions.Save(ctx, pending); err != nil {
			return nil, err
		}

		user, err := s.identity.Me(ctx, token)
		if err != nil {
			s.clear(ctx, digest)
			s.log.WithError(err).Info("Profile fetch failed, session cleared")
			if appErr := apperror.GetAppError(err); appErr.Code == http.StatusUnauthorized || appErr.Code == http.StatusForbidden {
				return nil, apperror.ErrInvalidToken
			}
			return nil, err
		}

		sess := &entity.Session{
			TokenDigest: digest,
			User:        user,
			Status:      entity.SessionAuthenticated,
			SidenavOpen: sidenav,
			ResolvedAt:  s.now(),
		}
		if err := s.sessions.Save(ctx, sess); err != nil {
			return nil, err
		}
		return sess, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*entity.Session), nil
}

func (s *AuthService) clear(ctx context.Context, digest string) {
	if err := s.sessions.Delete(ctx, digest); err != nil {
		s.log.WithError(err).Warn("Failed to clear session")
	}
}
