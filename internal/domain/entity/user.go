package entity

import (
	"time"

	"github.com/bumisubur/pos-gateway/internal/domain/enum"
)

// User is the profile returned by /api/user/me and the employee directory.
type User struct {
	ID         int       `json:"id"`
	NIK        string    `json:"nik"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"no_hp"`
	Role       enum.Role `json:"role"`
	JoinedAt   string    `json:"tanggal_masuk"`
	BirthPlace string    `json:"tempat_lahir"`
	BirthDate  string    `json:"tanggal_lahir"`
	Address    string    `json:"alamat"`
}

// SessionStatus says whether the profile behind a token is known yet.
type SessionStatus string

const (
	SessionResolving     SessionStatus = "resolving"
	SessionAuthenticated SessionStatus = "authenticated"
)

// Session is the gateway's view of one logged-in token. The raw token is
// never stored; callers key sessions by its digest.
type Session struct {
	TokenDigest string        `json:"token_digest"`
	User        *User         `json:"user,omitempty"`
	Status      SessionStatus `json:"status"`
	SidenavOpen bool          `json:"sidenav_open"`
	ResolvedAt  time.Time     `json:"resolved_at"`
}

// IsAuthenticated reports whether the profile has been fetched.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.Status == SessionAuthenticated && s.User != nil
}

// Role is the session user's role, or RoleUnknown.
func (s *Session) Role() enum.Role {
	if !s.IsAuthenticated() {
		return enum.RoleUnknown
	}
	return s.User.Role
}
