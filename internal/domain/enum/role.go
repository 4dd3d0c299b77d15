package enum

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role is the role the backend assigns to a user.
type Role int

const (
	RoleUnknown   Role = 0
	RoleAdmin     Role = 1
	RoleStok      Role = 2
	RoleKasir     Role = 3
	RoleKasirStok Role = 4
)

// Roles lists every known role.
var Roles = []Role{RoleAdmin, RoleStok, RoleKasir, RoleKasirStok}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleStok:
		return "stok"
	case RoleKasir:
		return "kasir"
	case RoleKasirStok:
		return "kasirstok"
	default:
		return ""
	}
}

// ParseRole maps the backend's role string onto a Role.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin
	case "stok":
		return RoleStok
	case "kasir":
		return RoleKasir
	case "kasirstok":
		return RoleKasirStok
	default:
		return RoleUnknown
	}
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*r = ParseRole(str)
	return nil
}

// DefaultRoute is where an authenticated user lands after login or after
// being turned away from a page their role cannot see.
func (r Role) DefaultRoute() string {
	switch r {
	case RoleAdmin:
		return "/pending-stok"
	case RoleStok:
		return "/stok"
	case RoleKasir, RoleKasirStok:
		return "/transaksi"
	default:
		return LoginRoute
	}
}

// LoginRoute is the only public page.
const LoginRoute = "/"

// RouteRole is the role class a page or API route requires.
type RouteRole int

const (
	RoutePublic    RouteRole = 0
	RouteAdmin     RouteRole = 1
	RouteStok      RouteRole = 2
	RouteKasir     RouteRole = 3
	RouteKasirStok RouteRole = 4
)

// RouteRoles lists every route role class.
var RouteRoles = []RouteRole{RoutePublic, RouteAdmin, RouteStok, RouteKasir, RouteKasirStok}

func (rr RouteRole) String() string {
	names := [...]string{"public", "admin", "stok", "kasir", "kasirstok"}
	if int(rr) < 0 || int(rr) >= len(names) {
		return fmt.Sprintf("RouteRole(%d)", int(rr))
	}
	return names[rr]
}

func (rr RouteRole) MarshalJSON() ([]byte, error) {
	return json.Marshal(rr.String())
}

// HasAccess reports whether role may open a route of class rr.
//
//	admin     -> everything
//	stok      -> stok, kasirstok, public
//	kasir     -> kasir, kasirstok, public
//	kasirstok -> stok, kasir, kasirstok, public
func HasAccess(role Role, rr RouteRole) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleStok:
		switch rr {
		case RouteStok, RouteKasirStok, RoutePublic:
			return true
		case RouteAdmin, RouteKasir:
			return false
		}
	case RoleKasir:
		switch rr {
		case RouteKasir, RouteKasirStok, RoutePublic:
			return true
		case RouteAdmin, RouteStok:
			return false
		}
	case RoleKasirStok:
		switch rr {
		case RouteStok, RouteKasir, RouteKasirStok, RoutePublic:
			return true
		case RouteAdmin:
			return false
		}
	case RoleUnknown:
		return false
	}
	return false
}
