package service

import (
	"net/url"
	"strings"

	"github.com/bumisubur/pos-gateway/internal/domain/entity"
	"github.com/bumisubur/pos-gateway/internal/domain/enum"
)

// GuardAction is what the client should do with a page.
type GuardAction string

const (
	GuardRender   GuardAction = "render"
	GuardLoading  GuardAction = "loading"
	GuardRedirect GuardAction = "redirect"
)

// GuardDecision is the outcome of Decide.
type GuardDecision struct {
	Action GuardAction `json:"action"`
	To     string      `json:"to,omitempty"`
}

func render() GuardDecision { return GuardDecision{Action: GuardRender} }
func loading() GuardDecision { return GuardDecision{Action: GuardLoading} }
func redirect(to string) GuardDecision { return GuardDecision{Action: GuardRedirect, To: to} }

func loginRedirect(path string) GuardDecision {
	return redirect(enum.LoginRoute + "?redirect=" + url.QueryEscape(path))
}

// Decide applies the role table to a page visit.
//
// A nil session means no token. A resolving session renders the loading
// state so nothing redirects before the profile is known.
func Decide(sess *entity.Session, rr enum.RouteRole, path, redirectParam string) GuardDecision {
	if sess != nil && sess.Status == entity.SessionResolving {
		return loading()
	}

	if !sess.IsAuthenticated() {
		if rr == enum.RoutePublic {
			return render()
		}
		return loginRedirect(path)
	}

	role := sess.Role()
	if path == enum.LoginRoute {
		return redirect(role.DefaultRoute())
	}
	if rr == enum.RoutePublic {
		if safeRedirect(redirectParam) {
			return redirect(redirectParam)
		}
		return redirect(role.DefaultRoute())
	}
	if !enum.HasAccess(role, rr) {
		return redirect(role.DefaultRoute())
	}
	return render()
}

// LandingRoute is where role goes right after login: the requested page when
// it is a known page the role may open, otherwise the role's default route.
func LandingRoute(role enum.Role, redirectParam string) string {
	if safeRedirect(redirectParam) {
		p := redirectParam
		if i := strings.IndexAny(p, "?#"); i >= 0 {
			p = p[:i]
		}
		if rr, ok := PageRole(p); ok && rr != enum.RoutePublic && enum.HasAccess(role, rr) {
			return redirectParam
		}
	}
	return role.DefaultRoute()
}

// safeRedirect accepts only same-origin absolute paths.
func safeRedirect(to string) bool {
	return strings.HasPrefix(to, "/") && !strings.HasPrefix(to, "//") && !strings.Contains(to, "\\")
}

type pageRule struct {
	pattern string
	role    enum.RouteRole
}

// pages maps every page of the POS to the role class it requires. Static
// patterns come before parameterized ones; a trailing * matches the
// pattern itself and anything below it.
var pages = []pageRule{
	{"/", enum.RoutePublic},

	{"/transaksi", enum.RouteKasir},
	{"/riwayat-transaksi", enum.RouteKasir},

	{"/stok", enum.RouteKasirStok},
	{"/return", enum.RouteKasirStok},

	{"/stok/tambah/baru", enum.RouteStok},
	{"/stok/tambah/lama", enum.RouteAdmin},
	{"/riwayat-return", enum.RouteStok},
	{"/pending-stok", enum.RouteStok},

	{"/final-stok", enum.RouteAdmin},
	{"/riwayat-akses", enum.RouteAdmin},
	{"/supplier*", enum.RouteAdmin},
	{"/karyawan*", enum.RouteAdmin},
	{"/cv*", enum.RouteAdmin},
	{"/pengeluaran*", enum.RouteAdmin},
	{"/pending-stok/:id*", enum.RouteAdmin},

	{"/stok/:id", enum.RouteStok},
	{"/stok/:id/restok", enum.RouteStok},
}

// PageRole returns the role class of the page at path.
func PageRole(path string) (enum.RouteRole, bool) {
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}
	for _, p := range pages {
		if matchPage(p.pattern, path) {
			return p.role, true
		}
	}
	return enum.RoutePublic, false
}

func matchPage(pattern, path string) bool {
	wildcard := strings.HasSuffix(pattern, "*")
	pattern = strings.TrimSuffix(pattern, "*")

	want := strings.Split(pattern, "/")
	got := strings.Split(path, "/")
	if len(got) < len(want) || (!wildcard && len(got) != len(want)) {
		return false
	}
	for i, seg := range want {
		if strings.HasPrefix(seg, ":") {
			if got[i] == "" {
				return false
			}
			continue
		}
		if seg != got[i] {
			return false
		}
	}
	return true
}
