package service

import (
	"testing"

	"github.com/bumisubur/pos-gateway/internal/domain/entity"
	"github.com/bumisubur/pos-gateway/internal/domain/enum"
	"github.com/stretchr/testify/assert"
)

func sessionFor(role enum.Role) *entity.Session {
	return &entity.Session{
		User:   &entity.User{ID: 1, Role: role},
		Status: entity.SessionAuthenticated,
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		sess     *entity.Session
		rr       enum.RouteRole
		path     string
		redirect string
		want     GuardDecision
	}{
		{
			name: "resolving shows loading",
			sess: &entity.Session{Status: entity.SessionResolving},
			rr:   enum.RouteAdmin,
			path: "/cv",
			want: GuardDecision{Action: GuardLoading},
		},
		{
			name: "anonymous on login renders",
			rr:   enum.RoutePublic,
			path: "/",
			want: GuardDecision{Action: GuardRender},
		},
		{
			name: "anonymous on protected page goes to login",
			rr:   enum.RouteKasir,
			path: "/transaksi",
			want: GuardDecision{Action: GuardRedirect, To: "/?redirect=%2Ftransaksi"},
		},
		{
			name:     "authenticated on login goes to default route",
			sess:     sessionFor(enum.RoleAdmin),
			rr:       enum.RoutePublic,
			path:     "/",
			redirect: "/cv",
			want:     GuardDecision{Action: GuardRedirect, To: "/pending-stok"},
		},
		{
			name:     "authenticated on other public page follows redirect",
			sess:     sessionFor(enum.RoleStok),
			rr:       enum.RoutePublic,
			path:     "/info",
			redirect: "/stok/4",
			want:     GuardDecision{Action: GuardRedirect, To: "/stok/4"},
		},
		{
			name:     "external redirect is ignored",
			sess:     sessionFor(enum.RoleStok),
			rr:       enum.RoutePublic,
			path:     "/info",
			redirect: "//evil.example",
			want:     GuardDecision{Action: GuardRedirect, To: "/stok"},
		},
		{
			name: "insufficient role goes to default route",
			sess: sessionFor(enum.RoleKasir),
			rr:   enum.RouteAdmin,
			path: "/karyawan",
			want: GuardDecision{Action: GuardRedirect, To: "/transaksi"},
		},
		{
			name: "kasirstok opens stok pages",
			sess: sessionFor(enum.RoleKasirStok),
			rr:   enum.RouteStok,
			path: "/pending-stok",
			want: GuardDecision{Action: GuardRender},
		},
		{
			name: "admin opens everything",
			sess: sessionFor(enum.RoleAdmin),
			rr:   enum.RouteKasir,
			path: "/transaksi",
			want: GuardDecision{Action: GuardRender},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.sess, tt.rr, tt.path, tt.redirect))
		})
	}
}

func TestPageRole(t *testing.T) {
	tests := map[string]enum.RouteRole{
		"/":                   enum.RoutePublic,
		"/transaksi":          enum.RouteKasir,
		"/riwayat-transaksi/": enum.RouteKasir,
		"/stok":               enum.RouteKasirStok,
		"/stok/12":            enum.RouteStok,
		"/stok/12/restok":     enum.RouteStok,
		"/stok/tambah/baru":   enum.RouteStok,
		"/stok/tambah/lama":   enum.RouteAdmin,
		"/pending-stok":       enum.RouteStok,
		"/pending-stok/3":     enum.RouteAdmin,
		"/pending-stok/3/x":   enum.RouteAdmin,
		"/supplier/9/edit":    enum.RouteAdmin,
		"/cv":                 enum.RouteAdmin,
		"/return":             enum.RouteKasirStok,
		"/riwayat-return":     enum.RouteStok,
	}
	for path, want := range tests {
		got, ok := PageRole(path)
		assert.True(t, ok, path)
		assert.Equal(t, want, got, path)
	}

	_, ok := PageRole("/tidak-ada")
	assert.False(t, ok)
	_, ok = PageRole("/supplierx")
	assert.False(t, ok)
}

func TestLandingRoute(t *testing.T) {
	assert.Equal(t, "/karyawan/2", LandingRoute(enum.RoleAdmin, "/karyawan/2"))
	assert.Equal(t, "/transaksi", LandingRoute(enum.RoleKasir, "/karyawan/2"))
	assert.Equal(t, "/stok", LandingRoute(enum.RoleStok, ""))
	assert.Equal(t, "/stok", LandingRoute(enum.RoleStok, "https://evil.example"))
	assert.Equal(t, "/stok/5?tab=restok", LandingRoute(enum.RoleKasirStok, "/stok/5?tab=restok"))
}
