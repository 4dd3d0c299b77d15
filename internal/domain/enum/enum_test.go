package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasAccessMatrix(t *testing.T) {
	want := map[Role]map[RouteRole]bool{
		RoleAdmin: {
			RoutePublic: true, RouteAdmin: true, RouteStok: true, RouteKasir: true, RouteKasirStok: true,
		},
		RoleStok: {
			RoutePublic: true, RouteAdmin: false, RouteStok: true, RouteKasir: false, RouteKasirStok: true,
		},
		RoleKasir: {
			RoutePublic: true, RouteAdmin: false, RouteStok: false, RouteKasir: true, RouteKasirStok: true,
		},
		RoleKasirStok: {
			RoutePublic: true, RouteAdmin: false, RouteStok: true, RouteKasir: true, RouteKasirStok: true,
		},
	}

	for _, role := range Roles {
		for _, rr := range RouteRoles {
			assert.Equal(t, want[role][rr], HasAccess(role, rr), "%s -> %s", role, rr)
		}
	}

	assert.False(t, HasAccess(ParseRole("kasir"), RouteStok))
	assert.True(t, HasAccess(ParseRole("kasirstok"), RouteStok))
}

func TestUnknownRoleHasNoAccess(t *testing.T) {
	for _, rr := range RouteRoles {
		assert.False(t, HasAccess(RoleUnknown, rr))
		assert.False(t, HasAccess(ParseRole("superuser"), rr))
	}
}

func TestDefaultRoute(t *testing.T) {
	assert.Equal(t, "/pending-stok", RoleAdmin.DefaultRoute())
	assert.Equal(t, "/stok", RoleStok.DefaultRoute())
	assert.Equal(t, "/transaksi", RoleKasir.DefaultRoute())
	assert.Equal(t, "/transaksi", RoleKasirStok.DefaultRoute())
	assert.Equal(t, LoginRoute, RoleUnknown.DefaultRoute())
}

func TestRoleJSON(t *testing.T) {
	var r Role
	require.NoError(t, json.Unmarshal([]byte(`"KasirStok"`), &r))
	assert.Equal(t, RoleKasirStok, r)

	data, err := json.Marshal(RoleStok)
	require.NoError(t, err)
	assert.JSONEq(t, `"stok"`, string(data))
}

func TestParsePaymentMethod(t *testing.T) {
	tests := map[string]PaymentMethod{
		"Tunai":    PaymentTunai,
		"cash":     PaymentTunai,
		"DEBIT":    PaymentDebit,
		"transfer": PaymentTransfer,
		"qris":     PaymentQRIS,
		"":         PaymentUnset,
	}
	for in, want := range tests {
		got, err := ParsePaymentMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePaymentMethod("kredit")
	assert.Error(t, err)

	assert.False(t, PaymentUnset.IsSet())
	assert.True(t, PaymentQRIS.IsSet())
	assert.Equal(t, "QRIS", PaymentQRIS.String())
}

func TestSubmissionState(t *testing.T) {
	assert.True(t, SubmissionSubmitting.Busy())
	assert.True(t, SubmissionPrinting.Busy())
	assert.False(t, SubmissionPrintFailed.Busy())
	assert.True(t, SubmissionPrintFailed.CanRetryPrint())
	assert.False(t, SubmissionFailed.CanRetryPrint())

	data, err := json.Marshal(SubmissionPrintFailed)
	require.NoError(t, err)
	assert.JSONEq(t, `"print_failed"`, string(data))
}

func TestPrintChannel(t *testing.T) {
	c, err := ParsePrintChannel("Mobile")
	require.NoError(t, err)
	assert.Equal(t, PrintMobile, c)

	c, err = ParsePrintChannel("")
	require.NoError(t, err)
	assert.Equal(t, PrintDesktop, c)

	_, err = ParsePrintChannel("fax")
	assert.Error(t, err)

	var scanned PrintChannel
	require.NoError(t, scanned.Scan([]byte("mobile")))
	assert.Equal(t, PrintMobile, scanned)
}
