package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/bumisubur/pos-gateway/internal/config"
	"github.com/bumisubur/pos-gateway/internal/domain/entity"
	"github.com/bumisubur/pos-gateway/internal/domain/enum"
	"github.com/bumisubur/pos-gateway/pkg/apperror"
	"github.com/bumisubur/pos-gateway/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.BackendConfig{BaseURL: srv.URL + "/"}, logger.Discard())
}

func writeEnvelope(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestClientSendsBearerAndHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/me", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "true", r.Header.Get("ngrok-skip-browser-warning"))
		writeEnvelope(w, http.StatusOK, `{"status":true,"message":"ok","data":{"id":7,"name":"Sari","role":"kasir"}}`)
	})

	user, err := c.Me(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, 7, user.ID)
	assert.Equal(t, "Sari", user.Name)
	assert.Equal(t, enum.RoleKasir, user.Role)
}

func TestLoginSendsNoAuthorization(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.id", body["email"])
		writeEnvelope(w, http.StatusOK, `{"status":true,"message":"ok","data":{"token":"jwt","role":"admin"}}`)
	})

	res, err := c.Login(context.Background(), "a@b.id", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt", res.Token)
	assert.Equal(t, "admin", res.Role)
}

func TestCreateTransactionSendsNumbers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/transaksi", r.URL.Path)
		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"metode_bayar":"QRIS","total_harga":90000,"diskon":10,"produks":[{"detail_produk_id":11,"jumlah_produk":9}]}`, string(raw))
		writeEnvelope(w, http.StatusOK, `{"status":true,"message":"ok","data":{"id":321,"total_harga":90000,"metode_bayar":"QRIS","diskon":10}}`)
	})

	created, err := c.CreateTransaction(context.Background(), "tok", entity.Submission{
		PaymentMethod: enum.PaymentQRIS,
		Total:         decimal.NewFromInt(90000),
		Discount:      decimal.NewFromInt(10),
		Products:      []entity.SubmissionLine{{DetailID: 11, Quantity: 9}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(321), created.ID)
}

func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode int
		wantMsg  string
	}{
		{
			name:     "string message",
			status:   http.StatusBadRequest,
			body:     `{"status":false,"message":"gagal membuat transaksi","error":"stok tidak cukup","data":null}`,
			wantCode: http.StatusBadRequest,
			wantMsg:  "gagal membuat transaksi",
		},
		{
			name:     "object message takes first entry of first field",
			status:   http.StatusUnprocessableEntity,
			body:     `{"status":false,"message":{"email":["email sudah dipakai","lainnya"],"name":["wajib"]}}`,
			wantCode: http.StatusUnprocessableEntity,
			wantMsg:  "email sudah dipakai",
		},
		{
			name:     "falls back to error field",
			status:   http.StatusUnauthorized,
			body:     `{"status":false,"message":"","error":"token expired"}`,
			wantCode: http.StatusUnauthorized,
			wantMsg:  "token expired",
		},
		{
			name:     "non JSON body",
			status:   http.StatusInternalServerError,
			body:     `<html>bad gateway</html>`,
			wantCode: http.StatusBadGateway,
			wantMsg:  DefaultErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, tt.status, tt.body)
			})
			_, err := c.Me(context.Background(), "tok")
			require.Error(t, err)

			appErr := apperror.GetAppError(err)
			assert.Equal(t, apperror.KindUpstream, appErr.Kind)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}
}

func TestUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(config.BackendConfig{BaseURL: url}, logger.Discard())
	_, err := c.TransactionIndex(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindUpstream))
}

func TestResourceListDecodesBothShapes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/cabang":
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			assert.Equal(t, "5", r.URL.Query().Get("per_page"))
			assert.Equal(t, "tanjung", r.URL.Query().Get("search"))
			writeEnvelope(w, http.StatusOK, `{"status":true,"data":{"data":[{"id":1,"name":"CV A","alamat":"Jl. 1","keterangan":"-"}],"pagination":{"page":2,"per_page":5,"max_page":3,"count":11}}}`)
		case "/api/user":
			writeEnvelope(w, http.StatusOK, `{"status":true,"data":{"data":[{"id":3,"name":"Budi","role":"stok"}],"page":1,"per_page":10,"max_page":1,"count":1,"total_karyawan":1}}`)
		case "/api/jenis":
			writeEnvelope(w, http.StatusOK, `{"status":true,"data":[{"id":1,"nama_jenis":"Kaos"},{"id":2,"nama_jenis":"Celana"}]}`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	branches, err := c.Branches.List(ctx, "tok", ListQuery{Search: "tanjung", Page: 2, PerPage: 5})
	require.NoError(t, err)
	require.Len(t, branches.Data, 1)
	assert.Equal(t, "CV A", branches.Data[0].Name)
	assert.True(t, branches.Paginated)
	assert.Equal(t, int64(11), branches.Pagination.Count)
	assert.Equal(t, 3, branches.Meta().TotalPages)

	users, err := c.Users.List(ctx, "tok", ListQuery{})
	require.NoError(t, err)
	assert.True(t, users.Paginated)
	assert.Equal(t, 10, users.Pagination.PerPage)
	assert.Equal(t, enum.RoleStok, users.Data[0].Role)

	categories, err := c.Categories.List(ctx, "tok", ListQuery{})
	require.NoError(t, err)
	assert.False(t, categories.Paginated)
	assert.Len(t, categories.Data, 2)
}

func TestResourceMutations(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path)
		mu.Unlock()
		writeEnvelope(w, http.StatusOK, `{"status":true,"message":"ok","data":{"id":4,"name":"CV B"}}`)
	})
	ctx := context.Background()

	_, err := c.Branches.Create(ctx, "tok", map[string]string{"name": "CV B"})
	require.NoError(t, err)
	_, err = c.Branches.Update(ctx, "tok", "4", map[string]string{"name": "CV B"})
	require.NoError(t, err)
	require.NoError(t, c.Branches.Delete(ctx, "tok", "4"))
	require.NoError(t, c.ApprovePendingStock(ctx, "tok", "9"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"POST /api/cabang",
		"PATCH /api/cabang/4",
		"DELETE /api/cabang/4",
		"POST /api/produk/pending/insert/9",
	}, seen)
}
