package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/bumisubur/pos-gateway/internal/config"
	"github.com/bumisubur/pos-gateway/internal/infrastructure/backend"
	"github.com/bumisubur/pos-gateway/pkg/apperror"
	"github.com/bumisubur/pos-gateway/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDirectory(t *testing.T, h http.HandlerFunc) (*DirectoryService, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	client := backend.NewClient(config.BackendConfig{BaseURL: srv.URL}, logger.Discard())
	return NewDirectoryService(client, logger.Discard()), &calls
}

func respond(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

func TestDirectoryListPaginated(t *testing.T) {
	dir, _ := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cabang", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "bumi", r.URL.Query().Get("search"))
		respond(w, `{"status":true,"message":"ok","data":{"data":[
			{"id":1,"name":"CV Bumi","alamat":"Berau","keterangan":"pusat"},
			{"id":2,"name":"CV Bumi Dua","alamat":"Tanjung Redeb","keterangan":""}
		],"pagination":{"page":2,"per_page":2,"max_page":3,"count":6}}}`)
	})

	c, err := dir.Collection("cv", OpList)
	require.NoError(t, err)

	view, err := c.List(context.Background(), "tok", ListRequest{Search: "bumi", Page: 2, PerPage: 2})
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"CV Bumi", "Berau", "pusat"},
		{"CV Bumi Dua", "Tanjung Redeb", ""},
	}, view.Rows)
	assert.Equal(t, 2, view.Pagination.CurrentPage)
	assert.Equal(t, int64(6), view.Pagination.Total)
	assert.Equal(t, 3, view.Pagination.TotalPages)
	assert.False(t, view.Columns[0].Visible)
}

func TestDirectoryListBareArray(t *testing.T) {
	dir, _ := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/jenis", r.URL.Path)
		respond(w, `{"status":true,"message":"ok","data":[
			{"id":1,"nama_jenis":"Kaos"},
			{"id":2,"nama_jenis":"Celana"},
			{"id":3,"nama_jenis":"Kaos Kaki"}
		]}`)
	})

	c, err := dir.Collection("jenis", OpList)
	require.NoError(t, err)

	view, err := c.List(context.Background(), "tok", ListRequest{Search: "kaos", Page: 1, PerPage: 1})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"1", "Kaos"}}, view.Rows)
	assert.Equal(t, int64(2), view.Pagination.Total)
	assert.True(t, view.Pagination.HasNext)
}

func TestDirectoryRejectsBadFilterBeforeFetching(t *testing.T) {
	dir, calls := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, `{"status":true,"data":[]}`)
	})

	c, err := dir.Collection("karyawan", OpList)
	require.NoError(t, err)

	_, err = c.List(context.Background(), "tok", ListRequest{Filters: map[string]string{"role": "boss"}})
	appErr := apperror.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)

	_, err = c.List(context.Background(), "tok", ListRequest{Columns: []string{"gaji"}})
	appErr = apperror.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)

	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestDirectoryUnsupportedOperation(t *testing.T) {
	dir, _ := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := dir.Collection("akses", OpDelete)
	assert.True(t, apperror.IsKind(err, apperror.KindDomain))

	_, err = dir.Collection("gudang", OpList)
	appErr := apperror.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
}

func TestDirectoryDeleteNeedsConfirmation(t *testing.T) {
	var deleted string
	dir, calls := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		deleted = r.URL.Path
		respond(w, `{"status":true,"message":"Berhasil dihapus","data":null}`)
	})

	err := dir.Delete(context.Background(), "tok", "cv", "3", false)
	assert.Equal(t, apperror.ErrConfirmationFirst, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))

	require.NoError(t, dir.Delete(context.Background(), "tok", "cv", "3", true))
	assert.Equal(t, "/api/cabang/3", deleted)
}

func TestDirectoryExportWorkbook(t *testing.T) {
	dir, _ := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/pengeluaran", r.URL.Path)
		assert.Equal(t, "1000", r.URL.Query().Get("per_page"))
		respond(w, `{"status":true,"data":{"data":[
			{"id":1,"nama_pengeluaran":"Listrik","tipe_pembayaran":"Transfer","tanggal_pengeluaran":"2026-10-01T00:00:00Z","kategori_pengeluaran":"Operasional","jumlah":250000,"tujuan":"PLN"}
		],"pagination":{"page":1,"per_page":1000,"max_page":1,"count":1}}}`)
	})

	c, err := dir.Collection("pengeluaran", OpList)
	require.NoError(t, err)

	out, err := c.Export(context.Background(), "tok", ListRequest{})
	require.NoError(t, err)
	require.Greater(t, len(out), 4)
	assert.Equal(t, "PK", string(out[:2]))
}

func TestDirectoryCollectionsOrder(t *testing.T) {
	dir, _ := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {})

	var names []string
	for _, c := range dir.Collections() {
		names = append(names, c.Name())
	}
	assert.Equal(t, "cv", names[0])
	assert.Contains(t, names, "transaksi")
	assert.Contains(t, names, "return-customer")
}
