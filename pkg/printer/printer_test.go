package printer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentCommands(t *testing.T) {
	doc := NewDocument(4).
		LineSpacing(0).
		PrintMode(ModeHeadline).
		Text("UD").
		PrintMode(ModeNormal).
		DefaultLineSpacing().
		Separator('-').
		FeedLines(2).
		FeedCut(0)

	want := []byte{
		ESC, '@',
		ESC, '3', 0x00,
		ESC, '!', 0x38,
		'U', 'D', LF,
		ESC, '!', 0x00,
		ESC, '2',
		'-', '-', '-', '-', LF,
		LF, LF,
		GS, 'V', 'B', 0x00,
	}
	assert.Equal(t, want, doc.Bytes())
	assert.Equal(t, string(want), doc.String())
}

func TestNewDocumentDefaultsWidth(t *testing.T) {
	doc := NewDocument(0).Separator('=')
	assert.Len(t, doc.Bytes(), 2+32+1)
}

func TestSpoolerPrinterPostsRawJob(t *testing.T) {
	var got Job
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			return
		}
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/job", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewSpoolerPrinter(srv.URL+"/", "POS-80", srv.Client())
	data := NewDocument(32).Text("halo").FeedCut(0).Bytes()

	require.NoError(t, p.Print(context.Background(), data))
	assert.Equal(t, "POS-80", got.Printer)
	assert.Equal(t, "RAW", got.Type)
	assert.Equal(t, string(data), got.Data)
	assert.Equal(t, "POS-80", p.Name())
	assert.True(t, p.IsConnected(context.Background()))
}

func TestSpoolerPrinterReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "printer offline", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewSpoolerPrinter(srv.URL, "POS-80", srv.Client())
	err := p.Print(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "printer offline")
}

func TestNewPrinterFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{name: "spooler", cfg: Config{Type: "spooler", SpoolerURL: "http://localhost:5000", Printer: "POS-80"}, want: "POS-80"},
		{name: "spooler without url", cfg: Config{Type: "spooler"}, wantErr: true},
		{name: "usb", cfg: Config{Type: "usb", USBPath: "/dev/usb/lp0"}, want: "/dev/usb/lp0"},
		{name: "usb without path", cfg: Config{Type: "usb"}, wantErr: true},
		{name: "network", cfg: Config{Type: "network", Address: "10.0.0.9:9100"}, want: "10.0.0.9:9100"},
		{name: "none", cfg: Config{Type: "none"}, want: "none"},
		{name: "unknown", cfg: Config{Type: "bluetooth"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPrinterFromConfig(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name())
		})
	}
}

func TestNullPrinterAcceptsEverything(t *testing.T) {
	p := NewNullPrinter()
	assert.NoError(t, p.Print(context.Background(), []byte("anything")))
	assert.False(t, p.IsConnected(context.Background()))
}
