package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bumisubur/pos-gateway/internal/domain/entity"
	"github.com/bumisubur/pos-gateway/internal/domain/enum"
	"github.com/bumisubur/pos-gateway/internal/infrastructure/metrics"
	"github.com/bumisubur/pos-gateway/internal/infrastructure/repository"
	"github.com/bumisubur/pos-gateway/pkg/apperror"
	"github.com/bumisubur/pos-gateway/pkg/logger"
	"github.com/bumisubur/pos-gateway/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransactions struct {
	mu      sync.Mutex
	details map[string]*entity.TransactionDetail
	err     error
	tokens  []string
}

func (f *fakeTransactions) TransactionForPrint(_ context.Context, token, id string) (*entity.TransactionDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.details[id]
	if !ok {
		return nil, apperror.NewUpstreamError(404, "transaksi tidak ditemukan")
	}
	return d, nil
}

type fakePrinter struct {
	mu   sync.Mutex
	jobs [][]byte
	err  error
}

func (p *fakePrinter) Print(_ context.Context, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, append([]byte(nil), data...))
	return nil
}

func (p *fakePrinter) Name() string { return "POS-80" }

func (p *fakePrinter) IsConnected(context.Context) bool { return p.err == nil }

func sampleDetail() *entity.TransactionDetail {
	return &entity.TransactionDetail{
		ID:            321,
		Date:          "2026-10-16T06:05:09Z",
		Total:         decimal.NewFromInt(135000),
		PaymentMethod: "Tunai",
		Discount:      decimal.NewFromInt(15000),
		Lines: []entity.TransactionLine{
			{Brand: "Eiger", Name: "Kaos Polos", Category: "Kaos", Size: "L", Quantity: 2, Price: decimal.NewFromInt(50000)},
			{Brand: "Levis", Name: "Celana Jeans", Category: "Celana", Size: "32", Quantity: 1, Price: decimal.NewFromInt(50000)},
		},
	}
}

func sampleSettings() ReceiptSettings {
	loc := time.FixedZone("WITA", 8*3600)
	return ReceiptSettings{
		Header: entity.ReceiptHeader{
			ShopName:     "UD. BUMI SUBUR",
			AddressLines: []string{"JL Jenderal Ahmad Yani, Bugis, Tanjung", "Redeb, Berau, 77312, Indonesia"},
			Footer:       "Terima Kasih Atas Kunjungan Anda",
		},
		Width:         32,
		Location:      loc,
		MobileScheme:  "my.bluetoothprint.scheme",
		PublicBaseURL: "https://pos.example.id/",
	}
}

func newReceiptService(tx *fakeTransactions, p *fakePrinter) *ReceiptService {
	return NewReceiptService(tx, p, repository.NewMemoryPrintJobRepository(), sampleSettings(), metrics.New(), logger.Discard())
}

func TestFormatReceiptLayout(t *testing.T) {
	out := FormatReceipt(sampleDetail(), sampleSettings())

	assert.True(t, strings.HasPrefix(string(out), "\x1b@\x1b3\x00\x1b!\x38UD. BUMI SUBUR\n\n\x1b!\x00"))
	assert.True(t, strings.HasSuffix(string(out), "Terima Kasih Atas Kunjungan Anda\n\n\n\x1dVB\x00"))

	text := string(out)
	for _, want := range []string{
		"JL Jenderal Ahmad Yani, Bugis, Tanjung\nRedeb, Berau, 77312, Indonesia\n\n\x1b2",
		"No. Nota   : 321\n",
		"Tanggal    : 16/10/2026 14.05.09\n",
		strings.Repeat("-", 32) + "\n",
		"Kaos Polos (Eiger)\nL - Kaos   2 x 50.000           100.000\n\nCelana Jeans (Levis)\n",
		"32 - Celana   1 x 50.000           50.000\n" + strings.Repeat("-", 32),
		"2 Items\n",
		"Total Diskon: 15.000\n",
		"Total                  135.000\n",
		"Pembayaran : Tunai\n",
	} {
		assert.Contains(t, text, want)
	}
}

func TestFormatReceiptKeepsUnparsedDate(t *testing.T) {
	d := sampleDetail()
	d.Date = "kemarin"
	assert.Contains(t, string(FormatReceipt(d, sampleSettings())), "Tanggal    : kemarin\n")
}

func TestBuildReceiptRows(t *testing.T) {
	rows := BuildReceiptRows(sampleDetail(), sampleSettings())
	require.Len(t, rows, 5+4+5)

	assert.Equal(t, entity.ReceiptRow{Align: 1, Content: "UD. BUMI SUBUR", Format: 1}, rows[0])
	assert.Equal(t, "No. Nota    : 321", rows[2].Content)
	assert.Equal(t, "tanggal     : 16/10/2026 14.05.09", rows[3].Content)
	assert.Equal(t, strings.Repeat("-", 39), rows[4].Content)
	assert.Equal(t, "Eiger - Kaos Polos", rows[5].Content)
	assert.Equal(t, "L | 2 pcs | 50000 = 100000", rows[6].Content)
	assert.Equal(t, "2 item", rows[10].Content)
	assert.Equal(t, "Diskon: 15000", rows[11].Content)
	assert.Equal(t, entity.ReceiptRow{Align: 0, Bold: 1, Content: "Total 135000", Format: 0}, rows[12])
	assert.Equal(t, "Terima Kasih Atas Kunjungan Anda", rows[13].Content)

	raw, err := json.Marshal(rows)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), `{"0":{"align":1,"bold":0,"content":"UD. BUMI SUBUR","format":1,"type":0},"1":`))
}

func TestDispatchDesktopPrintsServerDetail(t *testing.T) {
	tx := &fakeTransactions{details: map[string]*entity.TransactionDetail{"321": sampleDetail()}}
	p := &fakePrinter{}
	s := newReceiptService(tx, p)
	ctx := context.Background()

	outcome, err := s.Dispatch(ctx, "tok", "321", enum.PrintDesktop, "7")
	require.NoError(t, err)
	assert.Equal(t, enum.PrintDesktop, outcome.Channel)
	assert.Equal(t, "POS-80", outcome.Printer)
	assert.NotEmpty(t, outcome.JobID)
	assert.Empty(t, outcome.Error)
	require.Len(t, p.jobs, 1)
	assert.Contains(t, string(p.jobs[0]), "No. Nota   : 321")
	assert.Equal(t, []string{"tok"}, tx.tokens)

	_, err = s.Dispatch(ctx, "tok", "321", enum.PrintDesktop, "7")
	require.NoError(t, err)

	jobs, err := s.History(ctx, "321")
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, 1, jobs[0].Attempt)
	assert.Equal(t, 2, jobs[1].Attempt)
	assert.Equal(t, enum.PrintJobSent, jobs[1].Status)
	assert.Equal(t, "7", jobs[1].RequestedBy)
}

func TestDispatchDesktopFailures(t *testing.T) {
	tests := []struct {
		name    string
		tx      *fakeTransactions
		printer *fakePrinter
	}{
		{
			name:    "printer offline",
			tx:      &fakeTransactions{details: map[string]*entity.TransactionDetail{"321": sampleDetail()}},
			printer: &fakePrinter{err: errors.New("spooler unreachable")},
		},
		{
			name:    "detail fetch fails",
			tx:      &fakeTransactions{err: apperror.NewUpstreamError(500, "")},
			printer: &fakePrinter{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newReceiptService(tt.tx, tt.printer)
			outcome, err := s.Dispatch(context.Background(), "tok", "321", enum.PrintDesktop, "7")
			require.Error(t, err)
			assert.True(t, apperror.IsKind(err, apperror.KindPrint))
			assert.Equal(t, "Gagal mencetak struk. Silakan coba lagi.", apperror.GetAppError(err).Message)
			assert.NotEmpty(t, outcome.Error)

			jobs, err := s.History(context.Background(), "321")
			require.NoError(t, err)
			require.Len(t, jobs, 1)
			assert.Equal(t, enum.PrintJobFailed, jobs[0].Status)
		})
	}
}

func TestDispatchMobileBuildsDeepLink(t *testing.T) {
	tx := &fakeTransactions{}
	s := newReceiptService(tx, &fakePrinter{})

	outcome, err := s.Dispatch(context.Background(), "a.b.c", "321", enum.PrintMobile, "7")
	require.NoError(t, err)
	assert.Equal(t, "my.bluetoothprint.scheme://https://pos.example.id/api/print/321?token=a.b.c", outcome.DeepLink)
	assert.Equal(t, enum.PrintMobile, outcome.Channel)
	assert.Empty(t, tx.tokens, "mobile dispatch must not fetch the transaction")
}

func TestDispatchMobileWithoutToken(t *testing.T) {
	s := newReceiptService(&fakeTransactions{}, &fakePrinter{})

	outcome, err := s.Dispatch(context.Background(), "", "321", enum.PrintMobile, "7")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTokenMissing))
	assert.Equal(t, ErrTokenMissing.Error(), outcome.Error)
	assert.Empty(t, outcome.DeepLink)
}

func TestRowsUsesRequestToken(t *testing.T) {
	tx := &fakeTransactions{details: map[string]*entity.TransactionDetail{"321": sampleDetail()}}
	s := newReceiptService(tx, &fakePrinter{})

	rows, err := s.Rows(context.Background(), "mobile-token", "321")
	require.NoError(t, err)
	assert.NotEmpty(t, rows)
	assert.Equal(t, []string{"mobile-token"}, tx.tokens)

	_, err = s.Rows(context.Background(), "mobile-token", "999")
	assert.True(t, apperror.IsKind(err, apperror.KindUpstream))
}

func TestJournalPaginates(t *testing.T) {
	tx := &fakeTransactions{details: map[string]*entity.TransactionDetail{"321": sampleDetail()}}
	s := newReceiptService(tx, &fakePrinter{})
	for i := 0; i < 3; i++ {
		_, err := s.Dispatch(context.Background(), "tok", "321", enum.PrintDesktop, "7")
		require.NoError(t, err)
	}

	jobs, meta, err := s.Journal(context.Background(), &pagination.PaginationParams{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
	assert.Equal(t, int64(3), meta.Total)
	assert.Equal(t, 2, meta.TotalPages)
}

func TestPrinterStatus(t *testing.T) {
	s := newReceiptService(&fakeTransactions{}, &fakePrinter{})
	st := s.Status(context.Background())
	assert.Equal(t, "POS-80", st.Name)
	assert.True(t, st.Connected)
}
