package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/bumisubur/pos-gateway/internal/domain/cart"
	"github.com/bumisubur/pos-gateway/internal/domain/entity"
	"github.com/bumisubur/pos-gateway/internal/domain/enum"
	"github.com/bumisubur/pos-gateway/internal/infrastructure/metrics"
	"github.com/bumisubur/pos-gateway/pkg/apperror"
	"github.com/bumisubur/pos-gateway/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransactionBackend struct {
	mu          sync.Mutex
	catalog     entity.Catalog
	indexCalls  int
	submissions []entity.Submission
	createErr   error
	nextID      int64
}

func (f *fakeTransactionBackend) TransactionIndex(context.Context, string) (entity.Catalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexCalls++
	return f.catalog, nil
}

func (f *fakeTransactionBackend) CreateTransaction(_ context.Context, _ string, sub entity.Submission) (*entity.TransactionCreated, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submissions = append(f.submissions, sub)
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	return &entity.TransactionCreated{ID: f.nextID, Total: sub.Total}, nil
}

type fakeDispatcher struct {
	mu    sync.Mutex
	err   error
	calls []string
}

func (f *fakeDispatcher) Dispatch(_ context.Context, token, id string, channel enum.PrintChannel, _ string) (entity.PrintOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, channel.String()+":"+id)
	out := entity.PrintOutcome{Channel: channel}
	if f.err != nil {
		out.Error = f.err.Error()
		return out, apperror.NewPrintError(f.err)
	}
	return out, nil
}

func checkoutCatalog() entity.Catalog {
	return entity.Catalog{
		{
			ID:    1,
			Name:  "Kaos Polos",
			Code:  "BC123",
			Price: decimal.NewFromInt(10000),
			Sizes: []entity.ProductSize{
				{Size: "S", Details: []entity.VariantDetail{
					{DetailID: 11, Color: "Red", Stock: 10},
					{DetailID: 12, Color: "Blue", Stock: 3},
				}},
			},
		},
	}
}

func newCheckout(t *testing.T) (*CheckoutService, *fakeTransactionBackend, *fakeDispatcher) {
	t.Helper()
	b := &fakeTransactionBackend{catalog: checkoutCatalog(), nextID: 320}
	d := &fakeDispatcher{}
	return NewCheckoutService(b, d, metrics.New(), logger.Discard()), b, d
}

func readyCart(t *testing.T, s *CheckoutService, token string) {
	t.Helper()
	ctx := context.Background()
	_, err := s.AddProduct(ctx, token, "BC123")
	require.NoError(t, err)
	_, err = s.SetQuantity(ctx, token, 0, 10, nil)
	require.NoError(t, err)
	_, err = s.SetDiscount(token, decimal.NewFromInt(10))
	require.NoError(t, err)
	_, err = s.SetPaymentMethod(token, enum.PaymentQRIS)
	require.NoError(t, err)
}

func TestCheckoutViewTotals(t *testing.T) {
	s, _, _ := newCheckout(t)
	readyCart(t, s, "tok")

	v := s.View("tok")
	require.Len(t, v.Items, 1)
	assert.True(t, decimal.NewFromInt(100000).Equal(v.Subtotal))
	assert.True(t, decimal.NewFromInt(90000).Equal(v.Total))
	assert.Equal(t, enum.PaymentQRIS, v.PaymentMethod)
	assert.Equal(t, enum.SubmissionIdle, v.State)
	assert.False(t, v.CanRetryPrint)
}

func TestCheckoutsAreIsolatedPerToken(t *testing.T) {
	s, _, _ := newCheckout(t)
	readyCart(t, s, "tok-a")

	assert.Len(t, s.View("tok-a").Items, 1)
	assert.Empty(t, s.View("tok-b").Items)

	s.Drop("tok-a")
	assert.Empty(t, s.View("tok-a").Items)
}

func TestSetQuantityReportsStock(t *testing.T) {
	s, _, _ := newCheckout(t)
	ctx := context.Background()
	_, err := s.AddProduct(ctx, "tok", "BC123")
	require.NoError(t, err)

	res, err := s.SetQuantity(ctx, "tok", 0, 50, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Quantity)
	assert.True(t, res.Clamped)
	assert.Equal(t, "Stok tersedia: 10", res.Message)

	res, err = s.SetQuantity(ctx, "tok", 0, -1, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Quantity)
	assert.True(t, res.Clamped)
	assert.Empty(t, res.Message)
}

func TestSweepDropsIdleCheckouts(t *testing.T) {
	s, _, _ := newCheckout(t)
	now := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	readyCart(t, s, "tok-idle")
	now = now.Add(2 * time.Hour)
	readyCart(t, s, "tok-active")

	assert.Equal(t, 1, s.Sweep(time.Hour))
	assert.Len(t, s.View("tok-active").Items, 1)
	assert.Empty(t, s.View("tok-idle").Items)

	busy := s.checkout("tok-busy")
	busy.mu.Lock()
	now = now.Add(3 * time.Hour)
	assert.Equal(t, 2, s.Sweep(time.Hour))
	busy.mu.Unlock()
	assert.Equal(t, 1, s.Sweep(time.Hour))
}

func TestCartErrorsCarryStatus(t *testing.T) {
	s, _, _ := newCheckout(t)
	ctx := context.Background()

	_, err := s.AddProduct(ctx, "tok", "NOPE")
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
	assert.Equal(t, apperror.KindDomain, appErr.Kind)
	assert.ErrorIs(t, err, cart.ErrProductNotFound)

	_, err = s.AddProduct(ctx, "tok", "BC123")
	require.NoError(t, err)
	_, err = s.AddProduct(ctx, "tok", "BC123")
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)

	_, err = s.SetDiscount("tok", decimal.NewFromInt(101))
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)
}

func TestSubmitRejectsWithoutNetworkCall(t *testing.T) {
	s, b, d := newCheckout(t)
	ctx := context.Background()

	_, err := s.Submit(ctx, "tok", enum.PrintDesktop, "7")
	assert.ErrorIs(t, err, cart.ErrPaymentMethodRequired)

	_, err = s.SetPaymentMethod("tok", enum.PaymentTunai)
	require.NoError(t, err)
	_, err = s.Submit(ctx, "tok", enum.PrintDesktop, "7")
	assert.ErrorIs(t, err, cart.ErrEmptyCart)

	assert.Empty(t, b.submissions)
	assert.Zero(t, b.indexCalls)
	assert.Empty(t, d.calls)
}

func TestSubmitAllZeroQuantities(t *testing.T) {
	s, b, _ := newCheckout(t)
	ctx := context.Background()
	readyCart(t, s, "tok")
	_, err := s.SetQuantity(ctx, "tok", 0, 0, nil)
	require.NoError(t, err)

	_, err = s.Submit(ctx, "tok", enum.PrintDesktop, "7")
	assert.ErrorIs(t, err, cart.ErrEmptyCart)
	assert.Empty(t, b.submissions)
}

func TestSubmitSuccessClearsCartAndPrints(t *testing.T) {
	s, b, d := newCheckout(t)
	ctx := context.Background()
	readyCart(t, s, "tok")

	res, err := s.Submit(ctx, "tok", enum.PrintDesktop, "7")
	require.NoError(t, err)
	assert.Equal(t, enum.SubmissionPrintSucceeded, res.State)
	assert.Equal(t, "321", res.TransactionID)
	assert.Equal(t, MsgPrintedDesktop, res.Message)

	require.Len(t, b.submissions, 1)
	sub := b.submissions[0]
	assert.Equal(t, enum.PaymentQRIS, sub.PaymentMethod)
	assert.True(t, decimal.NewFromInt(90000).Equal(sub.Total))
	assert.True(t, decimal.NewFromInt(10).Equal(sub.Discount))
	assert.Equal(t, []entity.SubmissionLine{{DetailID: 11, Quantity: 10}}, sub.Products)
	assert.Equal(t, []string{"desktop:321"}, d.calls)

	v := s.View("tok")
	assert.Empty(t, v.Items)
	assert.True(t, v.Discount.IsZero())
	assert.Equal(t, enum.PaymentUnset, v.PaymentMethod)
	assert.True(t, v.CanRetryPrint)
	require.NotNil(t, v.LastReceipt)
	assert.Equal(t, "321", v.LastReceipt.TransactionID)

	// the catalog is refetched after a sale
	_, err = s.AddProduct(ctx, "tok", "BC123")
	require.NoError(t, err)
	assert.Equal(t, 2, b.indexCalls)
}

func TestSubmitMobileMessage(t *testing.T) {
	s, _, d := newCheckout(t)
	readyCart(t, s, "tok")

	res, err := s.Submit(context.Background(), "tok", enum.PrintMobile, "7")
	require.NoError(t, err)
	assert.Equal(t, MsgOpenedMobileApp, res.Message)
	assert.Equal(t, []string{"mobile:321"}, d.calls)
}

func TestSubmitPrintFailureStillCommits(t *testing.T) {
	s, b, d := newCheckout(t)
	d.err = errors.New("printer offline")
	readyCart(t, s, "tok")

	res, err := s.Submit(context.Background(), "tok", enum.PrintDesktop, "7")
	require.NoError(t, err)
	assert.Equal(t, enum.SubmissionPrintFailed, res.State)
	assert.Equal(t, MsgPrintFailed, res.Message)
	assert.Equal(t, "printer offline", res.Print.Error)
	assert.Len(t, b.submissions, 1)
	assert.Empty(t, s.View("tok").Items)
}

func TestSubmitBackendFailureKeepsCart(t *testing.T) {
	s, b, d := newCheckout(t)
	b.createErr = apperror.NewUpstreamError(http.StatusBadRequest, "stok tidak cukup")
	readyCart(t, s, "tok")

	_, err := s.Submit(context.Background(), "tok", enum.PrintDesktop, "7")
	require.Error(t, err)
	assert.Equal(t, "stok tidak cukup", apperror.GetAppError(err).Message)

	v := s.View("tok")
	assert.Equal(t, enum.SubmissionFailed, v.State)
	assert.Equal(t, "stok tidak cukup", v.Message)
	assert.Len(t, v.Items, 1)
	assert.Equal(t, enum.PaymentQRIS, v.PaymentMethod)
	assert.Empty(t, d.calls)
}

func TestRetryPrint(t *testing.T) {
	s, b, d := newCheckout(t)
	ctx := context.Background()

	_, err := s.RetryPrint(ctx, "tok", enum.PrintDesktop, "7")
	assert.ErrorIs(t, err, ErrNothingToPrint)

	d.err = errors.New("printer offline")
	readyCart(t, s, "tok")
	_, err = s.Submit(ctx, "tok", enum.PrintDesktop, "7")
	require.NoError(t, err)

	res, err := s.RetryPrint(ctx, "tok", enum.PrintDesktop, "7")
	require.NoError(t, err)
	assert.Equal(t, enum.SubmissionPrintFailed, res.State)
	assert.Equal(t, MsgReprintFailed, res.Message)

	d.mu.Lock()
	d.err = nil
	d.mu.Unlock()
	res, err = s.RetryPrint(ctx, "tok", enum.PrintDesktop, "7")
	require.NoError(t, err)
	assert.Equal(t, enum.SubmissionPrintSucceeded, res.State)
	assert.Equal(t, MsgReprinted, res.Message)
	assert.Equal(t, "321", res.TransactionID)

	assert.Len(t, b.submissions, 1, "retry must never resubmit")
	assert.Equal(t, []string{"desktop:321", "desktop:321", "desktop:321"}, d.calls)
}

func TestConcurrentSubmitsCommitOnce(t *testing.T) {
	s, b, _ := newCheckout(t)
	readyCart(t, s, "tok")

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Submit(context.Background(), "tok", enum.PrintDesktop, "7")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var rejected int
	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, cart.ErrPaymentMethodRequired)
			rejected++
		}
	}
	assert.Equal(t, 1, rejected)
	assert.Len(t, b.submissions, 1)
}

func TestRefreshCatalog(t *testing.T) {
	s, b, _ := newCheckout(t)
	ctx := context.Background()

	_, err := s.Catalog(ctx, "tok")
	require.NoError(t, err)
	_, err = s.Catalog(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, 1, b.indexCalls)

	c, err := s.RefreshCatalog(ctx, "tok")
	require.NoError(t, err)
	assert.Len(t, c, 1)
	assert.Equal(t, 2, b.indexCalls)
}
