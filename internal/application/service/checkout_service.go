package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bumisubur/pos-gateway/internal/domain/cart"
	"github.com/bumisubur/pos-gateway/internal/domain/entity"
	"github.com/bumisubur/pos-gateway/internal/domain/enum"
	"github.com/bumisubur/pos-gateway/internal/infrastructure/backend"
	"github.com/bumisubur/pos-gateway/internal/infrastructure/metrics"
	"github.com/bumisubur/pos-gateway/pkg/apperror"
	"github.com/bumisubur/pos-gateway/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// catalogKey is the query key the product catalog is cached under.
const catalogKey = "produk"

// Notification messages shown to the cashier.
const (
	MsgPrintedDesktop  = "Transaksi berhasil dan struk telah dicetak!"
	MsgOpenedMobileApp = "Transaksi berhasil dan aplikasi telah dibuka!"
	MsgPrintFailed     = "Transaksi berhasil tetapi gagal mencetak struk!"
	MsgReprinted       = "Struk berhasil dicetak!"
	MsgReprintFailed   = "Gagal mencetak struk. Silakan coba lagi."
	msgStockAvailable  = "Stok tersedia: %d"
)

// ErrNothingToPrint is returned by RetryPrint before any successful submission.
var ErrNothingToPrint = errors.New("belum ada transaksi untuk dicetak")

// TransactionBackend is the part of the backend a checkout talks to.
type TransactionBackend interface {
	TransactionIndex(ctx context.Context, token string) (entity.Catalog, error)
	CreateTransaction(ctx context.Context, token string, sub entity.Submission) (*entity.TransactionCreated, error)
}

// ReceiptDispatcher prints a committed transaction.
type ReceiptDispatcher interface {
	Dispatch(ctx context.Context, token, id string, channel enum.PrintChannel, requestedBy string) (entity.PrintOutcome, error)
}

type checkout struct {
	mu       sync.Mutex
	cart     *cart.Cart
	state    enum.SubmissionState
	snapshot *entity.PrintSnapshot
	print    *entity.PrintOutcome
	message  string

	// touched is guarded by CheckoutService.mu.
	touched time.Time
}

// CheckoutView is what the cashier's screen renders.
type CheckoutView struct {
	Items         []cart.LineItem       `json:"items"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	Discount      decimal.Decimal       `json:"discount"`
	Total         decimal.Decimal       `json:"total"`
	PaymentMethod enum.PaymentMethod    `json:"payment_method"`
	State         enum.SubmissionState  `json:"state"`
	LastReceipt   *entity.PrintSnapshot `json:"last_receipt,omitempty"`
	LastPrint     *entity.PrintOutcome  `json:"last_print,omitempty"`
	CanRetryPrint bool                  `json:"can_retry_print"`
	Message       string                `json:"message,omitempty"`
}

// QuantityResult is the outcome of SetQuantity.
type QuantityResult struct {
	View     CheckoutView `json:"checkout"`
	Quantity int          `json:"quantity"`
	Clamped  bool         `json:"clamped"`
	Message  string       `json:"message,omitempty"`
}

// SubmitResult is the outcome of Submit and RetryPrint.
type SubmitResult struct {
	State         enum.SubmissionState `json:"state"`
	TransactionID string               `json:"transaction_id"`
	Print         entity.PrintOutcome  `json:"print"`
	Message       string               `json:"message"`
}

// Succeeded reports whether the receipt went out.
func (r *SubmitResult) Succeeded() bool {
	return r.State == enum.SubmissionPrintSucceeded
}

// CheckoutService keeps one cart per session and drives it through
// submission and printing.
type CheckoutService struct {
	backend  TransactionBackend
	receipts ReceiptDispatcher
	catalog  *backend.Query[entity.Catalog]
	metrics  *metrics.Metrics
	log      *logrus.Logger
	now      func() time.Time

	mu        sync.Mutex
	checkouts map[string]*checkout
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(b TransactionBackend, receipts ReceiptDispatcher, m *metrics.Metrics, log *logrus.Logger) *CheckoutService {
	return &CheckoutService{
		backend:   b,
		receipts:  receipts,
		catalog:   backend.NewQuery[entity.Catalog](),
		metrics:   m,
		log:       log,
		now:       time.Now,
		checkouts: make(map[string]*checkout),
	}
}

func (s *CheckoutService) checkout(token string) *checkout {
	key := utils.TokenDigest(token)
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.checkouts[key]
	if !ok {
		c = &checkout{cart: cart.New()}
		s.checkouts[key] = c
	}
	c.touched = s.now()
	return c
}

// Sweep forgets checkouts nobody has touched for idle, so carts of expired
// or abandoned sessions do not outlive them. A checkout in the middle of a
// submission is skipped. It returns the number of checkouts dropped.
func (s *CheckoutService) Sweep(idle time.Duration) int {
	cutoff := s.now().Add(-idle)
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for key, c := range s.checkouts {
		if !c.touched.Before(cutoff) || !c.mu.TryLock() {
			continue
		}
		delete(s.checkouts, key)
		c.mu.Unlock()
		dropped++
	}
	return dropped
}

// Drop forgets the checkout of token, e.g. on logout.
func (s *CheckoutService) Drop(token string) {
	key := utils.TokenDigest(token)
	s.mu.Lock()
	delete(s.checkouts, key)
	s.mu.Unlock()
}

// Catalog returns the cached product catalog, fetching it on first use.
func (s *CheckoutService) Catalog(ctx context.Context, token string) (entity.Catalog, error) {
	if c, ok := s.catalog.Get(catalogKey); ok {
		return c, nil
	}
	return s.RefreshCatalog(ctx, token)
}

// RefreshCatalog refetches the product catalog. When a newer refresh wins
// the race, its result is returned instead.
func (s *CheckoutService) RefreshCatalog(ctx context.Context, token string) (entity.Catalog, error) {
	c, err := s.catalog.Fetch(ctx, catalogKey, func(ctx context.Context) (entity.Catalog, error) {
		return s.backend.TransactionIndex(ctx, token)
	})
	if errors.Is(err, backend.ErrStaleResponse) {
		if latest, ok := s.catalog.Get(catalogKey); ok {
			return latest, nil
		}
	}
	return c, err
}

// View returns the current state of token's checkout.
func (s *CheckoutService) View(token string) CheckoutView {
	c := s.checkout(token)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view()
}

// AddProduct scans a barcode into the cart.
func (s *CheckoutService) AddProduct(ctx context.Context, token, code string) (CheckoutView, error) {
	return s.mutate(ctx, token, func(c *cart.Cart, catalog entity.Catalog) error {
		_, err := c.AddProduct(catalog, code)
		return err
	})
}

// RemoveItem removes an item, or one of its sub-items when sub is set.
func (s *CheckoutService) RemoveItem(ctx context.Context, token string, index int, sub *int) (CheckoutView, error) {
	return s.edit(token, func(c *cart.Cart) error {
		return c.RemoveItem(index, sub)
	})
}

// SetQuantity stores value clamped to the available stock.
func (s *CheckoutService) SetQuantity(ctx context.Context, token string, index, value int, sub *int) (*QuantityResult, error) {
	var (
		qty     int
		clamped bool
	)
	view, err := s.mutate(ctx, token, func(c *cart.Cart, catalog entity.Catalog) error {
		var err error
		qty, clamped, err = c.SetQuantity(catalog, index, value, sub)
		return err
	})
	if err != nil {
		return nil, err
	}

	res := &QuantityResult{View: view, Quantity: qty, Clamped: clamped}
	if clamped && value > qty {
		res.Message = fmt.Sprintf(msgStockAvailable, qty)
	}
	return res, nil
}

// SetSize switches a line to another size.
func (s *CheckoutService) SetSize(ctx context.Context, token string, index int, size string, sub *int) (CheckoutView, error) {
	return s.mutate(ctx, token, func(c *cart.Cart, catalog entity.Catalog) error {
		return c.SetSize(catalog, index, size, sub)
	})
}

// SetColor switches a line to another color of its size.
func (s *CheckoutService) SetColor(ctx context.Context, token string, index int, color string, sub *int) (CheckoutView, error) {
	return s.mutate(ctx, token, func(c *cart.Cart, catalog entity.Catalog) error {
		return c.SetColor(catalog, index, color, sub)
	})
}

// AddSubItem adds the next unused variant of an item.
func (s *CheckoutService) AddSubItem(ctx context.Context, token string, index int) (CheckoutView, error) {
	return s.mutate(ctx, token, func(c *cart.Cart, catalog entity.Catalog) error {
		_, err := c.AddSubItem(catalog, index)
		return err
	})
}

// SetDiscount sets the discount percentage.
func (s *CheckoutService) SetDiscount(token string, pct decimal.Decimal) (CheckoutView, error) {
	return s.edit(token, func(c *cart.Cart) error {
		return c.SetDiscount(pct)
	})
}

// SetPaymentMethod selects the payment method.
func (s *CheckoutService) SetPaymentMethod(token string, m enum.PaymentMethod) (CheckoutView, error) {
	return s.edit(token, func(c *cart.Cart) error {
		c.SetPaymentMethod(m)
		return nil
	})
}

// Clear empties the cart.
func (s *CheckoutService) Clear(token string) CheckoutView {
	view, _ := s.edit(token, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
	return view
}

// Submit commits the cart as a transaction and prints its receipt. A
// rejected cart never reaches the backend. A failed submission leaves the
// cart as it was. Once the transaction is committed the cart is cleared,
// whether or not the receipt printed.
func (s *CheckoutService) Submit(ctx context.Context, token string, channel enum.PrintChannel, requestedBy string) (*SubmitResult, error) {
	c := s.checkout(token)
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cart.PaymentMethod().IsSet() {
		return nil, cartError(cart.ErrPaymentMethodRequired)
	}
	if c.cart.Len() == 0 {
		return nil, cartError(cart.ErrEmptyCart)
	}

	catalog, err := s.Catalog(ctx, token)
	if err != nil {
		return nil, err
	}
	sub, err := c.cart.BuildSubmission(catalog)
	if err != nil {
		return nil, cartError(err)
	}

	c.state = enum.SubmissionSubmitting
	created, err := s.backend.CreateTransaction(ctx, token, sub)
	if err != nil {
		c.state = enum.SubmissionFailed
		c.message = apperror.GetAppError(err).Message
		s.metrics.ObserveSubmission("failed")
		s.log.WithError(err).WithField("lines", len(sub.Products)).Warn("Transaction submission failed")
		return nil, err
	}

	id := strconv.FormatInt(created.ID, 10)
	c.state = enum.SubmissionSucceeded
	c.snapshot = &entity.PrintSnapshot{
		TransactionID: id,
		Items:         sub.Products,
		PaymentMethod: sub.PaymentMethod,
		Total:         sub.Total,
		Discount:      sub.Discount,
		Channel:       channel,
		CreatedAt:     s.now(),
	}
	s.metrics.ObserveSubmission("succeeded")
	s.log.WithFields(logrus.Fields{
		"transaction_id": id,
		"total":          sub.Total.String(),
		"payment_method": sub.PaymentMethod.String(),
	}).Info("Transaction submitted")

	c.cart.Clear()
	s.catalog.Invalidate(catalogKey)

	res := s.print(ctx, c, token, channel, requestedBy)
	if res.Succeeded() {
		res.Message = MsgPrintedDesktop
		if channel == enum.PrintMobile {
			res.Message = MsgOpenedMobileApp
		}
	} else {
		res.Message = MsgPrintFailed
	}
	c.message = res.Message
	return res, nil
}

// RetryPrint prints the last committed transaction again. It never
// resubmits.
func (s *CheckoutService) RetryPrint(ctx context.Context, token string, channel enum.PrintChannel, requestedBy string) (*SubmitResult, error) {
	c := s.checkout(token)
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot == nil {
		return nil, apperror.NewDomainError(http.StatusConflict, ErrNothingToPrint)
	}

	res := s.print(ctx, c, token, channel, requestedBy)
	res.Message = MsgReprintFailed
	if res.Succeeded() {
		res.Message = MsgReprinted
	}
	c.message = res.Message
	return res, nil
}

func (s *CheckoutService) print(ctx context.Context, c *checkout, token string, channel enum.PrintChannel, requestedBy string) *SubmitResult {
	id := c.snapshot.TransactionID
	c.state = enum.SubmissionPrinting

	outcome, err := s.receipts.Dispatch(ctx, token, id, channel, requestedBy)
	c.print = &outcome
	c.state = enum.SubmissionPrintSucceeded
	if err != nil {
		c.state = enum.SubmissionPrintFailed
	}
	return &SubmitResult{State: c.state, TransactionID: id, Print: outcome}
}

// mutate applies fn with the catalog loaded. The catalog is fetched before
// the checkout lock is taken.
func (s *CheckoutService) mutate(ctx context.Context, token string, fn func(*cart.Cart, entity.Catalog) error) (CheckoutView, error) {
	catalog, err := s.Catalog(ctx, token)
	if err != nil {
		return CheckoutView{}, err
	}
	return s.edit(token, func(c *cart.Cart) error {
		return fn(c, catalog)
	})
}

func (s *CheckoutService) edit(token string, fn func(*cart.Cart) error) (CheckoutView, error) {
	c := s.checkout(token)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := fn(c.cart); err != nil {
		return CheckoutView{}, cartError(err)
	}
	return c.view(), nil
}

func (c *checkout) view() CheckoutView {
	return CheckoutView{
		Items:         c.cart.Items(),
		Subtotal:      c.cart.Subtotal(),
		Discount:      c.cart.Discount(),
		Total:         c.cart.Total(),
		PaymentMethod: c.cart.PaymentMethod(),
		State:         c.state,
		LastReceipt:   c.snapshot,
		LastPrint:     c.print,
		CanRetryPrint: c.snapshot != nil && !c.state.Busy(),
		Message:       c.message,
	}
}

// cartError maps cart rejections onto HTTP statuses.
func cartError(err error) error {
	switch {
	case errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, cart.ErrItemNotFound):
		return apperror.NewDomainError(http.StatusNotFound, err)
	case errors.Is(err, cart.ErrDuplicateProduct),
		errors.Is(err, cart.ErrVariantInUse),
		errors.Is(err, cart.ErrNoVariantsLeft):
		return apperror.NewDomainError(http.StatusConflict, err)
	case errors.Is(err, cart.ErrVariantNotFound),
		errors.Is(err, cart.ErrInvalidDiscount),
		errors.Is(err, cart.ErrPaymentMethodRequired),
		errors.Is(err, cart.ErrEmptyCart),
		errors.Is(err, cart.ErrInvalidVariant):
		return apperror.NewDomainError(http.StatusBadRequest, err)
	default:
		return err
	}
}
