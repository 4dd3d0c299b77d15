package handler

import (
	"net/http"

	"github.com/bumisubur/pos-gateway/internal/application/service"
	"github.com/bumisubur/pos-gateway/internal/domain/enum"
	"github.com/bumisubur/pos-gateway/internal/presentation/http/dto/request"
	"github.com/bumisubur/pos-gateway/internal/presentation/http/dto/response"
	"github.com/bumisubur/pos-gateway/pkg/apperror"
	"github.com/gin-gonic/gin"
)

// CheckoutHandler handles the cashier's cart and submission requests
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// Catalog returns the sellable products. ?refresh=true refetches them.
func (h *CheckoutHandler) Catalog(c *gin.Context) {
	fetch := h.checkoutService.Catalog
	if c.Query("refresh") == "true" {
		fetch = h.checkoutService.RefreshCatalog
	}
	catalog, err := fetch(c.Request.Context(), GetToken(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Catalog retrieved", catalog)
}

// View returns the cart.
func (h *CheckoutHandler) View(c *gin.Context) {
	response.OK(c, "Checkout retrieved", h.checkoutService.View(GetToken(c)))
}

// AddProduct scans a product into the cart.
func (h *CheckoutHandler) AddProduct(c *gin.Context) {
	var req request.AddProductRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.checkoutService.AddProduct(c.Request.Context(), GetToken(c), req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Product added", view)
}

// RemoveItem removes a line or, with ?sub=, one of its sub-items.
func (h *CheckoutHandler) RemoveItem(c *gin.Context) {
	index, ok := lineIndex(c)
	if !ok {
		return
	}
	var target request.LineTarget
	if !bindQuery(c, &target) {
		return
	}
	view, err := h.checkoutService.RemoveItem(c.Request.Context(), GetToken(c), index, target.Sub)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item removed", view)
}

// SetQuantity updates a quantity. A value above the stock is clamped and
// answered with a warning; a negative one becomes 0.
func (h *CheckoutHandler) SetQuantity(c *gin.Context) {
	index, ok := lineIndex(c)
	if !ok {
		return
	}
	var req request.QuantityRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.checkoutService.SetQuantity(c.Request.Context(), GetToken(c), index, req.Quantity, req.Sub)
	if err != nil {
		response.Error(c, err)
		return
	}
	if res.Message != "" {
		response.Notify(c, http.StatusOK, response.LevelWarning, res.Message, res)
		return
	}
	response.OK(c, "Quantity updated", res)
}

func (h *CheckoutHandler) SetSize(c *gin.Context) {
	index, ok := lineIndex(c)
	if !ok {
		return
	}
	var req request.SizeRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.checkoutService.SetSize(c.Request.Context(), GetToken(c), index, req.Size, req.Sub)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Size updated", view)
}

func (h *CheckoutHandler) SetColor(c *gin.Context) {
	index, ok := lineIndex(c)
	if !ok {
		return
	}
	var req request.ColorRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.checkoutService.SetColor(c.Request.Context(), GetToken(c), index, req.Color, req.Sub)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Color updated", view)
}

// AddSubItem adds another variant of a line's product.
func (h *CheckoutHandler) AddSubItem(c *gin.Context) {
	index, ok := lineIndex(c)
	if !ok {
		return
	}
	view, err := h.checkoutService.AddSubItem(c.Request.Context(), GetToken(c), index)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Variant added", view)
}

func (h *CheckoutHandler) SetDiscount(c *gin.Context) {
	var req request.DiscountRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.checkoutService.SetDiscount(GetToken(c), req.Discount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Discount updated", view)
}

func (h *CheckoutHandler) SetPaymentMethod(c *gin.Context) {
	var req request.PaymentMethodRequest
	if !bindJSON(c, &req) {
		return
	}
	method, err := enum.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		response.Error(c, apperror.NewBadRequestError(err.Error()))
		return
	}
	view, err := h.checkoutService.SetPaymentMethod(GetToken(c), method)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Payment method updated", view)
}

// Clear empties the cart.
func (h *CheckoutHandler) Clear(c *gin.Context) {
	response.OK(c, "Checkout cleared", h.checkoutService.Clear(GetToken(c)))
}

// Submit commits the cart and prints the receipt. A failed print still
// answers 200 since the transaction is committed.
func (h *CheckoutHandler) Submit(c *gin.Context) {
	channel, ok := printChannel(c)
	if !ok {
		return
	}
	res, err := h.checkoutService.Submit(c.Request.Context(), GetToken(c), channel, RequestedBy(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	level := response.LevelSuccess
	if !res.Succeeded() {
		level = response.LevelWarning
	}
	response.Notify(c, http.StatusCreated, level, res.Message, res)
}

// RetryPrint prints the last committed receipt again.
func (h *CheckoutHandler) RetryPrint(c *gin.Context) {
	channel, ok := printChannel(c)
	if !ok {
		return
	}
	res, err := h.checkoutService.RetryPrint(c.Request.Context(), GetToken(c), channel, RequestedBy(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	level := response.LevelSuccess
	if !res.Succeeded() {
		level = response.LevelError
	}
	response.Notify(c, http.StatusOK, level, res.Message, res)
}

// printChannel reads an optional {"channel": ...} body.
func printChannel(c *gin.Context) (enum.PrintChannel, bool) {
	var req request.PrintRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return enum.PrintDesktop, false
	}
	channel, err := enum.ParsePrintChannel(req.Channel)
	if err != nil {
		response.Error(c, apperror.NewBadRequestError(err.Error()))
		return enum.PrintDesktop, false
	}
	return channel, true
}
