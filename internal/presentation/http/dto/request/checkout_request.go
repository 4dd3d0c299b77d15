package request

import "github.com/shopspring/decimal"

// AddProductRequest adds a scanned or typed product code to the cart.
type AddProductRequest struct {
	Code string `json:"barcode" binding:"required,max=100"`
}

// LineTarget addresses a line, or one of its sub-items when Sub is set.
type LineTarget struct {
	Sub *int `json:"sub" form:"sub" binding:"omitempty,gte=0"`
}

// QuantityRequest sets a line quantity. Out-of-stock and negative values are
// clamped by the cart, not rejected.
type QuantityRequest struct {
	LineTarget
	Quantity int `json:"quantity"`
}

type SizeRequest struct {
	LineTarget
	Size string `json:"size" binding:"required"`
}

type ColorRequest struct {
	LineTarget
	Color string `json:"color" binding:"required"`
}

// DiscountRequest sets the cart discount in percent.
type DiscountRequest struct {
	Discount decimal.Decimal `json:"discount"`
}

type PaymentMethodRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// PrintRequest picks the channel a receipt goes out on. Empty means desktop.
type PrintRequest struct {
	Channel string `json:"channel" binding:"omitempty,oneof=desktop mobile"`
}
