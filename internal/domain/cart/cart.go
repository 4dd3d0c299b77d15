// Package cart holds the point-of-sale cart: scanned products, their
// size/color variants and quantities, the discount and the payment method.
// A Cart is not safe for concurrent use; callers serialise access.
package cart

import (
	"errors"
	"fmt"

	"github.com/bumisubur/pos-gateway/internal/domain/entity"
	"github.com/bumisubur/pos-gateway/internal/domain/enum"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound       = errors.New("produk tidak ditemukan")
	ErrDuplicateProduct      = errors.New("produk sudah ditambahkan")
	ErrNoVariantsLeft        = errors.New("semua variasi sudah ditambahkan")
	ErrItemNotFound          = errors.New("item tidak ditemukan")
	ErrVariantNotFound       = errors.New("ukuran atau warna tidak tersedia")
	ErrVariantInUse          = errors.New("ukuran dan warna sudah dipakai pada item ini")
	ErrInvalidDiscount       = errors.New("diskon harus di antara 0 dan 100")
	ErrPaymentMethodRequired = errors.New("harap pilih metode pembayaran")
	ErrEmptyCart             = errors.New("tidak ada produk yang ditambahkan")
	ErrInvalidVariant        = errors.New("produk yang dipilih tidak valid")
)

var hundred = decimal.NewFromInt(100)

// LineItem is one scanned product. SubItems are further (size, color)
// variants of the same product shown under the same row.
type LineItem struct {
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	SubItems  []LineItem      `json:"sub_items,omitempty"`
}

// Subtotal is Price times Quantity, excluding sub-items.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Total is Subtotal plus the subtotals of every sub-item.
func (l LineItem) Total() decimal.Decimal {
	total := l.Subtotal()
	for _, s := range l.SubItems {
		total = total.Add(s.Subtotal())
	}
	return total
}

func (l LineItem) variant() entity.Variant {
	return entity.Variant{Size: l.Size, Color: l.Color}
}

func (l LineItem) clone() LineItem {
	out := l
	if l.SubItems != nil {
		out.SubItems = make([]LineItem, len(l.SubItems))
		copy(out.SubItems, l.SubItems)
	}
	return out
}

// Cart is the cashier's working state for one sale.
type Cart struct {
	items    []LineItem
	discount decimal.Decimal
	payment  enum.PaymentMethod
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Items returns a copy of the line items.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	for i, it := range c.items {
		out[i] = it.clone()
	}
	return out
}

// Len is the number of top-level line items.
func (c *Cart) Len() int { return len(c.items) }

func (c *Cart) Discount() decimal.Decimal { return c.discount }

func (c *Cart) PaymentMethod() enum.PaymentMethod { return c.payment }

// AddProduct appends the product scanned as code, defaulted to its first size
// and that size's first color with quantity 1.
func (c *Cart) AddProduct(catalog entity.Catalog, code string) (LineItem, error) {
	p, ok := catalog.ByCode(code)
	if !ok {
		return LineItem{}, ErrProductNotFound
	}
	for _, it := range c.items {
		if it.ProductID == p.ID {
			return LineItem{}, ErrDuplicateProduct
		}
	}
	if len(p.Sizes) == 0 {
		return LineItem{}, ErrNoVariantsLeft
	}

	first := p.Sizes[0]
	item := LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Code:      p.Code,
		Size:      first.Size,
		Color:     first.FirstColor(),
		Price:     p.Price,
		Quantity:  1,
	}
	c.items = append(c.items, item)
	return item.clone(), nil
}

// RemoveItem removes a sub-item when sub is given, otherwise the whole
// top-level item with its sub-items.
func (c *Cart) RemoveItem(index int, sub *int) error {
	if index < 0 || index >= len(c.items) {
		return ErrItemNotFound
	}
	if sub == nil {
		c.items = append(c.items[:index], c.items[index+1:]...)
		return nil
	}
	subs := c.items[index].SubItems
	if *sub < 0 || *sub >= len(subs) {
		return ErrItemNotFound
	}
	c.items[index].SubItems = append(subs[:*sub], subs[*sub+1:]...)
	return nil
}

// SetQuantity clamps value into [0, stock] for the line's current variant and
// stores it. It returns the stored quantity and whether clamping happened.
func (c *Cart) SetQuantity(catalog entity.Catalog, index, value int, sub *int) (int, bool, error) {
	line, err := c.line(index, sub)
	if err != nil {
		return 0, false, err
	}

	stock := 0
	if p, ok := catalog.ByID(line.ProductID); ok {
		if d, ok := p.FindVariant(line.Size, line.Color); ok {
			stock = d.Stock
		}
	}

	clamped := value
	if clamped < 0 {
		clamped = 0
	}
	if clamped > stock {
		clamped = stock
	}
	line.Quantity = clamped
	return clamped, clamped != value, nil
}

// SetSize switches the line to size and resets its color to the first color
// of that size. Quantity is left as is and only re-checked against stock on
// the next SetQuantity.
func (c *Cart) SetSize(catalog entity.Catalog, index int, size string, sub *int) error {
	line, err := c.line(index, sub)
	if err != nil {
		return err
	}
	p, ok := catalog.ByID(line.ProductID)
	if !ok {
		return ErrProductNotFound
	}
	s, ok := p.FindSize(size)
	if !ok {
		return ErrVariantNotFound
	}

	color := s.FirstColor()
	if color == "" {
		color = line.Color
	}
	if c.variantUsed(index, sub, entity.Variant{Size: size, Color: color}) {
		return ErrVariantInUse
	}
	line.Size = size
	line.Color = color
	return nil
}

// SetColor switches the line's color within its current size, keeping the
// quantity.
func (c *Cart) SetColor(catalog entity.Catalog, index int, color string, sub *int) error {
	line, err := c.line(index, sub)
	if err != nil {
		return err
	}
	p, ok := catalog.ByID(line.ProductID)
	if !ok {
		return ErrProductNotFound
	}
	if _, ok := p.FindVariant(line.Size, color); !ok {
		return ErrVariantNotFound
	}
	if c.variantUsed(index, sub, entity.Variant{Size: line.Size, Color: color}) {
		return ErrVariantInUse
	}
	line.Color = color
	return nil
}

// AddSubItem appends a sub-item using the first (size, color) of the product,
// in catalog order, not yet taken by the item or its sub-items.
func (c *Cart) AddSubItem(catalog entity.Catalog, index int) (LineItem, error) {
	if index < 0 || index >= len(c.items) {
		return LineItem{}, ErrItemNotFound
	}
	item := &c.items[index]
	p, ok := catalog.ByID(item.ProductID)
	if !ok {
		return LineItem{}, ErrProductNotFound
	}

	used := map[entity.Variant]bool{item.variant(): true}
	for _, s := range item.SubItems {
		used[s.variant()] = true
	}
	for _, v := range p.Variants() {
		if used[v] {
			continue
		}
		subItem := LineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Code:      item.Code,
			Size:      v.Size,
			Color:     v.Color,
			Price:     item.Price,
			Quantity:  1,
		}
		item.SubItems = append(item.SubItems, subItem)
		return subItem, nil
	}
	return LineItem{}, ErrNoVariantsLeft
}

// SetDiscount sets the discount percentage.
func (c *Cart) SetDiscount(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return ErrInvalidDiscount
	}
	c.discount = pct
	return nil
}

// SetPaymentMethod selects the payment method. PaymentUnset clears it.
func (c *Cart) SetPaymentMethod(m enum.PaymentMethod) {
	c.payment = m
}

// Subtotal sums Price times Quantity over every item and sub-item.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Total())
	}
	return total
}

// Total is Subtotal less the discount percentage.
func (c *Cart) Total() decimal.Decimal {
	sub := c.Subtotal()
	return sub.Sub(sub.Mul(c.discount).Div(hundred))
}

// BuildSubmission flattens the cart into the transaction request. Lines with
// quantity 0 are left out.
func (c *Cart) BuildSubmission(catalog entity.Catalog) (entity.Submission, error) {
	if !c.payment.IsSet() {
		return entity.Submission{}, ErrPaymentMethodRequired
	}

	var lines []entity.SubmissionLine
	for _, it := range c.items {
		p, ok := catalog.ByID(it.ProductID)
		if !ok {
			return entity.Submission{}, fmt.Errorf("%w: %s", ErrInvalidVariant, it.Name)
		}
		for _, l := range append([]LineItem{it}, it.SubItems...) {
			d, ok := p.FindVariant(l.Size, l.Color)
			if !ok {
				return entity.Submission{}, fmt.Errorf("%w: %s %s/%s", ErrInvalidVariant, l.Name, l.Size, l.Color)
			}
			if l.Quantity <= 0 {
				continue
			}
			lines = append(lines, entity.SubmissionLine{DetailID: d.DetailID, Quantity: l.Quantity})
		}
	}
	if len(lines) == 0 {
		return entity.Submission{}, ErrEmptyCart
	}

	return entity.Submission{
		PaymentMethod: c.payment,
		Total:         c.Total(),
		Discount:      c.discount,
		Products:      lines,
	}, nil
}

// Clear empties the cart and resets discount and payment method.
func (c *Cart) Clear() {
	c.items = nil
	c.discount = decimal.Zero
	c.payment = enum.PaymentUnset
}

func (c *Cart) line(index int, sub *int) (*LineItem, error) {
	if index < 0 || index >= len(c.items) {
		return nil, ErrItemNotFound
	}
	if sub == nil {
		return &c.items[index], nil
	}
	subs := c.items[index].SubItems
	if *sub < 0 || *sub >= len(subs) {
		return nil, ErrItemNotFound
	}
	return &subs[*sub], nil
}

// variantUsed reports whether v is taken by a sibling of the addressed line.
func (c *Cart) variantUsed(index int, sub *int, v entity.Variant) bool {
	item := c.items[index]
	if sub != nil && item.variant() == v {
		return true
	}
	for i, s := range item.SubItems {
		if sub != nil && i == *sub {
			continue
		}
		if s.variant() == v {
			return true
		}
	}
	return false
}
