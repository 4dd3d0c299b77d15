package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// VariantDetail is one sellable (size, color) combination with its stock.
type VariantDetail struct {
	DetailID int    `json:"detail_produk_id"`
	Color    string `json:"warna"`
	Stock    int    `json:"stok"`
}

// ProductSize groups the colors available in one size.
type ProductSize struct {
	Size    string          `json:"ukuran"`
	Details []VariantDetail `json:"details"`
}

// Product is a catalog entry as served by the transaction index.
type Product struct {
	ID    int             `json:"id_produk"`
	Name  string          `json:"nama_produk"`
	Code  string          `json:"barcode_id"`
	Price decimal.Decimal `json:"harga_jual"`
	Brand string          `json:"merk"`
	Sizes []ProductSize   `json:"sizes"`
}

// Variant is a (size, color) pair.
type Variant struct {
	Size  string `json:"size"`
	Color string `json:"color"`
}

// FindSize returns the size entry named size.
func (p *Product) FindSize(size string) (*ProductSize, bool) {
	for i := range p.Sizes {
		if p.Sizes[i].Size == size {
			return &p.Sizes[i], true
		}
	}
	return nil, false
}

// FindVariant returns the detail for (size, color).
func (p *Product) FindVariant(size, color string) (VariantDetail, bool) {
	s, ok := p.FindSize(size)
	if !ok {
		return VariantDetail{}, false
	}
	for _, d := range s.Details {
		if d.Color == color {
			return d, true
		}
	}
	return VariantDetail{}, false
}

// Variants lists every (size, color) pair in catalog order.
func (p *Product) Variants() []Variant {
	var out []Variant
	for _, s := range p.Sizes {
		for _, d := range s.Details {
			out = append(out, Variant{Size: s.Size, Color: d.Color})
		}
	}
	return out
}

// FirstColor is the first color listed for a size, or "" if it has none.
func (s *ProductSize) FirstColor() string {
	if len(s.Details) == 0 {
		return ""
	}
	return s.Details[0].Color
}

// Catalog is the product list the cashier scans against.
type Catalog []Product

// ByCode finds a product by its scan code. Codes are compared after trimming
// whitespace, since scanners often append a newline.
func (c Catalog) ByCode(code string) (*Product, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, false
	}
	for i := range c {
		if c[i].Code == code {
			return &c[i], true
		}
	}
	return nil, false
}

// ByID finds a product by id.
func (c Catalog) ByID(id int) (*Product, bool) {
	for i := range c {
		if c[i].ID == id {
			return &c[i], true
		}
	}
	return nil, false
}
