package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Branch is a CV (cabang) the shop operates under.
type Branch struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Address string `json:"alamat"`
	Notes   string `json:"keterangan"`
}

// SupplierCategory is a product category (jenis) a brand supplies.
type SupplierCategory struct {
	ID   int    `json:"id"`
	Name string `json:"nama_jenis"`
}

// SupplierBrand is a brand (merk) delivered by a supplier.
type SupplierBrand struct {
	Name       string             `json:"nama_merk"`
	Discount   int                `json:"discount_merk"`
	Categories []SupplierCategory `json:"jenis"`
}

type Supplier struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Phone    string          `json:"no_hp"`
	Discount int             `json:"discount"`
	Brands   []SupplierBrand `json:"merk"`
}

// StockDetail is one (size, color) stock row of a product.
type StockDetail struct {
	DetailID    int       `json:"detail_id"`
	Size        string    `json:"ukuran"`
	Color       string    `json:"warna_produk"`
	Stock       int       `json:"stok"`
	RestockedAt time.Time `json:"tanggal_restok"`
}

// StockProduct is one row of the stock list.
type StockProduct struct {
	ID       int             `json:"id"`
	Name     string          `json:"nama_produk"`
	Code     string          `json:"barcode_id"`
	Price    decimal.Decimal `json:"harga_jual"`
	Brand    string          `json:"merk"`
	Category string          `json:"jenis"`
	Branch   string          `json:"cv"`
	Details  []StockDetail   `json:"details"`
}

// TotalStock sums every detail row.
func (p StockProduct) TotalStock() int {
	total := 0
	for _, d := range p.Details {
		total += d.Stock
	}
	return total
}

// PendingStockLine is one requested (size, color, qty) of a restock.
type PendingStockLine struct {
	RestockedAt time.Time `json:"tanggal_restok"`
	Size        string    `json:"ukuran"`
	Color       string    `json:"warna"`
	Stock       int       `json:"stok"`
}

// PendingStock is a restock waiting for admin approval.
type PendingStock struct {
	RestockID int64              `json:"restok_id"`
	ProductID int                `json:"id_produk"`
	Code      string             `json:"barcode"`
	Name      string             `json:"nama_produk"`
	Brand     string             `json:"merk"`
	Category  string             `json:"jenis"`
	Branch    string             `json:"cv"`
	Supplier  string             `json:"supplier"`
	Price     decimal.Decimal    `json:"harga_jual"`
	Stocks    []PendingStockLine `json:"stoks"`
}

// Expense is one pengeluaran entry.
type Expense struct {
	ID          int             `json:"id"`
	Name        string          `json:"nama_pengeluaran"`
	PaymentType string          `json:"tipe_pembayaran"`
	Date        time.Time       `json:"tanggal_pengeluaran"`
	Description string          `json:"description"`
	Category    string          `json:"kategori_pengeluaran"`
	Amount      decimal.Decimal `json:"jumlah"`
	Recipient   string          `json:"tujuan"`
}

// ReturnHistoryLine is one returned product of a return.
type ReturnHistoryLine struct {
	Name     string `json:"nama_produk"`
	Code     string `json:"barcode_id"`
	Quantity int    `json:"jumlah_return"`
	Brand    string `json:"merk"`
	Size     string `json:"ukuran"`
	Color    string `json:"warna"`
	Supplier string `json:"supplier,omitempty"`
}

// ReturnHistory is one return, either from a customer (Receipt set) or to a
// supplier (Restock set).
type ReturnHistory struct {
	ID         int64               `json:"return_id"`
	Reason     string              `json:"alasan"`
	ReturnedAt time.Time           `json:"tanggal_return"`
	Receipt    string              `json:"nomor_nota,omitempty"`
	Restock    string              `json:"nomor_restok,omitempty"`
	Lines      []ReturnHistoryLine `json:"detail_return"`
}

// Reference is the receipt or restock number the return refers to.
func (r ReturnHistory) Reference() string {
	if r.Receipt != "" {
		return r.Receipt
	}
	return r.Restock
}

// ReturnLine is one returned transaction line.
type ReturnLine struct {
	DetailTransactionID int `json:"detail_transaksi_id"`
	DetailProductID     int `json:"detail_produk_id"`
	Quantity            int `json:"jumlah_item"`
}

// CustomerReturn is the body of a customer return.
type CustomerReturn struct {
	TransactionID int64        `json:"id_transaksi"`
	Reason        string       `json:"alasan"`
	Lines         []ReturnLine `json:"detail_transaksi"`
}

// AccessLog is one recorded API access.
type AccessLog struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	IP        string `json:"ip_address"`
	Activity  string `json:"activity"`
	Payload   string `json:"payload"`
	CreatedAt string `json:"created_at"`
}

// Category is a product category (jenis).
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"nama_jenis"`
}
