package entity

import (
	"encoding/json"
	"time"

	"github.com/bumisubur/pos-gateway/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// SubmissionLine is one flattened (variant, quantity) pair.
type SubmissionLine struct {
	DetailID int `json:"detail_produk_id"`
	Quantity int `json:"jumlah_produk"`
}

// Submission is the body posted to create a transaction.
type Submission struct {
	PaymentMethod enum.PaymentMethod `json:"metode_bayar"`
	Total         decimal.Decimal    `json:"total_harga"`
	Discount      decimal.Decimal    `json:"diskon"`
	Products      []SubmissionLine   `json:"produks"`
}

// MarshalJSON writes money as JSON numbers, the form the backend binds.
func (s Submission) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		PaymentMethod enum.PaymentMethod `json:"metode_bayar"`
		Total         json.RawMessage    `json:"total_harga"`
		Discount      json.RawMessage    `json:"diskon"`
		Products      []SubmissionLine   `json:"produks"`
	}{
		PaymentMethod: s.PaymentMethod,
		Total:         json.RawMessage(s.Total.String()),
		Discount:      json.RawMessage(s.Discount.String()),
		Products:      s.Products,
	})
}

// TransactionCreated is what the backend answers to a successful submission.
type TransactionCreated struct {
	ID            int64           `json:"id"`
	Date          time.Time       `json:"tanggal_transaksi"`
	Total         decimal.Decimal `json:"total_harga"`
	PaymentMethod string          `json:"metode_bayar"`
	Discount      decimal.Decimal `json:"diskon"`
}

// TransactionLine is one line of the canonical transaction detail.
type TransactionLine struct {
	DetailTransactionID int             `json:"detail_transaksi_id"`
	DetailProductID     int             `json:"detail_produk_id"`
	Brand               string          `json:"merk"`
	Name                string          `json:"nama_produk"`
	Category            string          `json:"jenis"`
	Size                string          `json:"ukuran"`
	Quantity            int             `json:"jumlah_item"`
	Price               decimal.Decimal `json:"harga_produk"`
}

// Subtotal is Price times Quantity.
func (l TransactionLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// TransactionDetail is the server's canonical view of a committed
// transaction. Receipts are always rendered from it, never from cart state.
type TransactionDetail struct {
	ID            int64             `json:"id_transaksi"`
	Date          string            `json:"tanggal_transaksi"`
	Total         decimal.Decimal   `json:"total_harga"`
	PaymentMethod string            `json:"metode_bayar"`
	Discount      decimal.Decimal   `json:"diskon"`
	Lines         []TransactionLine `json:"detail_transaksi"`
}

// TransactionSummary is one row of the transaction history.
type TransactionSummary struct {
	ID       string          `json:"id_transaksi"`
	Products int             `json:"total_produk"`
	Revenue  decimal.Decimal `json:"total_pendapatan"`
	Date     string          `json:"tanggal_transaksi"`
	Discount decimal.Decimal `json:"diskon_transaksi"`
	Profit   decimal.Decimal `json:"total_profit"`
}
