package request

import (
	"time"

	"github.com/bumisubur/pos-gateway/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// Form is a validated create or update body.
type Form interface {
	// Body is what gets sent to the backend.
	Body() any
}

// ListRequest holds the query of a directory list or export.
type ListRequest struct {
	Search  string `form:"search" binding:"omitempty,max=100"`
	Columns string `form:"columns"`
	Page    int    `form:"page" binding:"omitempty,gte=1"`
	PerPage int    `form:"per_page" binding:"omitempty,gte=1,lte=100"`
	Format  string `form:"format" binding:"omitempty,oneof=json xlsx"`
}

// BranchRequest creates or updates a CV.
type BranchRequest struct {
	Name    string `json:"name" binding:"required,max=255"`
	Address string `json:"alamat" binding:"required,max=255"`
	Notes   string `json:"keterangan" binding:"max=255"`
}

// EmployeeRequest creates an employee account.
type EmployeeRequest struct {
	NIK        string `json:"nik" binding:"required,numeric,max=20"`
	Name       string `json:"name" binding:"required,max=255"`
	Password   string `json:"password" binding:"required,min=8"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"no_hp" binding:"required,numeric,min=9,max=15"`
	Role       string `json:"role" binding:"required,oneof=admin stok kasir kasirstok"`
	JoinedAt   string `json:"tanggal_masuk" binding:"required,datetime=2006-01-02"`
	BirthPlace string `json:"tempat_lahir" binding:"required,max=100"`
	BirthDate  string `json:"tanggal_lahir" binding:"required,datetime=2006-01-02"`
	Address    string `json:"alamat" binding:"required,max=255"`
}

func (r *BranchRequest) Body() any { return r }

func (r *EmployeeRequest) Body() any {
	return struct {
		*EmployeeRequest
		JoinedAt  time.Time `json:"tanggal_masuk"`
		BirthDate time.Time `json:"tanggal_lahir"`
	}{r, parseDate(r.JoinedAt), parseDate(r.BirthDate)}
}

// EmployeeUpdateRequest edits the contact details of an employee.
type EmployeeUpdateRequest struct {
	Name    string `json:"name" binding:"required,max=255"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"no_hp" binding:"required,numeric,min=9,max=15"`
	Address string `json:"alamat" binding:"required,max=255"`
}

// ExpenseRequest records a pengeluaran.
type ExpenseRequest struct {
	Name        string  `json:"nama_pengeluaran" binding:"required,max=255"`
	PaymentType string  `json:"tipe_pembayaran" binding:"required,oneof=Tunai Debit Transfer QRIS"`
	Date        string  `json:"tanggal_pengeluaran" binding:"required,datetime=2006-01-02"`
	Description string  `json:"description" binding:"max=500"`
	Category    string  `json:"kategori_pengeluaran" binding:"required,max=100"`
	Amount      float64 `json:"jumlah" binding:"required,gt=0"`
	Recipient   string  `json:"tujuan" binding:"required,max=255"`
}

func (r *EmployeeUpdateRequest) Body() any { return r }

func (r *ExpenseRequest) Body() any {
	return struct {
		*ExpenseRequest
		Date time.Time `json:"tanggal_pengeluaran"`
	}{r, parseDate(r.Date)}
}

type ReturnLineRequest struct {
	DetailTransactionID int `json:"detail_transaksi_id" binding:"required,gt=0"`
	DetailProductID     int `json:"detail_produk_id" binding:"required,gt=0"`
	Quantity            int `json:"jumlah_item" binding:"required,gt=0"`
}

// CustomerReturnRequest returns items of a receipt.
type CustomerReturnRequest struct {
	TransactionID int64               `json:"id_transaksi" binding:"required,gt=0"`
	Reason        string              `json:"alasan" binding:"required,max=255"`
	Lines         []ReturnLineRequest `json:"detail_transaksi" binding:"required,min=1,dive"`
}

// ToEntity converts the request into the backend body.
func (r CustomerReturnRequest) ToEntity() entity.CustomerReturn {
	lines := make([]entity.ReturnLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, entity.ReturnLine{
			DetailTransactionID: l.DetailTransactionID,
			DetailProductID:     l.DetailProductID,
			Quantity:            l.Quantity,
		})
	}
	return entity.CustomerReturn{
		TransactionID: r.TransactionID,
		Reason:        r.Reason,
		Lines:         lines,
	}
}

// parseDate reads a date already checked by the datetime tag.
func parseDate(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}
