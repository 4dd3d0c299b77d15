package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/bumisubur/pos-gateway/internal/domain/entity"
	"github.com/bumisubur/pos-gateway/internal/domain/enum"
	"github.com/bumisubur/pos-gateway/internal/infrastructure/backend"
	"github.com/bumisubur/pos-gateway/pkg/datatable"
	"github.com/bumisubur/pos-gateway/pkg/utils"
)

const dateLayout = "02/01/2006"

func collectionsFor(c *backend.Client) []Collection {
	return []Collection{
		&collection[entity.Branch]{
			name:      "cv",
			title:     "CV",
			ops:       OpList | OpGet | OpCreate | OpUpdate | OpDelete,
			readRole:  enum.RouteAdmin,
			writeRole: enum.RouteAdmin,
			resource:  &c.Branches,
			table:     branchTable,
		},
		&collection[entity.Supplier]{
			name:      "supplier",
			title:     "Supplier",
			ops:       OpList | OpGet | OpDelete,
			readRole:  enum.RouteAdmin,
			writeRole: enum.RouteAdmin,
			resource:  &c.Suppliers,
			table:     supplierTable,
		},
		&collection[entity.User]{
			name:      "karyawan",
			title:     "Karyawan",
			ops:       OpList | OpGet | OpCreate | OpUpdate | OpDelete,
			readRole:  enum.RouteAdmin,
			writeRole: enum.RouteAdmin,
			resource:  &c.Users,
			table:     employeeTable,
		},
		&collection[entity.StockProduct]{
			name:      "stok",
			title:     "Stok",
			ops:       OpList | OpGet,
			readRole:  enum.RouteKasirStok,
			writeRole: enum.RouteStok,
			resource:  &c.Stock,
			table:     stockTable,
		},
		&collection[entity.PendingStock]{
			name:      "pending-stok",
			title:     "Pending Stok",
			ops:       OpList | OpGet | OpDelete,
			readRole:  enum.RouteStok,
			writeRole: enum.RouteAdmin,
			resource:  &c.PendingStock,
			table:     pendingStockTable,
		},
		&collection[entity.Expense]{
			name:      "pengeluaran",
			title:     "Pengeluaran",
			ops:       OpList | OpGet | OpCreate | OpDelete,
			readRole:  enum.RouteAdmin,
			writeRole: enum.RouteAdmin,
			resource:  &c.Expenses,
			table:     expenseTable,
		},
		&collection[entity.ReturnHistory]{
			name:      "return-customer",
			title:     "Return Customer",
			ops:       OpList,
			readRole:  enum.RouteStok,
			writeRole: enum.RouteKasirStok,
			list:      c.CustomerReturns,
			table:     returnTable,
		},
		&collection[entity.ReturnHistory]{
			name:      "return-supplier",
			title:     "Return Supplier",
			ops:       OpList,
			readRole:  enum.RouteStok,
			writeRole: enum.RouteStok,
			list:      c.SupplierReturns,
			table:     returnTable,
		},
		&collection[entity.AccessLog]{
			name:      "akses",
			title:     "Riwayat Akses",
			ops:       OpList,
			readRole:  enum.RouteAdmin,
			writeRole: enum.RouteAdmin,
			resource:  &c.AccessLogs,
			table:     accessLogTable,
		},
		&collection[entity.Category]{
			name:      "jenis",
			title:     "Jenis",
			ops:       OpList,
			readRole:  enum.RouteKasirStok,
			writeRole: enum.RouteAdmin,
			resource:  &c.Categories,
			table:     categoryTable,
		},
		&collection[entity.TransactionSummary]{
			name:      "transaksi",
			title:     "Riwayat Transaksi",
			ops:       OpList,
			readRole:  enum.RouteKasir,
			writeRole: enum.RouteKasir,
			list:      c.TransactionHistory,
			table:     transactionTable,
		},
	}
}

func branchTable() *datatable.Table[entity.Branch] {
	return datatable.New(
		datatable.Column[entity.Branch]{Key: "id", Header: "ID", Accessor: func(b entity.Branch) string { return strconv.Itoa(b.ID) }, Hidden: true},
		datatable.Column[entity.Branch]{Key: "name", Header: "Nama CV", Accessor: func(b entity.Branch) string { return b.Name }},
		datatable.Column[entity.Branch]{Key: "alamat", Header: "Alamat", Accessor: func(b entity.Branch) string { return b.Address }},
		datatable.Column[entity.Branch]{Key: "keterangan", Header: "Keterangan", Accessor: func(b entity.Branch) string { return b.Notes }},
	)
}

func supplierTable() *datatable.Table[entity.Supplier] {
	return datatable.New(
		datatable.Column[entity.Supplier]{Key: "name", Header: "Nama Supplier", Accessor: func(s entity.Supplier) string { return s.Name }},
		datatable.Column[entity.Supplier]{Key: "no_hp", Header: "No. HP", Accessor: func(s entity.Supplier) string { return s.Phone }},
		datatable.Column[entity.Supplier]{
			Key:    "merk",
			Header: "Merk",
			Accessor: func(s entity.Supplier) string {
				names := make([]string, 0, len(s.Brands))
				for _, b := range s.Brands {
					names = append(names, b.Name)
				}
				return strings.Join(names, ", ")
			},
		},
		datatable.Column[entity.Supplier]{
			Key:      "discount",
			Header:   "Diskon",
			Accessor: func(s entity.Supplier) string { return strconv.Itoa(s.Discount) },
			Cell:     func(s entity.Supplier) string { return strconv.Itoa(s.Discount) + "%" },
		},
	)
}

func employeeTable() *datatable.Table[entity.User] {
	roles := []string{enum.RoleAdmin.String(), enum.RoleStok.String(), enum.RoleKasir.String(), enum.RoleKasirStok.String()}
	return datatable.New(
		datatable.Column[entity.User]{Key: "nik", Header: "NIK", Accessor: func(u entity.User) string { return u.NIK }},
		datatable.Column[entity.User]{Key: "name", Header: "Nama", Accessor: func(u entity.User) string { return u.Name }},
		datatable.Column[entity.User]{Key: "email", Header: "Email", Accessor: func(u entity.User) string { return u.Email }},
		datatable.Column[entity.User]{Key: "no_hp", Header: "No. HP", Accessor: func(u entity.User) string { return u.Phone }},
		datatable.Column[entity.User]{Key: "role", Header: "Role", Accessor: func(u entity.User) string { return u.Role.String() }, Options: roles},
		datatable.Column[entity.User]{Key: "tanggal_masuk", Header: "Tanggal Masuk", Accessor: func(u entity.User) string { return backendDate(u.JoinedAt) }},
		datatable.Column[entity.User]{Key: "alamat", Header: "Alamat", Accessor: func(u entity.User) string { return u.Address }, Hidden: true},
	)
}

func stockTable() *datatable.Table[entity.StockProduct] {
	return datatable.New(
		datatable.Column[entity.StockProduct]{Key: "barcode_id", Header: "Kode", Accessor: func(p entity.StockProduct) string { return p.Code }},
		datatable.Column[entity.StockProduct]{Key: "nama_produk", Header: "Nama Produk", Accessor: func(p entity.StockProduct) string { return p.Name }},
		datatable.Column[entity.StockProduct]{Key: "merk", Header: "Merk", Accessor: func(p entity.StockProduct) string { return p.Brand }},
		datatable.Column[entity.StockProduct]{Key: "jenis", Header: "Jenis", Accessor: func(p entity.StockProduct) string { return p.Category }},
		datatable.Column[entity.StockProduct]{Key: "cv", Header: "CV", Accessor: func(p entity.StockProduct) string { return p.Branch }},
		datatable.Column[entity.StockProduct]{
			Key:      "harga_jual",
			Header:   "Harga Jual",
			Accessor: func(p entity.StockProduct) string { return p.Price.String() },
			Cell:     func(p entity.StockProduct) string { return utils.FormatRupiah(p.Price) },
		},
		datatable.Column[entity.StockProduct]{
			Key:      "stok",
			Header:   "Total Stok",
			Accessor: func(p entity.StockProduct) string { return strconv.Itoa(p.TotalStock()) },
			Filter: func(p entity.StockProduct, value string) bool {
				// "habis" lists sold out products
				if value == "habis" {
					return p.TotalStock() == 0
				}
				n, err := strconv.Atoi(value)
				return err == nil && p.TotalStock() <= n
			},
		},
	)
}

func pendingStockTable() *datatable.Table[entity.PendingStock] {
	return datatable.New(
		datatable.Column[entity.PendingStock]{Key: "restok_id", Header: "No. Restok", Accessor: func(p entity.PendingStock) string { return strconv.FormatInt(p.RestockID, 10) }},
		datatable.Column[entity.PendingStock]{Key: "barcode", Header: "Kode", Accessor: func(p entity.PendingStock) string { return p.Code }},
		datatable.Column[entity.PendingStock]{Key: "nama_produk", Header: "Nama Produk", Accessor: func(p entity.PendingStock) string { return p.Name }},
		datatable.Column[entity.PendingStock]{Key: "merk", Header: "Merk", Accessor: func(p entity.PendingStock) string { return p.Brand }},
		datatable.Column[entity.PendingStock]{Key: "supplier", Header: "Supplier", Accessor: func(p entity.PendingStock) string { return p.Supplier }},
		datatable.Column[entity.PendingStock]{Key: "cv", Header: "CV", Accessor: func(p entity.PendingStock) string { return p.Branch }},
		datatable.Column[entity.PendingStock]{
			Key:    "stok",
			Header: "Jumlah",
			Accessor: func(p entity.PendingStock) string {
				total := 0
				for _, s := range p.Stocks {
					total += s.Stock
				}
				return strconv.Itoa(total)
			},
		},
	)
}

func expenseTable() *datatable.Table[entity.Expense] {
	return datatable.New(
		datatable.Column[entity.Expense]{Key: "tanggal_pengeluaran", Header: "Tanggal", Accessor: func(e entity.Expense) string { return formatDate(e.Date) }},
		datatable.Column[entity.Expense]{Key: "nama_pengeluaran", Header: "Nama", Accessor: func(e entity.Expense) string { return e.Name }},
		datatable.Column[entity.Expense]{Key: "kategori_pengeluaran", Header: "Kategori", Accessor: func(e entity.Expense) string { return e.Category }},
		datatable.Column[entity.Expense]{Key: "tipe_pembayaran", Header: "Pembayaran", Accessor: func(e entity.Expense) string { return e.PaymentType }},
		datatable.Column[entity.Expense]{Key: "tujuan", Header: "Tujuan", Accessor: func(e entity.Expense) string { return e.Recipient }},
		datatable.Column[entity.Expense]{
			Key:      "jumlah",
			Header:   "Jumlah",
			Accessor: func(e entity.Expense) string { return e.Amount.String() },
			Cell:     func(e entity.Expense) string { return utils.FormatRupiah(e.Amount) },
		},
		datatable.Column[entity.Expense]{Key: "description", Header: "Keterangan", Accessor: func(e entity.Expense) string { return e.Description }, Hidden: true},
	)
}

func returnTable() *datatable.Table[entity.ReturnHistory] {
	return datatable.New(
		datatable.Column[entity.ReturnHistory]{Key: "return_id", Header: "No. Return", Accessor: func(r entity.ReturnHistory) string { return strconv.FormatInt(r.ID, 10) }},
		datatable.Column[entity.ReturnHistory]{Key: "nomor", Header: "Nota/Restok", Accessor: func(r entity.ReturnHistory) string { return r.Reference() }},
		datatable.Column[entity.ReturnHistory]{Key: "tanggal_return", Header: "Tanggal", Accessor: func(r entity.ReturnHistory) string { return formatDate(r.ReturnedAt) }},
		datatable.Column[entity.ReturnHistory]{Key: "alasan", Header: "Alasan", Accessor: func(r entity.ReturnHistory) string { return r.Reason }},
		datatable.Column[entity.ReturnHistory]{
			Key:    "produk",
			Header: "Produk",
			Accessor: func(r entity.ReturnHistory) string {
				names := make([]string, 0, len(r.Lines))
				for _, l := range r.Lines {
					names = append(names, l.Name+" ("+l.Size+"/"+l.Color+") x"+strconv.Itoa(l.Quantity))
				}
				return strings.Join(names, ", ")
			},
		},
	)
}

func accessLogTable() *datatable.Table[entity.AccessLog] {
	return datatable.New(
		datatable.Column[entity.AccessLog]{Key: "created_at", Header: "Waktu", Accessor: func(l entity.AccessLog) string { return l.CreatedAt }},
		datatable.Column[entity.AccessLog]{Key: "name", Header: "Nama", Accessor: func(l entity.AccessLog) string { return l.Name }},
		datatable.Column[entity.AccessLog]{Key: "email", Header: "Email", Accessor: func(l entity.AccessLog) string { return l.Email }},
		datatable.Column[entity.AccessLog]{Key: "ip_address", Header: "IP", Accessor: func(l entity.AccessLog) string { return l.IP }},
		datatable.Column[entity.AccessLog]{Key: "activity", Header: "Aktivitas", Accessor: func(l entity.AccessLog) string { return l.Activity }},
		datatable.Column[entity.AccessLog]{Key: "payload", Header: "Payload", Accessor: func(l entity.AccessLog) string { return l.Payload }, Hidden: true},
	)
}

func categoryTable() *datatable.Table[entity.Category] {
	return datatable.New(
		datatable.Column[entity.Category]{Key: "id", Header: "ID", Accessor: func(c entity.Category) string { return strconv.Itoa(c.ID) }},
		datatable.Column[entity.Category]{Key: "nama_jenis", Header: "Jenis", Accessor: func(c entity.Category) string { return c.Name }},
	)
}

func transactionTable() *datatable.Table[entity.TransactionSummary] {
	return datatable.New(
		datatable.Column[entity.TransactionSummary]{Key: "id_transaksi", Header: "No. Nota", Accessor: func(t entity.TransactionSummary) string { return t.ID }},
		datatable.Column[entity.TransactionSummary]{Key: "tanggal_transaksi", Header: "Tanggal", Accessor: func(t entity.TransactionSummary) string { return backendDate(t.Date) }},
		datatable.Column[entity.TransactionSummary]{Key: "total_produk", Header: "Jumlah Produk", Accessor: func(t entity.TransactionSummary) string { return strconv.Itoa(t.Products) }},
		datatable.Column[entity.TransactionSummary]{
			Key:      "diskon_transaksi",
			Header:   "Diskon",
			Accessor: func(t entity.TransactionSummary) string { return t.Discount.String() },
		},
		datatable.Column[entity.TransactionSummary]{
			Key:      "total_pendapatan",
			Header:   "Pendapatan",
			Accessor: func(t entity.TransactionSummary) string { return t.Revenue.String() },
			Cell:     func(t entity.TransactionSummary) string { return utils.FormatRupiah(t.Revenue) },
		},
		datatable.Column[entity.TransactionSummary]{
			Key:      "total_profit",
			Header:   "Profit",
			Accessor: func(t entity.TransactionSummary) string { return t.Profit.String() },
			Cell:     func(t entity.TransactionSummary) string { return utils.FormatRupiah(t.Profit) },
			Hidden:   true,
		},
	)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func backendDate(raw string) string {
	t, err := utils.ParseBackendTime(raw)
	if err != nil {
		return raw
	}
	return formatDate(t)
}
