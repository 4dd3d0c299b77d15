package datatable

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/bumisubur/pos-gateway/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type supplier struct {
	ID     int
	Name   string
	City   string
	Status string
}

func supplierTable() *Table[supplier] {
	return New(
		Column[supplier]{Key: "id", Header: "ID", Accessor: func(s supplier) string { return strconv.Itoa(s.ID) }},
		Column[supplier]{Key: "name", Header: "Nama", Accessor: func(s supplier) string { return s.Name },
			Cell: func(s supplier) string { return "<" + s.Name + ">" }},
		Column[supplier]{Key: "city", Header: "Kota", Accessor: func(s supplier) string { return s.City }},
		Column[supplier]{Key: "status", Header: "Status", Accessor: func(s supplier) string { return s.Status },
			Options: []string{"aktif", "nonaktif"}},
	)
}

func suppliers() []supplier {
	return []supplier{
		{1, "Sumber Jaya", "Bandung", "aktif"},
		{2, "Maju Bersama", "Jakarta", "nonaktif"},
		{3, "Jaya Abadi", "Bandung", "aktif"},
		{4, "Sinar Terang", "Surabaya", "aktif"},
		{5, "Jaya Makmur", "Jakarta", "aktif"},
	}
}

func TestRenderPaginatesAfterFiltering(t *testing.T) {
	tbl := supplierTable()
	require.NoError(t, tbl.SetFilter("name", "jaya"))

	view := tbl.Render(suppliers(), pagination.PaginationParams{Page: 2, PerPage: 2})

	require.Len(t, view.Rows, 1)
	assert.Equal(t, []string{"5", "<Jaya Makmur>", "Jakarta", "aktif"}, view.Rows[0])
	assert.Equal(t, int64(3), view.Pagination.Total)
	assert.Equal(t, 2, view.Pagination.TotalPages)
	assert.False(t, view.Pagination.HasNext)
}

func TestEnumeratedFilter(t *testing.T) {
	tbl := supplierTable()
	assert.ErrorIs(t, tbl.SetFilter("status", "hapus"), ErrInvalidFilterValue)
	require.NoError(t, tbl.SetFilter("status", "nonaktif"))

	rows := tbl.Apply(suppliers())
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].ID)

	require.NoError(t, tbl.SetFilter("status", ""))
	assert.Len(t, tbl.Apply(suppliers()), 5)
}

func TestCustomFilterPredicate(t *testing.T) {
	tbl := New(
		Column[supplier]{Key: "id", Header: "ID", Accessor: func(s supplier) string { return strconv.Itoa(s.ID) },
			Filter: func(s supplier, v string) bool {
				min, _ := strconv.Atoi(v)
				return s.ID >= min
			}},
	)
	require.NoError(t, tbl.SetFilter("id", "4"))
	assert.Len(t, tbl.Apply(suppliers()), 2)
}

func TestVisibility(t *testing.T) {
	tbl := supplierTable()
	require.NoError(t, tbl.SetVisible("city", false))
	assert.ErrorIs(t, tbl.SetVisible("phone", false), ErrUnknownColumn)

	view := tbl.Render(suppliers(), pagination.PaginationParams{Page: 1, PerPage: 1})
	assert.Equal(t, []string{"1", "<Sumber Jaya>", "aktif"}, view.Rows[0])
	assert.False(t, view.Columns[2].Visible)

	require.NoError(t, tbl.SetVisibleOnly([]string{"name"}))
	view = tbl.Render(suppliers(), pagination.PaginationParams{Page: 1, PerPage: 1})
	assert.Equal(t, []string{"<Sumber Jaya>"}, view.Rows[0])
}

func TestSearchOnlyMatchesVisibleColumns(t *testing.T) {
	tbl := supplierTable()
	tbl.SetSearch("bandung")
	assert.Len(t, tbl.Apply(suppliers()), 2)

	require.NoError(t, tbl.SetVisible("city", false))
	assert.Empty(t, tbl.Apply(suppliers()))
}

func TestRenderIsDeterministic(t *testing.T) {
	tbl := supplierTable()
	require.NoError(t, tbl.SetFilter("city", "jakarta"))
	params := pagination.PaginationParams{Page: 1, PerPage: 10}
	assert.Equal(t, tbl.Render(suppliers(), params), tbl.Render(suppliers(), params))
}

func TestExportXLSX(t *testing.T) {
	tbl := supplierTable()
	require.NoError(t, tbl.SetVisible("status", false))
	require.NoError(t, tbl.SetFilter("city", "Bandung"))

	data, err := tbl.ExportXLSX(suppliers(), "Data Supplier")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Data Supplier")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"ID", "Nama", "Kota"},
		{"1", "Sumber Jaya", "Bandung"},
		{"3", "Jaya Abadi", "Bandung"},
	}, rows)
}
