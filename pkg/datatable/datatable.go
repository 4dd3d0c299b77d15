package datatable

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/bumisubur/pos-gateway/pkg/pagination"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnknownColumn      = errors.New("datatable: unknown column")
	ErrInvalidFilterValue = errors.New("datatable: filter value is not one of the column options")
)

// Column describes how one column of T is read, rendered and filtered.
type Column[T any] struct {
	Key    string
	Header string
	// Accessor returns the raw text used for filtering and export.
	Accessor func(T) string
	// Cell renders the displayed value. Defaults to Accessor.
	Cell func(T) string
	// Filter reports whether row matches value. Defaults to a
	// case-insensitive substring match on Accessor.
	Filter func(row T, value string) bool
	// Options turns the filter into an enumerated one.
	Options []string
	Hidden  bool
}

// ColumnView is the control surface the client renders for a column.
type ColumnView struct {
	Key     string   `json:"key"`
	Header  string   `json:"header"`
	Visible bool     `json:"visible"`
	Filter  string   `json:"filter,omitempty"`
	Options []string `json:"options,omitempty"`
}

// View is one rendered page.
type View struct {
	Columns    []ColumnView           `json:"columns"`
	Rows       [][]string             `json:"rows"`
	Pagination *pagination.Pagination `json:"pagination"`
}

// Table is a pure renderer over a caller-supplied row list. It never fetches,
// sorts or caches rows; page index and size always come from the caller.
type Table[T any] struct {
	columns []Column[T]
	index   map[string]int
	filters map[string]string
	search  string
}

// New creates a table with the given columns in display order.
func New[T any](columns ...Column[T]) *Table[T] {
	t := &Table[T]{
		columns: columns,
		index:   make(map[string]int, len(columns)),
		filters: make(map[string]string),
	}
	for i, c := range columns {
		t.index[c.Key] = i
	}
	return t
}

// SetVisible shows or hides a column.
func (t *Table[T]) SetVisible(key string, visible bool) error {
	i, ok := t.index[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, key)
	}
	t.columns[i].Hidden = !visible
	return nil
}

// SetVisibleOnly shows exactly the listed columns. An empty list leaves
// visibility unchanged.
func (t *Table[T]) SetVisibleOnly(keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		if _, ok := t.index[k]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownColumn, k)
		}
		want[k] = true
	}
	for i := range t.columns {
		t.columns[i].Hidden = !want[t.columns[i].Key]
	}
	return nil
}

// SetFilter sets the filter value for a column. An empty value clears it.
func (t *Table[T]) SetFilter(key, value string) error {
	i, ok := t.index[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, key)
	}
	if value == "" {
		delete(t.filters, key)
		return nil
	}
	if opts := t.columns[i].Options; len(opts) > 0 && !contains(opts, value) {
		return fmt.Errorf("%w: %s=%q", ErrInvalidFilterValue, key, value)
	}
	t.filters[key] = value
	return nil
}

// SetSearch sets a free-text query matched against every visible column.
func (t *Table[T]) SetSearch(q string) {
	t.search = strings.TrimSpace(q)
}

// Apply returns the rows matching every column filter and the search, in
// input order.
func (t *Table[T]) Apply(rows []T) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if t.matches(row) {
			out = append(out, row)
		}
	}
	return out
}

// Render filters rows, then cuts the requested page out of the result.
func (t *Table[T]) Render(rows []T, params pagination.PaginationParams) View {
	params.Validate()
	filtered := t.Apply(rows)
	start, end := params.Window(len(filtered))

	visible := t.visible()
	out := make([][]string, 0, end-start)
	for _, row := range filtered[start:end] {
		cells := make([]string, 0, len(visible))
		for _, c := range visible {
			cells = append(cells, c.render(row))
		}
		out = append(out, cells)
	}

	return View{
		Columns:    t.Columns(),
		Rows:       out,
		Pagination: pagination.NewPagination(params.Page, params.PerPage, int64(len(filtered))),
	}
}

// Columns describes every column with its current visibility and filter.
func (t *Table[T]) Columns() []ColumnView {
	views := make([]ColumnView, 0, len(t.columns))
	for _, c := range t.columns {
		views = append(views, ColumnView{
			Key:     c.Key,
			Header:  c.Header,
			Visible: !c.Hidden,
			Filter:  t.filters[c.Key],
			Options: c.Options,
		})
	}
	return views
}

// ExportXLSX writes the visible columns of every filtered row to a single
// sheet workbook.
func (t *Table[T]) ExportXLSX(rows []T, sheet string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("datatable: failed to name sheet: %w", err)
	}

	visible := t.visible()
	for col, c := range visible {
		if err := setCell(f, sheet, col+1, 1, c.Header); err != nil {
			return nil, err
		}
	}
	for r, row := range t.Apply(rows) {
		for col, c := range visible {
			if err := setCell(f, sheet, col+1, r+2, c.Accessor(row)); err != nil {
				return nil, err
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("datatable: failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, sheet string, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("datatable: %w", err)
	}
	return f.SetCellValue(sheet, cell, value)
}

func (t *Table[T]) visible() []Column[T] {
	out := make([]Column[T], 0, len(t.columns))
	for _, c := range t.columns {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

func (t *Table[T]) matches(row T) bool {
	for _, c := range t.columns {
		value, ok := t.filters[c.Key]
		if !ok {
			continue
		}
		if !c.match(row, value) {
			return false
		}
	}
	if t.search == "" {
		return true
	}
	for _, c := range t.visible() {
		if containsFold(c.Accessor(row), t.search) {
			return true
		}
	}
	return false
}

func (c Column[T]) match(row T, value string) bool {
	if c.Filter != nil {
		return c.Filter(row, value)
	}
	if len(c.Options) > 0 {
		return strings.EqualFold(c.Accessor(row), value)
	}
	return containsFold(c.Accessor(row), value)
}

func (c Column[T]) render(row T) string {
	if c.Cell != nil {
		return c.Cell(row)
	}
	return c.Accessor(row)
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
