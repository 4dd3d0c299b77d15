package backend

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/bumisubur/pos-gateway/pkg/pagination"
)

// PageInfo is the backend's pagination block.
type PageInfo struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	MaxPage int64 `json:"max_page"`
	Count   int64 `json:"count"`
}

// Page is one list response. Some endpoints answer with a bare array; those
// decode with Paginated false and every row in Data.
type Page[T any] struct {
	Data       []T      `json:"data"`
	Pagination PageInfo `json:"pagination"`
	Paginated  bool     `json:"-"`
}

func (p *Page[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		p.Paginated = false
		return json.Unmarshal(b, &p.Data)
	}

	// the employee list inlines the pagination fields next to data
	var raw struct {
		Data       []T       `json:"data"`
		Pagination *PageInfo `json:"pagination"`
		PageInfo
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.Data = raw.Data
	switch {
	case raw.Pagination != nil:
		p.Pagination = *raw.Pagination
		p.Paginated = true
	case raw.PerPage > 0:
		p.Pagination = raw.PageInfo
		p.Paginated = true
	}
	return nil
}

// Meta converts the backend block into the gateway's pagination metadata.
func (p *Page[T]) Meta() *pagination.Pagination {
	return pagination.NewPagination(p.Pagination.Page, p.Pagination.PerPage, p.Pagination.Count)
}

// ListQuery is the query string of a list call.
type ListQuery struct {
	Search  string
	Page    int
	PerPage int
	Extra   url.Values
}

func (q ListQuery) Values() url.Values {
	v := url.Values{}
	for k, vals := range q.Extra {
		for _, val := range vals {
			v.Add(k, val)
		}
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return v
}
