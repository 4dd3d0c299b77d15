package service

import (
	"context"
	"net/url"

	"github.com/bumisubur/pos-gateway/internal/domain/entity"
	"github.com/bumisubur/pos-gateway/internal/domain/enum"
	"github.com/bumisubur/pos-gateway/internal/infrastructure/backend"
	"github.com/bumisubur/pos-gateway/pkg/apperror"
	"github.com/bumisubur/pos-gateway/pkg/datatable"
	"github.com/bumisubur/pos-gateway/pkg/pagination"
	"github.com/sirupsen/logrus"
)

// exportPageSize is how many rows an export asks the backend for.
const exportPageSize = 1000

// Op is one operation a directory collection may support.
type Op uint8

const (
	OpList Op = 1 << iota
	OpGet
	OpCreate
	OpUpdate
	OpDelete
)

// ListRequest is one list or export request against a collection.
type ListRequest struct {
	Search  string
	Filters map[string]string
	Columns []string
	Page    int
	PerPage int
	// Extra is passed to the backend untouched, e.g. the date range of the
	// transaction history.
	Extra url.Values
}

// Collection is one entity of the back office directory.
type Collection interface {
	Name() string
	Title() string
	Supports(op Op) bool
	Role(op Op) enum.RouteRole
	List(ctx context.Context, token string, req ListRequest) (*datatable.View, error)
	Export(ctx context.Context, token string, req ListRequest) ([]byte, error)
	Get(ctx context.Context, token, id string) (any, error)
	Create(ctx context.Context, token string, body any) (any, error)
	Update(ctx context.Context, token, id string, body any) (any, error)
	Delete(ctx context.Context, token, id string) error
}

type lister[T any] func(ctx context.Context, token string, q backend.ListQuery) (*backend.Page[T], error)

type collection[T any] struct {
	name      string
	title     string
	ops       Op
	readRole  enum.RouteRole
	writeRole enum.RouteRole
	resource  *backend.Resource[T]
	list      lister[T]
	table     func() *datatable.Table[T]
}

func (c *collection[T]) Name() string  { return c.name }
func (c *collection[T]) Title() string { return c.title }

func (c *collection[T]) Supports(op Op) bool { return c.ops&op != 0 }

func (c *collection[T]) Role(op Op) enum.RouteRole {
	if op == OpList || op == OpGet {
		return c.readRole
	}
	return c.writeRole
}

// prepare builds a table for req. Unknown columns and filter values are
// rejected before anything is fetched.
func (c *collection[T]) prepare(req ListRequest) (*datatable.Table[T], error) {
	t := c.table()
	if len(req.Columns) > 0 {
		if err := t.SetVisibleOnly(req.Columns); err != nil {
			return nil, apperror.NewBadRequestError(err.Error())
		}
	}
	for key, value := range req.Filters {
		if err := t.SetFilter(key, value); err != nil {
			return nil, apperror.NewBadRequestError(err.Error())
		}
	}
	return t, nil
}

func (c *collection[T]) fetch(ctx context.Context, token string, q backend.ListQuery) (*backend.Page[T], error) {
	if c.list != nil {
		return c.list(ctx, token, q)
	}
	return c.resource.List(ctx, token, q)
}

// List renders one page. Paginated endpoints are paged and searched by the
// backend and the table only filters the returned rows. Bare-array endpoints
// are searched and paged here.
func (c *collection[T]) List(ctx context.Context, token string, req ListRequest) (*datatable.View, error) {
	t, err := c.prepare(req)
	if err != nil {
		return nil, err
	}

	params := pagination.PaginationParams{Page: req.Page, PerPage: req.PerPage}
	params.Validate()

	page, err := c.fetch(ctx, token, backend.ListQuery{
		Search:  req.Search,
		Page:    params.Page,
		PerPage: params.PerPage,
		Extra:   req.Extra,
	})
	if err != nil {
		return nil, err
	}

	if !page.Paginated {
		t.SetSearch(req.Search)
		view := t.Render(page.Data, params)
		return &view, nil
	}

	view := t.Render(page.Data, pagination.PaginationParams{Page: 1, PerPage: len(page.Data)})
	view.Pagination = page.Meta()
	return &view, nil
}

// Export writes every matching row to a workbook.
func (c *collection[T]) Export(ctx context.Context, token string, req ListRequest) ([]byte, error) {
	t, err := c.prepare(req)
	if err != nil {
		return nil, err
	}
	page, err := c.fetch(ctx, token, backend.ListQuery{
		Search:  req.Search,
		Page:    1,
		PerPage: exportPageSize,
		Extra:   req.Extra,
	})
	if err != nil {
		return nil, err
	}
	if !page.Paginated {
		t.SetSearch(req.Search)
	}
	return t.ExportXLSX(page.Data, c.title)
}

func (c *collection[T]) Get(ctx context.Context, token, id string) (any, error) {
	return c.resource.Get(ctx, token, id)
}

func (c *collection[T]) Create(ctx context.Context, token string, body any) (any, error) {
	return c.resource.Create(ctx, token, body)
}

func (c *collection[T]) Update(ctx context.Context, token, id string, body any) (any, error) {
	return c.resource.Update(ctx, token, id, body)
}

func (c *collection[T]) Delete(ctx context.Context, token, id string) error {
	return c.resource.Delete(ctx, token, id)
}

// DirectoryService serves the back office lists, details and forms.
type DirectoryService struct {
	client      *backend.Client
	log         *logrus.Logger
	collections map[string]Collection
	order       []string
}

// NewDirectoryService creates a new directory service
func NewDirectoryService(client *backend.Client, log *logrus.Logger) *DirectoryService {
	s := &DirectoryService{
		client:      client,
		log:         log,
		collections: make(map[string]Collection),
	}
	for _, c := range collectionsFor(client) {
		s.collections[c.Name()] = c
		s.order = append(s.order, c.Name())
	}
	return s
}

// Collections returns every collection in registration order.
func (s *DirectoryService) Collections() []Collection {
	out := make([]Collection, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.collections[name])
	}
	return out
}

// Collection looks up a collection that supports op.
func (s *DirectoryService) Collection(name string, op Op) (Collection, error) {
	c, ok := s.collections[name]
	if !ok || !c.Supports(op) {
		return nil, apperror.NewNotFoundError(name)
	}
	return c, nil
}

// Delete removes a record. Without confirmation nothing is sent to the
// backend.
func (s *DirectoryService) Delete(ctx context.Context, token, name, id string, confirmed bool) error {
	c, err := s.Collection(name, OpDelete)
	if err != nil {
		return err
	}
	if !confirmed {
		return apperror.ErrConfirmationFirst
	}
	if err := c.Delete(ctx, token, id); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"collection": name, "id": id}).Info("Record deleted")
	return nil
}

// ApprovePendingStock moves a pending restock into stock.
func (s *DirectoryService) ApprovePendingStock(ctx context.Context, token, id string) error {
	return s.client.ApprovePendingStock(ctx, token, id)
}

// CreateCustomerReturn records a return against a receipt.
func (s *DirectoryService) CreateCustomerReturn(ctx context.Context, token string, ret entity.CustomerReturn) error {
	return s.client.CreateCustomerReturn(ctx, token, ret)
}
