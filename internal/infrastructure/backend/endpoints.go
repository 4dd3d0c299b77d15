package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/bumisubur/pos-gateway/internal/domain/entity"
)

// Resource is a CRUD collection under one backend path.
type Resource[T any] struct {
	c    *Client
	path string
}

func NewResource[T any](c *Client, path string) Resource[T] {
	return Resource[T]{c: c, path: path}
}

func (r Resource[T]) Path() string { return r.path }

func (r Resource[T]) List(ctx context.Context, token string, q ListQuery) (*Page[T], error) {
	var page Page[T]
	if err := r.c.do(ctx, token, http.MethodGet, r.path, q.Values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (r Resource[T]) Get(ctx context.Context, token, id string) (*T, error) {
	var out T
	if err := r.c.do(ctx, token, http.MethodGet, r.path+"/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r Resource[T]) Create(ctx context.Context, token string, body any) (*T, error) {
	var out T
	if err := r.c.do(ctx, token, http.MethodPost, r.path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r Resource[T]) Update(ctx context.Context, token, id string, body any) (*T, error) {
	var out T
	if err := r.c.do(ctx, token, http.MethodPatch, r.path+"/"+url.PathEscape(id), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r Resource[T]) Delete(ctx context.Context, token, id string) error {
	return r.c.do(ctx, token, http.MethodDelete, r.path+"/"+url.PathEscape(id), nil, nil, nil)
}

// LoginResult is the data of a successful login.
type LoginResult struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var out LoginResult
	if err := c.do(ctx, "", http.MethodPost, "/api/user/login", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me fetches the profile of the token's owner.
func (c *Client) Me(ctx context.Context, token string) (*entity.User, error) {
	var out entity.User
	if err := c.do(ctx, token, http.MethodGet, "/api/user/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TransactionIndex fetches the product catalog the cashier scans against.
func (c *Client) TransactionIndex(ctx context.Context, token string) (entity.Catalog, error) {
	var out entity.Catalog
	if err := c.do(ctx, token, http.MethodGet, "/api/transaksi/index", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTransaction commits a sale.
func (c *Client) CreateTransaction(ctx context.Context, token string, sub entity.Submission) (*entity.TransactionCreated, error) {
	var out entity.TransactionCreated
	if err := c.do(ctx, token, http.MethodPost, "/api/transaksi", nil, sub, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TransactionForPrint fetches the canonical detail of a committed sale.
func (c *Client) TransactionForPrint(ctx context.Context, token, id string) (*entity.TransactionDetail, error) {
	var out entity.TransactionDetail
	if err := c.do(ctx, token, http.MethodGet, "/api/transaksi/print/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TransactionHistory lists committed sales.
func (c *Client) TransactionHistory(ctx context.Context, token string, q ListQuery) (*Page[entity.TransactionSummary], error) {
	var out Page[entity.TransactionSummary]
	if err := c.do(ctx, token, http.MethodGet, "/api/transaksi", q.Values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApprovePendingStock moves a pending restock into stock.
func (c *Client) ApprovePendingStock(ctx context.Context, token, id string) error {
	return c.do(ctx, token, http.MethodPost, "/api/produk/pending/insert/"+url.PathEscape(id), nil, nil, nil)
}

// CustomerReturns lists returns made by customers.
func (c *Client) CustomerReturns(ctx context.Context, token string, q ListQuery) (*Page[entity.ReturnHistory], error) {
	var out Page[entity.ReturnHistory]
	if err := c.do(ctx, token, http.MethodGet, "/api/return/history/user", q.Values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SupplierReturns lists returns sent back to suppliers.
func (c *Client) SupplierReturns(ctx context.Context, token string, q ListQuery) (*Page[entity.ReturnHistory], error) {
	var out Page[entity.ReturnHistory]
	if err := c.do(ctx, token, http.MethodGet, "/api/return/history/supplier", q.Values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCustomerReturn records a customer return against a receipt.
func (c *Client) CreateCustomerReturn(ctx context.Context, token string, ret entity.CustomerReturn) error {
	return c.do(ctx, token, http.MethodPost, "/api/return/user", nil, ret, nil)
}
