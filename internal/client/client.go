// Package client calls the local storefront proxy on behalf of the shell.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/services"
	"github.com/example/storefront/internal/verification"
)

// ErrUnauthorized is returned by Session when the token is no longer accepted.
var ErrUnauthorized = errors.New("client: session token rejected")

// Client talks to the proxy's /api routes.
type Client struct {
	http *services.BackendService
}

// New returns a client for the proxy at serverURL.
func New(serverURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{http: services.NewBackendService(serverURL, timeout, logger)}
}

// SendCode implements verification.Verifier against the proxy.
func (c *Client) SendCode(ctx context.Context, phone string) (*verification.SendCodeResult, error) {
	var res verification.SendCodeResult
	if err := c.post(ctx, "/api/verificacion/enviar-codigo", verification.SendCodeRequest{Telefono: phone}, &res); err != nil {
		return nil, err
	}
	if err := res.Validate(); err != nil {
		return nil, verification.Transport(err)
	}
	return &res, nil
}

// VerifyCode implements verification.Verifier against the proxy.
func (c *Client) VerifyCode(ctx context.Context, phone, code string) (*verification.VerifyCodeResult, error) {
	var res verification.VerifyCodeResult
	body := verification.VerifyCodeRequest{Telefono: phone, Codigo: code}
	if err := c.post(ctx, "/api/verificacion/verificar-codigo", body, &res); err != nil {
		return nil, err
	}
	if err := res.Validate(); err != nil {
		return nil, verification.Transport(err)
	}
	return &res, nil
}

// Products loads every product matching filter.
func (c *Client) Products(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	query := map[string]string{"limit": "100"}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Subcategory != "" {
		query["subcategory"] = filter.Subcategory
	}
	if filter.Search != "" {
		query["search"] = filter.Search
	}

	var all []models.Product
	for page := 1; ; page++ {
		query["page"] = fmt.Sprint(page)

		var res struct {
			Data       []models.Product `json:"data"`
			Pagination struct {
				TotalItems int `json:"total_items"`
			} `json:"pagination"`
		}
		if err := c.get(ctx, "/api/products", query, "", &res); err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		all = append(all, res.Data...)
		if len(res.Data) == 0 || len(all) >= res.Pagination.TotalItems {
			return all, nil
		}
	}
}

// Categories loads the category tree.
func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var res struct {
		Data []models.Category `json:"data"`
	}
	if err := c.get(ctx, "/api/categories", nil, "", &res); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return res.Data, nil
}

// SessionInfo is what the proxy knows about a session token.
type SessionInfo struct {
	UserID    string    `json:"user_id"`
	PlanID    string    `json:"plan_id"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Session checks token with the proxy.
func (c *Client) Session(ctx context.Context, token string) (*SessionInfo, error) {
	var info SessionInfo
	if err := c.get(ctx, "/api/session", nil, token, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) post(ctx context.Context, path string, body, dst any) error {
	resp, err := c.http.Do(ctx, services.BackendRequestOpts{Method: http.MethodPost, Path: path, Body: body})
	if err != nil {
		return verification.Transport(err)
	}
	if !resp.OK() {
		return verificationError(resp)
	}
	if err := json.Unmarshal(resp.Body, dst); err != nil {
		return verification.Transport(fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, token string, dst any) error {
	opts := services.BackendRequestOpts{Method: http.MethodGet, Path: path, Query: query}
	if token != "" {
		opts.Headers = map[string]string{"Authorization": "Bearer " + token}
	}

	resp, err := c.http.Do(ctx, opts)
	if err != nil {
		return err
	}
	if resp.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if !resp.OK() {
		var payload verification.ErrorResponse
		_ = json.Unmarshal(resp.Body, &payload)
		return fmt.Errorf("status %d: %s", resp.Status, payload.Error)
	}
	if err := json.Unmarshal(resp.Body, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// verificationError maps a proxy error answer back onto the error kinds:
// 400 is a validation failure, the generic 500 is a transport failure and
// anything else was reported by the backend.
func verificationError(resp *services.BackendResponse) error {
	var payload verification.ErrorResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil || payload.Error == "" {
		return verification.Transport(fmt.Errorf("proxy status %d", resp.Status))
	}

	switch {
	case resp.Status == http.StatusBadRequest:
		return &verification.Error{
			Kind:    verification.KindInvalidInput,
			Status:  resp.Status,
			Message: payload.Error,
			Details: payload.Details,
		}
	case resp.Status == http.StatusInternalServerError && payload.Error == verification.GenericErrorMessage:
		return verification.Transport(fmt.Errorf("proxy reported an internal error"))
	default:
		return verification.Rejected(resp.Status, payload.Error, payload.Details)
	}
}
