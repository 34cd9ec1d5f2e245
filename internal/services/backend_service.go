package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/verification"
)

const (
	sendCodePath   = "/api/verificacion/enviar-codigo"
	verifyCodePath = "/api/verificacion/verificar-codigo"
	productsPath   = "/api/productos"
	categoriesPath = "/api/categorias"

	defaultHTTPTimeout = 15 * time.Second
)

// BackendService talks to the remote storefront backend.
type BackendService struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewBackendService builds a client for baseURL. A zero timeout falls back to 15s.
func NewBackendService(baseURL string, timeout time.Duration, logger *zap.Logger) *BackendService {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackendService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// BackendRequestOpts captures inputs for backend API calls.
type BackendRequestOpts struct {
	Method  string
	Path    string
	Query   map[string]string
	Body    any
	Headers map[string]string
}

// BackendResponse bundles the HTTP response metadata.
type BackendResponse struct {
	Status int
	Body   []byte
	Header http.Header
}

// OK reports a 2xx status.
func (r *BackendResponse) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Do performs a backend request. Only network and encoding failures are
// returned as errors; any HTTP status is returned in the response.
func (s *BackendService) Do(ctx context.Context, opts BackendRequestOpts) (*BackendResponse, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	path := strings.TrimLeft(opts.Path, "/")
	if path == "" {
		return nil, errors.New("request path is required")
	}

	u, err := url.Parse(s.baseURL + "/" + path)
	if err != nil {
		return nil, fmt.Errorf("parse backend URL: %w", err)
	}
	if len(opts.Query) > 0 {
		values := u.Query()
		for k, v := range opts.Query {
			values.Set(k, v)
		}
		u.RawQuery = values.Encode()
	}

	var bodyReader io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if opts.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("backend request failed",
			zap.String("method", method),
			zap.String("path", u.Path),
			zap.Error(err))
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	s.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", u.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(started)))

	return &BackendResponse{
		Status: resp.StatusCode,
		Body:   respBody,
		Header: resp.Header.Clone(),
	}, nil
}

// SendCode forwards an already normalized phone to the backend.
func (s *BackendService) SendCode(ctx context.Context, phone string) (*verification.SendCodeResult, error) {
	resp, err := s.Do(ctx, BackendRequestOpts{
		Method: http.MethodPost,
		Path:   sendCodePath,
		Body:   verification.SendCodeRequest{Telefono: phone},
	})
	if err != nil {
		return nil, verification.Transport(err)
	}
	if !resp.OK() {
		return nil, rejection(resp)
	}

	var result verification.SendCodeResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, verification.Transport(fmt.Errorf("decode send-code response: %w", err))
	}
	if err := result.Validate(); err != nil {
		return nil, verification.Transport(err)
	}
	return &result, nil
}

// VerifyCode forwards phone and code to the backend. A 2xx answer is
// returned even when Verified is false.
func (s *BackendService) VerifyCode(ctx context.Context, phone, code string) (*verification.VerifyCodeResult, error) {
	resp, err := s.Do(ctx, BackendRequestOpts{
		Method: http.MethodPost,
		Path:   verifyCodePath,
		Body:   verification.VerifyCodeRequest{Telefono: phone, Codigo: code},
	})
	if err != nil {
		return nil, verification.Transport(err)
	}
	if !resp.OK() {
		return nil, rejection(resp)
	}

	var result verification.VerifyCodeResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, verification.Transport(fmt.Errorf("decode verify-code response: %w", err))
	}
	if err := result.Validate(); err != nil {
		return nil, verification.Transport(err)
	}
	return &result, nil
}

// FetchProducts loads the full product list.
func (s *BackendService) FetchProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.getList(ctx, productsPath, &products); err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	return products, nil
}

// FetchCategories loads the category tree.
func (s *BackendService) FetchCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.getList(ctx, categoriesPath, &categories); err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	return categories, nil
}

// getList decodes either a bare JSON array or an object wrapping it in "data".
func (s *BackendService) getList(ctx context.Context, path string, dst any) error {
	resp, err := s.Do(ctx, BackendRequestOpts{Method: http.MethodGet, Path: path})
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("status %d, body: %s", resp.Status, truncate(resp.Body, 256))
	}

	body := bytes.TrimSpace(resp.Body)
	if len(body) > 0 && body[0] == '{' {
		var wrapped struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		body = wrapped.Data
	}
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// rejection turns a non-2xx backend answer into a BackendRejected error,
// keeping the backend's status, message and details.
func rejection(resp *BackendResponse) error {
	var payload struct {
		Error   string          `json:"error"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	}
	_ = json.Unmarshal(resp.Body, &payload)

	msg := payload.Error
	if msg == "" {
		msg = payload.Message
	}
	if msg == "" {
		msg = http.StatusText(resp.Status)
	}

	details := detailsString(payload.Details)
	if details == "" && payload.Error == "" && payload.Message == "" {
		details = truncate(resp.Body, 512)
	}
	return verification.Rejected(resp.Status, msg, details)
}

func detailsString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func truncate(body []byte, n int) string {
	s := strings.TrimSpace(string(body))
	if len(s) > n {
		return s[:n]
	}
	return s
}
