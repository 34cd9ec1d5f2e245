package handlers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/services"
)

type stubCatalog struct {
	products []models.Product
	err      error
}

func (s stubCatalog) FetchProducts(context.Context) ([]models.Product, error) {
	return s.products, s.err
}

func (s stubCatalog) FetchCategories(context.Context) ([]models.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []models.Category{{ID: "1", Name: "Alimentos", Subcategories: []string{"Dulces"}}}, nil
}

type swappableCatalog struct {
	mu       sync.Mutex
	products []models.Product
}

func (s *swappableCatalog) set(products []models.Product) {
	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
}

func (s *swappableCatalog) FetchProducts(context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products, nil
}

func (s *swappableCatalog) FetchCategories(context.Context) ([]models.Category, error) {
	return nil, nil
}

func newCatalogApp(src services.CatalogSource) *fiber.App {
	h := NewCatalogHandler(services.NewCatalogService(src, time.Minute, zap.NewNop()))
	app := newApp()
	app.Get("/api/products", h.ListProducts)
	app.Get("/api/products/:id", h.GetProduct)
	app.Get("/api/categories", h.ListCategories)
	app.Post("/api/catalog/refresh", h.RefreshCatalog)
	return app
}

func sampleProducts() []models.Product {
	return []models.Product{
		{ID: "1", Name: "Miel", Category: "Alimentos", Subcategory: "Dulces", Price: 80},
		{ID: "2", Name: "Cajeta", Category: "Alimentos", Subcategory: "Dulces", Price: 60},
		{ID: "3", Name: "Café", Category: "Alimentos", Subcategory: "Bebidas", Price: 120},
		{ID: "4", Name: "Jabón", Category: "Higiene", Price: 25},
	}
}

func TestListProducts_FiltersAndPaginates(t *testing.T) {
	app := newCatalogApp(stubCatalog{products: sampleProducts()})

	resp, body := get(t, app, "/api/products?category=alimentos&subcategory=dulces&limit=1&page=2")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "Cajeta", data[0].(map[string]any)["name"])

	pagination := body["pagination"].(map[string]any)
	assert.EqualValues(t, 2, pagination["total_items"])
	assert.EqualValues(t, 2, pagination["current_page"])

	_, body = get(t, app, "/api/products?search=caf")
	assert.Len(t, body["data"].([]any), 1)

	_, body = get(t, app, "/api/products?page=9")
	assert.Empty(t, body["data"].([]any))

	resp, body = get(t, app, "/api/products?page=100000000000000000&limit=100")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, body["data"].([]any))
}

func TestGetProduct(t *testing.T) {
	app := newCatalogApp(stubCatalog{products: sampleProducts()})

	resp, body := get(t, app, "/api/products/3")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Café", body["data"].(map[string]any)["name"])

	resp, body = get(t, app, "/api/products/99")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "product not found", body["error"])
}

func TestCatalog_BackendDown(t *testing.T) {
	app := newCatalogApp(stubCatalog{err: errors.New("down")})

	resp, body := get(t, app, "/api/products")
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "catalog unavailable", body["error"])

	resp, _ = get(t, app, "/api/categories")
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestListCategories(t *testing.T) {
	app := newCatalogApp(stubCatalog{})

	resp, body := get(t, app, "/api/categories")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "Alimentos", data[0].(map[string]any)["name"])
}

func TestRefreshCatalog_DropsCachedLists(t *testing.T) {
	src := &swappableCatalog{products: sampleProducts()[:1]}
	app := newCatalogApp(src)

	_, body := get(t, app, "/api/products")
	require.Len(t, body["data"].([]any), 1)

	src.set(sampleProducts())
	_, body = get(t, app, "/api/products")
	assert.Len(t, body["data"].([]any), 1, "served from cache")

	resp, body := postJSON(t, app, "/api/catalog/refresh", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	_, body = get(t, app, "/api/products")
	assert.Len(t, body["data"].([]any), 4)
}
