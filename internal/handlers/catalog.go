package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/services"
	"github.com/example/storefront/internal/utils"
)

// CatalogHandler serves the cached backend catalog.
type CatalogHandler struct {
	catalog *services.CatalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListProducts returns paginated products with optional filters.
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	products, err := h.catalog.Products(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "catalog unavailable")
	}

	filter := models.ProductFilter{
		Category:    strings.TrimSpace(c.Query("category")),
		Subcategory: strings.TrimSpace(c.Query("subcategory")),
		Search:      c.Query("search"),
	}
	matched := filter.Apply(products)
	start, end := pg.Bounds(len(matched))

	return c.JSON(fiber.Map{
		"success": true,
		"data":    matched[start:end],
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    len(matched),
		},
	})
}

// GetProduct returns a single product.
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	product, ok, err := h.catalog.Product(c.UserContext(), models.ID(id))
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "catalog unavailable")
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// RefreshCatalog drops the cached products and categories so the next read
// goes to the backend.
func (h *CatalogHandler) RefreshCatalog(c *fiber.Ctx) error {
	h.catalog.Invalidate()
	return c.JSON(fiber.Map{"success": true})
}

// ListCategories returns the category tree.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.catalog.Categories(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "catalog unavailable")
	}
	return c.JSON(fiber.Map{"success": true, "data": categories})
}
