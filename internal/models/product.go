package models

import "strings"

// Product is the client's read-only copy of a catalog entry. The remote
// backend owns pricing and stock.
type Product struct {
	ID            ID       `json:"id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Rating        float64  `json:"rating"`
	Image         string   `json:"image"`
	Discount      float64  `json:"discount"`
	IsNew         bool     `json:"isNew"`
	Category      string   `json:"category"`
	Subcategory   string   `json:"subcategory"`
	Description   string   `json:"description"`
	Stock         bool     `json:"stock"`
}

// HasDiscount reports whether an original price above the current price is known.
func (p Product) HasDiscount() bool {
	return p.OriginalPrice != nil && *p.OriginalPrice > p.Price
}

// CartItem is a product with a positive quantity.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// Subtotal is price times quantity.
func (i CartItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Category groups subcategories as returned by the catalog endpoint.
type Category struct {
	ID            ID       `json:"id"`
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories,omitempty"`
}

// ProductFilter narrows a product list by category, subcategory and a
// free-text query over name and description. Empty fields match everything
// and matching is case-insensitive.
type ProductFilter struct {
	Category    string
	Subcategory string
	Search      string
}

// Match reports whether p passes the filter.
func (f ProductFilter) Match(p Product) bool {
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if f.Subcategory != "" && !strings.EqualFold(p.Subcategory, f.Subcategory) {
		return false
	}
	query := strings.ToLower(strings.TrimSpace(f.Search))
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Description), query)
}

// Apply returns the products that pass the filter, in order.
func (f ProductFilter) Apply(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}
