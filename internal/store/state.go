// Package store holds the client session and cart state. State changes only
// through the closed set of actions in this package.
package store

import (
	"github.com/example/storefront/internal/models"
)

// View is the surface rendered on landing.
type View string

const (
	ViewStorefront View = "storefront"
	ViewAdmin      View = "admin"
)

// State is an immutable snapshot. Reducers never modify slices in place, so
// a snapshot handed to a caller stays valid after later dispatches.
type State struct {
	Products          []models.Product
	Cart              []models.CartItem
	Favorites         []models.Product
	Session           *models.UserSession
	SelectedProductID models.ID
	Category          string
	Subcategory       string
	CartOpen          bool
	SearchQuery       string
	Landing           View
}

// CartCount is the total number of units in the cart.
func (s State) CartCount() int {
	n := 0
	for _, item := range s.Cart {
		n += item.Quantity
	}
	return n
}

// CartTotal sums the cart subtotals.
func (s State) CartTotal() float64 {
	var total float64
	for _, item := range s.Cart {
		total += item.Subtotal()
	}
	return total
}

// CartItem returns the cart entry for id.
func (s State) CartItem(id models.ID) (models.CartItem, bool) {
	for _, item := range s.Cart {
		if item.ID == id {
			return item, true
		}
	}
	return models.CartItem{}, false
}

func (s State) InCart(id models.ID) bool {
	_, ok := s.CartItem(id)
	return ok
}

func (s State) IsFavorite(id models.ID) bool {
	return indexOfProduct(s.Favorites, id) >= 0
}

// Product looks id up in the cached catalog.
func (s State) Product(id models.ID) (models.Product, bool) {
	if i := indexOfProduct(s.Products, id); i >= 0 {
		return s.Products[i], true
	}
	return models.Product{}, false
}

// SelectedProduct is the catalog entry for SelectedProductID.
func (s State) SelectedProduct() (models.Product, bool) {
	if s.SelectedProductID == "" {
		return models.Product{}, false
	}
	return s.Product(s.SelectedProductID)
}

// VisibleProducts applies the category, subcategory and search filters to
// the cached catalog. Matching is case-insensitive.
func (s State) VisibleProducts() []models.Product {
	return s.Filter().Apply(s.Products)
}

// Filter is the product filter selected in the state.
func (s State) Filter() models.ProductFilter {
	return models.ProductFilter{
		Category:    s.Category,
		Subcategory: s.Subcategory,
		Search:      s.SearchQuery,
	}
}

func indexOfProduct(list []models.Product, id models.ID) int {
	for i, p := range list {
		if p.ID == id {
			return i
		}
	}
	return -1
}
