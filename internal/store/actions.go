package store

import "github.com/example/storefront/internal/models"

// Action is a state transition. The set is closed: only types in this
// package implement it.
type Action interface {
	reduce(State) State
}

// Reduce applies a to s and returns the new state.
func Reduce(s State, a Action) State {
	return a.reduce(s)
}

// AddToCart increments the quantity of the product, inserting it with
// quantity 1 when absent. Stock is the caller's concern.
type AddToCart struct{ Product models.Product }

func (a AddToCart) reduce(s State) State {
	cart := make([]models.CartItem, len(s.Cart), len(s.Cart)+1)
	copy(cart, s.Cart)
	for i := range cart {
		if cart[i].ID == a.Product.ID {
			cart[i].Quantity++
			s.Cart = cart
			return s
		}
	}
	s.Cart = append(cart, models.CartItem{Product: a.Product, Quantity: 1})
	return s
}

type RemoveFromCart struct{ ProductID models.ID }

func (a RemoveFromCart) reduce(s State) State {
	s.Cart = filterCart(s.Cart, func(item models.CartItem) bool { return item.ID != a.ProductID })
	return s
}

// UpdateCartQuantity sets the quantity; anything at or below zero removes
// the item.
type UpdateCartQuantity struct {
	ProductID models.ID
	Quantity  int
}

func (a UpdateCartQuantity) reduce(s State) State {
	cart := make([]models.CartItem, 0, len(s.Cart))
	for _, item := range s.Cart {
		if item.ID == a.ProductID {
			item.Quantity = a.Quantity
		}
		if item.Quantity > 0 {
			cart = append(cart, item)
		}
	}
	s.Cart = cart
	return s
}

type ClearCart struct{}

func (ClearCart) reduce(s State) State {
	s.Cart = nil
	return s
}

// AddToFavorites is idempotent.
type AddToFavorites struct{ Product models.Product }

func (a AddToFavorites) reduce(s State) State {
	if indexOfProduct(s.Favorites, a.Product.ID) >= 0 {
		return s
	}
	favs := make([]models.Product, len(s.Favorites), len(s.Favorites)+1)
	copy(favs, s.Favorites)
	s.Favorites = append(favs, a.Product)
	return s
}

type RemoveFromFavorites struct{ ProductID models.ID }

func (a RemoveFromFavorites) reduce(s State) State {
	favs := make([]models.Product, 0, len(s.Favorites))
	for _, p := range s.Favorites {
		if p.ID != a.ProductID {
			favs = append(favs, p)
		}
	}
	s.Favorites = favs
	return s
}

// SetProducts replaces the cached catalog.
type SetProducts struct{ Products []models.Product }

func (a SetProducts) reduce(s State) State {
	s.Products = append([]models.Product(nil), a.Products...)
	return s
}

// SetSession replaces the in-memory session. It does not touch storage.
type SetSession struct{ Session models.UserSession }

func (a SetSession) reduce(s State) State {
	sess := a.Session
	s.Session = &sess
	return s
}

type ClearSession struct{}

func (ClearSession) reduce(s State) State {
	s.Session = nil
	return s
}

type SelectProduct struct{ ProductID models.ID }

func (a SelectProduct) reduce(s State) State {
	s.SelectedProductID = a.ProductID
	return s
}

type SetCategory struct{ Category string }

func (a SetCategory) reduce(s State) State {
	s.Category = a.Category
	return s
}

type SetSubcategory struct{ Subcategory string }

func (a SetSubcategory) reduce(s State) State {
	s.Subcategory = a.Subcategory
	return s
}

type SetCartOpen struct{ Open bool }

func (a SetCartOpen) reduce(s State) State {
	s.CartOpen = a.Open
	return s
}

type SetSearchQuery struct{ Query string }

func (a SetSearchQuery) reduce(s State) State {
	s.SearchQuery = a.Query
	return s
}

type SetLanding struct{ View View }

func (a SetLanding) reduce(s State) State {
	s.Landing = a.View
	return s
}

func filterCart(cart []models.CartItem, keep func(models.CartItem) bool) []models.CartItem {
	out := make([]models.CartItem, 0, len(cart))
	for _, item := range cart {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
