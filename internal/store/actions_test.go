package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/models"
)

var (
	cupcake = models.Product{ID: "1", Name: "Cupcake de chocolate", Price: 10, Category: "postres", Stock: true}
	brownie = models.Product{ID: "2", Name: "Brownie", Price: 4.5, Category: "postres", Subcategory: "chocolate", Stock: true}
	cafe    = models.Product{ID: "3", Name: "Café americano", Price: 3, Category: "bebidas", Description: "Tostado medio", Stock: false}
)

func reduceAll(s State, actions ...Action) State {
	for _, a := range actions {
		s = Reduce(s, a)
	}
	return s
}

func TestAddToCart_TwiceIncrementsQuantity(t *testing.T) {
	s := reduceAll(State{}, AddToCart{cupcake}, AddToCart{cupcake})

	require.Len(t, s.Cart, 1)
	assert.Equal(t, 2, s.Cart[0].Quantity)
	assert.Equal(t, cupcake.ID, s.Cart[0].ID)
}

func TestAddToCart_DistinctProducts(t *testing.T) {
	s := reduceAll(State{}, AddToCart{cupcake}, AddToCart{brownie}, AddToCart{cupcake})

	require.Len(t, s.Cart, 2)
	assert.Equal(t, 3, s.CartCount())
	assert.InDelta(t, 24.5, s.CartTotal(), 0.0001)
}

func TestAddToCart_DoesNotCheckStock(t *testing.T) {
	s := Reduce(State{}, AddToCart{cafe})
	assert.True(t, s.InCart(cafe.ID))
}

func TestRemoveFromCart(t *testing.T) {
	s := reduceAll(State{}, AddToCart{cupcake}, AddToCart{brownie}, RemoveFromCart{cupcake.ID})
	assert.False(t, s.InCart(cupcake.ID))
	assert.True(t, s.InCart(brownie.ID))

	// Unknown id is a no-op.
	s = Reduce(s, RemoveFromCart{"missing"})
	assert.Len(t, s.Cart, 1)
}

func TestUpdateCartQuantity(t *testing.T) {
	base := reduceAll(State{}, AddToCart{cupcake}, AddToCart{brownie})

	t.Run("sets quantity", func(t *testing.T) {
		s := Reduce(base, UpdateCartQuantity{ProductID: cupcake.ID, Quantity: 5})
		item, ok := s.CartItem(cupcake.ID)
		require.True(t, ok)
		assert.Equal(t, 5, item.Quantity)
	})

	for _, q := range []int{0, -1} {
		s := Reduce(base, UpdateCartQuantity{ProductID: cupcake.ID, Quantity: q})
		assert.False(t, s.InCart(cupcake.ID), "quantity %d", q)
		assert.True(t, s.InCart(brownie.ID))
		for _, item := range s.Cart {
			assert.Positive(t, item.Quantity)
		}
	}

	t.Run("unknown id", func(t *testing.T) {
		s := Reduce(base, UpdateCartQuantity{ProductID: "missing", Quantity: 4})
		assert.Equal(t, base.Cart, s.Cart)
	})
}

func TestClearCart_ThenRemoves(t *testing.T) {
	s := reduceAll(State{}, AddToCart{cupcake}, AddToCart{brownie}, ClearCart{},
		RemoveFromCart{cupcake.ID}, RemoveFromCart{brownie.ID}, RemoveFromCart{"x"})
	assert.Empty(t, s.Cart)
	assert.Zero(t, s.CartCount())
}

func TestFavorites(t *testing.T) {
	once := Reduce(State{}, AddToFavorites{cupcake})
	twice := reduceAll(State{}, AddToFavorites{cupcake}, AddToFavorites{cupcake})

	assert.Equal(t, once.Favorites, twice.Favorites)
	require.Len(t, twice.Favorites, 1)
	assert.True(t, twice.IsFavorite(cupcake.ID))

	s := Reduce(twice, RemoveFromFavorites{cupcake.ID})
	assert.False(t, s.IsFavorite(cupcake.ID))
	assert.Empty(t, s.Favorites)
}

func TestReducersDoNotMutatePreviousState(t *testing.T) {
	before := reduceAll(State{}, AddToCart{cupcake}, AddToFavorites{brownie})
	snapshot := before.Cart[0].Quantity

	after := reduceAll(before, AddToCart{cupcake}, UpdateCartQuantity{ProductID: cupcake.ID, Quantity: 9}, AddToFavorites{cafe})

	assert.Equal(t, snapshot, before.Cart[0].Quantity)
	assert.Len(t, before.Favorites, 1)
	assert.Equal(t, 9, after.Cart[0].Quantity)
}

func TestSetProducts_ReplacesCatalog(t *testing.T) {
	s := reduceAll(State{}, SetProducts{[]models.Product{cupcake}}, SetProducts{[]models.Product{brownie, cafe}})
	assert.Len(t, s.Products, 2)
	_, ok := s.Product(cupcake.ID)
	assert.False(t, ok)
}

func TestSessionActions(t *testing.T) {
	sess := models.UserSession{Token: "t", UserID: "u1", PlanID: "1", Name: "Ana"}
	s := Reduce(State{}, SetSession{sess})
	require.NotNil(t, s.Session)
	assert.Equal(t, sess, *s.Session)

	s = Reduce(s, ClearSession{})
	assert.Nil(t, s.Session)
}

func TestFieldToggles(t *testing.T) {
	s := reduceAll(State{},
		SetProducts{[]models.Product{cupcake, brownie, cafe}},
		SelectProduct{brownie.ID},
		SetCategory{"Postres"},
		SetSubcategory{"chocolate"},
		SetCartOpen{true},
		SetSearchQuery{"brow"},
		SetLanding{ViewAdmin},
	)

	selected, ok := s.SelectedProduct()
	require.True(t, ok)
	assert.Equal(t, brownie, selected)
	assert.True(t, s.CartOpen)
	assert.Equal(t, ViewAdmin, s.Landing)
	assert.Equal(t, []models.Product{brownie}, s.VisibleProducts())
}

func TestVisibleProducts_SearchesDescription(t *testing.T) {
	s := reduceAll(State{}, SetProducts{[]models.Product{cupcake, brownie, cafe}}, SetSearchQuery{"tostado"})
	assert.Equal(t, []models.Product{cafe}, s.VisibleProducts())
}
