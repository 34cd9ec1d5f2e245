package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/verification"
)

func newClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, time.Second, nil)
}

func TestClient_ImplementsVerifier(t *testing.T) {
	var _ verification.Verifier = (*Client)(nil)
}

func TestClient_SendCode(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/verificacion/enviar-codigo", r.URL.Path)
		w.Write([]byte(`{"message":"ok","expires_in_minutes":10,"phone_number":"9992694926"}`))
	})

	res, err := c.SendCode(context.Background(), "9992694926")
	require.NoError(t, err)
	assert.Equal(t, 10, res.ExpiresInMinutes)
}

func TestClient_ErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   verification.Kind
		msg    string
	}{
		{"validation", http.StatusBadRequest, `{"error":"El código debe tener 4 dígitos"}`, verification.KindInvalidInput, "El código debe tener 4 dígitos"},
		{"rejected", http.StatusGone, `{"error":"Código expirado","details":"x"}`, verification.KindBackendRejected, "Código expirado"},
		{"generic 500", http.StatusInternalServerError, `{"error":"Error interno del servidor"}`, verification.KindTransport, verification.GenericErrorMessage},
		{"backend 500", http.StatusInternalServerError, `{"error":"SMS provider down"}`, verification.KindBackendRejected, "SMS provider down"},
		{"no body", http.StatusBadGateway, ``, verification.KindTransport, verification.GenericErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.VerifyCode(context.Background(), "9992694926", "1234")
			require.Error(t, err)
			assert.Equal(t, tt.kind, verification.KindOf(err))
			assert.Equal(t, tt.msg, verification.Message(err))
		})
	}
}

func TestClient_VerifyCodeNotVerified(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"Código inválido","verified":false,"phone_number":"9992694926"}`))
	})

	res, err := c.VerifyCode(context.Background(), "9992694926", "1234")
	require.NoError(t, err)
	assert.False(t, res.Verified)
}

func TestClient_Products(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "dulces", r.URL.Query().Get("subcategory"))
		switch r.URL.Query().Get("page") {
		case "1":
			w.Write([]byte(`{"data":[{"id":1,"name":"Miel"}],"pagination":{"total_items":2}}`))
		case "2":
			w.Write([]byte(`{"data":[{"id":2,"name":"Cajeta"}],"pagination":{"total_items":2}}`))
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})

	products, err := c.Products(context.Background(), models.ProductFilter{Subcategory: "dulces"})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Cajeta", products[1].Name)
}

func TestClient_Categories(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[{"id":1,"name":"Alimentos"}]}`))
	})

	categories, err := c.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, models.ID("1"), categories[0].ID)
}

func TestClient_Session(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid token"}`))
			return
		}
		w.Write([]byte(`{"user_id":"42","plan_id":"3","name":"Ana","expires_at":"2030-01-01T00:00:00Z"}`))
	})

	info, err := c.Session(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "3", info.PlanID)

	_, err = c.Session(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
