package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/asquebay/simple-storefront/internal/auth"
	"github.com/asquebay/simple-storefront/internal/config"
	"github.com/asquebay/simple-storefront/internal/lib/apperr"
	"github.com/asquebay/simple-storefront/internal/lib/logger"
	"github.com/asquebay/simple-storefront/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProducts struct {
	get func(ctx context.Context, in model.ProductIDInput) (model.ProductResult, error)
}

func (s stubProducts) GetAll(context.Context, model.ProductListInput) (model.ProductsPage, error) {
	return model.ProductsPage{Message: "products fetched", Products: []model.Product{}}, nil
}

func (s stubProducts) GetAutocomplete(_ context.Context, in model.AutocompleteInput) (model.SuggestionsResult, error) {
	return model.SuggestionsResult{Message: "suggestions fetched", Suggestions: []model.Suggestion{{ID: "1", Title: in.Query}}}, nil
}

func (s stubProducts) GetFeatured(context.Context) (model.ProductsPage, error) {
	return model.ProductsPage{Message: "featured products fetched", Products: []model.Product{{ID: "p1"}}}, nil
}

func (s stubProducts) Get(ctx context.Context, in model.ProductIDInput) (model.ProductResult, error) {
	return s.get(ctx, in)
}

func (s stubProducts) Create(context.Context, model.CreateProductInput) (model.ProductResult, error) {
	return model.ProductResult{}, apperr.Internalw(errors.New("stripe: connection refused"), "")
}

func (s stubProducts) Update(context.Context, model.UpdateProductInput) (model.ProductResult, error) {
	return model.ProductResult{}, nil
}

func (s stubProducts) Delete(_ context.Context, in model.ProductIDInput) (model.DeletedResult, error) {
	return model.DeletedResult{Message: "product deleted", ID: in.ID}, nil
}

type stubCarts struct{}

func (stubCarts) Get(ctx context.Context) (model.CartResult, error) {
	id, ok := auth.FromContext(ctx)
	if !ok {
		return model.CartResult{}, apperr.Unauthorizedf("sign in required")
	}
	return model.CartResult{Message: "cart fetched", Cart: model.Cart{ID: "c1", UserID: id.ID, Items: []model.CartItem{}}}, nil
}

func (stubCarts) GetProduct(context.Context, model.CartProductInput) (model.CartItemResult, error) {
	return model.CartItemResult{Message: "product is not in cart"}, nil
}

func (stubCarts) AddToCart(context.Context, model.AddToCartInput) (model.CartItemResult, error) {
	return model.CartItemResult{}, apperr.BadRequestf("product already in cart")
}

func (stubCarts) UpdateQuantity(context.Context, model.UpdateQuantityInput) (model.CartItemResult, error) {
	return model.CartItemResult{}, nil
}

func (stubCarts) DeleteFromCart(context.Context, model.CartItemIDInput) (model.DeletedResult, error) {
	return model.DeletedResult{}, nil
}

type stubReviews struct{}

func (stubReviews) GetForProduct(context.Context, model.ReviewListInput) (model.ReviewsPage, error) {
	return model.ReviewsPage{}, nil
}

func (stubReviews) Create(context.Context, model.CreateReviewInput) (model.ReviewResult, error) {
	return model.ReviewResult{}, nil
}

func (stubReviews) Update(context.Context, model.UpdateReviewInput) (model.ReviewResult, error) {
	return model.ReviewResult{}, nil
}

func (stubReviews) Delete(context.Context, model.ReviewIDInput) (model.DeletedResult, error) {
	return model.DeletedResult{}, nil
}

type stubImages struct{}

func (stubImages) PresignedURL(context.Context, model.PresignedURLInput) (model.PresignedURLResult, error) {
	return model.PresignedURLResult{Message: "upload url created", URL: "https://s3/x", Key: "products/x.png"}, nil
}

type stubPayments struct{}

func (stubPayments) CheckoutProduct(context.Context, model.CheckoutProductInput) (model.CheckoutResult, error) {
	return model.CheckoutResult{Message: "checkout session created", URL: "https://checkout/1"}, nil
}

var testSession = config.Session{Secret: "test-secret", Issuer: "storefront-test", CookieName: "session"}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	dir := t.TempDir()
	for _, name := range []string{"index.html", "cart.html", "login.html", "product.html"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("<html>"+name+"</html>"), 0o644))
	}

	services := Services{
		Products: stubProducts{get: func(_ context.Context, in model.ProductIDInput) (model.ProductResult, error) {
			if in.ID == "missing" {
				return model.ProductResult{}, apperr.NotFoundf("product not found")
			}
			return model.ProductResult{Message: "product fetched", Product: model.Product{ID: in.ID, Title: "Lamp"}}, nil
		}},
		Carts:    stubCarts{},
		Reviews:  stubReviews{},
		Images:   stubImages{},
		Payments: stubPayments{},
	}
	return NewHandler(services, auth.NewSessions(testSession), dir, logger.Discard())
}

func signedToken(t *testing.T) string {
	t.Helper()
	tok, err := auth.NewSessions(testSession).Issue(model.Identity{ID: "alice", Email: "alice@example.com"}, time.Hour)
	require.NoError(t, err)
	return tok
}

func queryURL(procedure, input string) string {
	u := RPCPrefix + procedure
	if input != "" {
		u += "?input=" + url.QueryEscape(input)
	}
	return u
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestQuerySuccess(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, queryURL("product.get", `{"id":"p1"}`), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	body := decodeBody(t, rec)
	assert.Equal(t, "product fetched", body["message"])
	assert.Equal(t, "Lamp", body["product"].(map[string]any)["title"])
}

func TestQueryWithoutInput(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, queryURL("product.getFeatured", ""), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["products"], 1)
}

func TestErrorMapping(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name    string
		req     *http.Request
		status  int
		code    string
		message string
	}{
		{
			name:    "not found",
			req:     httptest.NewRequest(http.MethodGet, queryURL("product.get", `{"id":"missing"}`), nil),
			status:  http.StatusNotFound,
			code:    "NOT_FOUND",
			message: "product not found",
		},
		{
			name:    "unknown procedure",
			req:     httptest.NewRequest(http.MethodGet, queryURL("product.fly", ""), nil),
			status:  http.StatusNotFound,
			code:    "NOT_FOUND",
			message: `unknown procedure "product.fly"`,
		},
		{
			name:    "unauthenticated",
			req:     httptest.NewRequest(http.MethodGet, queryURL("cart.get", ""), nil),
			status:  http.StatusUnauthorized,
			code:    "UNAUTHORIZED",
			message: "sign in required",
		},
		{
			name:    "business rule",
			req:     httptest.NewRequest(http.MethodPost, RPCPrefix+"cart.addToCart", strings.NewReader(`{"productId":"p1","quantity":1}`)),
			status:  http.StatusBadRequest,
			code:    "BAD_REQUEST",
			message: "product already in cart",
		},
		{
			name:    "unknown field",
			req:     httptest.NewRequest(http.MethodPost, RPCPrefix+"product.delete", strings.NewReader(`{"id":"p1","force":true}`)),
			status:  http.StatusBadRequest,
			code:    "BAD_REQUEST",
			message: "invalid input",
		},
		{
			name:    "malformed query input",
			req:     httptest.NewRequest(http.MethodGet, queryURL("product.get", `{"id":`), nil),
			status:  http.StatusBadRequest,
			code:    "BAD_REQUEST",
			message: "invalid input",
		},
		{
			name:    "internal cause is hidden",
			req:     httptest.NewRequest(http.MethodPost, RPCPrefix+"product.create", strings.NewReader(`{}`)),
			status:  http.StatusInternalServerError,
			code:    "INTERNAL",
			message: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, tt.req)

			require.Equal(t, tt.status, rec.Code)
			errBody, ok := decodeBody(t, rec)["error"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tt.code, errBody["code"])
			assert.Equal(t, tt.message, errBody["message"])
		})
	}
}

func TestKindMismatch(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, RPCPrefix+"product.get", strings.NewReader(`{"id":"p1"}`)))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, queryURL("product.delete", `{"id":"p1"}`), nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestSessionReachesService(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, queryURL("cart.get", ""), nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decodeBody(t, rec)["cart"].(map[string]any)["userId"])
}

func TestGuardedPages(t *testing.T) {
	h := newTestHandler(t)

	t.Run("anonymous visitor is sent to login", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login?next=%2Fcart", rec.Header().Get("Location"))
	})

	t.Run("signed in visitor sees the page", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: signedToken(t)})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "cart.html")
	})

	t.Run("signed in visitor skips login", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: signedToken(t)})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("public pages", func(t *testing.T) {
		for _, path := range []string{"/", "/products/p1"} {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, rec.Code, path)
		}
	})
}
