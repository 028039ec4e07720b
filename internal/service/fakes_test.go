package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/asquebay/simple-storefront/internal/auth"
	"github.com/asquebay/simple-storefront/internal/model"
	"github.com/asquebay/simple-storefront/internal/repository/cache"
	"github.com/asquebay/simple-storefront/internal/repository/payments"
	"github.com/asquebay/simple-storefront/internal/repository/postgres"

	"github.com/google/uuid"
)

// in-memory реализации контрактов из interface.go

var errBoom = errors.New("boom")

func userCtx(id string) context.Context {
	return auth.WithIdentity(context.Background(), model.Identity{ID: id, Email: id + "@example.com"})
}

type fakeProducts struct {
	mu        sync.Mutex
	items     map[string]model.Product
	createErr error
	updateErr error

	// gets считает чтения товара; gate, если задан, держит чтение до закрытия
	gets atomic.Int32
	gate chan struct{}
}

func newFakeProducts(ps ...model.Product) *fakeProducts {
	f := &fakeProducts{items: map[string]model.Product{}}
	for _, p := range ps {
		f.items[p.ID] = p
	}
	return f
}

func (f *fakeProducts) CreateProduct(_ context.Context, p model.Product) (model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return model.Product{}, f.createErr
	}
	f.items[p.ID] = p
	return p, nil
}

func (f *fakeProducts) GetProduct(_ context.Context, id string) (model.Product, error) {
	f.gets.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return model.Product{}, postgres.ErrNotFound
	}
	return p, nil
}

func (f *fakeProducts) ListProducts(_ context.Context, _ model.ProductFilter) ([]model.Product, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Product, 0, len(f.items))
	for _, p := range f.items {
		out = append(out, p)
	}
	return out, "", nil
}

func (f *fakeProducts) Autocomplete(_ context.Context, _ string, limit int) ([]model.Suggestion, error) {
	return make([]model.Suggestion, 0, limit), nil
}

func (f *fakeProducts) Featured(ctx context.Context, limit int) ([]model.Product, error) {
	ps, _, err := f.ListProducts(ctx, model.ProductFilter{})
	if len(ps) > limit {
		ps = ps[:limit]
	}
	return ps, err
}

func (f *fakeProducts) UpdateProduct(_ context.Context, id string, patch model.ProductPatch) (model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return model.Product{}, f.updateErr
	}
	p, ok := f.items[id]
	if !ok {
		return model.Product{}, postgres.ErrNotFound
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.ImageKey != nil {
		p.ImageKey = *patch.ImageKey
	}
	if patch.PriceID != nil {
		p.PriceID = *patch.PriceID
	}
	f.items[id] = p
	return p, nil
}

func (f *fakeProducts) DeleteProduct(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return postgres.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeProducts) has(id string) bool {
	_, err := f.GetProduct(context.Background(), id)
	return err == nil
}

type fakeImages struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (f *fakeImages) PresignUpload(_ context.Context, contentType string) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	key := "products/" + uuid.NewString()
	return "https://storage.example.com/" + key + "?sig=1", key, nil
}

func (f *fakeImages) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

type fakePrices struct {
	mu       sync.Mutex
	created  []string
	archived []string
	err      error
}

func (f *fakePrices) CreatePrice(_ context.Context, _ string, _ int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	id := "price_" + uuid.NewString()[:8]
	f.created = append(f.created, id)
	return id, nil
}

func (f *fakePrices) ArchivePrice(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.archived = append(f.archived, id)
	return nil
}

type fakePages struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (f *fakePages) Revalidate(_ context.Context, paths ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.paths = append(f.paths, paths...)
	return nil
}

type fakeCheckout struct {
	last payments.Checkout
	err  error
}

func (f *fakeCheckout) CreateCheckoutSession(_ context.Context, c payments.Checkout) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.last = c
	return "https://checkout.example.com/s/1", nil
}

type fakeCarts struct {
	mu    sync.Mutex
	carts map[string]string // user -> cart
	items map[string]model.CartItem
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{carts: map[string]string{}, items: map[string]model.CartItem{}}
}

func (f *fakeCarts) EnsureCart(_ context.Context, userID string) (model.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.carts[userID]
	if !ok {
		id = uuid.NewString()
		f.carts[userID] = id
	}
	return model.Cart{ID: id, UserID: userID, Items: []model.CartItem{}}, nil
}

func (f *fakeCarts) GetOrCreateCart(ctx context.Context, userID string) (model.Cart, error) {
	cart, _ := f.EnsureCart(ctx, userID)
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.CartID == cart.ID {
			cart.Items = append(cart.Items, it)
		}
	}
	return cart, nil
}

func (f *fakeCarts) GetCartItem(_ context.Context, itemID string) (model.CartItem, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[itemID]
	if !ok {
		return model.CartItem{}, "", postgres.ErrNotFound
	}
	for user, cart := range f.carts {
		if cart == it.CartID {
			return it, user, nil
		}
	}
	return model.CartItem{}, "", postgres.ErrNotFound
}

func (f *fakeCarts) FindCartItemByProduct(_ context.Context, cartID, productID string) (model.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.CartID == cartID && it.ProductID == productID {
			return it, nil
		}
	}
	return model.CartItem{}, postgres.ErrNotFound
}

func (f *fakeCarts) AddCartItem(_ context.Context, item model.CartItem) (model.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.CartID == item.CartID && it.ProductID == item.ProductID {
			return model.CartItem{}, postgres.ErrDuplicate
		}
	}
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeCarts) UpdateCartItemQuantity(_ context.Context, itemID string, quantity int) (model.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[itemID]
	if !ok {
		return model.CartItem{}, postgres.ErrNotFound
	}
	it.Quantity = quantity
	f.items[itemID] = it
	return it, nil
}

func (f *fakeCarts) DeleteCartItem(_ context.Context, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[itemID]; !ok {
		return postgres.ErrNotFound
	}
	delete(f.items, itemID)
	return nil
}

type fakeReviews struct {
	mu    sync.Mutex
	items map[string]model.Review
}

func newFakeReviews() *fakeReviews {
	return &fakeReviews{items: map[string]model.Review{}}
}

func (f *fakeReviews) ListReviews(_ context.Context, productID string, _ model.Page) ([]model.Review, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Review{}
	for _, r := range f.items {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, "", nil
}

func (f *fakeReviews) GetReview(_ context.Context, id string) (model.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return model.Review{}, postgres.ErrNotFound
	}
	return r, nil
}

func (f *fakeReviews) CreateReview(_ context.Context, rv model.Review) (model.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[rv.ID] = rv
	return rv, nil
}

func (f *fakeReviews) UpdateReview(_ context.Context, id string, patch model.ReviewPatch) (model.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return model.Review{}, postgres.ErrNotFound
	}
	if patch.Rating != nil {
		r.Rating = *patch.Rating
	}
	if patch.Content != nil {
		r.Content = *patch.Content
	}
	f.items[id] = r
	return r, nil
}

func (f *fakeReviews) DeleteReview(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return postgres.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func newCache() *cache.ProductCache { return cache.NewProductCache() }
