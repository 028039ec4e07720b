// Package storefront — клиентские операции витрины: запросы через кэш
// и оптимистичные мутации корзины, товаров и отзывов
package storefront

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/asquebay/simple-storefront/internal/client/optimistic"
	"github.com/asquebay/simple-storefront/internal/client/querycache"
	"github.com/asquebay/simple-storefront/internal/model"
)

// имена процедур
const (
	procProductGet          = "product.get"
	procProductGetAll       = "product.getAll"
	procProductFeatured     = "product.getFeatured"
	procProductAutocomplete = "product.getAutocomplete"
	procProductUpdate       = "product.update"
	procCartGet             = "cart.get"
	procCartGetProduct      = "cart.getProduct"
	procCartAdd             = "cart.addToCart"
	procCartUpdateQuantity  = "cart.updateQuantity"
	procCartDelete          = "cart.deleteFromCart"
	procReviewList          = "review.getForProduct"
	procReviewCreate        = "review.create"
	procReviewUpdate        = "review.update"
	procReviewDelete        = "review.delete"
)

// Gateway вызывает процедуры сервера; *rpc.Client его реализует
type Gateway interface {
	Query(ctx context.Context, procedure string, input, out any) error
	Mutate(ctx context.Context, procedure string, input, out any) error
}

// Client связывает шлюз RPC и кэш запросов
type Client struct {
	gw       Gateway
	cache    *querycache.Store
	log      *slog.Logger

	mu       sync.RWMutex
	observer func(optimistic.Event)
}

func New(gw Gateway, cache *querycache.Store, log *slog.Logger) *Client {
	return &Client{gw: gw, cache: cache, log: log}
}

// OnPhase подписывает fn на смену фаз всех мутаций клиента, в том числе уже идущих
// можно вызывать одновременно с мутациями; nil отписывает
func (c *Client) OnPhase(fn func(optimistic.Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = fn
}

func (c *Client) notify(ev optimistic.Event) {
	c.mu.RLock()
	fn := c.observer
	c.mu.RUnlock()
	if fn != nil {
		fn(ev)
	}
}

// Cache возвращает кэш запросов клиента
func (c *Client) Cache() *querycache.Store {
	return c.cache
}

// ключи кэша

func CartKey() querycache.Key {
	return querycache.MustKeyFor(procCartGet, nil)
}

func CartProductKey(productID string) querycache.Key {
	return querycache.MustKeyFor(procCartGetProduct, model.CartProductInput{ProductID: productID})
}

func ProductKey(id string) querycache.Key {
	return querycache.MustKeyFor(procProductGet, model.ProductIDInput{ID: id})
}

// ReviewsKey — первая страница отзывов о товаре
func ReviewsKey(productID string) querycache.Key {
	return querycache.MustKeyFor(procReviewList, model.ReviewListInput{ProductID: productID})
}

// fetch читает значение через кэш и приводит его к типу T
func fetch[T any](ctx context.Context, c *Client, key querycache.Key, fetcher querycache.Fetcher) (T, error) {
	var zero T
	v, err := c.cache.Fetch(ctx, key, fetcher)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("storefront: unexpected cached value %T for %s", v, key)
	}
	return typed, nil
}

// mutation заполняет общие поля оптимистичной мутации
func mutation[In, Out any](c *Client, name string, send func(context.Context, In) (Out, error)) *optimistic.Mutation[In, Out] {
	return &optimistic.Mutation[In, Out]{
		Name:     name,
		Cache:    c.cache,
		Send:     send,
		Observer: c.notify,
		Log:      c.log,
	}
}

func (c *Client) cartFetcher() querycache.Fetcher {
	return func(ctx context.Context) (any, error) {
		var res model.CartResult
		if err := c.gw.Query(ctx, procCartGet, nil, &res); err != nil {
			return nil, err
		}
		return res.Cart, nil
	}
}

func (c *Client) cartProductFetcher(productID string) querycache.Fetcher {
	return func(ctx context.Context) (any, error) {
		var res model.CartItemResult
		if err := c.gw.Query(ctx, procCartGetProduct, model.CartProductInput{ProductID: productID}, &res); err != nil {
			return nil, err
		}
		return res.Item, nil
	}
}

func (c *Client) productFetcher(id string) querycache.Fetcher {
	return func(ctx context.Context) (any, error) {
		var res model.ProductResult
		if err := c.gw.Query(ctx, procProductGet, model.ProductIDInput{ID: id}, &res); err != nil {
			return nil, err
		}
		return res.Product, nil
	}
}

func (c *Client) reviewsFetcher(productID string) querycache.Fetcher {
	return func(ctx context.Context) (any, error) {
		var res model.ReviewsPage
		if err := c.gw.Query(ctx, procReviewList, model.ReviewListInput{ProductID: productID}, &res); err != nil {
			return nil, err
		}
		return res.Reviews, nil
	}
}

// Cart возвращает корзину пользователя
func (c *Client) Cart(ctx context.Context) (model.Cart, error) {
	return fetch[model.Cart](ctx, c, CartKey(), c.cartFetcher())
}

// CartProduct возвращает позицию корзины с товаром или nil
func (c *Client) CartProduct(ctx context.Context, productID string) (*model.CartItem, error) {
	return fetch[*model.CartItem](ctx, c, CartProductKey(productID), c.cartProductFetcher(productID))
}

// Product возвращает карточку товара
func (c *Client) Product(ctx context.Context, id string) (model.Product, error) {
	return fetch[model.Product](ctx, c, ProductKey(id), c.productFetcher(id))
}

// Reviews возвращает первую страницу отзывов о товаре
func (c *Client) Reviews(ctx context.Context, productID string) ([]model.Review, error) {
	return fetch[[]model.Review](ctx, c, ReviewsKey(productID), c.reviewsFetcher(productID))
}

// Products ищет товары; результат не кэшируется, списки живут на странице поиска
func (c *Client) Products(ctx context.Context, in model.ProductListInput) (model.ProductsPage, error) {
	var res model.ProductsPage
	err := c.gw.Query(ctx, procProductGetAll, in, &res)
	return res, err
}

// Observe* отмечают запись как показанную: после инвалидации она перечитается в фоне

func (c *Client) ObserveCart() func() {
	return c.cache.Observe(CartKey(), c.cartFetcher())
}

func (c *Client) ObserveCartProduct(productID string) func() {
	return c.cache.Observe(CartProductKey(productID), c.cartProductFetcher(productID))
}

func (c *Client) ObserveProduct(id string) func() {
	return c.cache.Observe(ProductKey(id), c.productFetcher(id))
}

func (c *Client) ObserveReviews(productID string) func() {
	return c.cache.Observe(ReviewsKey(productID), c.reviewsFetcher(productID))
}
