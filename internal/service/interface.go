package service

import (
	"context"

	"github.com/asquebay/simple-storefront/internal/model"
	"github.com/asquebay/simple-storefront/internal/repository/payments"
)

// ProductRepository определяет контракт для хранилища товаров в БД
type ProductRepository interface {
	CreateProduct(ctx context.Context, p model.Product) (model.Product, error)
	GetProduct(ctx context.Context, id string) (model.Product, error)
	ListProducts(ctx context.Context, f model.ProductFilter) ([]model.Product, string, error)
	Autocomplete(ctx context.Context, prefix string, limit int) ([]model.Suggestion, error)
	Featured(ctx context.Context, limit int) ([]model.Product, error)
	UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// ProductReader — только чтение товара, нужно корзине, отзывам и оплате
type ProductReader interface {
	GetProduct(ctx context.Context, id string) (model.Product, error)
}

// CartRepository определяет контракт для хранилища корзин
type CartRepository interface {
	EnsureCart(ctx context.Context, userID string) (model.Cart, error)
	GetOrCreateCart(ctx context.Context, userID string) (model.Cart, error)
	GetCartItem(ctx context.Context, itemID string) (model.CartItem, string, error)
	FindCartItemByProduct(ctx context.Context, cartID, productID string) (model.CartItem, error)
	AddCartItem(ctx context.Context, item model.CartItem) (model.CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, itemID string, quantity int) (model.CartItem, error)
	DeleteCartItem(ctx context.Context, itemID string) error
}

// ReviewRepository определяет контракт для хранилища отзывов
type ReviewRepository interface {
	ListReviews(ctx context.Context, productID string, page model.Page) ([]model.Review, string, error)
	GetReview(ctx context.Context, id string) (model.Review, error)
	CreateReview(ctx context.Context, rv model.Review) (model.Review, error)
	UpdateReview(ctx context.Context, id string, patch model.ReviewPatch) (model.Review, error)
	DeleteReview(ctx context.Context, id string) error
}

// ProductCache определяет контракт для in-memory кэша карточек товаров
type ProductCache interface {
	Set(product model.Product)
	Get(id string) (model.Product, bool)
	Delete(id string)
	LoadAll(products []model.Product)
}

// ImageStore определяет контракт объектного хранилища изображений
type ImageStore interface {
	PresignUpload(ctx context.Context, contentType string) (url string, key string, err error)
	Delete(ctx context.Context, key string) error
}

// PriceRegistry определяет контракт платёжного провайдера для цен
type PriceRegistry interface {
	CreatePrice(ctx context.Context, title string, amount int64) (string, error)
	ArchivePrice(ctx context.Context, priceID string) error
}

// CheckoutProvider создаёт платёжные сессии
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, c payments.Checkout) (string, error)
}

// PageRevalidator сообщает, что страницы нужно перечитать
type PageRevalidator interface {
	Revalidate(ctx context.Context, paths ...string) error
}
