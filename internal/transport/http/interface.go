package http

import (
	"context"

	"github.com/asquebay/simple-storefront/internal/model"
)

// интерфейсы сервисов, которые вызывают процедуры RPC
// хэндлер не зависит от конкретных реализаций из пакета service

type ProductService interface {
	GetAll(ctx context.Context, in model.ProductListInput) (model.ProductsPage, error)
	GetAutocomplete(ctx context.Context, in model.AutocompleteInput) (model.SuggestionsResult, error)
	GetFeatured(ctx context.Context) (model.ProductsPage, error)
	Get(ctx context.Context, in model.ProductIDInput) (model.ProductResult, error)
	Create(ctx context.Context, in model.CreateProductInput) (model.ProductResult, error)
	Update(ctx context.Context, in model.UpdateProductInput) (model.ProductResult, error)
	Delete(ctx context.Context, in model.ProductIDInput) (model.DeletedResult, error)
}

type CartService interface {
	Get(ctx context.Context) (model.CartResult, error)
	GetProduct(ctx context.Context, in model.CartProductInput) (model.CartItemResult, error)
	AddToCart(ctx context.Context, in model.AddToCartInput) (model.CartItemResult, error)
	UpdateQuantity(ctx context.Context, in model.UpdateQuantityInput) (model.CartItemResult, error)
	DeleteFromCart(ctx context.Context, in model.CartItemIDInput) (model.DeletedResult, error)
}

type ReviewService interface {
	GetForProduct(ctx context.Context, in model.ReviewListInput) (model.ReviewsPage, error)
	Create(ctx context.Context, in model.CreateReviewInput) (model.ReviewResult, error)
	Update(ctx context.Context, in model.UpdateReviewInput) (model.ReviewResult, error)
	Delete(ctx context.Context, in model.ReviewIDInput) (model.DeletedResult, error)
}

type ImageService interface {
	PresignedURL(ctx context.Context, in model.PresignedURLInput) (model.PresignedURLResult, error)
}

type PaymentService interface {
	CheckoutProduct(ctx context.Context, in model.CheckoutProductInput) (model.CheckoutResult, error)
}

// Services собирает все сервисы, нужные хэндлеру
type Services struct {
	Products ProductService
	Carts    CartService
	Reviews  ReviewService
	Images   ImageService
	Payments PaymentService
}
