package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/asquebay/simple-storefront/internal/lib/apperr"
	"github.com/asquebay/simple-storefront/internal/model"
	"github.com/asquebay/simple-storefront/internal/repository/postgres"

	"github.com/google/uuid"
)

// CartService инкапсулирует бизнес-логику корзины
type CartService struct {
	carts    CartRepository
	products ProductReader
	log      *slog.Logger
}

// NewCartService создаёт новый экземпляр сервиса корзины
func NewCartService(carts CartRepository, products ProductReader, log *slog.Logger) *CartService {
	return &CartService{carts: carts, products: products, log: log}
}

// Get возвращает корзину пользователя со всеми позициями
func (s *CartService) Get(ctx context.Context) (model.CartResult, error) {
	const op = "service.CartService.Get"
	log := s.log.With(slog.String("op", op))

	actor, err := requireIdentity(ctx)
	if err != nil {
		return model.CartResult{}, fail(log, op, err)
	}

	cart, err := s.carts.GetOrCreateCart(ctx, actor.ID)
	if err != nil {
		return model.CartResult{}, fail(log, op, repoError(err, "cart"))
	}
	return model.CartResult{Message: "cart fetched", Cart: cart}, nil
}

// GetProduct возвращает позицию корзины с данным товаром или nil
func (s *CartService) GetProduct(ctx context.Context, in model.CartProductInput) (model.CartItemResult, error) {
	const op = "service.CartService.GetProduct"
	log := s.log.With(slog.String("op", op), slog.String("product_id", in.ProductID))

	actor, err := requireIdentity(ctx)
	if err != nil {
		return model.CartItemResult{}, fail(log, op, err)
	}
	if err := model.Validate(in); err != nil {
		return model.CartItemResult{}, fail(log, op, err)
	}

	cart, err := s.carts.EnsureCart(ctx, actor.ID)
	if err != nil {
		return model.CartItemResult{}, fail(log, op, repoError(err, "cart"))
	}

	item, err := s.carts.FindCartItemByProduct(ctx, cart.ID, in.ProductID)
	if errors.Is(err, postgres.ErrNotFound) {
		return model.CartItemResult{Message: "product is not in cart"}, nil
	}
	if err != nil {
		return model.CartItemResult{}, fail(log, op, repoError(err, "cart item"))
	}
	return model.CartItemResult{Message: "product is in cart", Item: &item}, nil
}

// AddToCart добавляет товар в корзину
// повторное добавление отклоняется: количество меняется через UpdateQuantity
func (s *CartService) AddToCart(ctx context.Context, in model.AddToCartInput) (model.CartItemResult, error) {
	const op = "service.CartService.AddToCart"
	log := s.log.With(slog.String("op", op), slog.String("product_id", in.ProductID))

	actor, err := requireIdentity(ctx)
	if err != nil {
		return model.CartItemResult{}, fail(log, op, err)
	}
	if err := model.Validate(in); err != nil {
		return model.CartItemResult{}, fail(log, op, err)
	}

	product, err := s.products.GetProduct(ctx, in.ProductID)
	if err != nil {
		return model.CartItemResult{}, fail(log, op, repoError(err, "product"))
	}

	cart, err := s.carts.EnsureCart(ctx, actor.ID)
	if err != nil {
		return model.CartItemResult{}, fail(log, op, repoError(err, "cart"))
	}

	item, err := s.carts.AddCartItem(ctx, model.CartItem{
		ID:        uuid.NewString(),
		CartID:    cart.ID,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
	})
	if errors.Is(err, postgres.ErrDuplicate) {
		return model.CartItemResult{}, fail(log, op, apperr.Wrap(apperr.BadRequest, "product already in cart", err))
	}
	if err != nil {
		return model.CartItemResult{}, fail(log, op, repoError(err, "cart item"))
	}
	item.Product = &product

	log.Info("product added to cart", slog.String("item_id", item.ID))
	return model.CartItemResult{Message: "product added to cart", Item: &item}, nil
}

// UpdateQuantity меняет количество товара в позиции корзины
func (s *CartService) UpdateQuantity(ctx context.Context, in model.UpdateQuantityInput) (model.CartItemResult, error) {
	const op = "service.CartService.UpdateQuantity"
	log := s.log.With(slog.String("op", op), slog.String("item_id", in.ItemID))

	if _, err := s.ownedItem(ctx, log, op, in, in.ItemID); err != nil {
		return model.CartItemResult{}, err
	}

	item, err := s.carts.UpdateCartItemQuantity(ctx, in.ItemID, in.Quantity)
	if err != nil {
		return model.CartItemResult{}, fail(log, op, repoError(err, "cart item"))
	}

	log.Info("cart item quantity updated", slog.Int("quantity", item.Quantity))
	return model.CartItemResult{Message: "quantity updated", Item: &item}, nil
}

// DeleteFromCart удаляет позицию из корзины
func (s *CartService) DeleteFromCart(ctx context.Context, in model.CartItemIDInput) (model.DeletedResult, error) {
	const op = "service.CartService.DeleteFromCart"
	log := s.log.With(slog.String("op", op), slog.String("item_id", in.ItemID))

	if _, err := s.ownedItem(ctx, log, op, in, in.ItemID); err != nil {
		return model.DeletedResult{}, err
	}

	if err := s.carts.DeleteCartItem(ctx, in.ItemID); err != nil {
		return model.DeletedResult{}, fail(log, op, repoError(err, "cart item"))
	}

	log.Info("cart item deleted")
	return model.DeletedResult{Message: "product removed from cart", ID: in.ItemID}, nil
}

// ownedItem проверяет пользователя, вход и то, что позиция лежит в его корзине
func (s *CartService) ownedItem(ctx context.Context, log *slog.Logger, op string, in any, itemID string) (model.CartItem, error) {
	actor, err := requireIdentity(ctx)
	if err != nil {
		return model.CartItem{}, fail(log, op, err)
	}
	if err := model.Validate(in); err != nil {
		return model.CartItem{}, fail(log, op, err)
	}

	item, owner, err := s.carts.GetCartItem(ctx, itemID)
	if err != nil {
		return model.CartItem{}, fail(log, op, repoError(err, "cart item"))
	}
	if err := requireOwner(actor, owner, "cart item"); err != nil {
		return model.CartItem{}, fail(log, op, err)
	}
	return item, nil
}
