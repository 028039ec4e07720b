package postgres

import (
	"context"
	"fmt"

	"github.com/asquebay/simple-storefront/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// колонки позиции корзины вместе с товаром
var cartItemColumns = []string{
	"ci.id", "ci.cart_id", "ci.product_id", "ci.quantity", "ci.created_at",
	"p.id", "p.user_id", "p.title", "p.description", "p.price", "p.currency",
	"p.image_key", "p.price_id", "p.created_at", "p.updated_at",
}

// CartRepository инкапсулирует логику работы с корзинами в БД
type CartRepository struct {
	db DB
	sq squirrel.StatementBuilderType
}

// NewCartRepository создает новый экземпляр репозитория
func NewCartRepository(db DB) *CartRepository {
	return &CartRepository{db: db, sq: builder()}
}

func scanCartItem(row pgx.Row) (model.CartItem, error) {
	var it model.CartItem
	var p model.Product
	err := row.Scan(
		&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.CreatedAt,
		&p.ID, &p.UserID, &p.Title, &p.Description, &p.Price, &p.Currency,
		&p.ImageKey, &p.PriceID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return model.CartItem{}, err
	}
	it.Product = &p
	return it, nil
}

// EnsureCart возвращает корзину пользователя без позиций, создавая её при первом обращении
// одна инструкция INSERT ... ON CONFLICT атомарна, гонки двух запросов нет
func (r *CartRepository) EnsureCart(ctx context.Context, userID string) (model.Cart, error) {
	const op = "repository.postgres.cart.EnsureCart"

	sql, args, err := r.sq.Insert("carts").
		Columns("id", "user_id").
		Values(uuid.NewString(), userID).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id RETURNING id, user_id").
		ToSql()
	if err != nil {
		return model.Cart{}, fmt.Errorf("%s: failed to build upsert query: %w", op, err)
	}

	var cart model.Cart
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&cart.ID, &cart.UserID); err != nil {
		return model.Cart{}, fmt.Errorf("%s: failed to upsert cart: %w", op, translate(err))
	}
	cart.Items = []model.CartItem{}
	return cart, nil
}

// GetOrCreateCart возвращает корзину пользователя вместе с позициями и товарами
func (r *CartRepository) GetOrCreateCart(ctx context.Context, userID string) (model.Cart, error) {
	const op = "repository.postgres.cart.GetOrCreateCart"

	cart, err := r.EnsureCart(ctx, userID)
	if err != nil {
		return model.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	items, err := r.ListCartItems(ctx, cart.ID)
	if err != nil {
		return model.Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	cart.Items = items
	return cart, nil
}

// ListCartItems возвращает позиции корзины в порядке добавления
func (r *CartRepository) ListCartItems(ctx context.Context, cartID string) ([]model.CartItem, error) {
	const op = "repository.postgres.cart.ListCartItems"

	sql, args, err := r.itemSelect().
		Where(squirrel.Eq{"ci.cart_id": cartID}).
		OrderBy("ci.created_at ASC", "ci.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query cart items: %w", op, err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		it, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan cart item: %w", op, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// GetCartItem возвращает позицию и идентификатор владельца корзины
func (r *CartRepository) GetCartItem(ctx context.Context, itemID string) (model.CartItem, string, error) {
	const op = "repository.postgres.cart.GetCartItem"

	sql, args, err := r.sq.Select("ci.id", "ci.cart_id", "ci.product_id", "ci.quantity", "ci.created_at", "c.user_id").
		From("cart_items ci").
		Join("carts c ON c.id = ci.cart_id").
		Where(squirrel.Eq{"ci.id": itemID}).
		ToSql()
	if err != nil {
		return model.CartItem{}, "", fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	var it model.CartItem
	var owner string
	err = r.db.QueryRow(ctx, sql, args...).Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.CreatedAt, &owner)
	if err != nil {
		return model.CartItem{}, "", fmt.Errorf("%s: %w", op, translate(err))
	}
	return it, owner, nil
}

// FindCartItemByProduct ищет позицию корзины с данным товаром
func (r *CartRepository) FindCartItemByProduct(ctx context.Context, cartID, productID string) (model.CartItem, error) {
	const op = "repository.postgres.cart.FindCartItemByProduct"

	sql, args, err := r.itemSelect().
		Where(squirrel.Eq{"ci.cart_id": cartID, "ci.product_id": productID}).
		ToSql()
	if err != nil {
		return model.CartItem{}, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	it, err := scanCartItem(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return model.CartItem{}, fmt.Errorf("%s: %w", op, translate(err))
	}
	return it, nil
}

// AddCartItem добавляет позицию; повтор пары (cart_id, product_id) даёт ErrDuplicate
func (r *CartRepository) AddCartItem(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	const op = "repository.postgres.cart.AddCartItem"

	sql, args, err := r.sq.Insert("cart_items").
		Columns("id", "cart_id", "product_id", "quantity").
		Values(item.ID, item.CartID, item.ProductID, item.Quantity).
		Suffix("RETURNING id, cart_id, product_id, quantity, created_at").
		ToSql()
	if err != nil {
		return model.CartItem{}, fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	var it model.CartItem
	err = r.db.QueryRow(ctx, sql, args...).Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.CreatedAt)
	if err != nil {
		return model.CartItem{}, fmt.Errorf("%s: failed to insert cart item: %w", op, translate(err))
	}
	return it, nil
}

// UpdateCartItemQuantity задаёт количество товара в позиции
func (r *CartRepository) UpdateCartItemQuantity(ctx context.Context, itemID string, quantity int) (model.CartItem, error) {
	const op = "repository.postgres.cart.UpdateCartItemQuantity"

	sql, args, err := r.sq.Update("cart_items").
		Set("quantity", quantity).
		Where(squirrel.Eq{"id": itemID}).
		Suffix("RETURNING id, cart_id, product_id, quantity, created_at").
		ToSql()
	if err != nil {
		return model.CartItem{}, fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	var it model.CartItem
	err = r.db.QueryRow(ctx, sql, args...).Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.CreatedAt)
	if err != nil {
		return model.CartItem{}, fmt.Errorf("%s: %w", op, translate(err))
	}
	return it, nil
}

// DeleteCartItem удаляет позицию корзины
func (r *CartRepository) DeleteCartItem(ctx context.Context, itemID string) error {
	const op = "repository.postgres.cart.DeleteCartItem"

	sql, args, err := r.sq.Delete("cart_items").Where(squirrel.Eq{"id": itemID}).ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build delete query: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to delete cart item: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func (r *CartRepository) itemSelect() squirrel.SelectBuilder {
	return r.sq.Select(cartItemColumns...).
		From("cart_items ci").
		Join("products p ON p.id = ci.product_id")
}
