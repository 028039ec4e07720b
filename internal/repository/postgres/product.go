package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/asquebay/simple-storefront/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

const (
	defaultProductLimit = 12
	maxProductLimit     = 50
)

var productColumns = []string{
	"id", "user_id", "title", "description", "price", "currency",
	"image_key", "price_id", "created_at", "updated_at",
}

// ProductRepository инкапсулирует логику работы с товарами в БД
type ProductRepository struct {
	db DB
	sq squirrel.StatementBuilderType
}

// NewProductRepository создает новый экземпляр репозитория
func NewProductRepository(db DB) *ProductRepository {
	return &ProductRepository{db: db, sq: builder()}
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.UserID, &p.Title, &p.Description, &p.Price, &p.Currency,
		&p.ImageKey, &p.PriceID, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// CreateProduct сохраняет товар, идентификатор назначает вызывающий
func (r *ProductRepository) CreateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	const op = "repository.postgres.product.CreateProduct"

	sql, args, err := r.sq.Insert("products").
		Columns("id", "user_id", "title", "description", "price", "currency", "image_key", "price_id").
		Values(p.ID, p.UserID, p.Title, p.Description, p.Price, p.Currency, p.ImageKey, p.PriceID).
		Suffix("RETURNING " + strings.Join(productColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Product{}, fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	created, err := scanProduct(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return model.Product{}, fmt.Errorf("%s: failed to insert product: %w", op, translate(err))
	}
	return created, nil
}

// GetProduct извлекает товар по идентификатору
func (r *ProductRepository) GetProduct(ctx context.Context, id string) (model.Product, error) {
	const op = "repository.postgres.product.GetProduct"

	sql, args, err := r.sq.Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Product{}, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	p, err := scanProduct(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return model.Product{}, fmt.Errorf("%s: %w", op, translate(err))
	}
	return p, nil
}

// ListProducts возвращает страницу товаров от новых к старым и курсор следующей страницы
func (r *ProductRepository) ListProducts(ctx context.Context, f model.ProductFilter) ([]model.Product, string, error) {
	const op = "repository.postgres.product.ListProducts"

	limit := normalizeLimit(f.Limit, defaultProductLimit, maxProductLimit)
	q := r.sq.Select(productColumns...).
		From("products").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit + 1)) // лишняя строка говорит о наличии следующей страницы

	if f.Query != "" {
		q = q.Where(squirrel.ILike{"title": "%" + escapeLike(f.Query) + "%"})
	}
	if f.Cursor != "" {
		c, err := decodeCursor(f.Cursor)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", op, err)
		}
		q = q.Where(squirrel.Expr("(created_at, id) < (?, ?)", c.CreatedAt, c.ID))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, "", fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	products, err := r.queryProducts(ctx, sql, args)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	var next string
	if len(products) > limit {
		products = products[:limit]
		last := products[limit-1]
		next = cursor{CreatedAt: last.CreatedAt, ID: last.ID}.encode()
	}
	return products, next, nil
}

// Autocomplete ищет товары по префиксу названия без учёта регистра
func (r *ProductRepository) Autocomplete(ctx context.Context, prefix string, limit int) ([]model.Suggestion, error) {
	const op = "repository.postgres.product.Autocomplete"

	sql, args, err := r.sq.Select("id", "title").
		From("products").
		Where(squirrel.ILike{"title": escapeLike(prefix) + "%"}).
		OrderBy("title ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query suggestions: %w", op, err)
	}
	defer rows.Close()

	suggestions := []model.Suggestion{}
	for rows.Next() {
		var s model.Suggestion
		if err := rows.Scan(&s.ID, &s.Title); err != nil {
			return nil, fmt.Errorf("%s: failed to scan suggestion: %w", op, err)
		}
		suggestions = append(suggestions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return suggestions, nil
}

// Featured возвращает самые новые товары
func (r *ProductRepository) Featured(ctx context.Context, limit int) ([]model.Product, error) {
	const op = "repository.postgres.product.Featured"

	sql, args, err := r.sq.Select(productColumns...).
		From("products").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	products, err := r.queryProducts(ctx, sql, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

// UpdateProduct применяет патч и возвращает обновлённый товар
func (r *ProductRepository) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (model.Product, error) {
	const op = "repository.postgres.product.UpdateProduct"

	if patch.Empty() {
		return r.GetProduct(ctx, id)
	}

	q := r.sq.Update("products").
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(productColumns, ", "))
	if patch.Title != nil {
		q = q.Set("title", *patch.Title)
	}
	if patch.Description != nil {
		q = q.Set("description", *patch.Description)
	}
	if patch.Price != nil {
		q = q.Set("price", *patch.Price)
	}
	if patch.ImageKey != nil {
		q = q.Set("image_key", *patch.ImageKey)
	}
	if patch.PriceID != nil {
		q = q.Set("price_id", *patch.PriceID)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return model.Product{}, fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	p, err := scanProduct(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return model.Product{}, fmt.Errorf("%s: %w", op, translate(err))
	}
	return p, nil
}

// DeleteProduct удаляет товар, позиции корзин и отзывы удаляются каскадно
func (r *ProductRepository) DeleteProduct(ctx context.Context, id string) error {
	const op = "repository.postgres.product.DeleteProduct"

	sql, args, err := r.sq.Delete("products").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build delete query: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to delete product: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func (r *ProductRepository) queryProducts(ctx context.Context, sql string, args []any) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}
