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
	defaultReviewLimit = 10
	maxReviewLimit     = 50
)

var reviewColumns = []string{"id", "product_id", "user_id", "rating", "content", "created_at", "updated_at"}

// ReviewRepository инкапсулирует логику работы с отзывами в БД
type ReviewRepository struct {
	db DB
	sq squirrel.StatementBuilderType
}

// NewReviewRepository создает новый экземпляр репозитория
func NewReviewRepository(db DB) *ReviewRepository {
	return &ReviewRepository{db: db, sq: builder()}
}

func scanReview(row pgx.Row) (model.Review, error) {
	var rv model.Review
	err := row.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Content, &rv.CreatedAt, &rv.UpdatedAt)
	return rv, err
}

// ListReviews возвращает страницу отзывов о товаре от новых к старым
func (r *ReviewRepository) ListReviews(ctx context.Context, productID string, page model.Page) ([]model.Review, string, error) {
	const op = "repository.postgres.review.ListReviews"

	limit := normalizeLimit(page.Limit, defaultReviewLimit, maxReviewLimit)
	q := r.sq.Select(reviewColumns...).
		From("reviews").
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit + 1))

	if page.Cursor != "" {
		c, err := decodeCursor(page.Cursor)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", op, err)
		}
		q = q.Where(squirrel.Expr("(created_at, id) < (?, ?)", c.CreatedAt, c.ID))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, "", fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, "", fmt.Errorf("%s: failed to query reviews: %w", op, err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, "", fmt.Errorf("%s: failed to scan review row: %w", op, err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	var next string
	if len(reviews) > limit {
		reviews = reviews[:limit]
		last := reviews[limit-1]
		next = cursor{CreatedAt: last.CreatedAt, ID: last.ID}.encode()
	}
	return reviews, next, nil
}

// GetReview извлекает отзыв по идентификатору
func (r *ReviewRepository) GetReview(ctx context.Context, id string) (model.Review, error) {
	const op = "repository.postgres.review.GetReview"

	sql, args, err := r.sq.Select(reviewColumns...).From("reviews").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return model.Review{}, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	rv, err := scanReview(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return model.Review{}, fmt.Errorf("%s: %w", op, translate(err))
	}
	return rv, nil
}

// CreateReview сохраняет отзыв; отсутствующий товар даёт ErrNotFound
func (r *ReviewRepository) CreateReview(ctx context.Context, rv model.Review) (model.Review, error) {
	const op = "repository.postgres.review.CreateReview"

	sql, args, err := r.sq.Insert("reviews").
		Columns("id", "product_id", "user_id", "rating", "content").
		Values(rv.ID, rv.ProductID, rv.UserID, rv.Rating, rv.Content).
		Suffix("RETURNING " + strings.Join(reviewColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Review{}, fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	created, err := scanReview(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return model.Review{}, fmt.Errorf("%s: failed to insert review: %w", op, translate(err))
	}
	return created, nil
}

// UpdateReview применяет патч к отзыву
func (r *ReviewRepository) UpdateReview(ctx context.Context, id string, patch model.ReviewPatch) (model.Review, error) {
	const op = "repository.postgres.review.UpdateReview"

	if patch.Empty() {
		return r.GetReview(ctx, id)
	}

	q := r.sq.Update("reviews").
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(reviewColumns, ", "))
	if patch.Rating != nil {
		q = q.Set("rating", *patch.Rating)
	}
	if patch.Content != nil {
		q = q.Set("content", *patch.Content)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return model.Review{}, fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	rv, err := scanReview(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return model.Review{}, fmt.Errorf("%s: %w", op, translate(err))
	}
	return rv, nil
}

// DeleteReview удаляет отзыв
func (r *ReviewRepository) DeleteReview(ctx context.Context, id string) error {
	const op = "repository.postgres.review.DeleteReview"

	sql, args, err := r.sq.Delete("reviews").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build delete query: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to delete review: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
