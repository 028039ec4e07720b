package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/asquebay/simple-storefront/internal/model"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reviewID = "b1c2d3e4-f5a6-4b7c-8d9e-0f1a2b3c4d5e"

func TestListReviewsForProduct(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM reviews WHERE product_id = \$1 ORDER BY created_at DESC, id DESC LIMIT 11`).
		WithArgs(productID).
		WillReturnRows(pgxmock.NewRows(reviewColumns).AddRow(reviewID, productID, "user-2", 4, "solid", now, now))

	reviews, next, err := repo.ListReviews(context.Background(), productID, model.Page{})
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 4, reviews[0].Rating)
	assert.Empty(t, next)
}

func TestUpdateReviewMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)
	content := "changed my mind"

	mock.ExpectQuery(`UPDATE reviews SET updated_at = now\(\), content = \$1 WHERE id = \$2`).
		WithArgs(content, reviewID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.UpdateReview(context.Background(), reviewID, model.ReviewPatch{Content: &content})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateReview(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO reviews \(id,product_id,user_id,rating,content\)`).
		WithArgs(reviewID, productID, "user-2", 5, "great").
		WillReturnRows(pgxmock.NewRows(reviewColumns).AddRow(reviewID, productID, "user-2", 5, "great", now, now))

	rv, err := repo.CreateReview(context.Background(), model.Review{
		ID: reviewID, ProductID: productID, UserID: "user-2", Rating: 5, Content: "great",
	})
	require.NoError(t, err)
	assert.Equal(t, "great", rv.Content)
}
