package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/asquebay/simple-storefront/internal/model"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	productID = "0f6b2f8e-4d1c-4a57-9b9e-2c5f1d7e8a10"
	otherID   = "5a1e9d3c-7b2f-4c8a-8e6d-1f0b3a2c4d5e"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func productRows(ps ...model.Product) *pgxmock.Rows {
	rows := pgxmock.NewRows(productColumns)
	for _, p := range ps {
		rows.AddRow(p.ID, p.UserID, p.Title, p.Description, p.Price, p.Currency, p.ImageKey, p.PriceID, p.CreatedAt, p.UpdatedAt)
	}
	return rows
}

func sampleProduct(id string, created time.Time) model.Product {
	return model.Product{
		ID: id, UserID: "user-1", Title: "Desk lamp", Description: "warm light",
		Price: 2500, Currency: "usd", ImageKey: "img/" + id, PriceID: "price_1",
		CreatedAt: created, UpdatedAt: created,
	}
}

func TestGetProduct(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	want := sampleProduct(productID, time.Now().UTC())

	mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \$1`).
		WithArgs(productID).
		WillReturnRows(productRows(want))

	got, err := repo.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery(`FROM products WHERE id = \$1`).
		WithArgs(productID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetProduct(context.Background(), productID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListProductsPaginates(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	now := time.Now().UTC().Truncate(time.Microsecond)
	first := sampleProduct(productID, now)
	second := sampleProduct(otherID, now.Add(-time.Minute))

	mock.ExpectQuery(`SELECT (.+) FROM products WHERE title ILIKE \$1 ORDER BY created_at DESC, id DESC LIMIT 2`).
		WithArgs(`%50\%%`).
		WillReturnRows(productRows(first, second))

	products, next, err := repo.ListProducts(context.Background(), model.ProductFilter{
		Query: "50%",
		Page:  model.Page{Limit: 1},
	})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, productID, products[0].ID)
	require.NotEmpty(t, next)

	c, err := decodeCursor(next)
	require.NoError(t, err)
	assert.Equal(t, productID, c.ID)
	assert.True(t, now.Equal(c.CreatedAt))

	// вторая страница уходит с курсором в условии
	mock.ExpectQuery(`WHERE \(created_at, id\) < \(\$1, \$2\)`).
		WithArgs(pgxmock.AnyArg(), productID).
		WillReturnRows(productRows(second))

	products, next, err = repo.ListProducts(context.Background(), model.ProductFilter{Page: model.Page{Cursor: next, Limit: 1}})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, otherID, products[0].ID)
	assert.Empty(t, next)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListProductsRejectsBadCursor(t *testing.T) {
	repo := NewProductRepository(newMock(t))
	_, _, err := repo.ListProducts(context.Background(), model.ProductFilter{Page: model.Page{Cursor: "%%%"}})
	require.ErrorIs(t, err, ErrInvalidCursor)
}

func TestAutocompleteUsesPrefix(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery(`SELECT id, title FROM products WHERE title ILIKE \$1 ORDER BY title ASC LIMIT 5`).
		WithArgs("des%").
		WillReturnRows(pgxmock.NewRows([]string{"id", "title"}).AddRow(productID, "Desk lamp"))

	got, err := repo.Autocomplete(context.Background(), "des", 5)
	require.NoError(t, err)
	assert.Equal(t, []model.Suggestion{{ID: productID, Title: "Desk lamp"}}, got)
}

func TestUpdateProductBuildsPartialSet(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	title := "Floor lamp"
	updated := sampleProduct(productID, time.Now().UTC())
	updated.Title = title

	mock.ExpectQuery(`UPDATE products SET updated_at = now\(\), title = \$1 WHERE id = \$2 RETURNING`).
		WithArgs(title, productID).
		WillReturnRows(productRows(updated))

	got, err := repo.UpdateProduct(context.Background(), productID, model.ProductPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProductMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).
		WithArgs(productID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.DeleteProduct(context.Background(), productID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateProductPropagatesDriverError(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	boom := errors.New("connection reset")

	mock.ExpectQuery(`INSERT INTO products`).WillReturnError(boom)

	_, err := repo.CreateProduct(context.Background(), sampleProduct(productID, time.Now()))
	require.ErrorIs(t, err, boom)
}

func TestMigrateAppliesSchema(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS products`).WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, Migrate(context.Background(), mock))
	require.NoError(t, mock.ExpectationsWereMet())
}
