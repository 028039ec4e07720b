package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	c := cursor{CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 12345, time.UTC), ID: productID}
	got, err := decodeCursor(c.encode())
	require.NoError(t, err)
	assert.True(t, c.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, c.ID, got.ID)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	for _, in := range []string{"***", "bm90LWEtY3Vyc29y", "MTIzOm5vdC1hLXV1aWQ"} {
		_, err := decodeCursor(in)
		assert.ErrorIs(t, err, ErrInvalidCursor, in)
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now`, escapeLike("50% off_now"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, 12, normalizeLimit(0, 12, 50))
	assert.Equal(t, 50, normalizeLimit(500, 12, 50))
	assert.Equal(t, 7, normalizeLimit(7, 12, 50))
}
