package postgres

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// cursor — позиция keyset-пагинации по (created_at, id) в порядке убывания
type cursor struct {
	CreatedAt time.Time
	ID        string
}

func (c cursor) encode() string {
	raw := strconv.FormatInt(c.CreatedAt.UnixNano(), 10) + ":" + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(s string) (cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return cursor{}, ErrInvalidCursor
	}
	ts, id, ok := strings.Cut(string(raw), ":")
	if !ok {
		return cursor{}, ErrInvalidCursor
	}
	nanos, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return cursor{}, ErrInvalidCursor
	}
	if _, err := uuid.Parse(id); err != nil {
		return cursor{}, ErrInvalidCursor
	}
	return cursor{CreatedAt: time.Unix(0, nanos).UTC(), ID: id}, nil
}
