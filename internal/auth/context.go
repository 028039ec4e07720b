// Package auth связывает запрос с пользователем и содержит охранники маршрутов
package auth

import (
	"context"

	"github.com/asquebay/simple-storefront/internal/model"
)

type ctxKey struct{}

// WithIdentity кладёт пользователя в контекст запроса
func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext достаёт пользователя; false означает анонимный запрос
func FromContext(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(model.Identity)
	if !ok || !id.Authenticated() {
		return model.Identity{}, false
	}
	return id, true
}
