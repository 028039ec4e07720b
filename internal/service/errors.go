package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/asquebay/simple-storefront/internal/auth"
	"github.com/asquebay/simple-storefront/internal/lib/apperr"
	"github.com/asquebay/simple-storefront/internal/model"
	"github.com/asquebay/simple-storefront/internal/repository/postgres"
)

// requireIdentity возвращает пользователя запроса или UNAUTHORIZED
func requireIdentity(ctx context.Context) (model.Identity, error) {
	id, ok := auth.FromContext(ctx)
	if !ok {
		return model.Identity{}, apperr.Unauthorizedf("sign in required")
	}
	return id, nil
}

// requireOwner отказывает, если пользователь не владелец записи
func requireOwner(actor model.Identity, ownerID, what string) error {
	if actor.ID != ownerID {
		return apperr.Unauthorizedf("you are not allowed to modify this %s", what)
	}
	return nil
}

// repoError переводит ошибку репозитория в ошибку с кодом
// what задаёт название сущности для сообщения клиенту
func repoError(err error, what string) error {
	switch {
	case errors.Is(err, postgres.ErrNotFound):
		return apperr.Wrap(apperr.NotFound, what+" not found", err)
	case errors.Is(err, postgres.ErrDuplicate):
		return apperr.Wrap(apperr.BadRequest, what+" already exists", err)
	case errors.Is(err, postgres.ErrInvalidCursor):
		return apperr.Wrap(apperr.BadRequest, "invalid cursor", err)
	default:
		return apperr.Internalw(err, "")
	}
}

// logFailure пишет в лог ошибки, кроме ожидаемых отказов клиенту
func logFailure(log *slog.Logger, err error) {
	if apperr.CodeOf(err) == apperr.Internal {
		log.Error("operation failed", slog.String("error", err.Error()))
		return
	}
	log.Debug("operation rejected", slog.String("error", err.Error()))
}

// fail логирует ошибку и добавляет к ней op
func fail(log *slog.Logger, op string, err error) error {
	logFailure(log, err)
	return fmt.Errorf("%s: %w", op, err)
}

// revalidate публикует событие ревалидации, сбой публикации не ломает операцию
func revalidate(ctx context.Context, pages PageRevalidator, log *slog.Logger, paths ...string) {
	if pages == nil {
		return
	}
	if err := pages.Revalidate(context.WithoutCancel(ctx), paths...); err != nil {
		log.Warn("failed to publish revalidation", slog.Any("paths", paths), slog.String("error", err.Error()))
	}
}
