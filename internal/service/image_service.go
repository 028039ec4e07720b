package service

import (
	"context"
	"log/slog"

	"github.com/asquebay/simple-storefront/internal/lib/apperr"
	"github.com/asquebay/simple-storefront/internal/model"
)

// ImageService выдаёт ссылки для прямой загрузки изображений в хранилище
type ImageService struct {
	images ImageStore
	log    *slog.Logger
}

func NewImageService(images ImageStore, log *slog.Logger) *ImageService {
	return &ImageService{images: images, log: log}
}

// PresignedURL возвращает подписанную ссылку на загрузку и ключ будущего объекта
func (s *ImageService) PresignedURL(ctx context.Context, in model.PresignedURLInput) (model.PresignedURLResult, error) {
	const op = "service.ImageService.PresignedURL"
	log := s.log.With(slog.String("op", op))

	actor, err := requireIdentity(ctx)
	if err != nil {
		return model.PresignedURLResult{}, fail(log, op, err)
	}
	if err := model.Validate(in); err != nil {
		return model.PresignedURLResult{}, fail(log, op, err)
	}

	url, key, err := s.images.PresignUpload(ctx, in.ContentType)
	if err != nil {
		return model.PresignedURLResult{}, fail(log, op, apperr.Internalw(err, "failed to presign upload"))
	}

	log.Info("upload url issued", slog.String("user_id", actor.ID), slog.String("image_key", key))
	return model.PresignedURLResult{Message: "upload url created", URL: url, Key: key}, nil
}
