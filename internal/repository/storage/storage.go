package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/asquebay/simple-storefront/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// расширения файлов для допустимых типов изображений
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// objectAPI — методы клиента S3, которые нужны хранилищу
type objectAPI interface {
	PresignedPutObject(ctx context.Context, bucket, object string, expires time.Duration) (*url.URL, error)
	RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error
}

// ImageStorage хранит изображения товаров в S3-совместимом хранилище
type ImageStorage struct {
	client objectAPI
	bucket string
	ttl    time.Duration
}

// New создаёт клиент объектного хранилища
func New(cfg config.Storage) (*ImageStorage, error) {
	const op = "repository.storage.New"

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create s3 client: %w", op, err)
	}
	return newImageStorage(client, cfg.Bucket, cfg.UploadTTL), nil
}

func newImageStorage(client objectAPI, bucket string, ttl time.Duration) *ImageStorage {
	return &ImageStorage{client: client, bucket: bucket, ttl: ttl}
}

// PresignUpload выдаёт ограниченную по времени ссылку на загрузку и ключ будущего объекта
func (s *ImageStorage) PresignUpload(ctx context.Context, contentType string) (string, string, error) {
	const op = "repository.storage.PresignUpload"

	ext, ok := extensions[contentType]
	if !ok {
		return "", "", fmt.Errorf("%s: unsupported content type %q", op, contentType)
	}
	key := path.Join("products", uuid.NewString()+ext)

	u, err := s.client.PresignedPutObject(ctx, s.bucket, key, s.ttl)
	if err != nil {
		return "", "", fmt.Errorf("%s: failed to presign upload: %w", op, err)
	}
	return u.String(), key, nil
}

// Delete удаляет объект по ключу, отсутствие объекта ошибкой не считается
func (s *ImageStorage) Delete(ctx context.Context, key string) error {
	const op = "repository.storage.Delete"

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%s: failed to remove object %s: %w", op, key, err)
	}
	return nil
}
