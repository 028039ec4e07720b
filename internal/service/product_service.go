package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/asquebay/simple-storefront/internal/lib/apperr"
	"github.com/asquebay/simple-storefront/internal/model"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	featuredLimit     = 4
	autocompleteLimit = 5
)

// ProductService инкапсулирует бизнес-логику работы с товарами
type ProductService struct {
	repo     ProductRepository
	cache    ProductCache
	images   ImageStore
	prices   PriceRegistry
	pages    PageRevalidator
	currency string
	log      *slog.Logger

	// одновременные промахи кэша по одному товару читают БД один раз
	loads singleflight.Group
}

// NewProductService создаёт новый экземпляр сервиса товаров
// он принимает интерфейсы, а не конкретные типы, для гибкости и тестируемости
func NewProductService(
	repo ProductRepository,
	cache ProductCache,
	images ImageStore,
	prices PriceRegistry,
	pages PageRevalidator,
	currency string,
	log *slog.Logger,
) *ProductService {
	return &ProductService{
		repo:     repo,
		cache:    cache,
		images:   images,
		prices:   prices,
		pages:    pages,
		currency: currency,
		log:      log,
	}
}

// GetAll возвращает страницу товаров, query ищет по вхождению в название
func (s *ProductService) GetAll(ctx context.Context, in model.ProductListInput) (model.ProductsPage, error) {
	const op = "service.ProductService.GetAll"
	log := s.log.With(slog.String("op", op))

	if err := model.Validate(in); err != nil {
		return model.ProductsPage{}, fail(log, op, err)
	}

	products, next, err := s.repo.ListProducts(ctx, model.ProductFilter{
		Query: in.Query,
		Page:  model.Page{Cursor: in.Cursor, Limit: in.Limit},
	})
	if err != nil {
		return model.ProductsPage{}, fail(log, op, repoError(err, "product"))
	}

	return model.ProductsPage{Message: "products fetched", Products: products, NextCursor: next}, nil
}

// GetAutocomplete подсказывает названия товаров по префиксу
func (s *ProductService) GetAutocomplete(ctx context.Context, in model.AutocompleteInput) (model.SuggestionsResult, error) {
	const op = "service.ProductService.GetAutocomplete"
	log := s.log.With(slog.String("op", op))

	if err := model.Validate(in); err != nil {
		return model.SuggestionsResult{}, fail(log, op, err)
	}

	suggestions, err := s.repo.Autocomplete(ctx, in.Query, autocompleteLimit)
	if err != nil {
		return model.SuggestionsResult{}, fail(log, op, repoError(err, "product"))
	}
	return model.SuggestionsResult{Message: "suggestions fetched", Suggestions: suggestions}, nil
}

// GetFeatured возвращает подборку для главной страницы
func (s *ProductService) GetFeatured(ctx context.Context) (model.ProductsPage, error) {
	const op = "service.ProductService.GetFeatured"
	log := s.log.With(slog.String("op", op))

	products, err := s.repo.Featured(ctx, featuredLimit)
	if err != nil {
		return model.ProductsPage{}, fail(log, op, repoError(err, "product"))
	}
	return model.ProductsPage{Message: "featured products fetched", Products: products}, nil
}

// Get получает товар по его ID
// сначала ищет в кэше, и обращается к БД, только если там нет
func (s *ProductService) Get(ctx context.Context, in model.ProductIDInput) (model.ProductResult, error) {
	const op = "service.ProductService.Get"
	log := s.log.With(slog.String("op", op), slog.String("product_id", in.ID))

	if err := model.Validate(in); err != nil {
		return model.ProductResult{}, fail(log, op, err)
	}

	if product, found := s.cache.Get(in.ID); found {
		log.Debug("product found in cache")
		return model.ProductResult{Message: "product fetched", Product: product}, nil
	}

	v, err, shared := s.loads.Do(in.ID, func() (any, error) {
		// отмена одного из ждущих не должна обрывать чтение для остальных
		product, err := s.repo.GetProduct(context.WithoutCancel(ctx), in.ID)
		if err != nil {
			return nil, err
		}
		// раз уж мы достали товар из БД, стоит положить его в кэш
		s.cache.Set(product)
		return product, nil
	})
	if err != nil {
		return model.ProductResult{}, fail(log, op, repoError(err, "product"))
	}
	product := v.(model.Product)
	log.Debug("product found in repository and now cached", slog.Bool("shared", shared))

	return model.ProductResult{Message: "product fetched", Product: product}, nil
}

// Create создаёт товар
// порядок важен: сначала цена у платёжного провайдера (её трудно отменить),
// затем строка в БД; при сбое любого шага откатываем уже сделанное
func (s *ProductService) Create(ctx context.Context, in model.CreateProductInput) (model.ProductResult, error) {
	const op = "service.ProductService.Create"
	log := s.log.With(slog.String("op", op))

	actor, err := requireIdentity(ctx)
	if err != nil {
		return model.ProductResult{}, fail(log, op, err)
	}
	if err := model.Validate(in); err != nil {
		return model.ProductResult{}, fail(log, op, err)
	}
	log = log.With(slog.String("user_id", actor.ID))

	// 1. Регистрируем цену
	priceID, err := s.prices.CreatePrice(ctx, in.Title, in.Price)
	if err != nil {
		s.discardImage(ctx, log, in.ImageKey)
		return model.ProductResult{}, fail(log, op, apperr.Internalw(err, "failed to register price"))
	}

	// 2. Сохраняем в БД
	product, err := s.repo.CreateProduct(ctx, model.Product{
		ID:          uuid.NewString(),
		UserID:      actor.ID,
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Currency:    s.currency,
		ImageKey:    in.ImageKey,
		PriceID:     priceID,
	})
	if err != nil {
		s.archivePrice(ctx, log, priceID)
		s.discardImage(ctx, log, in.ImageKey)
		return model.ProductResult{}, fail(log, op, apperr.Internalw(err, "failed to save product"))
	}

	s.cache.Set(product)
	revalidate(ctx, s.pages, log, model.HomePath, model.ProductPath(product.ID))
	log.Info("product created", slog.String("product_id", product.ID))

	return model.ProductResult{Message: "product created", Product: product}, nil
}

// Update меняет поля товара; менять товар может только его владелец
func (s *ProductService) Update(ctx context.Context, in model.UpdateProductInput) (model.ProductResult, error) {
	const op = "service.ProductService.Update"
	log := s.log.With(slog.String("op", op), slog.String("product_id", in.ID))

	actor, err := requireIdentity(ctx)
	if err != nil {
		return model.ProductResult{}, fail(log, op, err)
	}
	if err := model.Validate(in); err != nil {
		return model.ProductResult{}, fail(log, op, err)
	}

	current, err := s.repo.GetProduct(ctx, in.ID)
	if err != nil {
		return model.ProductResult{}, fail(log, op, repoError(err, "product"))
	}
	if err := requireOwner(actor, current.UserID, "product"); err != nil {
		return model.ProductResult{}, fail(log, op, err)
	}

	patch := model.ProductPatch{Title: in.Title, Description: in.Description}
	newImage := in.ImageKey != nil && *in.ImageKey != current.ImageKey
	if newImage {
		patch.ImageKey = in.ImageKey
	}

	// цены у платёжного провайдера неизменяемы, новая цена требует новой записи
	var newPriceID string
	if in.Price != nil && *in.Price != current.Price {
		title := current.Title
		if in.Title != nil {
			title = *in.Title
		}
		newPriceID, err = s.prices.CreatePrice(ctx, title, *in.Price)
		if err != nil {
			return model.ProductResult{}, fail(log, op, apperr.Internalw(err, "failed to register price"))
		}
		patch.Price = in.Price
		patch.PriceID = &newPriceID
	}

	updated, err := s.repo.UpdateProduct(ctx, in.ID, patch)
	if err != nil {
		if newPriceID != "" {
			s.archivePrice(ctx, log, newPriceID)
		}
		if newImage {
			s.discardImage(ctx, log, *in.ImageKey)
		}
		return model.ProductResult{}, fail(log, op, repoError(err, "product"))
	}

	// старые цена и изображение больше не нужны
	if newPriceID != "" {
		s.archivePrice(ctx, log, current.PriceID)
	}
	if newImage {
		s.discardImage(ctx, log, current.ImageKey)
	}

	s.cache.Set(updated)
	revalidate(ctx, s.pages, log, model.HomePath, model.ProductPath(updated.ID))
	log.Info("product updated")

	return model.ProductResult{Message: "product updated", Product: updated}, nil
}

// Delete удаляет товар; удалять товар может только его владелец
func (s *ProductService) Delete(ctx context.Context, in model.ProductIDInput) (model.DeletedResult, error) {
	const op = "service.ProductService.Delete"
	log := s.log.With(slog.String("op", op), slog.String("product_id", in.ID))

	actor, err := requireIdentity(ctx)
	if err != nil {
		return model.DeletedResult{}, fail(log, op, err)
	}
	if err := model.Validate(in); err != nil {
		return model.DeletedResult{}, fail(log, op, err)
	}

	current, err := s.repo.GetProduct(ctx, in.ID)
	if err != nil {
		return model.DeletedResult{}, fail(log, op, repoError(err, "product"))
	}
	if err := requireOwner(actor, current.UserID, "product"); err != nil {
		return model.DeletedResult{}, fail(log, op, err)
	}

	if err := s.repo.DeleteProduct(ctx, in.ID); err != nil {
		return model.DeletedResult{}, fail(log, op, repoError(err, "product"))
	}

	s.cache.Delete(in.ID)
	s.archivePrice(ctx, log, current.PriceID)
	s.discardImage(ctx, log, current.ImageKey)
	revalidate(ctx, s.pages, log, model.HomePath, model.ProductPath(in.ID))
	log.Info("product deleted")

	return model.DeletedResult{Message: "product deleted", ID: in.ID}, nil
}

// ApplyRevalidation сбрасывает кэш товара по событию ревалидации
func (s *ProductService) ApplyRevalidation(_ context.Context, path string) error {
	if id, ok := model.ProductIDFromPath(path); ok {
		s.cache.Delete(id)
		s.log.Debug("product cache entry dropped", slog.String("product_id", id))
	}
	return nil
}

// WarmCache кладёт в кэш подборку главной страницы при старте
func (s *ProductService) WarmCache(ctx context.Context) error {
	const op = "service.ProductService.WarmCache"
	log := s.log.With(slog.String("op", op))

	products, err := s.repo.Featured(ctx, featuredLimit)
	if err != nil {
		log.Error("failed to load featured products", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.cache.LoadAll(products)
	log.Info("product cache warmed", slog.Int("products_count", len(products)))
	return nil
}

// компенсирующие действия выполняются даже если клиент уже отключился

func (s *ProductService) discardImage(ctx context.Context, log *slog.Logger, key string) {
	if key == "" {
		return
	}
	if err := s.images.Delete(context.WithoutCancel(ctx), key); err != nil {
		log.Error("failed to delete image object", slog.String("image_key", key), slog.String("error", err.Error()))
	}
}

func (s *ProductService) archivePrice(ctx context.Context, log *slog.Logger, priceID string) {
	if priceID == "" {
		return
	}
	if err := s.prices.ArchivePrice(context.WithoutCancel(ctx), priceID); err != nil {
		log.Error("failed to archive price", slog.String("price_id", priceID), slog.String("error", err.Error()))
	}
}
