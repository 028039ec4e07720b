package service

import (
	"context"
	"log/slog"

	"github.com/asquebay/simple-storefront/internal/model"

	"github.com/google/uuid"
)

// ReviewService инкапсулирует бизнес-логику отзывов
type ReviewService struct {
	reviews  ReviewRepository
	products ProductReader
	cache    ProductCache
	pages    PageRevalidator
	log      *slog.Logger
}

// NewReviewService создаёт новый экземпляр сервиса отзывов
func NewReviewService(reviews ReviewRepository, products ProductReader, cache ProductCache, pages PageRevalidator, log *slog.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, products: products, cache: cache, pages: pages, log: log}
}

// GetForProduct возвращает страницу отзывов о товаре
func (s *ReviewService) GetForProduct(ctx context.Context, in model.ReviewListInput) (model.ReviewsPage, error) {
	const op = "service.ReviewService.GetForProduct"
	log := s.log.With(slog.String("op", op), slog.String("product_id", in.ProductID))

	if err := model.Validate(in); err != nil {
		return model.ReviewsPage{}, fail(log, op, err)
	}
	if err := s.productExists(ctx, in.ProductID); err != nil {
		return model.ReviewsPage{}, fail(log, op, err)
	}

	reviews, next, err := s.reviews.ListReviews(ctx, in.ProductID, model.Page{Cursor: in.Cursor, Limit: in.Limit})
	if err != nil {
		return model.ReviewsPage{}, fail(log, op, repoError(err, "review"))
	}
	return model.ReviewsPage{Message: "reviews fetched", Reviews: reviews, NextCursor: next}, nil
}

// Create оставляет отзыв о товаре от имени пользователя
func (s *ReviewService) Create(ctx context.Context, in model.CreateReviewInput) (model.ReviewResult, error) {
	const op = "service.ReviewService.Create"
	log := s.log.With(slog.String("op", op), slog.String("product_id", in.ProductID))

	actor, err := requireIdentity(ctx)
	if err != nil {
		return model.ReviewResult{}, fail(log, op, err)
	}
	if err := model.Validate(in); err != nil {
		return model.ReviewResult{}, fail(log, op, err)
	}
	if err := s.productExists(ctx, in.ProductID); err != nil {
		return model.ReviewResult{}, fail(log, op, err)
	}

	review, err := s.reviews.CreateReview(ctx, model.Review{
		ID:        uuid.NewString(),
		ProductID: in.ProductID,
		UserID:    actor.ID,
		Rating:    in.Rating,
		Content:   in.Content,
	})
	if err != nil {
		// товар мог исчезнуть между проверкой и вставкой, тогда сработает внешний ключ
		return model.ReviewResult{}, fail(log, op, repoError(err, "product"))
	}

	revalidate(ctx, s.pages, log, model.ProductPath(in.ProductID))
	log.Info("review created", slog.String("review_id", review.ID))
	return model.ReviewResult{Message: "review created", Review: review}, nil
}

// Update меняет отзыв; менять отзыв может только его автор
func (s *ReviewService) Update(ctx context.Context, in model.UpdateReviewInput) (model.ReviewResult, error) {
	const op = "service.ReviewService.Update"
	log := s.log.With(slog.String("op", op), slog.String("review_id", in.ID))

	current, err := s.ownedReview(ctx, log, op, in, in.ID)
	if err != nil {
		return model.ReviewResult{}, err
	}

	review, err := s.reviews.UpdateReview(ctx, in.ID, model.ReviewPatch{Rating: in.Rating, Content: in.Content})
	if err != nil {
		return model.ReviewResult{}, fail(log, op, repoError(err, "review"))
	}

	revalidate(ctx, s.pages, log, model.ProductPath(current.ProductID))
	log.Info("review updated")
	return model.ReviewResult{Message: "review updated", Review: review}, nil
}

// Delete удаляет отзыв; удалять отзыв может только его автор
func (s *ReviewService) Delete(ctx context.Context, in model.ReviewIDInput) (model.DeletedResult, error) {
	const op = "service.ReviewService.Delete"
	log := s.log.With(slog.String("op", op), slog.String("review_id", in.ID))

	current, err := s.ownedReview(ctx, log, op, in, in.ID)
	if err != nil {
		return model.DeletedResult{}, err
	}

	if err := s.reviews.DeleteReview(ctx, in.ID); err != nil {
		return model.DeletedResult{}, fail(log, op, repoError(err, "review"))
	}

	revalidate(ctx, s.pages, log, model.ProductPath(current.ProductID))
	log.Info("review deleted")
	return model.DeletedResult{Message: "review deleted", ID: in.ID}, nil
}

func (s *ReviewService) ownedReview(ctx context.Context, log *slog.Logger, op string, in any, id string) (model.Review, error) {
	actor, err := requireIdentity(ctx)
	if err != nil {
		return model.Review{}, fail(log, op, err)
	}
	if err := model.Validate(in); err != nil {
		return model.Review{}, fail(log, op, err)
	}

	current, err := s.reviews.GetReview(ctx, id)
	if err != nil {
		return model.Review{}, fail(log, op, repoError(err, "review"))
	}
	if err := requireOwner(actor, current.UserID, "review"); err != nil {
		return model.Review{}, fail(log, op, err)
	}
	return current, nil
}

// productExists сначала смотрит в кэш карточек, затем в БД
func (s *ReviewService) productExists(ctx context.Context, id string) error {
	if _, ok := s.cache.Get(id); ok {
		return nil
	}
	if _, err := s.products.GetProduct(ctx, id); err != nil {
		return repoError(err, "product")
	}
	return nil
}
