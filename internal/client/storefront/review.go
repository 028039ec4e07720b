package storefront

import (
	"context"
	"slices"
	"time"

	"github.com/asquebay/simple-storefront/internal/client/optimistic"
	"github.com/asquebay/simple-storefront/internal/model"

	"github.com/google/uuid"
)

// reviewsPatch меняет загруженную первую страницу отзывов
func reviewsPatch(productID string, fn func([]model.Review) ([]model.Review, bool)) optimistic.Patch {
	return optimistic.Patch{Key: ReviewsKey(productID), Update: func(prev any, ok bool) (any, bool) {
		reviews, typed := prev.([]model.Review)
		if !ok || !typed {
			return nil, false
		}
		return fn(slices.Clone(reviews))
	}}
}

// CreateReview добавляет отзыв в начало списка до ответа сервера
func (c *Client) CreateReview(ctx context.Context, in model.CreateReviewInput) (model.Review, error) {
	m := mutation(c, procReviewCreate, func(ctx context.Context, in model.CreateReviewInput) (model.Review, error) {
		var res model.ReviewResult
		err := c.gw.Mutate(ctx, procReviewCreate, in, &res)
		return res.Review, err
	})
	m.Patches = func(in model.CreateReviewInput) []optimistic.Patch {
		now := time.Now()
		draft := model.Review{
			ID:        TempIDPrefix + uuid.NewString(),
			ProductID: in.ProductID,
			Rating:    in.Rating,
			Content:   in.Content,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return []optimistic.Patch{reviewsPatch(in.ProductID, func(rs []model.Review) ([]model.Review, bool) {
			return append([]model.Review{draft}, rs...), true
		})}
	}

	return m.Do(ctx, in)
}

// reviewChange — правка отзыва вместе с товаром, к которому относится страница
type reviewChange struct {
	productID string
	update    model.UpdateReviewInput
}

// UpdateReview меняет отзыв
func (c *Client) UpdateReview(ctx context.Context, productID string, in model.UpdateReviewInput) (model.Review, error) {
	m := mutation(c, procReviewUpdate, func(ctx context.Context, ch reviewChange) (model.Review, error) {
		var res model.ReviewResult
		err := c.gw.Mutate(ctx, procReviewUpdate, ch.update, &res)
		return res.Review, err
	})
	m.Patches = func(ch reviewChange) []optimistic.Patch {
		return []optimistic.Patch{reviewsPatch(ch.productID, func(rs []model.Review) ([]model.Review, bool) {
			i := slices.IndexFunc(rs, func(r model.Review) bool { return r.ID == ch.update.ID })
			if i < 0 {
				return rs, false
			}
			if ch.update.Rating != nil {
				rs[i].Rating = *ch.update.Rating
			}
			if ch.update.Content != nil {
				rs[i].Content = *ch.update.Content
			}
			return rs, true
		})}
	}

	return m.Do(ctx, reviewChange{productID: productID, update: in})
}

// DeleteReview убирает отзыв из списка
func (c *Client) DeleteReview(ctx context.Context, productID, id string) error {
	m := mutation(c, procReviewDelete, func(ctx context.Context, ch reviewChange) (model.DeletedResult, error) {
		var res model.DeletedResult
		err := c.gw.Mutate(ctx, procReviewDelete, model.ReviewIDInput{ID: ch.update.ID}, &res)
		return res, err
	})
	m.Patches = func(ch reviewChange) []optimistic.Patch {
		return []optimistic.Patch{reviewsPatch(ch.productID, func(rs []model.Review) ([]model.Review, bool) {
			n := len(rs)
			rs = slices.DeleteFunc(rs, func(r model.Review) bool { return r.ID == ch.update.ID })
			return rs, len(rs) != n
		})}
	}

	_, err := m.Do(ctx, reviewChange{productID: productID, update: model.UpdateReviewInput{ID: id}})
	return err
}
