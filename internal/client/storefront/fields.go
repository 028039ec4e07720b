package storefront

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/asquebay/simple-storefront/internal/lib/apperr"
	"github.com/asquebay/simple-storefront/internal/model"
)

// Entity — тип редактируемой записи
type Entity string

const (
	EntityProduct Entity = "product"
	EntityReview  Entity = "review"
)

// Validator проверяет значение до отправки
type Validator func(value string) error

// Field — редактируемое поле записи
type Field struct {
	Entity   Entity
	Name     string
	Validate Validator
}

// TextField — непустая строка не длиннее max символов
func TextField(entity Entity, name string, max int) Field {
	return Field{Entity: entity, Name: name, Validate: func(v string) error {
		if strings.TrimSpace(v) == "" {
			return apperr.BadRequestf("%s must not be empty", name)
		}
		if utf8.RuneCountInString(v) > max {
			return apperr.BadRequestf("%s must be at most %d characters", name, max)
		}
		return nil
	}}
}

// IntField — целое число в диапазоне [min, max]
func IntField(entity Entity, name string, min, max int) Field {
	return Field{Entity: entity, Name: name, Validate: func(v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return apperr.BadRequestf("%s must be a number", name)
		}
		if n < min || n > max {
			return apperr.BadRequestf("%s must be between %d and %d", name, min, max)
		}
		return nil
	}}
}

// поля, которые можно править на странице товара
var (
	ProductTitle       = TextField(EntityProduct, "title", 120)
	ProductDescription = TextField(EntityProduct, "description", 2000)
	ProductPrice       = IntField(EntityProduct, "price", 1, 100000000)
	ReviewContent      = TextField(EntityReview, "content", 2000)
	ReviewRating       = IntField(EntityReview, "rating", 1, 5)
)

// Target — какую запись правим; ProductID нужен отзывам, их кэш разложен по товарам
type Target struct {
	ID        string
	ProductID string
}

type fieldKey struct {
	entity Entity
	name   string
}

type commitFunc func(ctx context.Context, c *Client, t Target, value string) error

// committers знает, какой мутацией сохраняется каждое поле
var committers = map[fieldKey]commitFunc{
	{EntityProduct, "title"}: func(ctx context.Context, c *Client, t Target, v string) error {
		_, err := c.UpdateProduct(ctx, model.UpdateProductInput{ID: t.ID, Title: &v})
		return err
	},
	{EntityProduct, "description"}: func(ctx context.Context, c *Client, t Target, v string) error {
		_, err := c.UpdateProduct(ctx, model.UpdateProductInput{ID: t.ID, Description: &v})
		return err
	},
	{EntityProduct, "price"}: func(ctx context.Context, c *Client, t Target, v string) error {
		price, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return apperr.Wrap(apperr.BadRequest, "price must be a number", err)
		}
		_, err = c.UpdateProduct(ctx, model.UpdateProductInput{ID: t.ID, Price: &price})
		return err
	},
	{EntityReview, "content"}: func(ctx context.Context, c *Client, t Target, v string) error {
		_, err := c.UpdateReview(ctx, t.ProductID, model.UpdateReviewInput{ID: t.ID, Content: &v})
		return err
	},
	{EntityReview, "rating"}: func(ctx context.Context, c *Client, t Target, v string) error {
		rating, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return apperr.Wrap(apperr.BadRequest, "rating must be a number", err)
		}
		_, err = c.UpdateReview(ctx, t.ProductID, model.UpdateReviewInput{ID: t.ID, Rating: &rating})
		return err
	},
}

// FieldEditor правит одно поле любой записи одним и тем же способом:
// проверка, оптимистичная мутация, откат при отказе
type FieldEditor struct {
	client *Client
	field  Field
	commit commitFunc
}

// FieldEditor возвращает редактор поля или ошибку, если у поля нет мутации
func (c *Client) FieldEditor(f Field) (*FieldEditor, error) {
	commit, ok := committers[fieldKey{f.Entity, f.Name}]
	if !ok {
		return nil, fmt.Errorf("storefront: field %s.%s is not editable", f.Entity, f.Name)
	}
	if f.Validate == nil {
		f.Validate = func(string) error { return nil }
	}
	return &FieldEditor{client: c, field: f, commit: commit}, nil
}

func (e *FieldEditor) Field() Field {
	return e.field
}

// Submit проверяет значение и сохраняет его; отклонённое значение до сервера не доходит
func (e *FieldEditor) Submit(ctx context.Context, t Target, value string) error {
	if err := e.field.Validate(value); err != nil {
		return err
	}
	return e.commit(ctx, e.client, t, value)
}
