package http

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/asquebay/simple-storefront/internal/lib/apperr"
)

// Kind различает чтение и запись
type Kind int

const (
	Query Kind = iota
	Mutation
)

func (k Kind) String() string {
	if k == Mutation {
		return "mutation"
	}
	return "query"
}

// procedure — одна процедура RPC: разбирает вход и вызывает сервис
type procedure struct {
	kind Kind
	call func(ctx context.Context, raw []byte) (any, error)
}

// withInput оборачивает метод сервиса с типизированным входом
func withInput[In, Out any](kind Kind, fn func(context.Context, In) (Out, error)) procedure {
	return procedure{kind: kind, call: func(ctx context.Context, raw []byte) (any, error) {
		var in In
		if err := decodeInput(raw, &in); err != nil {
			return nil, err
		}
		return fn(ctx, in)
	}}
}

// withoutInput оборачивает метод сервиса без входа
func withoutInput[Out any](kind Kind, fn func(context.Context) (Out, error)) procedure {
	return procedure{kind: kind, call: func(ctx context.Context, _ []byte) (any, error) {
		return fn(ctx)
	}}
}

// decodeInput разбирает JSON-вход; пустой вход означает нулевое значение,
// дальше его проверит валидатор сервиса
func decodeInput(raw []byte, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Wrap(apperr.BadRequest, "invalid input", err)
	}
	return nil
}

// procedures — таблица всех процедур витрины
func procedures(s Services) map[string]procedure {
	return map[string]procedure{
		"product.getAll":          withInput(Query, s.Products.GetAll),
		"product.getAutocomplete": withInput(Query, s.Products.GetAutocomplete),
		"product.getFeatured":     withoutInput(Query, s.Products.GetFeatured),
		"product.get":             withInput(Query, s.Products.Get),
		"product.create":          withInput(Mutation, s.Products.Create),
		"product.update":          withInput(Mutation, s.Products.Update),
		"product.delete":          withInput(Mutation, s.Products.Delete),

		"cart.get":            withoutInput(Query, s.Carts.Get),
		"cart.getProduct":     withInput(Query, s.Carts.GetProduct),
		"cart.addToCart":      withInput(Mutation, s.Carts.AddToCart),
		"cart.updateQuantity": withInput(Mutation, s.Carts.UpdateQuantity),
		"cart.deleteFromCart": withInput(Mutation, s.Carts.DeleteFromCart),

		"review.getForProduct": withInput(Query, s.Reviews.GetForProduct),
		"review.create":        withInput(Mutation, s.Reviews.Create),
		"review.update":        withInput(Mutation, s.Reviews.Update),
		"review.delete":        withInput(Mutation, s.Reviews.Delete),

		"image.getPresignedUrl":    withInput(Mutation, s.Images.PresignedURL),
		"payments.checkoutProduct": withInput(Mutation, s.Payments.CheckoutProduct),
	}
}
