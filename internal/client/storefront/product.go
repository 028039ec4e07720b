package storefront

import (
	"context"

	"github.com/asquebay/simple-storefront/internal/client/optimistic"
	"github.com/asquebay/simple-storefront/internal/client/querycache"
	"github.com/asquebay/simple-storefront/internal/model"
)

// UpdateProduct меняет поля товара; карточка обновляется сразу,
// списки и корзина перечитываются после ответа
func (c *Client) UpdateProduct(ctx context.Context, in model.UpdateProductInput) (model.Product, error) {
	m := mutation(c, procProductUpdate, func(ctx context.Context, in model.UpdateProductInput) (model.Product, error) {
		var res model.ProductResult
		err := c.gw.Mutate(ctx, procProductUpdate, in, &res)
		return res.Product, err
	})
	m.Patches = func(in model.UpdateProductInput) []optimistic.Patch {
		return []optimistic.Patch{{Key: ProductKey(in.ID), Update: func(prev any, ok bool) (any, bool) {
			p, typed := prev.(model.Product)
			if !ok || !typed {
				return nil, false
			}
			return applyProductUpdate(p, in), true
		}}}
	}
	m.Related = func(model.UpdateProductInput) []querycache.Key {
		return []querycache.Key{CartKey()}
	}
	m.Endpoints = func(model.UpdateProductInput) []string {
		return []string{procProductGetAll, procProductFeatured, procProductAutocomplete}
	}

	return m.Do(ctx, in)
}

func applyProductUpdate(p model.Product, in model.UpdateProductInput) model.Product {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.ImageKey != nil {
		p.ImageKey = *in.ImageKey
	}
	return p
}
