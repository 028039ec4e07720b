package storefront

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/asquebay/simple-storefront/internal/client/optimistic"
	"github.com/asquebay/simple-storefront/internal/client/querycache"
	"github.com/asquebay/simple-storefront/internal/model"

	"github.com/google/uuid"
)

// TempIDPrefix отмечает позиции и отзывы, которых сервер ещё не подтвердил
const TempIDPrefix = "optimistic-"

// IsTemporary сообщает, что запись создана локально
func IsTemporary(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// cartPatch меняет загруженную корзину; срезы копируются, чтобы снимок остался нетронутым
func cartPatch(fn func(cart model.Cart) (model.Cart, bool)) optimistic.Patch {
	return optimistic.Patch{Key: CartKey(), Update: func(prev any, ok bool) (any, bool) {
		if !ok {
			return nil, false
		}
		cart, ok := prev.(model.Cart)
		if !ok {
			return nil, false
		}
		cart.Items = slices.Clone(cart.Items)
		return fn(cart)
	}}
}

func cartProductPatch(productID string, item *model.CartItem) optimistic.Patch {
	return optimistic.Patch{Key: CartProductKey(productID), Update: func(_ any, ok bool) (any, bool) {
		if !ok {
			return nil, false
		}
		return item, true
	}}
}

// productIDOfItem ищет товар позиции в загруженной корзине
func (c *Client) productIDOfItem(itemID string) (string, bool) {
	e, ok := c.cache.Get(CartKey())
	if !ok {
		return "", false
	}
	cart, ok := e.Value.(model.Cart)
	if !ok {
		return "", false
	}
	it, ok := cart.Item(itemID)
	return it.ProductID, ok
}

// cachedProduct возвращает карточку из кэша, если она загружена
func (c *Client) cachedProduct(id string) *model.Product {
	e, ok := c.cache.Get(ProductKey(id))
	if !ok {
		return nil
	}
	p, ok := e.Value.(model.Product)
	if !ok {
		return nil
	}
	return &p
}

// AddToCart кладёт товар в корзину
// позиция сразу появляется с временным ID; сервер отклонит повторное добавление
func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) (model.CartItem, error) {
	in := model.AddToCartInput{ProductID: productID, Quantity: quantity}

	m := mutation(c, procCartAdd, func(ctx context.Context, in model.AddToCartInput) (model.CartItem, error) {
		var res model.CartItemResult
		if err := c.gw.Mutate(ctx, procCartAdd, in, &res); err != nil {
			return model.CartItem{}, err
		}
		if res.Item == nil {
			return model.CartItem{}, nil
		}
		return *res.Item, nil
	})
	m.Patches = func(in model.AddToCartInput) []optimistic.Patch {
		item := &model.CartItem{
			ID:        TempIDPrefix + uuid.NewString(),
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Product:   c.cachedProduct(in.ProductID),
			CreatedAt: time.Now(),
		}
		return []optimistic.Patch{
			cartPatch(func(cart model.Cart) (model.Cart, bool) {
				if _, exists := cart.ItemForProduct(in.ProductID); exists {
					return cart, false
				}
				it := *item
				it.CartID = cart.ID
				cart.Items = append(cart.Items, it)
				return cart, true
			}),
			cartProductPatch(in.ProductID, item),
		}
	}
	m.Related = func(in model.AddToCartInput) []querycache.Key {
		return []querycache.Key{CartProductKey(in.ProductID)}
	}

	return m.Do(ctx, in)
}

// UpdateQuantity меняет количество товара в позиции
func (c *Client) UpdateQuantity(ctx context.Context, itemID string, quantity int) (model.CartItem, error) {
	in := model.UpdateQuantityInput{ItemID: itemID, Quantity: quantity}
	productID, known := c.productIDOfItem(itemID)

	m := mutation(c, procCartUpdateQuantity, func(ctx context.Context, in model.UpdateQuantityInput) (model.CartItem, error) {
		var res model.CartItemResult
		if err := c.gw.Mutate(ctx, procCartUpdateQuantity, in, &res); err != nil {
			return model.CartItem{}, err
		}
		if res.Item == nil {
			return model.CartItem{}, nil
		}
		return *res.Item, nil
	})
	m.Patches = func(in model.UpdateQuantityInput) []optimistic.Patch {
		patches := []optimistic.Patch{
			cartPatch(func(cart model.Cart) (model.Cart, bool) {
				i := slices.IndexFunc(cart.Items, func(it model.CartItem) bool { return it.ID == in.ItemID })
				if i < 0 {
					return cart, false
				}
				cart.Items[i].Quantity = in.Quantity
				return cart, true
			}),
		}
		if known {
			patches = append(patches, optimistic.Patch{Key: CartProductKey(productID), Update: func(prev any, ok bool) (any, bool) {
				item, _ := prev.(*model.CartItem)
				if !ok || item == nil {
					return nil, false
				}
				next := *item
				next.Quantity = in.Quantity
				return &next, true
			}})
		}
		return patches
	}

	return m.Do(ctx, in)
}

// DeleteFromCart убирает позицию из корзины
func (c *Client) DeleteFromCart(ctx context.Context, itemID string) error {
	in := model.CartItemIDInput{ItemID: itemID}
	productID, known := c.productIDOfItem(itemID)

	m := mutation(c, procCartDelete, func(ctx context.Context, in model.CartItemIDInput) (model.DeletedResult, error) {
		var res model.DeletedResult
		err := c.gw.Mutate(ctx, procCartDelete, in, &res)
		return res, err
	})
	m.Patches = func(in model.CartItemIDInput) []optimistic.Patch {
		patches := []optimistic.Patch{
			cartPatch(func(cart model.Cart) (model.Cart, bool) {
				n := len(cart.Items)
				cart.Items = slices.DeleteFunc(cart.Items, func(it model.CartItem) bool { return it.ID == in.ItemID })
				return cart, len(cart.Items) != n
			}),
		}
		if known {
			patches = append(patches, cartProductPatch(productID, nil))
		}
		return patches
	}

	_, err := m.Do(ctx, in)
	return err
}
