package model

import "time"

// Cart — корзина пользователя, у каждого пользователя ровно одна корзина
type Cart struct {
	ID     string     `json:"id"`
	UserID string     `json:"userId"`
	Items  []CartItem `json:"items"`
}

// CartItem — позиция корзины
// пара (CartID, ProductID) уникальна: повторное добавление товара отклоняется
type CartItem struct {
	ID        string    `json:"id"`
	CartID    string    `json:"cartId"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Item ищет позицию по идентификатору
func (c Cart) Item(itemID string) (CartItem, bool) {
	for _, it := range c.Items {
		if it.ID == itemID {
			return it, true
		}
	}
	return CartItem{}, false
}

// ItemForProduct ищет позицию по товару
func (c Cart) ItemForProduct(productID string) (CartItem, bool) {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return CartItem{}, false
}
