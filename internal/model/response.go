package model

// ответы процедур RPC, каждый несёт поле message

type ProductsPage struct {
	Message    string    `json:"message"`
	Products   []Product `json:"products"`
	NextCursor string    `json:"nextCursor,omitempty"`
}

type ProductResult struct {
	Message string  `json:"message"`
	Product Product `json:"product"`
}

type SuggestionsResult struct {
	Message     string       `json:"message"`
	Suggestions []Suggestion `json:"suggestions"`
}

// DeletedResult возвращается всеми процедурами удаления
type DeletedResult struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type CartResult struct {
	Message string `json:"message"`
	Cart    Cart   `json:"cart"`
}

// CartItemResult: Item равен nil, если товара в корзине нет
type CartItemResult struct {
	Message string    `json:"message"`
	Item    *CartItem `json:"item"`
}

type ReviewsPage struct {
	Message    string   `json:"message"`
	Reviews    []Review `json:"reviews"`
	NextCursor string   `json:"nextCursor,omitempty"`
}

type ReviewResult struct {
	Message string `json:"message"`
	Review  Review `json:"review"`
}

type PresignedURLResult struct {
	Message string `json:"message"`
	URL     string `json:"url"`
	Key     string `json:"key"`
}

type CheckoutResult struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}
