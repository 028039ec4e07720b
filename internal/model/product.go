package model

import "time"

// Product — товар витрины, владелец товара — UserID
type Product struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       int64     `json:"price"` // в минимальных единицах валюты (центах)
	Currency    string    `json:"currency"`
	ImageKey    string    `json:"imageKey"`
	PriceID     string    `json:"-"` // идентификатор цены у платёжного провайдера
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Suggestion — элемент автодополнения поиска
type Suggestion struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ProductFilter описывает выборку товаров
type ProductFilter struct {
	// Query — регистронезависимое вхождение в название
	Query string
	Page
}

// ProductPatch — частичное обновление товара, nil означает "без изменений"
type ProductPatch struct {
	Title       *string
	Description *string
	Price       *int64
	ImageKey    *string
	PriceID     *string
}

// Empty сообщает, что патч ничего не меняет
func (p ProductPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Price == nil && p.ImageKey == nil && p.PriceID == nil
}

// Page — параметры постраничной выборки по курсору
type Page struct {
	Cursor string
	Limit  int
}
