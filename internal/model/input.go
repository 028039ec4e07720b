package model

// входные данные процедур RPC
// теги validate проверяются до любых изменений в хранилище

// ProductListInput описывает вход product.getAll
type ProductListInput struct {
	Query  string `json:"query,omitempty" validate:"max=100"`
	Cursor string `json:"cursor,omitempty" validate:"max=200"`
	Limit  int    `json:"limit,omitempty" validate:"omitempty,min=1,max=50"`
}

// AutocompleteInput описывает вход product.getAutocomplete
type AutocompleteInput struct {
	Query string `json:"query" validate:"required,max=100"`
}

// ProductIDInput описывает вход product.get и product.delete
type ProductIDInput struct {
	ID string `json:"id" validate:"required,uuid"`
}

// CreateProductInput описывает вход product.create
type CreateProductInput struct {
	Title       string `json:"title" validate:"required,max=120"`
	Description string `json:"description" validate:"required,max=2000"`
	Price       int64  `json:"price" validate:"required,min=1,max=100000000"`
	ImageKey    string `json:"imageKey" validate:"required,max=256"`
}

// UpdateProductInput описывает вход product.update
// отсутствующее поле означает "без изменений", пустая строка считается ошибкой
type UpdateProductInput struct {
	ID          string  `json:"id" validate:"required,uuid"`
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,min=1,max=2000"`
	Price       *int64  `json:"price,omitempty" validate:"omitempty,min=1,max=100000000"`
	ImageKey    *string `json:"imageKey,omitempty" validate:"omitempty,min=1,max=256"`
}

// CartProductInput описывает вход cart.getProduct
type CartProductInput struct {
	ProductID string `json:"productId" validate:"required,uuid"`
}

// AddToCartInput описывает вход cart.addToCart
type AddToCartInput struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=99"`
}

// UpdateQuantityInput описывает вход cart.updateQuantity
type UpdateQuantityInput struct {
	ItemID   string `json:"itemId" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,min=1,max=99"`
}

// CartItemIDInput описывает вход cart.deleteFromCart
type CartItemIDInput struct {
	ItemID string `json:"itemId" validate:"required,uuid"`
}

// ReviewListInput описывает вход review.getForProduct
type ReviewListInput struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Cursor    string `json:"cursor,omitempty" validate:"max=200"`
	Limit     int    `json:"limit,omitempty" validate:"omitempty,min=1,max=50"`
}

// CreateReviewInput описывает вход review.create
type CreateReviewInput struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Content   string `json:"content" validate:"required,max=2000"`
}

// UpdateReviewInput описывает вход review.update
type UpdateReviewInput struct {
	ID      string  `json:"id" validate:"required,uuid"`
	Rating  *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Content *string `json:"content,omitempty" validate:"omitempty,min=1,max=2000"`
}

// ReviewIDInput описывает вход review.delete
type ReviewIDInput struct {
	ID string `json:"id" validate:"required,uuid"`
}

// PresignedURLInput описывает вход image.getPresignedUrl
type PresignedURLInput struct {
	ContentType string `json:"contentType" validate:"required,oneof=image/jpeg image/png image/webp image/gif"`
}

// CheckoutProductInput описывает вход payments.checkoutProduct
type CheckoutProductInput struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=99"`
}
