package model

import "time"

// Review — отзыв о товаре, владелец отзыва — UserID
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReviewPatch — частичное обновление отзыва
type ReviewPatch struct {
	Rating  *int
	Content *string
}

func (p ReviewPatch) Empty() bool {
	return p.Rating == nil && p.Content == nil
}
