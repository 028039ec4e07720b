package model

// Identity — аутентифицированный пользователь запроса
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Authenticated сообщает, есть ли у запроса пользователь
func (i Identity) Authenticated() bool {
	return i.ID != ""
}
