package kafka

import "time"

// Revalidation — событие "страница устарела, перечитать данные"
type Revalidation struct {
	Path string    `json:"path"`
	At   time.Time `json:"at"`
}
