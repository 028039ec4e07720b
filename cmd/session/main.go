// утилита выпускает сессионный токен для локальной разработки,
// пока вход через провайдера личности не подключён
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/asquebay/simple-storefront/internal/auth"
	"github.com/asquebay/simple-storefront/internal/config"
	"github.com/asquebay/simple-storefront/internal/model"

	"github.com/google/uuid"
)

func main() {
	userID := flag.String("user", "", "user id (random uuid if empty)")
	email := flag.String("email", "dev@example.com", "user email")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg := config.MustLoad(config.PathFromEnv())

	id := *userID
	if id == "" {
		id = uuid.NewString()
	}

	token, err := auth.NewSessions(cfg.Session).Issue(model.Identity{ID: id, Email: *email}, *ttl)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Printf("user:   %s\ncookie: %s=%s\n", id, cfg.Session.CookieName, token)
}
