// утилита для ручной отправки событий ревалидации страниц через кафку,
// например после правки данных прямо в БД
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/asquebay/simple-storefront/internal/config"
	"github.com/asquebay/simple-storefront/internal/model"
	"github.com/asquebay/simple-storefront/internal/transport/kafka"
)

func main() {
	productID := flag.String("product", "", "product id whose page should be revalidated")
	home := flag.Bool("home", false, "revalidate the home page")
	flag.Parse()

	// брокеры и топик берём из того же config.yaml, что и приложение
	cfg := config.MustLoad(config.PathFromEnv())

	var paths []string
	if *home {
		paths = append(paths, model.HomePath)
	}
	if *productID != "" {
		paths = append(paths, model.ProductPath(*productID))
	}
	paths = append(paths, flag.Args()...)
	if len(paths) == 0 {
		log.Fatal("nothing to revalidate: pass -home, -product or page paths")
	}

	publisher := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer publisher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Println("Sending revalidation events to Kafka...")
	if err := publisher.Revalidate(ctx, paths...); err != nil {
		log.Fatalf("Failed to write messages: %v", err)
	}
	fmt.Printf("Revalidation sent for %d page(s)\n", len(paths))
}
