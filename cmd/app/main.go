package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asquebay/simple-storefront/internal/auth"
	"github.com/asquebay/simple-storefront/internal/config"
	"github.com/asquebay/simple-storefront/internal/lib/logger"
	"github.com/asquebay/simple-storefront/internal/repository/cache"
	"github.com/asquebay/simple-storefront/internal/repository/payments"
	"github.com/asquebay/simple-storefront/internal/repository/postgres"
	"github.com/asquebay/simple-storefront/internal/repository/storage"
	"github.com/asquebay/simple-storefront/internal/service"
	httptransport "github.com/asquebay/simple-storefront/internal/transport/http"
	"github.com/asquebay/simple-storefront/internal/transport/kafka"
)

func main() {
	// 1. Инициализация конфигурации
	cfg := config.MustLoad(config.PathFromEnv())

	// 2. Инициализация логгера
	log := logger.New(cfg.Logger.Level, cfg.Logger.Format)
	log.Info("starting simple-storefront", slog.String("log_level", cfg.Logger.Level))

	// 3. Инициализация репозиториев (БД) и миграция схемы
	initCtx := context.Background()
	dbpool, err := postgres.New(initCtx, cfg.Postgres)
	if err != nil {
		log.Error("failed to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbpool.Close()
	log.Info("successfully connected to postgres")

	if err := postgres.Migrate(initCtx, dbpool); err != nil {
		log.Error("failed to apply schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	productRepo := postgres.NewProductRepository(dbpool)
	cartRepo := postgres.NewCartRepository(dbpool)
	reviewRepo := postgres.NewReviewRepository(dbpool)

	// 4. Инициализация кэша карточек
	productCache := cache.NewProductCache()
	log.Info("product cache initialized")

	// 5. Внешние сервисы: объектное хранилище, платёжный провайдер, события ревалидации
	images, err := storage.New(cfg.Storage)
	if err != nil {
		log.Error("failed to init object storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	processor := payments.New(cfg.Payments)
	publisher := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	sessions := auth.NewSessions(cfg.Session)

	// 6. Инициализация сервисного слоя
	productSvc := service.NewProductService(productRepo, productCache, images, processor, publisher, cfg.Payments.Currency, log)
	services := httptransport.Services{
		Products: productSvc,
		Carts:    service.NewCartService(cartRepo, productRepo, log),
		Reviews:  service.NewReviewService(reviewRepo, productRepo, productCache, publisher, log),
		Images:   service.NewImageService(images, log),
		Payments: service.NewPaymentService(productRepo, processor, cfg.App.BaseURL, log),
	}

	// 7. Прогрев кэша подборкой главной страницы
	if err := productSvc.WarmCache(initCtx); err != nil {
		// не фатальная ошибка, сервис может работать и с пустым кэшем
		log.Error("failed to warm cache", slog.String("error", err.Error()))
	}

	// 8. Инициализация и запуск Kafka-консьюмера
	// у каждого экземпляра своя группа: событие должно дойти до кэша каждого экземпляра
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, consumerGroup(cfg.Kafka.GroupID), productSvc, log)
	ctx, cancel := context.WithCancel(context.Background())
	go consumer.Run(ctx)

	// 9. Инициализация и запуск HTTP-сервера
	handler := httptransport.NewHandler(services, sessions, cfg.App.WebDir, log)
	httpServer := httptransport.NewServer(cfg.HTTPServer, handler)
	log.Info("starting http server", slog.String("port", httpServer.Addr()))

	go func() {
		if err := httpServer.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed to start", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// 10. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down application")
	cancel() // сигнал для консьюмера на завершение

	// создаем контекст с таймаутом для шатдауна сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", slog.String("error", err.Error()))
	}

	if err := consumer.Close(); err != nil {
		log.Error("error closing kafka consumer", slog.String("error", err.Error()))
	}

	// продюсер закрываем после сервера: запросы могли публиковать события до последнего
	if err := publisher.Close(); err != nil {
		log.Error("error closing kafka publisher", slog.String("error", err.Error()))
	}

	log.Info("application stopped")
}

func consumerGroup(base string) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return base
	}
	return base + "-" + host
}
