package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// RevalidationHandler — это интерфейс, который абстрагирует консьюмер
// от конкретной реализации сервисного слоя
type RevalidationHandler interface {
	ApplyRevalidation(ctx context.Context, path string) error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer представляет собой консьюмер событий ревалидации
type Consumer struct {
	reader  messageReader
	service RevalidationHandler
	log     *slog.Logger
}

// NewConsumer создает новый экземпляр консьюмера
// у каждого экземпляра витрины своя группа, иначе событие получит только один из них
func NewConsumer(brokers []string, topic, groupID string, service RevalidationHandler, log *slog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		StartOffset: kafka.LastOffset, // старые события ревалидации неинтересны новому экземпляру
	})

	return &Consumer{
		reader:  reader,
		service: service,
		log:     log,
	}
}

// Run запускает цикл чтения сообщений из Kafka
// эта функция блокирующая, поэтому она запускается в отдельной горутине
func (c *Consumer) Run(ctx context.Context) {
	log := c.log.With(slog.String("component", "kafka_consumer"))
	log.Info("kafka consumer started")

	for {
		// проверка на отмену контекста
		select {
		case <-ctx.Done():
			log.Info("context cancelled, stopping consumer")
			return
		default:
		}

		// FetchMessage блокирует до тех пор, пока не придет новое сообщение или не возникнет ошибка
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			// если контекст был отменен во время ожидания, это нормальное завершение
			if errors.Is(err, context.Canceled) {
				return
			}
			// если ридер был закрыт, тоже выходим
			if errors.Is(err, io.EOF) {
				log.Info("kafka reader closed")
				return
			}
			log.Error("failed to fetch message", slog.String("error", err.Error()))
			continue
		}

		log.Debug("received message", slog.String("topic", msg.Topic), slog.Int("partition", msg.Partition), slog.Int64("offset", msg.Offset))

		if err := c.handleMessage(ctx, msg); err != nil {
			log.Error("failed to handle message", slog.String("error", err.Error()))
			// сообщение НЕ подтверждаем — пусть Kafka отдаст его снова
			continue
		}

		// фиксируем offset только ПОСЛЕ успешной обработки
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			log.Error("failed to commit message", slog.String("error", err.Error()))
		}
	}
}

// handleMessage парсит и обрабатывает одно сообщение
func (c *Consumer) handleMessage(ctx context.Context, msg kafka.Message) error {
	var ev Revalidation

	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		// перечитывать битое сообщение бессмысленно
		c.log.Warn("failed to unmarshal message, skipping", slog.String("error", err.Error()))
		return nil
	}
	if ev.Path == "" {
		c.log.Warn("revalidation event without path, skipping")
		return nil
	}

	if err := c.service.ApplyRevalidation(ctx, ev.Path); err != nil {
		return err
	}

	c.log.Debug("revalidation applied", slog.String("path", ev.Path))
	return nil
}

// Close — graceful shutdown консьюмера
func (c *Consumer) Close() error {
	c.log.Info("closing kafka consumer")
	return c.reader.Close()
}
