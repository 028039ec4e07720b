package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher отправляет события ревалидации страниц
type Publisher struct {
	writer messageWriter
	now    func() time.Time
}

// NewPublisher создает новый экземпляр продюсера
func NewPublisher(brokers []string, topic string) *Publisher {
	// настройки писателя (producer-а)
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Publisher{writer: writer, now: time.Now}
}

// Revalidate публикует по одному событию на каждый адрес
// ключом сообщения служит адрес, поэтому события одной страницы идут в одну партицию по порядку
func (p *Publisher) Revalidate(ctx context.Context, paths ...string) error {
	const op = "transport.kafka.Publisher.Revalidate"

	if len(paths) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(paths))
	for _, path := range paths {
		value, err := json.Marshal(Revalidation{Path: path, At: p.now().UTC()})
		if err != nil {
			return fmt.Errorf("%s: failed to marshal event: %w", op, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(path), Value: value})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("%s: failed to write messages: %w", op, err)
	}
	return nil
}

// Close закрывает продюсер
func (p *Publisher) Close() error {
	return p.writer.Close()
}
