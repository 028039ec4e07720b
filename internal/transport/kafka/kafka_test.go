package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/asquebay/simple-storefront/internal/lib/logger"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

// fakeReader отдаёт заранее заданные сообщения, затем io.EOF
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		return kafka.Message{}, io.EOF
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

type recordingHandler struct {
	paths []string
	fail  map[string]bool
}

func (h *recordingHandler) ApplyRevalidation(_ context.Context, path string) error {
	if h.fail[path] {
		return errors.New("temporary failure")
	}
	h.paths = append(h.paths, path)
	return nil
}

func TestPublisherWritesOneMessagePerPath(t *testing.T) {
	w := &fakeWriter{}
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p := &Publisher{writer: w, now: func() time.Time { return at }}

	require.NoError(t, p.Revalidate(context.Background(), "/products/p1", "/"))
	require.Len(t, w.msgs, 2)
	assert.Equal(t, "/products/p1", string(w.msgs[0].Key))

	var ev Revalidation
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &ev))
	assert.Equal(t, Revalidation{Path: "/products/p1", At: at}, ev)

	require.NoError(t, p.Revalidate(context.Background()))
	assert.Len(t, w.msgs, 2)
}

func TestPublisherWrapsWriteError(t *testing.T) {
	p := &Publisher{writer: &fakeWriter{err: errors.New("broker down")}, now: time.Now}
	err := p.Revalidate(context.Background(), "/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestConsumerCommitsOnlyHandledMessages(t *testing.T) {
	good, _ := json.Marshal(Revalidation{Path: "/products/p1"})
	failing, _ := json.Marshal(Revalidation{Path: "/products/p2"})
	reader := &fakeReader{queue: []kafka.Message{
		{Offset: 1, Value: good},
		{Offset: 2, Value: []byte("{broken")},
		{Offset: 3, Value: failing},
	}}
	handler := &recordingHandler{fail: map[string]bool{"/products/p2": true}}
	c := &Consumer{reader: reader, service: handler, log: logger.Discard()}

	c.Run(context.Background())

	assert.Equal(t, []string{"/products/p1"}, handler.paths)
	// битое сообщение подтверждается, сбой обработки — нет
	require.Len(t, reader.committed, 2)
	assert.Equal(t, int64(1), reader.committed[0].Offset)
	assert.Equal(t, int64(2), reader.committed[1].Offset)
}

func TestConsumerStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &Consumer{reader: &fakeReader{}, service: &recordingHandler{}, log: logger.Discard()}
	c.Run(ctx)
}
