// Package querycache хранит последние ответы процедур чтения на стороне клиента
//
// Ключ записи — пара (процедура, сериализованный вход). Запись живёт только в памяти,
// после перезапуска всё заново читается с сервера.
package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrCancelled возвращается запросу, результат которого отброшен после Cancel
var ErrCancelled = errors.New("query cancelled")

// Key определяет запись кэша
type Key struct {
	Endpoint string
	Input    string
}

// KeyFor строит ключ; вход сериализуется в JSON, nil даёт пустой вход
func KeyFor(endpoint string, input any) (Key, error) {
	if input == nil {
		return Key{Endpoint: endpoint}, nil
	}
	raw, err := json.Marshal(input)
	if err != nil {
		return Key{}, fmt.Errorf("querycache: input of %s: %w", endpoint, err)
	}
	return Key{Endpoint: endpoint, Input: string(raw)}, nil
}

// MustKeyFor как KeyFor, но паникует на входе, который нельзя сериализовать
// подходит для входа из простых структур, где ошибки быть не может
func MustKeyFor(endpoint string, input any) Key {
	k, err := KeyFor(endpoint, input)
	if err != nil {
		panic(err)
	}
	return k
}

func (k Key) String() string {
	return k.Endpoint + "?" + k.Input
}

// Fetcher читает значение с сервера
type Fetcher func(ctx context.Context) (any, error)

// Entry — снимок записи
type Entry struct {
	Value     any
	HasValue  bool
	UpdatedAt time.Time
	Stale     bool
	InFlight  int
	Observers int
}

// flight — один запрос к серверу; value и err читаются после закрытия done
type flight struct {
	cancel context.CancelFunc
	done   chan struct{}
	gen    uint64
	value  any
	err    error
}

type entry struct {
	value     any
	hasValue  bool
	updatedAt time.Time
	stale     bool
	inFlight  int

	// текущий запрос и поколение; Cancel увеличивает gen,
	// и результат запроса прежнего поколения уже не записывается
	flight *flight
	gen    uint64

	observers int
	fetcher   Fetcher
}

func (e *entry) snapshot() Entry {
	return Entry{
		Value:     e.value,
		HasValue:  e.hasValue,
		UpdatedAt: e.updatedAt,
		Stale:     e.stale,
		InFlight:  e.inFlight,
		Observers: e.observers,
	}
}

// Store — кэш ответов процедур чтения
type Store struct {
	mu      sync.Mutex
	entries map[Key]*entry
	bg      sync.WaitGroup
	now     func() time.Time
	log     *slog.Logger
}

func New(log *slog.Logger) *Store {
	return &Store{
		entries: make(map[Key]*entry),
		now:     time.Now,
		log:     log,
	}
}

func (s *Store) entryLocked(key Key) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	return e
}

// Get возвращает последнее известное значение, не блокируясь
func (s *Store) Get(key Key) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !e.hasValue {
		return Entry{}, false
	}
	return e.snapshot(), true
}

// Snapshot возвращает снимок записи, даже если значения ещё нет
func (s *Store) Snapshot(key Key) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		return e.snapshot()
	}
	return Entry{}
}

// Set заменяет значение результатом updater
// updater получает прежнее значение и признак его наличия; write=false оставляет запись как есть
func (s *Store) Set(key Key, updater func(prev any, ok bool) (next any, write bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entryLocked(key)
	next, write := updater(e.value, e.hasValue)
	if !write {
		return false
	}
	e.value = next
	e.hasValue = true
	e.updatedAt = s.now()
	return true
}

// Update — типизированный Set: пишет, только если значение уже загружено и имеет тип T
func Update[T any](s *Store, key Key, fn func(prev T) T) bool {
	return s.Set(key, func(prev any, ok bool) (any, bool) {
		if !ok {
			return nil, false
		}
		typed, ok := prev.(T)
		if !ok {
			return nil, false
		}
		return fn(typed), true
	})
}

// Restore возвращает запись к снимку дословно
func (s *Store) Restore(key Key, snap Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entryLocked(key)
	e.value = snap.Value
	e.hasValue = snap.HasValue
	e.updatedAt = snap.UpdatedAt
	e.stale = snap.Stale
}

// Fetch читает значение через fetcher; одновременные запросы одного ключа сливаются в один
// ctx ограничивает только ожидание вызывающего, сам запрос отменяет Cancel
func (s *Store) Fetch(ctx context.Context, key Key, fetch Fetcher) (any, error) {
	f := s.start(key, fetch)

	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// start регистрирует запрос под блокировкой до запуска горутины,
// поэтому Cancel видит и запрос, который ещё не начал выполняться
func (s *Store) start(key Key, fetch Fetcher) *flight {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entryLocked(key)
	if f := e.flight; f != nil && f.gen == e.gen {
		return f
	}

	fctx, cancel := context.WithCancel(context.Background())
	f := &flight{cancel: cancel, done: make(chan struct{}), gen: e.gen}
	e.flight = f
	e.inFlight++
	go s.run(fctx, e, f, fetch)
	return f
}

func (s *Store) run(ctx context.Context, e *entry, f *flight, fetch Fetcher) {
	var value any
	err := ctx.Err()
	if err == nil {
		value, err = fetch(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer close(f.done)
	defer f.cancel()

	e.inFlight--
	if e.flight == f {
		e.flight = nil
	}
	if f.gen != e.gen {
		f.err = ErrCancelled
		return
	}
	if err != nil {
		f.err = err
		return
	}

	f.value = value
	e.value = value
	e.hasValue = true
	e.updatedAt = s.now()
	e.stale = false
}

// Cancel отменяет запросы ключа и дожидается завершения текущего,
// так поздний ответ не перезапишет значение, записанное после Cancel
func (s *Store) Cancel(ctx context.Context, key Key) error {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok || e.inFlight == 0 {
		s.mu.Unlock()
		return nil
	}
	e.gen++
	f := e.flight
	// следующий Fetch начнёт новый запрос, а не присоединится к отменённому
	e.flight = nil
	s.mu.Unlock()

	if f == nil {
		// остались только запросы, отменённые раньше
		return nil
	}
	f.cancel()

	select {
	case <-f.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Invalidate помечает запись устаревшей; наблюдаемая запись перечитывается в фоне
func (s *Store) Invalidate(key Key) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	e.stale = true
	fetch := e.fetcher
	observed := e.observers > 0 && fetch != nil
	s.mu.Unlock()

	if observed {
		s.refetch(key, fetch)
	}
}

// InvalidateEndpoint помечает устаревшими все записи процедуры
func (s *Store) InvalidateEndpoint(endpoint string) {
	s.mu.Lock()
	keys := make([]Key, 0)
	for k := range s.entries {
		if k.Endpoint == endpoint {
			keys = append(keys, k)
		}
	}
	s.mu.Unlock()

	for _, k := range keys {
		s.Invalidate(k)
	}
}

// Observe отмечает, что запись показана пользователю
// пустая или устаревшая запись сразу перечитывается; возвращает функцию отписки
func (s *Store) Observe(key Key, fetch Fetcher) (unobserve func()) {
	s.mu.Lock()
	e := s.entryLocked(key)
	e.observers++
	e.fetcher = fetch
	load := !e.hasValue || e.stale
	s.mu.Unlock()

	if load {
		s.refetch(key, fetch)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			e.observers--
			if e.observers == 0 {
				e.fetcher = nil
			}
		})
	}
}

// Loading сообщает, идёт ли сейчас запрос ключа
func (s *Store) Loading(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	return ok && e.inFlight > 0
}

// Wait дожидается фоновых перечитываний
func (s *Store) Wait() {
	s.bg.Wait()
}

// refetch регистрирует запрос синхронно, в фоне только ждёт его результата
func (s *Store) refetch(key Key, fetch Fetcher) {
	f := s.start(key, fetch)

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		<-f.done
		if f.err != nil && !errors.Is(f.err, ErrCancelled) {
			s.log.Warn("background refetch failed", slog.String("key", key.String()), slog.String("error", f.err.Error()))
		}
	}()
}
