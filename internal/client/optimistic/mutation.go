// Package optimistic применяет результат мутации к кэшу до ответа сервера
// и откатывает его при отказе
//
// Порядок для каждого вызова:
//  1. отменить запросы затронутых ключей, снять снимки, записать предполагаемые значения, отправить запрос;
//  2. при ошибке вернуть каждый затронутый ключ к снимку целиком;
//  3. при любом исходе пометить затронутые ключи устаревшими.
package optimistic

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/asquebay/simple-storefront/internal/client/querycache"
)

// Phase — фаза вызова мутации
type Phase int

const (
	Idle Phase = iota
	Pending
	ReconciledSuccess
	ReconciledError
	Settled
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case ReconciledSuccess:
		return "reconciled-success"
	case ReconciledError:
		return "reconciled-error"
	case Settled:
		return "settled"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Event сообщает о смене фазы
type Event struct {
	Mutation string
	Phase    Phase
	Keys     []querycache.Key
	Err      error
}

// Cache — операции кэша, нужные мутации; *querycache.Store его реализует
type Cache interface {
	Cancel(ctx context.Context, key querycache.Key) error
	Snapshot(key querycache.Key) querycache.Entry
	Set(key querycache.Key, updater func(prev any, ok bool) (any, bool)) bool
	Restore(key querycache.Key, snap querycache.Entry)
	Invalidate(key querycache.Key)
	InvalidateEndpoint(endpoint string)
}

// Patch — предполагаемое изменение одной записи
type Patch struct {
	Key    querycache.Key
	Update func(prev any, ok bool) (any, bool)
}

// Mutation описывает одну оптимистичную мутацию
type Mutation[In, Out any] struct {
	Name  string
	Cache Cache
	Send  func(ctx context.Context, in In) (Out, error)

	// Patches строит предполагаемые изменения; Update применяется после отмены запросов
	Patches func(in In) []Patch
	// Related — ключи, которые мутация не меняет сразу, но которые надо перечитать
	Related func(in In) []querycache.Key
	// Endpoints — процедуры, все записи которых устаревают после мутации
	Endpoints func(in In) []string

	Observer func(Event)
	Log      *slog.Logger
}

// Do выполняет мутацию; ошибка Send возвращается как есть, кэш к этому моменту уже откатан
func (m *Mutation[In, Out]) Do(ctx context.Context, in In) (Out, error) {
	var out Out

	var patches []Patch
	if m.Patches != nil {
		patches = m.Patches(in)
	}
	keys := m.keys(in, patches)
	m.report(Event{Phase: Pending, Keys: keys})

	// settle выполняется при любом исходе, даже при панике в Send
	defer m.settle(in, keys)

	// 1. Отменяем запросы, иначе поздний ответ перезапишет предполагаемое значение
	for _, k := range keys {
		if err := m.Cache.Cancel(ctx, k); err != nil {
			err = fmt.Errorf("%s: failed to cancel %s: %w", m.Name, k, err)
			m.report(Event{Phase: ReconciledError, Keys: keys, Err: err})
			return out, err
		}
	}

	// 2. Снимки всех затронутых ключей
	snapshots := make(map[querycache.Key]querycache.Entry, len(keys))
	for _, k := range keys {
		snapshots[k] = m.Cache.Snapshot(k)
	}

	// 3. Предполагаемые значения
	for _, p := range patches {
		m.Cache.Set(p.Key, p.Update)
	}

	// 4. Запрос
	out, err := m.Send(ctx, in)
	if err != nil {
		for k, snap := range snapshots {
			m.Cache.Restore(k, snap)
		}
		m.report(Event{Phase: ReconciledError, Keys: keys, Err: err})
		return out, err
	}

	// ответ сервера не пишем: правдой станет перечитанное после settle
	m.report(Event{Phase: ReconciledSuccess, Keys: keys})
	return out, nil
}

// keys собирает затронутые ключи без повторов в порядке появления
func (m *Mutation[In, Out]) keys(in In, patches []Patch) []querycache.Key {
	seen := make(map[querycache.Key]struct{})
	var keys []querycache.Key
	add := func(k querycache.Key) {
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	for _, p := range patches {
		add(p.Key)
	}
	if m.Related != nil {
		for _, k := range m.Related(in) {
			add(k)
		}
	}
	return keys
}

func (m *Mutation[In, Out]) settle(in In, keys []querycache.Key) {
	for _, k := range keys {
		m.Cache.Invalidate(k)
	}
	if m.Endpoints != nil {
		for _, ep := range m.Endpoints(in) {
			m.Cache.InvalidateEndpoint(ep)
		}
	}
	m.report(Event{Phase: Settled, Keys: keys})
}

func (m *Mutation[In, Out]) report(ev Event) {
	ev.Mutation = m.Name
	if m.Log != nil {
		attrs := []any{slog.String("mutation", m.Name), slog.String("phase", ev.Phase.String())}
		if ev.Err != nil {
			attrs = append(attrs, slog.String("error", ev.Err.Error()))
		}
		m.Log.Debug("mutation phase", attrs...)
	}
	if m.Observer != nil {
		m.Observer(ev)
	}
}
