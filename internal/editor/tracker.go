package editor

import (
	"context"
	"sync"
	"time"

	"github.com/annel0/caaluza/internal/brick"
	"github.com/annel0/caaluza/internal/mapformat"
	"github.com/annel0/caaluza/internal/validation"
)

// Validator проверяет карту. Реализуется HTTP-клиентом сервиса
// и встроенным validation.Engine.
type Validator interface {
	Validate(ctx context.Context, m mapformat.Map) (validation.Result, error)
}

// ValidationStats содержит счётчики обработанных ответов валидатора
type ValidationStats struct {
	Requested int
	Applied   int
	Discarded int
	Failed    int
}

// tracker запускает проходы валидации. Каждый запрос получает номер
// поколения; ответы применяются в порядке прихода, но ответ с номером
// не больше последнего применённого отбрасывается.
type tracker struct {
	s           *Session
	validator   Validator
	timeout     time.Duration
	onValidated func(validation.Result)

	// Защищены s.mu
	generation uint64
	applied    uint64
	ctx        context.Context
	cancel     context.CancelFunc
	stats      ValidationStats

	wg sync.WaitGroup
}

func newTracker(s *Session, v Validator, timeout time.Duration, onValidated func(validation.Result)) *tracker {
	return &tracker{
		s:           s,
		validator:   v,
		timeout:     timeout,
		onValidated: onValidated,
	}
}

// request вызывается автоматом под s.mu после отпускания или удаления
func (t *tracker) request() {
	if t.validator == nil {
		return
	}

	t.generation++
	gen := t.generation
	t.stats.Requested++

	placed := t.s.bricks.Placed()
	ids := make([]brick.ID, len(placed))
	for i, b := range placed {
		ids[i] = b.ID()
	}
	m := mapformat.ToWire(placed, mapformat.NewMetadata(t.s.title, ""))

	if t.ctx == nil {
		t.ctx, t.cancel = context.WithCancel(context.Background())
	}
	ctx, cancel := context.WithTimeout(t.ctx, t.timeout)

	t.wg.Add(1)
	go t.run(ctx, cancel, gen, ids, m)
}

func (t *tracker) run(ctx context.Context, cancel context.CancelFunc, gen uint64, ids []brick.ID, m mapformat.Map) {
	defer t.wg.Done()
	defer cancel()

	res, err := t.validator.Validate(ctx, m)

	t.s.mu.Lock()
	if gen <= t.applied {
		t.stats.Discarded++
		t.s.mu.Unlock()
		t.s.log.Debug("устаревший ответ валидатора отброшен (поколение %d, применено %d)", gen, t.applied)
		return
	}
	if err != nil {
		t.stats.Failed++
		t.s.mu.Unlock()
		t.s.log.Warn("валидация не выполнена, отметки не изменены: %v", err)
		return
	}
	t.applied = gen
	marked := t.applyLocked(res, ids)
	t.stats.Applied++
	t.s.mu.Unlock()

	t.s.log.Debug("валидация поколения %d: valid=%t, помечено %d", gen, res.Valid, marked)
	if t.onValidated != nil {
		t.onValidated(res)
	}
}

// applyLocked снимает все отметки Invalid и ставит их заново по индексам
// из ответа. Индекс указывает на кирпич из снимка, отправленного в запросе;
// удалённые с тех пор кирпичи и кирпичи в руке пропускаются.
func (t *tracker) applyLocked(res validation.Result, ids []brick.ID) int {
	for _, b := range t.s.bricks.All() {
		b.ResetValidity()
	}
	if res.Valid {
		return 0
	}

	marked := 0
	for _, idx := range res.Offending() {
		if idx < 0 || idx >= len(ids) {
			t.s.log.Warn("валидатор вернул индекс вне карты: %d", idx)
			continue
		}
		b, ok := t.s.bricks.Get(ids[idx])
		if !ok {
			continue
		}
		if b.MarkInvalid() {
			marked++
		}
	}
	return marked
}

// invalidateLocked делает все запущенные запросы устаревшими и отменяет их
func (t *tracker) invalidateLocked() {
	t.generation++
	t.applied = t.generation
	if t.cancel != nil {
		t.cancel()
		t.ctx, t.cancel = nil, nil
	}
}

func (t *tracker) wait() {
	t.wg.Wait()
}

// ValidationStats возвращает счётчики ответов валидатора
func (s *Session) ValidationStats() ValidationStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.stats
}
