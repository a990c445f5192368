package intake

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/yourusername/recruit-intake/internal/questionbank"
)

// DefaultIdleTimeout - время бездействия, после которого анкета посетителя удаляется
const DefaultIdleTimeout = 30 * time.Minute

// DefaultUnwatchedPollTimeout - сколько опрос статуса продолжается без открытого просмотра
const DefaultUnwatchedPollTimeout = 2 * time.Minute

// Registry хранит анкеты посетителей по идентификатору из cookie
type Registry struct {
	mu        sync.Mutex
	workflows map[string]*Workflow

	ctx         context.Context
	bank        *questionbank.Bank
	backend     Backend
	opts        []Option
	idleTimeout time.Duration

	unwatchedPollTimeout time.Duration
}

// NewRegistry создает реестр анкет
func NewRegistry(ctx context.Context, bank *questionbank.Bank, backend Backend, idleTimeout time.Duration, opts ...Option) *Registry {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Registry{
		workflows:   make(map[string]*Workflow),
		ctx:         ctx,
		bank:        bank,
		backend:     backend,
		opts:        opts,
		idleTimeout: idleTimeout,

		unwatchedPollTimeout: DefaultUnwatchedPollTimeout,
	}
}

// SetUnwatchedPollTimeout задает, через сколько бездействия без просмотра останавливается опрос.
// Анкета остается в реестре, опрос возобновится при следующем просмотре.
func (r *Registry) SetUnwatchedPollTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	r.mu.Lock()
	r.unwatchedPollTimeout = d
	r.mu.Unlock()
}

// GetOrCreate возвращает анкету посетителя, создавая ее при первом обращении
func (r *Registry) GetOrCreate(visitorID string) (*Workflow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.workflows[visitorID]; ok {
		// Под r.mu: Sweep не удалит анкету между выдачей и использованием
		w.touch()
		return w, false
	}
	w := NewWorkflow(r.ctx, r.bank, r.backend, r.opts...)
	r.workflows[visitorID] = w
	return w, true
}

// Get возвращает анкету посетителя, если она есть
func (r *Registry) Get(visitorID string) (*Workflow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workflows[visitorID]
	if ok {
		w.touch()
	}
	return w, ok
}

// Remove удаляет анкету и останавливает ее опрос
func (r *Registry) Remove(visitorID string) {
	r.mu.Lock()
	w, ok := r.workflows[visitorID]
	delete(r.workflows, visitorID)
	r.mu.Unlock()

	if ok {
		w.Close()
	}
}

// Len возвращает количество анкет в реестре
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workflows)
}

// Sweep удаляет анкеты без открытого просмотра, бездействующие дольше idleTimeout,
// и останавливает опрос у анкет без просмотра, бездействующих дольше unwatchedPollTimeout.
// Возвращает количество удаленных анкет.
func (r *Registry) Sweep(now time.Time) int {
	var evicted, idlePolling []*Workflow

	r.mu.Lock()
	for id, w := range r.workflows {
		if w.HasWatchers() {
			continue
		}
		idle := now.Sub(w.LastActive())
		switch {
		case idle > r.idleTimeout:
			evicted = append(evicted, w)
			delete(r.workflows, id)
		case idle > r.unwatchedPollTimeout && w.IsPolling():
			idlePolling = append(idlePolling, w)
		}
	}
	r.mu.Unlock()

	for _, w := range evicted {
		w.Close()
	}
	for _, w := range idlePolling {
		w.TeardownUnwatched()
	}
	if len(evicted) > 0 {
		log.Printf("[Registry] Удалено неактивных анкет: %d", len(evicted))
	}
	if len(idlePolling) > 0 {
		log.Printf("[Registry] Остановлен опрос анкет без просмотра: %d", len(idlePolling))
	}
	return len(evicted)
}

// Run периодически вызывает Sweep до отмены ctx
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	log.Printf("[Registry] Очистка неактивных анкет запущена (интервал %v, таймаут %v)", every, r.idleTimeout)
	for {
		select {
		case <-ctx.Done():
			log.Println("[Registry] Очистка неактивных анкет остановлена")
			return
		case now := <-ticker.C:
			r.Sweep(now)
		}
	}
}

// Close закрывает все анкеты. Вызывается при остановке сервера.
func (r *Registry) Close() {
	r.mu.Lock()
	all := make([]*Workflow, 0, len(r.workflows))
	for id, w := range r.workflows {
		all = append(all, w)
		delete(r.workflows, id)
	}
	r.mu.Unlock()

	for _, w := range all {
		w.Close()
	}
	log.Printf("[Registry] Закрыто анкет: %d", len(all))
}
