package intake

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yourusername/recruit-intake/internal/domain/entity"
)

// DefaultPollInterval - интервал опроса статуса оценки по умолчанию
const DefaultPollInterval = 2 * time.Second

// StatusSource возвращает текущий статус оценки анкеты
type StatusSource interface {
	EvaluationStatus(ctx context.Context, candidateID int) (entity.EvaluationStatus, error)
}

// fixedInterval - расписание cron с точным интервалом.
// В отличие от "@every" не округляет интервал до секунд.
type fixedInterval time.Duration

func (d fixedInterval) Next(t time.Time) time.Time {
	return t.Add(time.Duration(d))
}

// Poller периодически запрашивает статус оценки одной анкеты.
// Каждый тик выполняет независимый запрос, зависший запрос не задерживает следующий тик.
// Остановка происходит ровно один раз: по финальному статусу или через Cancel.
type Poller struct {
	candidateID int
	source      StatusSource
	onStatus    func(*Poller, entity.EvaluationStatus)

	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc

	once    sync.Once
	stopped context.Context
}

// StartPoller запускает опрос статуса анкеты candidateID.
// onStatus вызывается из горутины тика для каждого успешно полученного статуса.
func StartPoller(parent context.Context, candidateID int, interval time.Duration, source StatusSource,
	onStatus func(*Poller, entity.EvaluationStatus)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ctx, cancel := context.WithCancel(parent)

	p := &Poller{
		candidateID: candidateID,
		source:      source,
		onStatus:    onStatus,
		cron:        cron.New(cron.WithLogger(cron.DefaultLogger)),
		ctx:         ctx,
		cancel:      cancel,
	}
	p.cron.Schedule(fixedInterval(interval), cron.FuncJob(p.tick))
	p.cron.Start()

	log.Printf("[Poller] Запущен опрос статуса анкеты #%d каждые %v", candidateID, interval)
	return p
}

// CandidateID возвращает идентификатор опрашиваемой анкеты
func (p *Poller) CandidateID() int {
	return p.candidateID
}

// Done закрывается, когда опрос остановлен (финальный статус или Cancel)
func (p *Poller) Done() <-chan struct{} {
	return p.ctx.Done()
}

// Cancel останавливает опрос и ждет завершения уже начатых тиков.
// После возврата новых запросов статуса не будет. Повторный вызов безопасен.
// Нельзя вызывать из onStatus.
func (p *Poller) Cancel() {
	p.halt()
	p.wait()
}

// wait ждет завершения начатых тиков после halt
func (p *Poller) wait() {
	<-p.stopped.Done()
}

// halt отменяет контекст и останавливает расписание, не дожидаясь текущих тиков
func (p *Poller) halt() {
	p.once.Do(func() {
		p.cancel()
		p.stopped = p.cron.Stop()
	})
}

func (p *Poller) tick() {
	if p.ctx.Err() != nil {
		return
	}

	status, err := p.source.EvaluationStatus(p.ctx, p.candidateID)
	if p.ctx.Err() != nil {
		// Опрос остановлен во время запроса, результат не нужен
		return
	}
	if err != nil {
		log.Printf("[Poller] Ошибка получения статуса анкеты #%d: %v", p.candidateID, err)
		return
	}

	if p.onStatus != nil {
		p.onStatus(p, status)
	}

	if status.IsTerminal() {
		log.Printf("[Poller] Анкета #%d получила финальный статус %s, опрос остановлен", p.candidateID, status)
		p.halt()
	}
}
