// Package intake реализует заполнение анкеты кандидатом, ее отправку
// и последующий опрос статуса AI-оценки.
package intake

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/yourusername/recruit-intake/internal/domain/entity"
	apperrors "github.com/yourusername/recruit-intake/internal/pkg/errors"
	"github.com/yourusername/recruit-intake/internal/questionbank"
)

// Phase - этап работы с анкетой
type Phase string

const (
	PhaseEditing    Phase = "editing"
	PhaseSubmitting Phase = "submitting"
	PhaseSubmitted  Phase = "submitted"
)

// Backend - операции бэкенда, которые нужны анкете
type Backend interface {
	SubmitCandidate(ctx context.Context, submission entity.CandidateSubmission) (int, error)
	StatusSource
}

// FormValues - значения полей анкеты.
// Choices и Texts выровнены по вопросам каталога соответствующего типа.
type FormValues struct {
	Name    string   `json:"name"`
	Phone   string   `json:"phone"`
	Choices []string `json:"choices"`
	Texts   []string `json:"texts"`
}

func (f FormValues) clone() FormValues {
	f.Choices = append([]string(nil), f.Choices...)
	f.Texts = append([]string(nil), f.Texts...)
	return f
}

// Snapshot - согласованный снимок состояния анкеты
type Snapshot struct {
	Phase        Phase                   `json:"phase"`
	Form         FormValues              `json:"form"`
	SubmissionID *int                    `json:"submission_id"`
	Status       entity.EvaluationStatus `json:"evaluation_status"`
	Error        string                  `json:"error,omitempty"`
	Polling      bool                    `json:"polling"`
}

// Option настраивает Workflow
type Option func(*Workflow)

// WithPollInterval задает интервал опроса статуса оценки
func WithPollInterval(d time.Duration) Option {
	return func(w *Workflow) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// Workflow - анкета одного посетителя.
// Правки полей разрешены только на этапе editing; сетевые запросы выполняются вне блокировки.
type Workflow struct {
	mu sync.Mutex

	ctx          context.Context
	bank         *questionbank.Bank
	backend      Backend
	pollInterval time.Duration

	phase        Phase
	form         FormValues
	submissionID *int
	status       entity.EvaluationStatus
	errMsg       string

	poller      *Poller
	watchers    map[int]func(Snapshot)
	nextWatchID int
	lastActive  time.Time
	closed      bool
}

// NewWorkflow создает анкету в состоянии editing с пустыми полями.
// ctx ограничивает время жизни фонового опроса.
func NewWorkflow(ctx context.Context, bank *questionbank.Bank, backend Backend, opts ...Option) *Workflow {
	w := &Workflow{
		ctx:          ctx,
		bank:         bank,
		backend:      backend,
		pollInterval: DefaultPollInterval,
		phase:        PhaseEditing,
		status:       entity.EvaluationUnknown,
		watchers:     make(map[int]func(Snapshot)),
		lastActive:   time.Now(),
	}
	w.form = w.emptyForm()
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Bank возвращает каталог вопросов анкеты
func (w *Workflow) Bank() *questionbank.Bank {
	return w.bank
}

func (w *Workflow) emptyForm() FormValues {
	return emptyForm(w.bank)
}

func emptyForm(bank *questionbank.Bank) FormValues {
	return FormValues{
		Choices: make([]string, bank.ChoiceCount()),
		Texts:   make([]string, bank.TextCount()),
	}
}

// EmptySnapshot - снимок новой анкеты, которая для посетителя еще не создана
func EmptySnapshot(bank *questionbank.Bank) Snapshot {
	return Snapshot{
		Phase:  PhaseEditing,
		Form:   emptyForm(bank),
		Status: entity.EvaluationUnknown,
	}
}

// Snapshot возвращает копию текущего состояния
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Workflow) snapshotLocked() Snapshot {
	s := Snapshot{
		Phase:   w.phase,
		Form:    w.form.clone(),
		Status:  w.status,
		Error:   w.errMsg,
		Polling: w.poller != nil,
	}
	if w.submissionID != nil {
		id := *w.submissionID
		s.SubmissionID = &id
	}
	return s
}

// LastActive возвращает время последнего обращения к анкете
func (w *Workflow) LastActive() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastActive
}

// touch отмечает обращение к анкете
func (w *Workflow) touch() {
	w.mu.Lock()
	w.lastActive = time.Now()
	w.mu.Unlock()
}

// IsPolling сообщает, идет ли сейчас опрос статуса оценки
func (w *Workflow) IsPolling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.poller != nil
}

// HasWatchers сообщает, открыт ли сейчас живой просмотр анкеты
func (w *Workflow) HasWatchers() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watchers) > 0
}

// SetName изменяет имя кандидата
func (w *Workflow) SetName(name string) error {
	return w.edit(func(f *FormValues) error {
		f.Name = name
		return nil
	})
}

// SetPhone изменяет телефон кандидата
func (w *Workflow) SetPhone(phone string) error {
	return w.edit(func(f *FormValues) error {
		f.Phone = phone
		return nil
	})
}

// SetChoice записывает букву варианта для вопроса с выбором index (0-based).
// Пустая буква снимает выбор.
func (w *Workflow) SetChoice(index int, letter string) error {
	return w.edit(func(f *FormValues) error {
		if index < 0 || index >= len(f.Choices) {
			return fmt.Errorf("%w: choice index %d out of range", apperrors.ErrValidation, index)
		}
		if !entity.IsValidLetter(letter) {
			return fmt.Errorf("%w: invalid option letter %q", apperrors.ErrValidation, letter)
		}
		choices := append([]string(nil), f.Choices...)
		choices[index] = letter
		f.Choices = choices
		return nil
	})
}

// SetText записывает свободный ответ на текстовый вопрос index (0-based)
func (w *Workflow) SetText(index int, text string) error {
	return w.edit(func(f *FormValues) error {
		if index < 0 || index >= len(f.Texts) {
			return fmt.Errorf("%w: text index %d out of range", apperrors.ErrValidation, index)
		}
		texts := append([]string(nil), f.Texts...)
		texts[index] = text
		f.Texts = texts
		return nil
	})
}

// SetForm заменяет все поля анкеты разом (отправка HTML-формы).
// Значения проверяются до изменения состояния.
func (w *Workflow) SetForm(values FormValues) error {
	return w.edit(func(f *FormValues) error {
		if len(values.Choices) != len(f.Choices) || len(values.Texts) != len(f.Texts) {
			return fmt.Errorf("%w: form has %d/%d answers, expected %d/%d", apperrors.ErrValidation,
				len(values.Choices), len(values.Texts), len(f.Choices), len(f.Texts))
		}
		for i, letter := range values.Choices {
			if !entity.IsValidLetter(letter) {
				return fmt.Errorf("%w: invalid option letter %q for choice %d", apperrors.ErrValidation, letter, i)
			}
		}
		*f = values.clone()
		return nil
	})
}

// edit применяет изменение к копии формы и сохраняет ее, если изменение прошло проверку
func (w *Workflow) edit(apply func(*FormValues) error) error {
	w.mu.Lock()
	w.lastActive = time.Now()
	if w.phase != PhaseEditing {
		w.mu.Unlock()
		return fmt.Errorf("%w: form is not editable in phase %s", apperrors.ErrConflict, w.phase)
	}
	next := w.form
	if err := apply(&next); err != nil {
		w.mu.Unlock()
		return err
	}
	w.form = next
	w.mu.Unlock()

	w.notify()
	return nil
}

// Submit проверяет и отправляет анкету.
// Пустые имя или телефон не приводят к запросу: анкета остается в editing с сообщением об ошибке.
// При ошибке бэкенда анкета возвращается в editing с сохранением введенных значений.
func (w *Workflow) Submit(ctx context.Context) error {
	w.mu.Lock()
	w.lastActive = time.Now()
	if w.phase != PhaseEditing {
		phase := w.phase
		w.mu.Unlock()
		return fmt.Errorf("%w: cannot submit in phase %s", apperrors.ErrConflict, phase)
	}
	w.errMsg = ""
	if strings.TrimSpace(w.form.Name) == "" || strings.TrimSpace(w.form.Phone) == "" {
		w.errMsg = MsgValidation
		w.mu.Unlock()
		w.notify()
		return fmt.Errorf("%w: name and phone are required", apperrors.ErrValidation)
	}
	submission := w.buildSubmission(w.form)
	w.phase = PhaseSubmitting
	w.mu.Unlock()
	w.notify()

	id, err := w.backend.SubmitCandidate(ctx, submission)

	w.mu.Lock()
	if err != nil {
		w.phase = PhaseEditing
		w.errMsg = MsgSubmitError
		w.mu.Unlock()
		log.Printf("[Intake] Ошибка отправки анкеты: %v", err)
		w.notify()
		return err
	}

	w.phase = PhaseSubmitted
	w.submissionID = &id
	w.status = entity.EvaluationPending
	w.form = w.emptyForm()
	w.startPollerLocked()
	w.mu.Unlock()

	log.Printf("[Intake] Анкета #%d отправлена", id)
	w.notify()
	return nil
}

// buildSubmission собирает ответы в порядке каталога: сначала вопросы с выбором, затем текстовые
func (w *Workflow) buildSubmission(form FormValues) entity.CandidateSubmission {
	answers := make([]entity.Answer, 0, w.bank.Len())
	for i, q := range w.bank.Choice() {
		answers = append(answers, entity.Answer{
			Type:     entity.QuestionKindChoice,
			ID:       q.ID,
			Question: q.Text,
			Selected: form.Choices[i],
		})
	}
	for i, q := range w.bank.Text() {
		answers = append(answers, entity.Answer{
			Type:     entity.QuestionKindText,
			ID:       q.ID,
			Question: q.Text,
			Answer:   form.Texts[i],
		})
	}
	return entity.CandidateSubmission{
		Name:    form.Name,
		Phone:   form.Phone,
		Answers: answers,
	}
}

// startPollerLocked запускает опрос, если он нужен и еще не запущен. Вызывается под w.mu.
func (w *Workflow) startPollerLocked() {
	if w.closed || w.poller != nil || w.phase != PhaseSubmitted || w.submissionID == nil || w.status.IsTerminal() {
		return
	}
	w.poller = StartPoller(w.ctx, *w.submissionID, w.pollInterval, w.backend, w.applyStatus)
}

// applyStatus принимает статус от опроса. Результаты устаревшего опроса отбрасываются,
// финальный статус больше не меняется.
func (w *Workflow) applyStatus(p *Poller, status entity.EvaluationStatus) {
	w.mu.Lock()
	if w.poller != p || w.phase != PhaseSubmitted || w.submissionID == nil || *w.submissionID != p.CandidateID() {
		w.mu.Unlock()
		return
	}
	if w.status.IsTerminal() {
		w.mu.Unlock()
		return
	}
	if status == entity.EvaluationUnknown {
		w.mu.Unlock()
		log.Printf("[Intake] Анкета #%d: бэкенд вернул неизвестный статус, опрос продолжается", p.CandidateID())
		return
	}
	if !status.IsTerminal() && statusRank(status) < statusRank(w.status) {
		// Запоздавший ответ более раннего тика
		w.mu.Unlock()
		return
	}
	changed := w.status != status
	w.status = status
	if status.IsTerminal() {
		p.halt()
		w.poller = nil
	}
	w.mu.Unlock()

	if changed || status.IsTerminal() {
		w.notify()
	}
}

// Activate вызывается при повторном показе анкеты и возобновляет опрос,
// если оценка еще не завершена. Повторный вызов не создает второй опрос.
func (w *Workflow) Activate() {
	w.mu.Lock()
	w.lastActive = time.Now()
	w.startPollerLocked()
	w.mu.Unlock()
}

// Watch подписывает fn на изменения состояния и активирует анкету.
// fn вызывается без блокировки и не должен блокироваться надолго.
// Когда отписывается последний наблюдатель, просмотр считается закрытым и опрос останавливается.
func (w *Workflow) Watch(fn func(Snapshot)) (stop func()) {
	w.mu.Lock()
	id := w.nextWatchID
	w.nextWatchID++
	w.watchers[id] = fn
	w.lastActive = time.Now()
	w.startPollerLocked()
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.watchers, id)
			w.lastActive = time.Now()
			w.mu.Unlock()

			w.TeardownUnwatched()
		})
	}
}

func (w *Workflow) notify() {
	w.mu.Lock()
	if len(w.watchers) == 0 {
		w.mu.Unlock()
		return
	}
	snap := w.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(w.watchers))
	for _, fn := range w.watchers {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Teardown останавливает опрос. После возврата запросов статуса больше не будет.
// Анкету можно снова активировать через Activate или Watch.
func (w *Workflow) Teardown() {
	w.teardown(false)
}

// TeardownUnwatched останавливает опрос, только если анкету сейчас никто не смотрит.
// Проверка и остановка идут под одной блокировкой: новый Watch не потеряет опрос.
func (w *Workflow) TeardownUnwatched() {
	w.teardown(true)
}

func (w *Workflow) teardown(onlyUnwatched bool) {
	w.mu.Lock()
	if onlyUnwatched && len(w.watchers) > 0 {
		w.mu.Unlock()
		return
	}
	p := w.poller
	w.poller = nil
	if p != nil {
		p.halt()
	}
	w.mu.Unlock()

	if p != nil {
		p.wait()
		log.Printf("[Intake] Опрос статуса анкеты #%d остановлен", p.CandidateID())
	}
}

// Close окончательно закрывает анкету: опрос останавливается и больше не запускается
func (w *Workflow) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.Teardown()
}

// SubmitAnother возвращает отправленную анкету к пустой форме.
// Текущий опрос отменяется до сброса состояния.
func (w *Workflow) SubmitAnother() error {
	w.mu.Lock()
	w.lastActive = time.Now()
	if w.phase != PhaseSubmitted {
		phase := w.phase
		w.mu.Unlock()
		return fmt.Errorf("%w: submit another is not available in phase %s", apperrors.ErrConflict, phase)
	}
	p := w.poller
	w.poller = nil
	if p != nil {
		p.halt()
	}
	w.phase = PhaseEditing
	w.form = w.emptyForm()
	w.submissionID = nil
	w.status = entity.EvaluationUnknown
	w.errMsg = ""
	w.mu.Unlock()

	if p != nil {
		p.wait()
	}
	w.notify()
	return nil
}

// statusRank упорядочивает нефинальные статусы: pending раньше processing
func statusRank(status entity.EvaluationStatus) int {
	switch status {
	case entity.EvaluationPending:
		return 1
	case entity.EvaluationProcessing:
		return 2
	default:
		return 0
	}
}
