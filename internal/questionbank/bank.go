// Package questionbank загружает неизменяемый каталог вопросов анкеты.
package questionbank

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yourusername/recruit-intake/internal/domain/entity"
	apperrors "github.com/yourusername/recruit-intake/internal/pkg/errors"
)

//go:embed default_bank.yaml
var defaultBankYAML []byte

// Баллы по умолчанию: 1 за вопрос с выбором, до 2 за свободный ответ
const (
	defaultChoicePoints = 1.0
	defaultTextPoints   = 2.0
)

// Scoring описывает шкалу оценки, которую бэкенд применяет к анкете
type Scoring struct {
	ChoicePoints float64 `yaml:"choice_points"`
	TextPoints   float64 `yaml:"text_points"`
	MaxScore     float64 `yaml:"max_score"`
}

type bankFile struct {
	Scoring        Scoring           `yaml:"scoring"`
	MultipleChoice []entity.Question `yaml:"multiple_choice"`
	FreeText       []entity.Question `yaml:"free_text"`
}

// Bank - упорядоченный каталог вопросов двух типов.
// После создания не изменяется; все методы доступа возвращают копии.
type Bank struct {
	choice   []entity.Question
	text     []entity.Question
	maxScore float64
}

// New проверяет вопросы и создает каталог.
// Идентификаторы должны идти подряд с 1: сначала вопросы с выбором, затем текстовые.
func New(choice, text []entity.Question, scoring Scoring) (*Bank, error) {
	b := &Bank{
		choice: cloneQuestions(choice, entity.QuestionKindChoice),
		text:   cloneQuestions(text, entity.QuestionKindText),
	}

	expectedID := 1
	for _, q := range b.All() {
		if q.ID != expectedID {
			return nil, fmt.Errorf("%w: question id %d out of sequence, expected %d", apperrors.ErrValidation, q.ID, expectedID)
		}
		if strings.TrimSpace(q.Text) == "" {
			return nil, fmt.Errorf("%w: question %d has empty text", apperrors.ErrValidation, q.ID)
		}
		if q.IsChoice() && q.OptionsCount() != entity.OptionsPerQuestion {
			return nil, fmt.Errorf("%w: question %d must have exactly %d options, got %d",
				apperrors.ErrValidation, q.ID, entity.OptionsPerQuestion, q.OptionsCount())
		}
		if !q.IsChoice() && q.OptionsCount() != 0 {
			return nil, fmt.Errorf("%w: free-text question %d must not have options", apperrors.ErrValidation, q.ID)
		}
		expectedID++
	}
	if b.Len() == 0 {
		return nil, fmt.Errorf("%w: question bank is empty", apperrors.ErrValidation)
	}

	b.maxScore = scoring.MaxScore
	if b.maxScore <= 0 {
		choicePoints := scoring.ChoicePoints
		if choicePoints <= 0 {
			choicePoints = defaultChoicePoints
		}
		textPoints := scoring.TextPoints
		if textPoints <= 0 {
			textPoints = defaultTextPoints
		}
		b.maxScore = choicePoints*float64(len(b.choice)) + textPoints*float64(len(b.text))
	}

	return b, nil
}

// Parse разбирает каталог из YAML
func Parse(data []byte) (*Bank, error) {
	var f bankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}
	return New(f.MultipleChoice, f.FreeText, f.Scoring)
}

// Load загружает каталог из файла. Пустой путь означает встроенный каталог по умолчанию.
func Load(path string) (*Bank, error) {
	if path == "" {
		log.Println("[QuestionBank] Путь к каталогу вопросов не задан, используется встроенный каталог")
		return Parse(defaultBankYAML)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank %s: %w", path, err)
	}
	bank, err := Parse(data)
	if err != nil {
		return nil, err
	}
	log.Printf("[QuestionBank] Загружено %d вопросов из %s", bank.Len(), path)
	return bank, nil
}

// Default возвращает встроенный каталог
func Default() *Bank {
	bank, err := Parse(defaultBankYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded question bank is invalid: %v", err))
	}
	return bank
}

// WithMaxScore возвращает копию каталога с другим максимальным баллом
func (b *Bank) WithMaxScore(maxScore float64) *Bank {
	if maxScore <= 0 {
		return b
	}
	return &Bank{choice: b.choice, text: b.text, maxScore: maxScore}
}

// Choice возвращает вопросы с выбором
func (b *Bank) Choice() []entity.Question {
	return cloneQuestions(b.choice, entity.QuestionKindChoice)
}

// Text возвращает вопросы со свободным ответом
func (b *Bank) Text() []entity.Question {
	return cloneQuestions(b.text, entity.QuestionKindText)
}

// All возвращает все вопросы в порядке каталога
func (b *Bank) All() []entity.Question {
	return append(b.Choice(), b.Text()...)
}

// ChoiceCount возвращает количество вопросов с выбором
func (b *Bank) ChoiceCount() int { return len(b.choice) }

// TextCount возвращает количество текстовых вопросов
func (b *Bank) TextCount() int { return len(b.text) }

// Len возвращает общее количество вопросов
func (b *Bank) Len() int { return len(b.choice) + len(b.text) }

// MaxScore возвращает максимально возможный суммарный балл кандидата
func (b *Bank) MaxScore() float64 { return b.maxScore }

func cloneQuestions(src []entity.Question, kind entity.QuestionKind) []entity.Question {
	out := make([]entity.Question, len(src))
	for i, q := range src {
		q.Kind = kind
		if q.Options != nil {
			q.Options = append([]string(nil), q.Options...)
		}
		out[i] = q
	}
	return out
}
