package entity

// QuestionKind - тип вопроса анкеты
type QuestionKind string

const (
	// QuestionKindChoice - вопрос с выбором одного из четырех вариантов
	QuestionKindChoice QuestionKind = "mc"
	// QuestionKindText - вопрос со свободным ответом
	QuestionKindText QuestionKind = "text"
)

// OptionsPerQuestion - количество вариантов ответа у вопроса с выбором
const OptionsPerQuestion = 4

// Question представляет вопрос анкеты кандидата.
// ID - сквозной порядковый номер (1..N), по нему бэкенд сопоставляет ответы.
type Question struct {
	ID      int          `yaml:"id" json:"id"`
	Text    string       `yaml:"question" json:"question"`
	Kind    QuestionKind `yaml:"-" json:"type"`
	Options []string     `yaml:"options,omitempty" json:"options,omitempty"`
}

// IsChoice проверяет, является ли вопрос вопросом с выбором
func (q *Question) IsChoice() bool {
	return q.Kind == QuestionKindChoice
}

// OptionsCount возвращает количество вариантов ответа
func (q *Question) OptionsCount() int {
	return len(q.Options)
}

// Letters возвращает буквы вариантов ответа в порядке вариантов (A, B, C, D)
func (q *Question) Letters() []string {
	letters := make([]string, len(q.Options))
	for i := range q.Options {
		letters[i] = OptionLetter(i)
	}
	return letters
}

// OptionLetter переводит 0-based индекс варианта в букву (0 -> "A")
func OptionLetter(index int) string {
	return string(rune('A' + index))
}

// IsValidLetter проверяет букву выбранного варианта.
// Пустая строка допустима и означает "без ответа".
func IsValidLetter(letter string) bool {
	if letter == "" {
		return true
	}
	if len(letter) != 1 {
		return false
	}
	return letter[0] >= 'A' && letter[0] < 'A'+OptionsPerQuestion
}
