package entity

import "encoding/json"

// Answer - ответ кандидата на один вопрос в том виде, в котором он уходит на бэкенд.
// Текст вопроса дублируется, чтобы бэкенд мог оценивать ответ без своей копии анкеты.
type Answer struct {
	Type     QuestionKind
	ID       int
	Question string
	Selected string // буква варианта или "" для вопросов с выбором
	Answer   string // свободный ответ для текстовых вопросов
}

type choiceAnswerJSON struct {
	Type     QuestionKind `json:"type"`
	ID       int          `json:"id"`
	Question string       `json:"question"`
	Selected string       `json:"selected"`
}

type textAnswerJSON struct {
	Type     QuestionKind `json:"type"`
	ID       int          `json:"id"`
	Question string       `json:"question"`
	Answer   string       `json:"answer"`
}

// MarshalJSON сериализует ответ в зависимости от типа вопроса:
// {type,id,question,selected} для "mc" и {type,id,question,answer} для "text".
// Пустой selected сохраняется в JSON, чтобы бэкенд видел неотвеченный вопрос.
func (a Answer) MarshalJSON() ([]byte, error) {
	if a.Type == QuestionKindChoice {
		return json.Marshal(choiceAnswerJSON{Type: a.Type, ID: a.ID, Question: a.Question, Selected: a.Selected})
	}
	return json.Marshal(textAnswerJSON{Type: a.Type, ID: a.ID, Question: a.Question, Answer: a.Answer})
}

// CandidateSubmission - анкета кандидата, отправляемая на бэкенд.
// Идентификатор назначает бэкенд при приеме анкеты.
type CandidateSubmission struct {
	Name    string   `json:"name"`
	Phone   string   `json:"phone"`
	Answers []Answer `json:"answers"`
}

// AnswerIDs возвращает идентификаторы вопросов в порядке ответов
func (s *CandidateSubmission) AnswerIDs() []int {
	ids := make([]int, len(s.Answers))
	for i, a := range s.Answers {
		ids[i] = a.ID
	}
	return ids
}
