package entity

// AnswerRecord - ответ кандидата с результатом оценки, как его отдает бэкенд работодателю
type AnswerRecord struct {
	Question           string       `json:"question"`
	Type               QuestionKind `json:"type"`
	Selected           *string      `json:"selected"`
	AnswerText         *string      `json:"answer_text"`
	EvaluationScore    *float64     `json:"evaluation_score"`
	EvaluationFeedback *string      `json:"evaluation_feedback"`
}

// Response возвращает ответ кандидата для отображения: букву для "mc", текст для "text"
func (a *AnswerRecord) Response() string {
	if a.Type == QuestionKindChoice {
		if a.Selected != nil {
			return *a.Selected
		}
		return ""
	}
	if a.AnswerText != nil {
		return *a.AnswerText
	}
	return ""
}

// IsEvaluated проверяет, есть ли у ответа числовая оценка
func (a *AnswerRecord) IsEvaluated() bool {
	return a.EvaluationScore != nil
}

// CandidateRecord - кандидат в списке работодателя (только чтение).
// CreatedAt хранится строкой: бэкенд отдает время без часового пояса.
type CandidateRecord struct {
	ID        int            `json:"id"`
	Name      string         `json:"name"`
	Phone     string         `json:"phone"`
	CreatedAt string         `json:"created_at,omitempty"`
	Answers   []AnswerRecord `json:"answers"`
}

// AggregateScore возвращает сумму всех числовых оценок по ответам кандидата.
// Кандидат без оценок получает 0.
func (c *CandidateRecord) AggregateScore() float64 {
	var total float64
	for i := range c.Answers {
		if c.Answers[i].EvaluationScore != nil {
			total += *c.Answers[i].EvaluationScore
		}
	}
	return total
}

// HasScores проверяет, есть ли у кандидата хотя бы одна оценка
func (c *CandidateRecord) HasScores() bool {
	for i := range c.Answers {
		if c.Answers[i].IsEvaluated() {
			return true
		}
	}
	return false
}
