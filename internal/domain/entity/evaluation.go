package entity

// EvaluationStatus - статус асинхронной AI-оценки анкеты.
// Статусом владеет бэкенд, клиент только опрашивает его.
type EvaluationStatus string

const (
	EvaluationPending    EvaluationStatus = "pending"
	EvaluationProcessing EvaluationStatus = "processing"
	EvaluationCompleted  EvaluationStatus = "completed"
	EvaluationFailed     EvaluationStatus = "failed"
	// EvaluationUnknown - статус еще не получен или бэкенд вернул незнакомое значение
	EvaluationUnknown EvaluationStatus = "unknown"
)

// ParseEvaluationStatus приводит строку бэкенда к известному статусу.
// Незнакомые значения становятся EvaluationUnknown и не останавливают опрос.
func ParseEvaluationStatus(s string) EvaluationStatus {
	switch EvaluationStatus(s) {
	case EvaluationPending, EvaluationProcessing, EvaluationCompleted, EvaluationFailed:
		return EvaluationStatus(s)
	default:
		return EvaluationUnknown
	}
}

// IsTerminal сообщает, что после этого статуса опрос прекращается
func (s EvaluationStatus) IsTerminal() bool {
	return s == EvaluationCompleted || s == EvaluationFailed
}
