package backend

import (
	"fmt"
)

// ErrorKind определяет, какая операция с бэкендом завершилась ошибкой
type ErrorKind string

const (
	KindSubmission ErrorKind = "submission"
	KindStatus     ErrorKind = "status"
	KindAuth       ErrorKind = "auth"
	KindFetch      ErrorKind = "fetch"
)

// Сообщения по умолчанию, если бэкенд не вернул тело ответа
const (
	fallbackSubmission = "Failed to submit candidate"
	fallbackStatus     = "Failed to get evaluation status"
	fallbackAuth       = "Failed to login employer"
	fallbackFetch      = "Failed to fetch candidates"
)

// Эталонные ошибки для errors.Is: сравнение идет только по Kind
var (
	ErrSubmission = &Error{Kind: KindSubmission}
	ErrStatus     = &Error{Kind: KindStatus}
	ErrAuth       = &Error{Kind: KindAuth}
	ErrFetch      = &Error{Kind: KindFetch}
)

// Error - неуспешный обмен с бэкендом.
// StatusCode равен 0, если ответ не был получен (сетевая ошибка или отмена контекста).
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Detail     string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend %s error (HTTP %d): %s", e.Kind, e.StatusCode, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("backend %s error: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("backend %s error: %s", e.Kind, e.Detail)
}

// Unwrap возвращает исходную ошибку транспорта
func (e *Error) Unwrap() error {
	return e.Err
}

// Is позволяет писать errors.Is(err, backend.ErrAuth)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func fallbackFor(kind ErrorKind) string {
	switch kind {
	case KindSubmission:
		return fallbackSubmission
	case KindStatus:
		return fallbackStatus
	case KindAuth:
		return fallbackAuth
	default:
		return fallbackFetch
	}
}
