package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены (например, сессия в Redis).
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется, когда у работодателя нет действующей сессии.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials возвращается при любой неудаче входа работодателя.
	// Намеренно не различает неверный логин, неверный пароль и недоступный бэкенд.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrExpiredToken используется, когда подписанная кука сессии истекла.
	ErrExpiredToken = errors.New("token is expired")

	// ErrConflict используется для конфликтов состояния (например, правка анкеты во время отправки).
	ErrConflict = errors.New("resource state conflict")
)
