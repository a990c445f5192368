package repository

import (
	"context"
	"time"
)

// SessionRepository хранит токены бэкенда для сессий работодателей
type SessionRepository interface {
	// Save сохраняет токен сессии на время ttl
	Save(ctx context.Context, sessionID, token string, ttl time.Duration) error
	// Load возвращает токен сессии или apperrors.ErrNotFound
	Load(ctx context.Context, sessionID string) (string, error)
	// Delete удаляет сессию. Отсутствие сессии не считается ошибкой.
	Delete(ctx context.Context, sessionID string) error
}
