package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	apperrors "github.com/yourusername/recruit-intake/internal/pkg/errors"
)

// Префикс ключей сессий работодателей
const sessionKeyPrefix = "employer:session:"

// SessionRepo реализует repository.SessionRepository
type SessionRepo struct {
	client redis.UniversalClient
}

// NewSessionRepo создает новый репозиторий сессий и возвращает ошибку при проблемах
func NewSessionRepo(client redis.UniversalClient) (*SessionRepo, error) {
	if client == nil {
		return nil, fmt.Errorf("Redis client cannot be nil for SessionRepo")
	}
	return &SessionRepo{client: client}, nil
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// Save сохраняет токен сессии
func (r *SessionRepo) Save(ctx context.Context, sessionID, token string, ttl time.Duration) error {
	return r.client.Set(ctx, sessionKey(sessionID), token, ttl).Err()
}

// Load получает токен сессии
func (r *SessionRepo) Load(ctx context.Context, sessionID string) (string, error) {
	val, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperrors.ErrNotFound
		}
		return "", err
	}
	return val, nil
}

// Delete удаляет сессию
func (r *SessionRepo) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, sessionKey(sessionID)).Err()
}
