package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/recruit-intake/internal/domain/entity"
	"github.com/yourusername/recruit-intake/internal/domain/repository"
	apperrors "github.com/yourusername/recruit-intake/internal/pkg/errors"
)

// MsgLoginFailed - единое сообщение о неудачном входе работодателя
const MsgLoginFailed = "Sai tên đăng nhập hoặc mật khẩu, hoặc không thể đăng nhập."

// EmployerAuthenticator выполняет вход работодателя на бэкенде
type EmployerAuthenticator interface {
	Login(ctx context.Context, credentials entity.Credentials) (string, error)
}

// SessionCodec подписывает и проверяет значение cookie сессии
type SessionCodec interface {
	Sign(sessionID string) (string, error)
	Parse(value string) (string, error)
	Lifetime() time.Duration
}

// EmployerService управляет сессиями работодателей
type EmployerService struct {
	auth     EmployerAuthenticator
	sessions repository.SessionRepository
	codec    SessionCodec
}

// NewEmployerService создает новый сервис сессий работодателей
func NewEmployerService(auth EmployerAuthenticator, sessions repository.SessionRepository, codec SessionCodec) *EmployerService {
	return &EmployerService{
		auth:     auth,
		sessions: sessions,
		codec:    codec,
	}
}

// Login выполняет вход и возвращает подписанное значение cookie.
// Любая неудача (неверный логин, неверный пароль, недоступный бэкенд) дает ErrInvalidCredentials,
// при этом ничего не сохраняется.
func (s *EmployerService) Login(ctx context.Context, credentials entity.Credentials) (string, error) {
	if strings.TrimSpace(credentials.Username) == "" || credentials.Password == "" {
		return "", apperrors.ErrInvalidCredentials
	}

	token, err := s.auth.Login(ctx, credentials)
	if err != nil {
		log.Printf("[EmployerService] Вход работодателя %q не выполнен: %v", credentials.Username, err)
		return "", apperrors.ErrInvalidCredentials
	}

	sessionID := uuid.NewString()
	cookieValue, err := s.codec.Sign(sessionID)
	if err != nil {
		log.Printf("[EmployerService] Ошибка подписи cookie сессии: %v", err)
		return "", apperrors.ErrInvalidCredentials
	}

	if err := s.sessions.Save(ctx, sessionID, token, s.codec.Lifetime()); err != nil {
		log.Printf("[EmployerService] Ошибка сохранения сессии: %v", err)
		return "", apperrors.ErrInvalidCredentials
	}

	log.Printf("[EmployerService] Работодатель %q вошел, сессия %s", credentials.Username, sessionID)
	return cookieValue, nil
}

// Resolve восстанавливает сессию по значению cookie
func (s *EmployerService) Resolve(ctx context.Context, cookieValue string) (entity.EmployerSession, error) {
	sessionID, err := s.codec.Parse(cookieValue)
	if err != nil {
		return entity.EmployerSession{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	}

	token, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[EmployerService] Ошибка чтения сессии %s: %v", sessionID, err)
		}
		return entity.EmployerSession{}, fmt.Errorf("%w: session %s not available", apperrors.ErrUnauthorized, sessionID)
	}
	if token == "" {
		return entity.EmployerSession{}, apperrors.ErrUnauthorized
	}

	return entity.EmployerSession{ID: sessionID, Token: token}, nil
}

// Logout удаляет сессию. Недействительная cookie не считается ошибкой.
func (s *EmployerService) Logout(ctx context.Context, cookieValue string) error {
	sessionID, err := s.codec.Parse(cookieValue)
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	log.Printf("[EmployerService] Сессия %s завершена", sessionID)
	return nil
}
