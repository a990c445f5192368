package auth

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v4"

	apperrors "github.com/yourusername/recruit-intake/internal/pkg/errors"
)

// SessionAudience - аудитория токена в cookie сессии работодателя
const SessionAudience = "recruit-employer"

// SessionClaims - содержимое подписанного значения cookie.
// В cookie лежит только идентификатор сессии, токен бэкенда хранится на сервере.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// SessionSigner подписывает и проверяет значение cookie сессии (HS256)
type SessionSigner struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewSessionSigner создает подписчик. Пустой секрет недопустим.
func NewSessionSigner(secret string, lifetime time.Duration) (*SessionSigner, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret is required for SessionSigner")
	}
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &SessionSigner{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}, nil
}

// Lifetime возвращает срок действия подписанного значения
func (s *SessionSigner) Lifetime() time.Duration {
	return s.lifetime
}

// Sign возвращает подписанное значение cookie для сессии sessionID
func (s *SessionSigner) Sign(sessionID string) (string, error) {
	now := s.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Audience:  jwt.ClaimStrings{SessionAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session cookie: %w", err)
	}
	return signed, nil
}

// Parse проверяет подпись и срок действия и возвращает идентификатор сессии.
// Истекшее значение дает apperrors.ErrExpiredToken, любое другое нарушение - apperrors.ErrUnauthorized.
func (s *SessionSigner) Parse(value string) (string, error) {
	if value == "" {
		return "", apperrors.ErrUnauthorized
	}

	claims := &SessionClaims{}
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	_, err := parser.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return "", apperrors.ErrExpiredToken
		}
		log.Printf("[SessionSigner] Недействительное значение cookie сессии: %v", err)
		return "", apperrors.ErrUnauthorized
	}

	if !claims.VerifyAudience(SessionAudience, true) || claims.ID == "" {
		log.Printf("[SessionSigner] Cookie сессии без идентификатора или с чужой аудиторией")
		return "", apperrors.ErrUnauthorized
	}
	return claims.ID, nil
}
