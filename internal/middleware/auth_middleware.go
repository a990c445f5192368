package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/recruit-intake/internal/domain/entity"
	apperrors "github.com/yourusername/recruit-intake/internal/pkg/errors"
	"github.com/yourusername/recruit-intake/pkg/auth/manager"
)

// ContextKeyEmployerSession - ключ контекста Gin с сессией работодателя
const ContextKeyEmployerSession = "employerSession"

// LoginPath - страница входа работодателя
const LoginPath = "/employer"

// SessionResolver восстанавливает сессию работодателя по значению cookie
type SessionResolver interface {
	Resolve(ctx context.Context, cookieValue string) (entity.EmployerSession, error)
}

// AuthMiddleware проверяет сессию работодателя для защищенных маршрутов
type AuthMiddleware struct {
	resolver SessionResolver
	cookies  *manager.CookieManager
}

// NewAuthMiddleware создает новый middleware
func NewAuthMiddleware(resolver SessionResolver, cookies *manager.CookieManager) *AuthMiddleware {
	return &AuthMiddleware{
		resolver: resolver,
		cookies:  cookies,
	}
}

// RequireEmployer пропускает запрос только с действующей сессией работодателя.
// Страницы перенаправляются на вход до любого запроса данных, API получает 401.
func (m *AuthMiddleware) RequireEmployer() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookieValue, err := m.cookies.GetSessionCookie(c.Request)
		if err != nil {
			m.reject(c, apperrors.ErrUnauthorized)
			return
		}

		session, err := m.resolver.Resolve(c.Request.Context(), cookieValue)
		if err != nil {
			if !errors.Is(err, apperrors.ErrUnauthorized) {
				log.Printf("[AuthMiddleware] Ошибка проверки сессии: %v", err)
			}
			m.cookies.ClearSessionCookie(c.Writer)
			m.reject(c, err)
			return
		}

		c.Set(ContextKeyEmployerSession, session)
		c.Next()
	}
}

func (m *AuthMiddleware) reject(c *gin.Context, err error) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		errorType := "session_missing"
		if errors.Is(err, apperrors.ErrExpiredToken) {
			errorType = "session_expired"
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": errorType})
		return
	}
	c.Redirect(http.StatusSeeOther, LoginPath)
	c.Abort()
}

// EmployerSessionFromContext возвращает сессию, установленную RequireEmployer
func EmployerSessionFromContext(c *gin.Context) (entity.EmployerSession, bool) {
	v, ok := c.Get(ContextKeyEmployerSession)
	if !ok {
		return entity.EmployerSession{}, false
	}
	session, ok := v.(entity.EmployerSession)
	return session, ok
}
