package manager

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Имена cookie по умолчанию
const (
	// Cookie с подписанной ссылкой на сессию работодателя
	DefaultSessionCookie = "authToken"
	// Cookie с идентификатором анкеты посетителя
	DefaultVisitorCookie = "intake_sid"
	// Время жизни cookie посетителя
	VisitorCookieLifetime = 7 * 24 * time.Hour
)

// CookieManager выставляет, читает и очищает cookie приложения с едиными атрибутами
type CookieManager struct {
	sessionCookie string
	visitorCookie string

	cookiePath     string
	cookieSecure   bool
	cookieHttpOnly bool
	cookieSameSite http.SameSite
}

// NewCookieManager создает менеджер cookie. Пустые имена заменяются значениями по умолчанию.
func NewCookieManager(sessionCookie, visitorCookie string) *CookieManager {
	if sessionCookie == "" {
		sessionCookie = DefaultSessionCookie
	}
	if visitorCookie == "" {
		visitorCookie = DefaultVisitorCookie
	}
	return &CookieManager{
		sessionCookie:  sessionCookie,
		visitorCookie:  visitorCookie,
		cookiePath:     "/",
		cookieHttpOnly: true,
		cookieSameSite: http.SameSiteLaxMode,
	}
}

// SetProductionMode включает Secure для cookie в production
func (m *CookieManager) SetProductionMode(isProduction bool) {
	m.cookieSecure = isProduction
}

// SetSessionCookie сохраняет подписанную ссылку на сессию в HttpOnly cookie
func (m *CookieManager) SetSessionCookie(w http.ResponseWriter, value string, lifetime time.Duration) {
	m.set(w, m.sessionCookie, value, int(lifetime.Seconds()))
}

// GetSessionCookie возвращает значение cookie сессии
func (m *CookieManager) GetSessionCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(m.sessionCookie)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// ClearSessionCookie удаляет cookie сессии
func (m *CookieManager) ClearSessionCookie(w http.ResponseWriter) {
	m.set(w, m.sessionCookie, "", -1)
}

// VisitorID возвращает идентификатор посетителя из cookie, если он есть
func (m *CookieManager) VisitorID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(m.visitorCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return "", false
	}
	return cookie.Value, true
}

// EnsureVisitorID возвращает идентификатор посетителя, выдавая новый при отсутствии
func (m *CookieManager) EnsureVisitorID(w http.ResponseWriter, r *http.Request) string {
	if id, ok := m.VisitorID(r); ok {
		return id
	}
	id := uuid.NewString()
	m.set(w, m.visitorCookie, id, int(VisitorCookieLifetime.Seconds()))
	return id
}

func (m *CookieManager) set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.cookiePath,
		HttpOnly: m.cookieHttpOnly,
		Secure:   m.cookieSecure,
		SameSite: m.cookieSameSite,
		MaxAge:   maxAge,
	})
}
