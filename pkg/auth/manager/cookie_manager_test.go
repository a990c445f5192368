package manager

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCookie_SetGetClear(t *testing.T) {
	m := NewCookieManager("", "")
	m.SetProductionMode(true)

	w := httptest.NewRecorder()
	m.SetSessionCookie(w, "signed", time.Hour)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, DefaultSessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	value, err := m.GetSessionCookie(req)
	require.NoError(t, err)
	assert.Equal(t, "signed", value)

	w = httptest.NewRecorder()
	m.ClearSessionCookie(w)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestEnsureVisitorID(t *testing.T) {
	m := NewCookieManager("", "custom_sid")

	w := httptest.NewRecorder()
	id := m.EnsureVisitorID(w, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	require.Len(t, w.Result().Cookies(), 1)
	assert.Equal(t, "custom_sid", w.Result().Cookies()[0].Name)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "custom_sid", Value: id})
	w = httptest.NewRecorder()
	assert.Equal(t, id, m.EnsureVisitorID(w, req), "Существующий идентификатор сохраняется")
	assert.Empty(t, w.Result().Cookies())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "custom_sid", Value: "not-a-uuid"})
	_, ok := m.VisitorID(req)
	assert.False(t, ok)
}
