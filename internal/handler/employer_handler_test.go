package handler

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/recruit-intake/internal/domain/entity"
	"github.com/yourusername/recruit-intake/internal/handler/dto"
	"github.com/yourusername/recruit-intake/internal/middleware"
	apperrors "github.com/yourusername/recruit-intake/internal/pkg/errors"
	"github.com/yourusername/recruit-intake/internal/service"
	"github.com/yourusername/recruit-intake/internal/web"
	"github.com/yourusername/recruit-intake/pkg/auth/manager"
)

// ============================================================================
// Mock зависимостей
// ============================================================================

type MockEmployerSessions struct {
	mock.Mock
}

func (m *MockEmployerSessions) Login(ctx context.Context, credentials entity.Credentials) (string, error) {
	args := m.Called(ctx, credentials)
	return args.String(0), args.Error(1)
}

func (m *MockEmployerSessions) Logout(ctx context.Context, cookieValue string) error {
	return m.Called(ctx, cookieValue).Error(0)
}

func (m *MockEmployerSessions) Resolve(ctx context.Context, cookieValue string) (entity.EmployerSession, error) {
	args := m.Called(ctx, cookieValue)
	return args.Get(0).(entity.EmployerSession), args.Error(1)
}

type MockRankedCandidates struct {
	mock.Mock
}

func (m *MockRankedCandidates) ListRanked(ctx context.Context, session entity.EmployerSession) ([]entity.CandidateRecord, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CandidateRecord), args.Error(1)
}

func (m *MockRankedCandidates) MaxScore() float64 {
	return 50
}

// ============================================================================
// Настройка
// ============================================================================

var testSession = entity.EmployerSession{ID: "sid", Token: "backend-token"}

func setupEmployerRouter(t *testing.T, sessions *MockEmployerSessions, candidates *MockRankedCandidates) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tmpl, err := web.Templates()
	require.NoError(t, err)

	cookies := manager.NewCookieManager("", "")
	h := NewEmployerHandler(sessions, candidates, cookies, time.Hour)
	auth := middleware.NewAuthMiddleware(sessions, cookies)

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.GET("/employer", h.ShowLogin)
	router.POST("/employer", h.Login)
	router.POST("/employer/logout", h.Logout)
	dashboard := router.Group("/dashboard", auth.RequireEmployer())
	dashboard.GET("", middleware.ExtractIntQuerySet("expand", ContextKeyExpandIDs), h.Dashboard)
	dashboard.GET("/export", h.ExportCandidates)
	router.GET("/api/employer/candidates", auth.RequireEmployer(), h.ListCandidates)
	return router
}

func withSession(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: manager.DefaultSessionCookie, Value: "signed"})
	return req
}

func scored(id int, name string, score float64) entity.CandidateRecord {
	return entity.CandidateRecord{ID: id, Name: name, Phone: "090" + name, Answers: []entity.AnswerRecord{
		{Question: "Q", Type: entity.QuestionKindText, EvaluationScore: &score},
	}}
}

// ============================================================================
// Тесты
// ============================================================================

func TestLogin_SetsCookieAndRedirects(t *testing.T) {
	sessions := new(MockEmployerSessions)
	sessions.On("Login", mock.Anything, entity.Credentials{Username: "boss", Password: "pw"}).Return("signed", nil)
	router := setupEmployerRouter(t, sessions, new(MockRankedCandidates))

	form := url.Values{"username": {"boss"}, "password": {"pw"}}
	req := httptest.NewRequest(http.MethodPost, "/employer", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), manager.DefaultSessionCookie+"=signed")
	sessions.AssertExpectations(t)
}

func TestLogin_FailureShowsUniformMessage(t *testing.T) {
	sessions := new(MockEmployerSessions)
	sessions.On("Login", mock.Anything, mock.Anything).Return("", apperrors.ErrInvalidCredentials)
	router := setupEmployerRouter(t, sessions, new(MockRankedCandidates))

	form := url.Values{"username": {"boss"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/employer", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), service.MsgLoginFailed)
	assert.Empty(t, w.Header().Get("Set-Cookie"))
}

func TestShowLogin_RedirectsWithValidSession(t *testing.T) {
	sessions := new(MockEmployerSessions)
	sessions.On("Resolve", mock.Anything, "signed").Return(testSession, nil)
	router := setupEmployerRouter(t, sessions, new(MockRankedCandidates))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/employer", nil)))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestLogout_ClearsCookie(t *testing.T) {
	sessions := new(MockEmployerSessions)
	sessions.On("Logout", mock.Anything, "signed").Return(nil)
	router := setupEmployerRouter(t, sessions, new(MockRankedCandidates))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodPost, "/employer/logout", nil)))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, middleware.LoginPath, w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
	sessions.AssertExpectations(t)
}

func TestDashboard_RedirectsWithoutSession(t *testing.T) {
	candidates := new(MockRankedCandidates)
	router := setupEmployerRouter(t, new(MockEmployerSessions), candidates)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	candidates.AssertNotCalled(t, "ListRanked", mock.Anything, mock.Anything)
}

func TestDashboard_RendersRankedCards(t *testing.T) {
	sessions := new(MockEmployerSessions)
	sessions.On("Resolve", mock.Anything, "signed").Return(testSession, nil)
	candidates := new(MockRankedCandidates)
	candidates.On("ListRanked", mock.Anything, testSession).Return([]entity.CandidateRecord{scored(2, "Ung-vien-B", 9), scored(1, "Ung-vien-A", 4)}, nil)
	router := setupEmployerRouter(t, sessions, candidates)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/dashboard?expand=2", nil)))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Less(t, strings.Index(body, "Ung-vien-B"), strings.Index(body, "Ung-vien-A"))
	assert.Contains(t, body, "9.0/50.0")
	assert.Contains(t, body, "AI Score:", "Карточка 2 раскрыта")
	assert.Contains(t, body, `href="/dashboard?expand=2&amp;expand=1"`, "Раскрытие карточки 1 не сворачивает карточку 2")
	assert.Contains(t, body, `href="/dashboard"`)
}

func TestDashboard_KeepsSeveralCardsExpanded(t *testing.T) {
	sessions := new(MockEmployerSessions)
	sessions.On("Resolve", mock.Anything, "signed").Return(testSession, nil)
	candidates := new(MockRankedCandidates)
	candidates.On("ListRanked", mock.Anything, testSession).Return([]entity.CandidateRecord{scored(2, "Ung-vien-B", 9), scored(1, "Ung-vien-A", 4)}, nil)
	router := setupEmployerRouter(t, sessions, candidates)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/dashboard?expand=1&expand=2", nil)))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, 2, strings.Count(body, "AI Score:"), "Обе карточки раскрыты")
	assert.Contains(t, body, `href="/dashboard?expand=1"`)
	assert.Contains(t, body, `href="/dashboard?expand=2"`)
}

func TestDashboard_ShowsLoadFailure(t *testing.T) {
	sessions := new(MockEmployerSessions)
	sessions.On("Resolve", mock.Anything, "signed").Return(testSession, nil)
	candidates := new(MockRankedCandidates)
	candidates.On("ListRanked", mock.Anything, testSession).Return(nil, errors.New("boom"))
	router := setupEmployerRouter(t, sessions, candidates)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/dashboard", nil)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), service.MsgCandidatesLoadFailed)
	assert.NotContains(t, w.Body.String(), service.MsgNoCandidates)
}

func TestListCandidates_JSON(t *testing.T) {
	sessions := new(MockEmployerSessions)
	sessions.On("Resolve", mock.Anything, "signed").Return(testSession, nil)
	candidates := new(MockRankedCandidates)
	candidates.On("ListRanked", mock.Anything, testSession).Return([]entity.CandidateRecord{scored(2, "Ung-vien-B", 9)}, nil)
	router := setupEmployerRouter(t, sessions, candidates)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/api/employer/candidates", nil)))

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.CandidateListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, 9.0, resp.Candidates[0].TotalScore)
	assert.Equal(t, 50.0, resp.MaxScore)
}

func TestExport_CSVAndXLSX(t *testing.T) {
	sessions := new(MockEmployerSessions)
	sessions.On("Resolve", mock.Anything, "signed").Return(testSession, nil)
	candidates := new(MockRankedCandidates)
	injected := scored(1, "=cmd", 3)
	candidates.On("ListRanked", mock.Anything, testSession).Return([]entity.CandidateRecord{injected}, nil)
	router := setupEmployerRouter(t, sessions, candidates)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/dashboard/export?format=csv", nil)))

	require.Equal(t, http.StatusOK, w.Code)
	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(w.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "'=cmd", rows[1][1], "Формулы экранируются")
	assert.Equal(t, "3.0", rows[1][4])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/dashboard/export?format=xlsx", nil)))

	require.Equal(t, http.StatusOK, w.Code)
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	name, err := f.GetCellValue("Ứng viên", "B2")
	require.NoError(t, err)
	assert.Equal(t, "'=cmd", name)
}

func TestSanitizeForExcel(t *testing.T) {
	assert.Equal(t, "'+84901", sanitizeForExcel("+84901"))
	assert.Equal(t, "An", sanitizeForExcel("An"))
	assert.Equal(t, "", sanitizeForExcel(""))
}
