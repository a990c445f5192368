package handler

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/recruit-intake/internal/domain/entity"
	"github.com/yourusername/recruit-intake/internal/handler/dto"
	"github.com/yourusername/recruit-intake/internal/middleware"
	apperrors "github.com/yourusername/recruit-intake/internal/pkg/errors"
	"github.com/yourusername/recruit-intake/internal/service"
	"github.com/yourusername/recruit-intake/pkg/auth/manager"
)

// ContextKeyExpandIDs - ключ контекста с идентификаторами раскрытых карточек
const ContextKeyExpandIDs = "expandIDs"

// EmployerSessions - операции с сессией работодателя, нужные обработчику
type EmployerSessions interface {
	Login(ctx context.Context, credentials entity.Credentials) (string, error)
	Logout(ctx context.Context, cookieValue string) error
	middleware.SessionResolver
}

// RankedCandidates отдает отсортированный список кандидатов
type RankedCandidates interface {
	ListRanked(ctx context.Context, session entity.EmployerSession) ([]entity.CandidateRecord, error)
	MaxScore() float64
}

// loginPage - данные страницы входа
type loginPage struct {
	Error    string
	Username string
}

// EmployerHandler обрабатывает вход работодателя и панель кандидатов
type EmployerHandler struct {
	sessions   EmployerSessions
	candidates RankedCandidates
	cookies    *manager.CookieManager
	lifetime   time.Duration
}

// NewEmployerHandler создает новый обработчик работодателя
func NewEmployerHandler(sessions EmployerSessions, candidates RankedCandidates, cookies *manager.CookieManager, lifetime time.Duration) *EmployerHandler {
	return &EmployerHandler{
		sessions:   sessions,
		candidates: candidates,
		cookies:    cookies,
		lifetime:   lifetime,
	}
}

// ShowLogin показывает страницу входа. С действующей сессией сразу открывается панель.
// GET /employer
func (h *EmployerHandler) ShowLogin(c *gin.Context) {
	if value, err := h.cookies.GetSessionCookie(c.Request); err == nil {
		if _, err := h.sessions.Resolve(c.Request.Context(), value); err == nil {
			c.Redirect(http.StatusSeeOther, "/dashboard")
			return
		}
	}
	c.HTML(http.StatusOK, "login.html", loginPage{})
}

// Login выполняет вход работодателя
// POST /employer
func (h *EmployerHandler) Login(c *gin.Context) {
	credentials := entity.Credentials{
		Username: c.PostForm("username"),
		Password: c.PostForm("password"),
	}

	value, err := h.sessions.Login(c.Request.Context(), credentials)
	if err != nil {
		c.HTML(http.StatusUnauthorized, "login.html", loginPage{
			Error:    service.MsgLoginFailed,
			Username: credentials.Username,
		})
		return
	}

	h.cookies.SetSessionCookie(c.Writer, value, h.lifetime)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Logout завершает сессию и возвращает на страницу входа
// POST /employer/logout
func (h *EmployerHandler) Logout(c *gin.Context) {
	if value, err := h.cookies.GetSessionCookie(c.Request); err == nil {
		if err := h.sessions.Logout(c.Request.Context(), value); err != nil {
			log.Printf("[EmployerHandler] Ошибка при выходе: %v", err)
		}
	}
	h.cookies.ClearSessionCookie(c.Writer)
	c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

// Dashboard показывает отсортированный список кандидатов
// GET /dashboard?expand=<id>&expand=<id>
func (h *EmployerHandler) Dashboard(c *gin.Context) {
	session, _ := middleware.EmployerSessionFromContext(c)
	page := dto.DashboardPage{EmptyMessage: service.MsgNoCandidates}

	records, err := h.candidates.ListRanked(c.Request.Context(), session)
	if err != nil {
		page.Error = service.MsgCandidatesLoadFailed
		c.HTML(http.StatusOK, "dashboard.html", page)
		return
	}

	v, _ := c.Get(ContextKeyExpandIDs)
	expanded, _ := v.(map[int]bool)
	page.Empty = len(records) == 0
	page.Cards = dto.NewCandidateCards(records, h.candidates.MaxScore(), expanded)
	c.HTML(http.StatusOK, "dashboard.html", page)
}

// ListCandidates возвращает отсортированный список кандидатов в JSON
// GET /api/employer/candidates
func (h *EmployerHandler) ListCandidates(c *gin.Context) {
	session, _ := middleware.EmployerSessionFromContext(c)
	records, err := h.candidates.ListRanked(c.Request.Context(), session)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCandidateListResponse(records, h.candidates.MaxScore()))
}

// ExportCandidates экспортирует отсортированный список в CSV или Excel
// GET /dashboard/export?format=csv|xlsx
func (h *EmployerHandler) ExportCandidates(c *gin.Context) {
	session, _ := middleware.EmployerSessionFromContext(c)
	format := c.DefaultQuery("format", "csv")

	records, err := h.candidates.ListRanked(c.Request.Context(), session)
	if err != nil {
		h.handleError(c, err)
		return
	}

	filename := fmt.Sprintf("candidates_%s", time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, records, filename)
	default:
		h.exportCSV(c, records, filename)
	}
}

var exportHeaders = []string{"Hạng", "Họ và tên", "Số điện thoại", "Ngày nộp", "Tổng điểm", "Điểm tối đa", "Chi tiết"}

// exportRow формирует строку выгрузки. Ответы склеиваются в одну ячейку.
func (h *EmployerHandler) exportRow(rank int, r *entity.CandidateRecord) []string {
	total := ""
	if r.HasScores() {
		total = dto.FormatScore(r.AggregateScore())
	}

	details := make([]string, 0, len(r.Answers))
	for i := range r.Answers {
		a := &r.Answers[i]
		line := fmt.Sprintf("Q: %s | A: %s", a.Question, a.Response())
		if a.IsEvaluated() {
			line += " | AI Score: " + dto.FormatScore(*a.EvaluationScore)
		}
		if a.EvaluationFeedback != nil {
			line += " | AI Feedback: " + *a.EvaluationFeedback
		}
		details = append(details, line)
	}

	return []string{
		strconv.Itoa(rank),
		sanitizeForExcel(r.Name),
		sanitizeForExcel(r.Phone),
		r.CreatedAt,
		total,
		dto.FormatScore(h.candidates.MaxScore()),
		sanitizeForExcel(strings.Join(details, "\n")),
	}
}

// exportCSV выгружает кандидатов в CSV с правильным экранированием спецсимволов
func (h *EmployerHandler) exportCSV(c *gin.Context, records []entity.CandidateRecord, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for i := range records {
		writer.Write(h.exportRow(i+1, &records[i]))
	}
}

// exportXLSX выгружает кандидатов в Excel через StreamWriter
func (h *EmployerHandler) exportXLSX(c *gin.Context, records []entity.CandidateRecord, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Ứng viên"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[EmployerHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	if err := sw.SetRow("A1", toCells(exportHeaders)); err != nil {
		log.Printf("[EmployerHandler] Ошибка записи заголовков: %v", err)
	}
	for i := range records {
		rowNum := i + 2 // 1 - заголовки
		if err := sw.SetRow(fmt.Sprintf("A%d", rowNum), toCells(h.exportRow(i+1, &records[i]))); err != nil {
			log.Printf("[EmployerHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[EmployerHandler] Ошибка при Flush: %v", err)
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[EmployerHandler] Ошибка записи Excel в response: %v", err)
	}
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

// handleError обрабатывает ошибки работодателя и отправляет соответствующий HTTP статус
func (h *EmployerHandler) handleError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "unauthorized"})
	} else {
		log.Printf("[EmployerHandler] Ошибка: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": service.MsgCandidatesLoadFailed, "error_type": "backend_unavailable"})
	}
}
