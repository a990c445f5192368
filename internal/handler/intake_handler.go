package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/recruit-intake/internal/handler/dto"
	"github.com/yourusername/recruit-intake/internal/middleware"
	apperrors "github.com/yourusername/recruit-intake/internal/pkg/errors"
	"github.com/yourusername/recruit-intake/internal/questionbank"
	"github.com/yourusername/recruit-intake/internal/service/intake"
)

// IntakeHandler обрабатывает запросы анкеты кандидата
type IntakeHandler struct {
	registry *intake.Registry
	bank     *questionbank.Bank
}

// NewIntakeHandler создает новый обработчик анкеты
func NewIntakeHandler(registry *intake.Registry, bank *questionbank.Bank) *IntakeHandler {
	return &IntakeHandler{
		registry: registry,
		bank:     bank,
	}
}

// existing возвращает анкету посетителя, не создавая новую.
// Просмотр пустой формы ничего не регистрирует: анкета появляется при первой правке или отправке.
func (h *IntakeHandler) existing(c *gin.Context) (*intake.Workflow, bool) {
	return h.registry.Get(c.GetString(middleware.ContextKeyVisitorID))
}

// snapshot возвращает снимок анкеты посетителя или пустую форму, если анкеты еще нет
func (h *IntakeHandler) snapshot(c *gin.Context) intake.Snapshot {
	if wf, ok := h.existing(c); ok {
		return wf.Snapshot()
	}
	return intake.EmptySnapshot(h.bank)
}

// workflow возвращает анкету текущего посетителя, создавая ее при первом обращении
func (h *IntakeHandler) workflow(c *gin.Context) *intake.Workflow {
	visitorID := c.GetString(middleware.ContextKeyVisitorID)
	wf, created := h.registry.GetOrCreate(visitorID)
	if created {
		log.Printf("[IntakeHandler] Новая анкета для посетителя %s", visitorID)
	}
	return wf
}

// ShowForm показывает анкету или экран благодарности в зависимости от этапа
// GET /
func (h *IntakeHandler) ShowForm(c *gin.Context) {
	c.HTML(http.StatusOK, "intake.html", dto.NewIntakePage(h.bank, h.snapshot(c)))
}

// SubmitForm применяет поля HTML-формы и отправляет анкету.
// Результат всегда показывается через редирект на GET /.
// POST /
func (h *IntakeHandler) SubmitForm(c *gin.Context) {
	wf := h.workflow(c)

	if err := wf.SetForm(h.formValues(c)); err != nil {
		log.Printf("[IntakeHandler] Форма не принята: %v", err)
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	if err := wf.Submit(c.Request.Context()); err != nil && !errors.Is(err, apperrors.ErrValidation) {
		log.Printf("[IntakeHandler] Анкета не отправлена: %v", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// SubmitAnother возвращает кандидата к пустой анкете
// POST /another
func (h *IntakeHandler) SubmitAnother(c *gin.Context) {
	if wf, ok := h.existing(c); ok {
		if err := wf.SubmitAnother(); err != nil {
			log.Printf("[IntakeHandler] Новая анкета не начата: %v", err)
		}
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// formValues читает поля HTML-формы в порядке каталога вопросов
func (h *IntakeHandler) formValues(c *gin.Context) intake.FormValues {
	values := intake.FormValues{
		Name:    c.PostForm(dto.FieldName),
		Phone:   c.PostForm(dto.FieldPhone),
		Choices: make([]string, h.bank.ChoiceCount()),
		Texts:   make([]string, h.bank.TextCount()),
	}
	for i := range values.Choices {
		values.Choices[i] = c.PostForm(dto.ChoiceFieldName(i))
	}
	for i := range values.Texts {
		values.Texts[i] = c.PostForm(dto.TextFieldName(i))
	}
	return values
}

// GetQuestions возвращает каталог вопросов
// GET /api/questions
func (h *IntakeHandler) GetQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewQuestionsResponse(h.bank))
}

// GetState возвращает снимок анкеты. Запрос считается показом анкеты и возобновляет опрос статуса.
// GET /api/intake
func (h *IntakeHandler) GetState(c *gin.Context) {
	wf, ok := h.existing(c)
	if !ok {
		c.JSON(http.StatusOK, dto.NewSnapshotResponse(intake.EmptySnapshot(h.bank)))
		return
	}
	wf.Activate()
	c.JSON(http.StatusOK, dto.NewSnapshotResponse(wf.Snapshot()))
}

// EditField изменяет одно поле анкеты
// PATCH /api/intake/form
func (h *IntakeHandler) EditField(c *gin.Context) {
	var req dto.FieldEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "validation_error"})
		return
	}

	wf := h.workflow(c)
	var err error
	switch req.Field {
	case dto.FieldName:
		err = wf.SetName(req.Value)
	case dto.FieldPhone:
		err = wf.SetPhone(req.Value)
	case dto.FieldChoice:
		err = wf.SetChoice(req.Index, req.Value)
	case dto.FieldText:
		err = wf.SetText(req.Index, req.Value)
	}
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSnapshotResponse(wf.Snapshot()))
}

// Submit отправляет анкету. Ошибка отправки видна в поле error снимка.
// POST /api/intake/submit
func (h *IntakeHandler) Submit(c *gin.Context) {
	wf := h.workflow(c)
	if err := wf.Submit(c.Request.Context()); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			h.handleError(c, err)
			return
		}
		status := http.StatusBadGateway
		if errors.Is(err, apperrors.ErrValidation) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, dto.NewSnapshotResponse(wf.Snapshot()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSnapshotResponse(wf.Snapshot()))
}

// Another возвращает кандидата к пустой анкете
// POST /api/intake/another
func (h *IntakeHandler) Another(c *gin.Context) {
	wf, ok := h.existing(c)
	if !ok {
		h.handleError(c, fmt.Errorf("%w: nothing submitted yet", apperrors.ErrConflict))
		return
	}
	if err := wf.SubmitAnother(); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSnapshotResponse(wf.Snapshot()))
}

// handleError обрабатывает ошибки анкеты и отправляет соответствующий HTTP статус
func (h *IntakeHandler) handleError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "error_type": "validation_error"})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "conflict"})
	} else {
		log.Printf("[IntakeHandler] Внутренняя ошибка: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "error_type": "internal_server_error"})
	}
}
