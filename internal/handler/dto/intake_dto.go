package dto

import (
	"fmt"

	"github.com/yourusername/recruit-intake/internal/domain/entity"
	"github.com/yourusername/recruit-intake/internal/questionbank"
	"github.com/yourusername/recruit-intake/internal/service/intake"
)

// Имена полей HTML-формы анкеты
const (
	FieldName   = "name"
	FieldPhone  = "phone"
	FieldChoice = "choice"
	FieldText   = "text"
)

// ChoiceFieldName - имя поля формы для вопроса с выбором index
func ChoiceFieldName(index int) string {
	return fmt.Sprintf("mc-%d", index)
}

// TextFieldName - имя поля формы для текстового вопроса index
func TextFieldName(index int) string {
	return fmt.Sprintf("sa-%d", index)
}

// StatusLabel переводит статус оценки в подпись для кандидата
func StatusLabel(status entity.EvaluationStatus) string {
	switch status {
	case entity.EvaluationPending:
		return "Đang chờ đánh giá"
	case entity.EvaluationProcessing:
		return "Đang đánh giá"
	case entity.EvaluationCompleted:
		return "Đã đánh giá xong"
	case entity.EvaluationFailed:
		return "Đánh giá thất bại"
	default:
		return "Đang cập nhật"
	}
}

// OptionView - вариант ответа в форме
type OptionView struct {
	Letter  string
	Text    string
	Checked bool
}

// QuestionView - вопрос в форме вместе с текущим ответом
type QuestionView struct {
	ID        int
	Text      string
	FieldName string
	Options   []OptionView
	Value     string
}

// IntakePage - данные страницы анкеты
type IntakePage struct {
	Phase        string
	Form         intake.FormValues
	Error        string
	Choice       []QuestionView
	Text         []QuestionView
	SubmissionID int
	StatusLabel  string
	Live         bool

	ThankYouTitle      string
	ThankYouBody       string
	SubmitAnotherLabel string
}

// NewIntakePage собирает страницу анкеты из снимка состояния
func NewIntakePage(bank *questionbank.Bank, snap intake.Snapshot) IntakePage {
	page := IntakePage{
		Phase:              string(snap.Phase),
		Form:               snap.Form,
		Error:              snap.Error,
		StatusLabel:        StatusLabel(snap.Status),
		Live:               snap.Phase == intake.PhaseSubmitted && !snap.Status.IsTerminal(),
		ThankYouTitle:      intake.MsgThankYouTitle,
		ThankYouBody:       intake.MsgThankYouBody,
		SubmitAnotherLabel: intake.MsgSubmitAnother,
	}
	if snap.SubmissionID != nil {
		page.SubmissionID = *snap.SubmissionID
	}

	for i, q := range bank.Choice() {
		selected := ""
		if i < len(snap.Form.Choices) {
			selected = snap.Form.Choices[i]
		}
		view := QuestionView{ID: q.ID, Text: q.Text, FieldName: ChoiceFieldName(i), Value: selected}
		for j, opt := range q.Options {
			letter := entity.OptionLetter(j)
			view.Options = append(view.Options, OptionView{Letter: letter, Text: opt, Checked: letter == selected})
		}
		page.Choice = append(page.Choice, view)
	}
	for i, q := range bank.Text() {
		value := ""
		if i < len(snap.Form.Texts) {
			value = snap.Form.Texts[i]
		}
		page.Text = append(page.Text, QuestionView{ID: q.ID, Text: q.Text, FieldName: TextFieldName(i), Value: value})
	}
	return page
}

// FieldEditRequest - изменение одного поля анкеты через API
type FieldEditRequest struct {
	Field string `json:"field" binding:"required,oneof=name phone choice text"`
	Index int    `json:"index"`
	Value string `json:"value"`
}

// SnapshotResponse - снимок анкеты для API и websocket
type SnapshotResponse struct {
	intake.Snapshot
	StatusLabel string `json:"status_label,omitempty"`
}

// NewSnapshotResponse добавляет к снимку подпись статуса
func NewSnapshotResponse(snap intake.Snapshot) SnapshotResponse {
	resp := SnapshotResponse{Snapshot: snap}
	if snap.Phase == intake.PhaseSubmitted {
		resp.StatusLabel = StatusLabel(snap.Status)
	}
	return resp
}

// QuestionsResponse - каталог вопросов
type QuestionsResponse struct {
	Choice   []entity.Question `json:"mc_questions"`
	Text     []entity.Question `json:"text_questions"`
	MaxScore float64           `json:"max_score"`
}

// NewQuestionsResponse формирует ответ с каталогом вопросов
func NewQuestionsResponse(bank *questionbank.Bank) QuestionsResponse {
	return QuestionsResponse{
		Choice:   bank.Choice(),
		Text:     bank.Text(),
		MaxScore: bank.MaxScore(),
	}
}
