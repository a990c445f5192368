package dto

import (
	"net/url"
	"strconv"

	"github.com/yourusername/recruit-intake/internal/domain/entity"
)

// FormatScore форматирует балл с одним знаком после запятой
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 1, 64)
}

// AnswerView - ответ кандидата в раскрытой карточке
type AnswerView struct {
	Question string
	Response string
	HasScore bool
	Score    string
	Feedback string
}

// CandidateCard - карточка кандидата на панели работодателя
type CandidateCard struct {
	ID        int
	Name      string
	Phone     string
	HasScore  bool
	ScoreChip string
	Expanded  bool
	ToggleURL string
	Answers   []AnswerView
}

// DashboardPage - данные панели работодателя
type DashboardPage struct {
	Error        string
	Empty        bool
	EmptyMessage string
	Cards        []CandidateCard
}

// NewCandidateCards строит карточки из отсортированного списка.
// Раскрыты карточки из expanded. Ссылка карточки переключает только ее, остальные остаются как были.
func NewCandidateCards(records []entity.CandidateRecord, maxScore float64, expanded map[int]bool) []CandidateCard {
	cards := make([]CandidateCard, 0, len(records))
	for i := range records {
		r := &records[i]
		card := CandidateCard{
			ID:        r.ID,
			Name:      r.Name,
			Phone:     r.Phone,
			HasScore:  r.HasScores(),
			Expanded:  expanded[r.ID],
			ToggleURL: toggleURL(records, expanded, r.ID),
		}
		if card.HasScore {
			card.ScoreChip = FormatScore(r.AggregateScore()) + "/" + FormatScore(maxScore)
		}
		if card.Expanded {
			for j := range r.Answers {
				a := &r.Answers[j]
				view := AnswerView{Question: a.Question, Response: a.Response(), HasScore: a.IsEvaluated()}
				if view.HasScore {
					view.Score = FormatScore(*a.EvaluationScore)
				}
				if a.EvaluationFeedback != nil {
					view.Feedback = *a.EvaluationFeedback
				}
				card.Answers = append(card.Answers, view)
			}
		}
		cards = append(cards, card)
	}
	return cards
}

// toggleURL возвращает ссылку на панель, где карточка id переключена.
// Идентификаторы идут в порядке списка, чтобы ссылки не зависели от порядка обхода map.
func toggleURL(records []entity.CandidateRecord, expanded map[int]bool, id int) string {
	q := url.Values{}
	for i := range records {
		rid := records[i].ID
		if expanded[rid] != (rid == id) {
			q.Add("expand", strconv.Itoa(rid))
		}
	}
	if len(q) == 0 {
		return "/dashboard"
	}
	return "/dashboard?" + q.Encode()
}

// CandidateResponse - кандидат в JSON-ответе работодателю
type CandidateResponse struct {
	entity.CandidateRecord
	TotalScore float64 `json:"total_score"`
	HasScores  bool    `json:"has_scores"`
}

// CandidateListResponse - отсортированный список кандидатов
type CandidateListResponse struct {
	Candidates []CandidateResponse `json:"candidates"`
	MaxScore   float64             `json:"max_score"`
}

// NewCandidateListResponse формирует JSON-ответ со списком кандидатов
func NewCandidateListResponse(records []entity.CandidateRecord, maxScore float64) CandidateListResponse {
	resp := CandidateListResponse{
		Candidates: make([]CandidateResponse, 0, len(records)),
		MaxScore:   maxScore,
	}
	for _, r := range records {
		resp.Candidates = append(resp.Candidates, CandidateResponse{
			CandidateRecord: r,
			TotalScore:      r.AggregateScore(),
			HasScores:       r.HasScores(),
		})
	}
	return resp
}
