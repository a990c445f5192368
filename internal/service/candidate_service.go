package service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/yourusername/recruit-intake/internal/domain/entity"
	apperrors "github.com/yourusername/recruit-intake/internal/pkg/errors"
)

// Сообщения списка кандидатов
const (
	MsgCandidatesLoadFailed = "Không thể tải danh sách ứng viên."
	MsgNoCandidates         = "Chưa có đơn ứng tuyển nào."
)

// CandidateLister получает кандидатов с бэкенда
type CandidateLister interface {
	ListCandidates(ctx context.Context, session entity.EmployerSession) ([]entity.CandidateRecord, error)
}

// CandidateService готовит список кандидатов для работодателя
type CandidateService struct {
	lister   CandidateLister
	maxScore float64
}

// NewCandidateService создает новый сервис кандидатов
func NewCandidateService(lister CandidateLister, maxScore float64) *CandidateService {
	return &CandidateService{
		lister:   lister,
		maxScore: maxScore,
	}
}

// MaxScore возвращает максимальный суммарный балл для отображения "итог/максимум"
func (s *CandidateService) MaxScore() float64 {
	return s.maxScore
}

// ListRanked получает кандидатов и сортирует их по убыванию суммарного балла
func (s *CandidateService) ListRanked(ctx context.Context, session entity.EmployerSession) ([]entity.CandidateRecord, error) {
	if session.IsZero() {
		return nil, apperrors.ErrUnauthorized
	}

	records, err := s.lister.ListCandidates(ctx, session)
	if err != nil {
		log.Printf("[CandidateService] Ошибка получения списка кандидатов: %v", err)
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return RankCandidates(records), nil
}

// RankCandidates возвращает копию списка, отсортированную по убыванию суммарного балла.
// Кандидаты без оценок получают 0, при равенстве сохраняется исходный порядок.
func RankCandidates(records []entity.CandidateRecord) []entity.CandidateRecord {
	ranked := make([]entity.CandidateRecord, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].AggregateScore() > ranked[j].AggregateScore()
	})
	return ranked
}
