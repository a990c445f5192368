package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/recruit-intake/internal/domain/entity"
	apperrors "github.com/yourusername/recruit-intake/internal/pkg/errors"
)

// MockCandidateLister реализует CandidateLister
type MockCandidateLister struct {
	mock.Mock
}

func (m *MockCandidateLister) ListCandidates(ctx context.Context, session entity.EmployerSession) ([]entity.CandidateRecord, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CandidateRecord), args.Error(1)
}

func scorePtr(v float64) *float64 { return &v }

func candidate(id int, scores ...*float64) entity.CandidateRecord {
	c := entity.CandidateRecord{ID: id, Name: "C"}
	for _, s := range scores {
		c.Answers = append(c.Answers, entity.AnswerRecord{Type: entity.QuestionKindText, EvaluationScore: s})
	}
	return c
}

func ids(records []entity.CandidateRecord) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestRankCandidates_ByAggregateScore(t *testing.T) {
	// id1: 2 + 3 = 5, id2: 1 + 5 = 6
	records := []entity.CandidateRecord{
		candidate(1, scorePtr(2), scorePtr(3)),
		candidate(2, scorePtr(1), scorePtr(5)),
	}

	ranked := RankCandidates(records)

	assert.Equal(t, []int{2, 1}, ids(ranked))
	assert.Equal(t, []int{1, 2}, ids(records), "Исходный список не изменяется")
}

func TestRankCandidates_StableForTiesAndMissingScores(t *testing.T) {
	records := []entity.CandidateRecord{
		candidate(1),
		candidate(2, nil, scorePtr(0)),
		candidate(3, scorePtr(1)),
		candidate(4),
	}

	ranked := RankCandidates(records)

	assert.Equal(t, []int{3, 1, 2, 4}, ids(ranked))
	assert.Empty(t, RankCandidates(nil))
}

func TestListRanked(t *testing.T) {
	lister := new(MockCandidateLister)
	session := entity.EmployerSession{ID: "s", Token: "tok"}
	lister.On("ListCandidates", mock.Anything, session).Return([]entity.CandidateRecord{
		candidate(1, scorePtr(5)),
		candidate(2, scorePtr(6)),
	}, nil)
	svc := NewCandidateService(lister, 50)

	ranked, err := svc.ListRanked(context.Background(), session)

	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, ids(ranked))
	assert.InDelta(t, 50.0, svc.MaxScore(), 1e-9)
}

func TestListRanked_Failure(t *testing.T) {
	lister := new(MockCandidateLister)
	session := entity.EmployerSession{ID: "s", Token: "tok"}
	backendErr := errors.New("HTTP 500")
	lister.On("ListCandidates", mock.Anything, session).Return(nil, backendErr)
	svc := NewCandidateService(lister, 50)

	ranked, err := svc.ListRanked(context.Background(), session)

	assert.ErrorIs(t, err, backendErr)
	assert.Nil(t, ranked)
}

func TestListRanked_RequiresSession(t *testing.T) {
	lister := new(MockCandidateLister)
	svc := NewCandidateService(lister, 50)

	_, err := svc.ListRanked(context.Background(), entity.EmployerSession{})

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	lister.AssertNotCalled(t, "ListCandidates", mock.Anything, mock.Anything)
}
