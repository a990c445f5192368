package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswer_MarshalJSON_ChoiceKeepsEmptySelection(t *testing.T) {
	// Arrange
	answer := Answer{Type: QuestionKindChoice, ID: 2, Question: "Q2", Selected: ""}

	// Act
	data, err := json.Marshal(answer)

	// Assert
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"mc","id":2,"question":"Q2","selected":""}`, string(data))
}

func TestAnswer_MarshalJSON_TextUsesAnswerField(t *testing.T) {
	answer := Answer{Type: QuestionKindText, ID: 3, Question: "Q3", Answer: "hello"}

	data, err := json.Marshal(answer)

	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"text","id":3,"question":"Q3","answer":"hello"}`, string(data))
}

func TestCandidateSubmission_AnswerIDs(t *testing.T) {
	submission := CandidateSubmission{
		Name:  "Lan",
		Phone: "0900000000",
		Answers: []Answer{
			{Type: QuestionKindChoice, ID: 1},
			{Type: QuestionKindChoice, ID: 2},
			{Type: QuestionKindText, ID: 3},
		},
	}

	assert.Equal(t, []int{1, 2, 3}, submission.AnswerIDs())
}

func TestEvaluationStatus_Terminal(t *testing.T) {
	assert.False(t, EvaluationPending.IsTerminal())
	assert.False(t, EvaluationProcessing.IsTerminal())
	assert.False(t, EvaluationUnknown.IsTerminal())
	assert.True(t, EvaluationCompleted.IsTerminal())
	assert.True(t, EvaluationFailed.IsTerminal())
}

func TestParseEvaluationStatus(t *testing.T) {
	assert.Equal(t, EvaluationProcessing, ParseEvaluationStatus("processing"))
	assert.Equal(t, EvaluationFailed, ParseEvaluationStatus("failed"))
	assert.Equal(t, EvaluationUnknown, ParseEvaluationStatus("queued"), "Незнакомый статус не должен считаться терминальным")
	assert.Equal(t, EvaluationUnknown, ParseEvaluationStatus(""))
}
