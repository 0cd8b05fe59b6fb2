package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"callpulse/internal/model"
)

func TestClassifyExtractsScore(t *testing.T) {
	resp := &model.SurveyResponse{
		Answers: map[string]interface{}{"score": float64(8)},
	}

	c := Classify(resp)
	assert.True(t, c.HasScore)
	assert.Equal(t, 8.0, c.Score)
}

func TestClassifyIntegerScoreTypes(t *testing.T) {
	for _, raw := range []interface{}{int(7), int32(7), int64(7), float32(7)} {
		resp := &model.SurveyResponse{Answers: map[string]interface{}{"score": raw}}
		c := Classify(resp)
		assert.True(t, c.HasScore, "score type %T", raw)
		assert.Equal(t, 7.0, c.Score)
	}
}

func TestClassifyIgnoresNonNumericScore(t *testing.T) {
	resp := &model.SurveyResponse{
		Answers: map[string]interface{}{"score": "9"},
	}

	c := Classify(resp)
	assert.False(t, c.HasScore)
}

func TestClassifyMissingScore(t *testing.T) {
	resp := &model.SurveyResponse{
		Answers: map[string]interface{}{"liked": true},
	}

	c := Classify(resp)
	assert.False(t, c.HasScore)
}

func TestClassifyComments(t *testing.T) {
	resp := &model.SurveyResponse{
		TextComments: "The Agent was very helpful and the agent resolved everything",
	}

	c := Classify(resp)
	assert.Equal(t, "the agent was very helpful and the agent resolved everything", c.Comment)
	assert.Contains(t, c.Keywords, "agent")
	assert.NotContains(t, c.Keywords, "the")
	assert.NotContains(t, c.Keywords, "was")
}

func TestClassifyKeywordsOrderedByFrequency(t *testing.T) {
	resp := &model.SurveyResponse{
		TextComments: "billing billing billing support support call",
	}

	c := Classify(resp)
	assert.Equal(t, []string{"billing", "support", "call"}, c.Keywords)
}

func TestClassifyNilResponse(t *testing.T) {
	c := Classify(nil)
	assert.False(t, c.HasScore)
	assert.Empty(t, c.Comment)
}
