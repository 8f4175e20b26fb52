package service

import (
	"testing"
	"time"

	"edu_diagnosis_backend/internal/model"
	"edu_diagnosis_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRound(t *testing.T) {
	cases := []struct {
		name         string
		maxCompleted int
		want         int
	}{
		{"无完成记录从第1轮开始", 0, 1},
		{"正常推进", 3, 4},
		{"到达上限前一轮", 9, 10},
		{"封顶不超过10", 10, 10},
		{"异常大值仍封顶", 99, 10},
		{"负数按0处理", -1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NextRound(tc.maxCompleted))
		})
	}
}

func TestValidateDetailedResults(t *testing.T) {
	err := validateDetailedResults([]DetailedResult{
		{QuestionID: 1}, {QuestionID: 2}, {QuestionID: 3},
	})
	assert.NoError(t, err)

	err = validateDetailedResults([]DetailedResult{
		{QuestionID: 1}, {QuestionID: 2}, {QuestionID: 1},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrValidation)

	err = validateDetailedResults([]DetailedResult{{QuestionID: 0}})
	assert.ErrorIs(t, err, util.ErrValidation)

	assert.NoError(t, validateDetailedResults(nil))
}

func TestToGradedAnswers(t *testing.T) {
	answers := []model.DiagnosisAnswer{
		{IsCorrect: true, Difficulty: 3, Domain: "loop", TimeSpentMS: 45000},
		{IsCorrect: false, Difficulty: 5, Domain: "pointer"},
	}
	graded := toGradedAnswers(answers)
	require.Len(t, graded, 2)

	assert.True(t, graded[0].IsCorrect)
	assert.Equal(t, 3, graded[0].Difficulty)
	require.NotNil(t, graded[0].TimeSpentSeconds)
	assert.Equal(t, 45.0, *graded[0].TimeSpentSeconds)

	// 未上报耗时的题目不做时间加权
	assert.Nil(t, graded[1].TimeSpentSeconds)
}

func TestSessionExpiry(t *testing.T) {
	now := time.Now()
	session := &model.DiagnosisSession{
		Status:    model.SessionInProgress,
		StartedAt: now.Add(-61 * time.Minute),
		ExpiresAt: now.Add(-1 * time.Minute),
	}
	assert.True(t, session.ExpiredAt(now))

	session.ExpiresAt = now.Add(time.Minute)
	assert.False(t, session.ExpiredAt(now))

	// 恰好到达过期时刻视为已过期
	session.ExpiresAt = now
	assert.True(t, session.ExpiredAt(now))
}

func TestSessionStatusTerminal(t *testing.T) {
	assert.False(t, model.SessionNotStarted.Terminal())
	assert.False(t, model.SessionInProgress.Terminal())
	assert.True(t, model.SessionCompleted.Terminal())
	assert.True(t, model.SessionExpired.Terminal())
	assert.True(t, model.SessionAbandoned.Terminal())
}
