package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedback_Thresholds(t *testing.T) {
	assert.Contains(t, Feedback(0.95), "非常优秀")
	assert.Contains(t, Feedback(0.80), "优秀")
	assert.Contains(t, Feedback(0.65), "良好")
	assert.Contains(t, Feedback(0.45), "一般")
	assert.Contains(t, Feedback(0.10), "基础薄弱")
}

func TestRecommendations_WeakTierAndDomain(t *testing.T) {
	res := Calculate([]GradedAnswer{
		{IsCorrect: false, Difficulty: 2, Domain: "pointer"},
		{IsCorrect: false, Difficulty: 2, Domain: "pointer"},
		{IsCorrect: true, Difficulty: 4, Domain: "array"},
	})
	recs := Recommendations(res)
	require.Len(t, recs, 2)
	assert.Contains(t, recs[0], "难度 2")
	assert.Contains(t, recs[1], "pointer")
}

func TestRecommendations_NoWeakness(t *testing.T) {
	res := Calculate([]GradedAnswer{
		{IsCorrect: true, Difficulty: 3, Domain: "loop"},
		{IsCorrect: true, Difficulty: 5, Domain: "loop"},
	})
	recs := Recommendations(res)
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0], "更高难度")
}
