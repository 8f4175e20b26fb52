package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seconds(v float64) *float64 { return &v }

func TestCalculate_Empty(t *testing.T) {
	res := Calculate(nil)
	assert.Equal(t, 0.0, res.LearningLevel)
	assert.Empty(t, res.ByDifficulty)
	assert.Empty(t, res.ByDomain)
	assert.Equal(t, 0.0, res.MaxPossibleScore)
}

func TestCalculate_WeightedExample(t *testing.T) {
	// 正确(1) + 错误(3) + 正确(5) => 分子6 / 分母9
	answers := []GradedAnswer{
		{IsCorrect: true, Difficulty: 1},
		{IsCorrect: false, Difficulty: 3},
		{IsCorrect: true, Difficulty: 5},
	}
	res := Calculate(answers)
	assert.InDelta(t, 6.0/9.0, res.LearningLevel, 1e-9)
	assert.Equal(t, 9.0, res.MaxPossibleScore)
	assert.Equal(t, 6.0, res.TotalScore)
}

func TestCalculate_UniformTierCancelsWeighting(t *testing.T) {
	answers := make([]GradedAnswer, 30)
	for i := range answers {
		answers[i] = GradedAnswer{IsCorrect: i < 21, Difficulty: 2}
	}
	res := Calculate(answers)
	assert.InDelta(t, 0.70, res.LearningLevel, 1e-9)
	assert.InDelta(t, 0.70, res.AccuracyRate, 1e-9)
}

func TestCalculate_AllCorrectIsOneRegardlessOfTime(t *testing.T) {
	answers := []GradedAnswer{
		{IsCorrect: true, Difficulty: 1, TimeSpentSeconds: seconds(5)},    // 快答加成
		{IsCorrect: true, Difficulty: 3, TimeSpentSeconds: seconds(1000)}, // 慢答折减
		{IsCorrect: true, Difficulty: 5},
	}
	res := Calculate(answers)
	assert.Equal(t, 1.0, res.LearningLevel)
}

func TestCalculate_SingleWrongTierOne(t *testing.T) {
	res := Calculate([]GradedAnswer{{IsCorrect: false, Difficulty: 1}})
	assert.Equal(t, 0.0, res.LearningLevel)
	assert.Equal(t, 1.0, res.MaxPossibleScore)
}

func TestCalculate_DenominatorIgnoresCorrectnessAndTime(t *testing.T) {
	answers := []GradedAnswer{
		{IsCorrect: false, Difficulty: 2, TimeSpentSeconds: seconds(1)},
		{IsCorrect: true, Difficulty: 4, TimeSpentSeconds: seconds(9999)},
		{IsCorrect: false, Difficulty: 5},
	}
	res := Calculate(answers)
	assert.Equal(t, 11.0, res.MaxPossibleScore)
}

func TestCalculate_TimeWeightOnlyBoostsCorrectNumerator(t *testing.T) {
	// 难度3期望120秒，30秒内完成 => 1.2 加成只进入分子
	answers := []GradedAnswer{
		{IsCorrect: true, Difficulty: 3, TimeSpentSeconds: seconds(30)},
		{IsCorrect: false, Difficulty: 3, TimeSpentSeconds: seconds(30)},
	}
	res := Calculate(answers)
	assert.InDelta(t, (3.0*1.2)/6.0, res.LearningLevel, 1e-9)
}

func TestCalculate_UnknownTierDefaultsToOne(t *testing.T) {
	answers := []GradedAnswer{
		{IsCorrect: true, Difficulty: 0},
		{IsCorrect: true, Difficulty: 99},
	}
	res := Calculate(answers)
	assert.Equal(t, 2.0, res.MaxPossibleScore)
	assert.Equal(t, 1.0, res.LearningLevel)

	b, ok := res.ByDifficulty[1]
	require.True(t, ok, "未知难度应归入档位1")
	assert.Equal(t, 2, b.Total)
}

func TestCalculate_LearningLevelAlwaysInRange(t *testing.T) {
	cases := [][]GradedAnswer{
		{{IsCorrect: true, Difficulty: 1, TimeSpentSeconds: seconds(1)}},
		{{IsCorrect: true, Difficulty: 5, TimeSpentSeconds: seconds(10)}, {IsCorrect: true, Difficulty: 1, TimeSpentSeconds: seconds(1)}},
		{{IsCorrect: false, Difficulty: 5}},
		{},
	}
	for _, answers := range cases {
		res := Calculate(answers)
		assert.GreaterOrEqual(t, res.LearningLevel, 0.0)
		assert.LessOrEqual(t, res.LearningLevel, 1.0)
	}
}

func TestCalculate_Breakdowns(t *testing.T) {
	answers := []GradedAnswer{
		{IsCorrect: true, Difficulty: 1, Domain: "algebra"},
		{IsCorrect: false, Difficulty: 1, Domain: "algebra"},
		{IsCorrect: true, Difficulty: 3, Domain: "geometry"},
	}
	res := Calculate(answers)

	require.Len(t, res.ByDifficulty, 2)
	assert.Equal(t, Breakdown{Total: 2, Correct: 1, Accuracy: 0.5}, res.ByDifficulty[1])
	assert.Equal(t, Breakdown{Total: 1, Correct: 1, Accuracy: 1.0}, res.ByDifficulty[3])

	require.Len(t, res.ByDomain, 2)
	assert.Equal(t, Breakdown{Total: 2, Correct: 1, Accuracy: 0.5}, res.ByDomain["algebra"])
	assert.Equal(t, Breakdown{Total: 1, Correct: 1, Accuracy: 1.0}, res.ByDomain["geometry"])
}

func TestTimeWeight_Table(t *testing.T) {
	cases := []struct {
		name       string
		difficulty int
		spent      float64
		want       float64
	}{
		{"半程内快答", 1, 15, 1.2},
		{"0.8倍以内", 1, 24, 1.1},
		{"接近期望", 1, 30, 1.0},
		{"略超时", 1, 50, 0.9},
		{"严重超时", 1, 100, 0.8},
		{"高档位期望更长", 5, 150, 1.2},
		{"未知档位按最低档", 0, 30, 1.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TimeWeight(tc.difficulty, tc.spent))
		})
	}
}

func TestWeight(t *testing.T) {
	assert.Equal(t, 1.0, Weight(1))
	assert.Equal(t, 5.0, Weight(5))
	assert.Equal(t, 1.0, Weight(-3))
	assert.Equal(t, 1.0, Weight(7))
}
