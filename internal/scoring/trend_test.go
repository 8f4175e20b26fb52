package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(n int) time.Time {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, n)
}

func TestAnalyzeTrend_Improving(t *testing.T) {
	points := []TrendPoint{
		{At: day(0), Level: 0.4},
		{At: day(7), Level: 0.5},
		{At: day(14), Level: 0.6},
		{At: day(21), Level: 0.7},
	}
	res := AnalyzeTrend(points, 0)
	assert.Equal(t, TrendImproving, res.Direction)
	assert.InDelta(t, 0.1/7, res.Slope, 1e-9)
	assert.Equal(t, 4, res.Samples)
}

func TestAnalyzeTrend_Declining(t *testing.T) {
	points := []TrendPoint{
		{At: day(0), Level: 0.8},
		{At: day(10), Level: 0.5},
		{At: day(20), Level: 0.2},
	}
	res := AnalyzeTrend(points, 0)
	assert.Equal(t, TrendDeclining, res.Direction)
}

func TestAnalyzeTrend_FlatIsStable(t *testing.T) {
	points := []TrendPoint{
		{At: day(0), Level: 0.6},
		{At: day(10), Level: 0.6},
		{At: day(20), Level: 0.6},
	}
	res := AnalyzeTrend(points, 0)
	assert.Equal(t, TrendStable, res.Direction)
	assert.Equal(t, 0.0, res.Volatility)
}

func TestAnalyzeTrend_FewSamples(t *testing.T) {
	assert.Equal(t, TrendStable, AnalyzeTrend(nil, 0).Direction)
	assert.Equal(t, TrendStable, AnalyzeTrend([]TrendPoint{{At: day(0), Level: 0.9}}, 0).Direction)
}

func TestAnalyzeTrend_WindowDropsOldPoints(t *testing.T) {
	// 老数据呈下降趋势，窗口内数据上升，应按窗口内判定
	points := []TrendPoint{
		{At: day(0), Level: 0.9},
		{At: day(1), Level: 0.3},
		{At: day(50), Level: 0.4},
		{At: day(55), Level: 0.5},
		{At: day(60), Level: 0.6},
	}
	res := AnalyzeTrend(points, DefaultTrendWindow)
	assert.Equal(t, TrendImproving, res.Direction)
	assert.Equal(t, 3, res.Samples)
}

func TestProject_BoundsAndClamp(t *testing.T) {
	points := []TrendPoint{
		{At: day(0), Level: 0.7},
		{At: day(10), Level: 0.8},
		{At: day(20), Level: 0.9},
	}
	p := Project(points, 0, 30)

	assert.LessOrEqual(t, p.Predicted, 1.0)
	assert.LessOrEqual(t, p.LowerBound, p.Predicted)
	assert.GreaterOrEqual(t, p.UpperBound, p.Predicted)
	assert.GreaterOrEqual(t, p.LowerBound, 0.0)
	assert.LessOrEqual(t, p.UpperBound, 1.0)
}

func TestProject_SinglePoint(t *testing.T) {
	p := Project([]TrendPoint{{At: day(0), Level: 0.55}}, 0, 7)
	assert.Equal(t, 0.55, p.Predicted)
	assert.Equal(t, 0.55, p.LowerBound)
	assert.Equal(t, 0.55, p.UpperBound)
}

func TestProject_Empty(t *testing.T) {
	assert.Equal(t, Projection{}, Project(nil, 0, 7))
}
