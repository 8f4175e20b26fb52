package scoring

import (
	"math"
	"time"
)

type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// DefaultTrendWindow 趋势分析默认只看最近 30 天的数据
const DefaultTrendWindow = 30 * 24 * time.Hour

// 日斜率小于该值时视为平稳
const slopeThreshold = 0.005

type TrendPoint struct {
	At    time.Time `json:"at"`
	Level float64   `json:"level"`
}

// TrendResult 历史学习水平的描述性统计，仅用于前端展示
type TrendResult struct {
	Direction  TrendDirection `json:"direction"`
	Slope      float64        `json:"slope"` // 每天的学习水平变化量
	Volatility float64        `json:"volatility"`
	Samples    int            `json:"samples"`
}

type Projection struct {
	Predicted  float64 `json:"predicted"`
	LowerBound float64 `json:"lowerBound"`
	UpperBound float64 `json:"upperBound"`
}

// AnalyzeTrend 在尾部时间窗口内做一元线性回归，按日斜率分类趋势。
// 样本不足两个时返回 stable。
func AnalyzeTrend(points []TrendPoint, window time.Duration) TrendResult {
	if window <= 0 {
		window = DefaultTrendWindow
	}
	recent := trailing(points, window)

	res := TrendResult{Direction: TrendStable, Samples: len(recent)}
	if len(recent) < 2 {
		return res
	}

	res.Slope = regressionSlope(recent)
	res.Volatility = populationStdev(recent)

	switch {
	case res.Slope > slopeThreshold:
		res.Direction = TrendImproving
	case res.Slope < -slopeThreshold:
		res.Direction = TrendDeclining
	}
	return res
}

// Project 将回归直线外推 horizon 天，置信带取 ±1.96σ，结果截断到 [0,1]。
func Project(points []TrendPoint, window time.Duration, horizonDays float64) Projection {
	if window <= 0 {
		window = DefaultTrendWindow
	}
	recent := trailing(points, window)

	if len(recent) == 0 {
		return Projection{}
	}

	last := recent[len(recent)-1].Level
	if len(recent) < 2 {
		return Projection{Predicted: last, LowerBound: last, UpperBound: last}
	}

	slope := regressionSlope(recent)
	stdev := populationStdev(recent)
	predicted := clamp01(last + slope*horizonDays)
	margin := 1.96 * stdev

	return Projection{
		Predicted:  predicted,
		LowerBound: clamp01(predicted - margin),
		UpperBound: clamp01(predicted + margin),
	}
}

func trailing(points []TrendPoint, window time.Duration) []TrendPoint {
	if len(points) == 0 {
		return nil
	}
	cutoff := points[len(points)-1].At.Add(-window)
	start := 0
	for i, p := range points {
		if p.At.After(cutoff) {
			start = i
			break
		}
		start = i + 1
	}
	return points[start:]
}

// regressionSlope 以天为横轴的最小二乘斜率
func regressionSlope(points []TrendPoint) float64 {
	n := float64(len(points))
	origin := points[0].At

	var sumX, sumY, sumXY, sumXX float64
	for _, p := range points {
		x := p.At.Sub(origin).Hours() / 24
		sumX += x
		sumY += p.Level
		sumXY += x * p.Level
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func populationStdev(points []TrendPoint) float64 {
	n := float64(len(points))
	var sum float64
	for _, p := range points {
		sum += p.Level
	}
	mean := sum / n

	var sq float64
	for _, p := range points {
		d := p.Level - mean
		sq += d * d
	}
	return math.Sqrt(sq / n)
}

func clamp01(v float64) float64 {
	return math.Min(1.0, math.Max(0.0, v))
}
