package scoring

import "math"

// GradedAnswer 参与学习水平计算的单题结果。
// TimeSpentSeconds 为空时不做时间加权。
type GradedAnswer struct {
	IsCorrect        bool
	Difficulty       int
	TimeSpentSeconds *float64
	Domain           string
}

// Breakdown 按难度或知识域聚合的正确率统计
type Breakdown struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// Result 一次诊断会话的评分产出
type Result struct {
	LearningLevel    float64              `json:"learningLevel"`
	TotalScore       float64              `json:"totalScore"`
	MaxPossibleScore float64              `json:"maxPossibleScore"`
	AccuracyRate     float64              `json:"accuracyRate"`
	ByDifficulty     map[int]Breakdown    `json:"byDifficulty"`
	ByDomain         map[string]Breakdown `json:"byDomain"`
}

// 难度档位对应的固定分值，未知档位按最低档处理
var difficultyWeights = map[int]float64{
	1: 1.0,
	2: 2.0,
	3: 3.0,
	4: 4.0,
	5: 5.0,
}

// 各档位的期望作答时长（秒），用于时间加权
var expectedSeconds = map[int]float64{
	1: 30,
	2: 60,
	3: 120,
	4: 180,
	5: 300,
}

func Weight(difficulty int) float64 {
	if w, ok := difficultyWeights[difficulty]; ok {
		return w
	}
	return 1.0
}

// TimeWeight 比较实际耗时与该难度的期望耗时，快答加成、慢答折减。
func TimeWeight(difficulty int, timeSpentSeconds float64) float64 {
	expected, ok := expectedSeconds[difficulty]
	if !ok {
		expected = expectedSeconds[1]
	}
	ratio := timeSpentSeconds / expected
	switch {
	case ratio <= 0.5:
		return 1.2
	case ratio <= 0.8:
		return 1.1
	case ratio <= 1.2:
		return 1.0
	case ratio <= 2.0:
		return 0.9
	default:
		return 0.8
	}
}

// Calculate 将一组判分后的作答归约为学习水平指标和分项统计。
//
// learning_level = Σ(正确_i × w_i × 时间系数_i) / Σ(w_i)，分母为零时取 0。
// 时间系数只作用于答对题目的分子贡献，不作用于分母和答错题目；
// 因此结果需截断到 [0,1]，全对时恒为 1.0，与耗时无关。
func Calculate(answers []GradedAnswer) Result {
	res := Result{
		ByDifficulty: make(map[int]Breakdown),
		ByDomain:     make(map[string]Breakdown),
	}
	if len(answers) == 0 {
		return res
	}

	var numerator, denominator float64
	correctCount := 0

	for _, a := range answers {
		w := Weight(a.Difficulty)
		denominator += w

		if a.IsCorrect {
			correctCount++
			tw := 1.0
			if a.TimeSpentSeconds != nil {
				tw = TimeWeight(a.Difficulty, *a.TimeSpentSeconds)
			}
			numerator += w * tw
		}

		tier := a.Difficulty
		if _, ok := difficultyWeights[tier]; !ok {
			tier = 1
		}
		d := res.ByDifficulty[tier]
		d.Total++
		if a.IsCorrect {
			d.Correct++
		}
		res.ByDifficulty[tier] = d

		if a.Domain != "" {
			b := res.ByDomain[a.Domain]
			b.Total++
			if a.IsCorrect {
				b.Correct++
			}
			res.ByDomain[a.Domain] = b
		}
	}

	for tier, b := range res.ByDifficulty {
		b.Accuracy = accuracy(b.Correct, b.Total)
		res.ByDifficulty[tier] = b
	}
	for domain, b := range res.ByDomain {
		b.Accuracy = accuracy(b.Correct, b.Total)
		res.ByDomain[domain] = b
	}

	if denominator > 0 {
		res.LearningLevel = math.Min(1.0, math.Max(0.0, numerator/denominator))
	}
	// 全对恒为 1.0：时间折减只影响混合作答集，不允许把满分拉低
	if correctCount == len(answers) && denominator > 0 {
		res.LearningLevel = 1.0
	}
	res.TotalScore = numerator
	res.MaxPossibleScore = denominator
	res.AccuracyRate = accuracy(correctCount, len(answers))
	return res
}

func accuracy(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}
