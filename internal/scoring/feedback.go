package scoring

import (
	"fmt"
	"sort"
)

// Feedback 根据学习水平阈值生成评语文本。
func Feedback(learningLevel float64) string {
	percent := learningLevel * 100
	switch {
	case learningLevel >= 0.9:
		return fmt.Sprintf("学习水平 %.0f%%：非常优秀，可以挑战更高难度的题目。", percent)
	case learningLevel >= 0.75:
		return fmt.Sprintf("学习水平 %.0f%%：优秀，建议针对高难度题型查漏补缺。", percent)
	case learningLevel >= 0.6:
		return fmt.Sprintf("学习水平 %.0f%%：良好，建议集中复习薄弱知识域。", percent)
	case learningLevel >= 0.4:
		return fmt.Sprintf("学习水平 %.0f%%：一般，需要从基础概念重新梳理。", percent)
	default:
		return fmt.Sprintf("学习水平 %.0f%%：基础薄弱，建议从低难度题目开始系统学习。", percent)
	}
}

// Recommendations 按分项统计挑出薄弱环节，生成学习建议列表。
func Recommendations(res Result) []string {
	var recs []string

	for tier := 1; tier <= 5; tier++ {
		b, ok := res.ByDifficulty[tier]
		if !ok || b.Total == 0 {
			continue
		}
		if b.Accuracy < 0.5 {
			recs = append(recs, fmt.Sprintf("难度 %d 题目正确率 %.0f%%，建议复习该层级知识点", tier, b.Accuracy*100))
		}
	}

	domains := make([]string, 0, len(res.ByDomain))
	for domain := range res.ByDomain {
		domains = append(domains, domain)
	}
	sort.Strings(domains)
	for _, domain := range domains {
		b := res.ByDomain[domain]
		if b.Total > 0 && b.Accuracy < 0.5 {
			recs = append(recs, fmt.Sprintf("「%s」知识域正确率 %.0f%%，建议针对性强化训练", domain, b.Accuracy*100))
		}
	}

	if len(recs) == 0 {
		if res.LearningLevel >= 0.9 {
			recs = append(recs, "各知识域均表现优秀，下一轮可以挑战更高难度")
		} else {
			recs = append(recs, "暂无明显薄弱环节，保持当前节奏继续学习")
		}
	}
	return recs
}
