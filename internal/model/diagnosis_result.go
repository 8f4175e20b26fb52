package model

import "encoding/json"

// swagger:model DiagnosisResult
type DiagnosisResult struct {
	BaseModel
	SessionID        string          `gorm:"uniqueIndex;type:varchar(36);not null" json:"sessionId"`
	UserID           uint            `gorm:"index;not null" json:"userId"`
	Department       string          `gorm:"size:50;index" json:"department"`
	LearningLevel    float64         `gorm:"default:0" json:"learningLevel"` // [0,1] 加权正确率
	TotalScore       float64         `gorm:"default:0" json:"totalScore"`
	MaxPossibleScore float64         `gorm:"default:0" json:"maxPossibleScore"`
	AccuracyRate     float64         `gorm:"default:0" json:"accuracyRate"`
	ByDifficulty     json.RawMessage `gorm:"type:json" json:"byDifficulty,omitempty"`
	ByDomain         json.RawMessage `gorm:"type:json" json:"byDomain,omitempty"`
	Feedback         string          `gorm:"type:text" json:"feedback"`
	Recommendations  json.RawMessage `gorm:"type:json" json:"recommendations,omitempty"`

	// 异步分析元数据，完成后由 AnalysisProvider 回填，可能始终为空
	AnalysisSource  string          `gorm:"size:50" json:"analysisSource,omitempty"`
	AnalysisContent json.RawMessage `gorm:"type:json" json:"analysisContent,omitempty"`
}

func (DiagnosisResult) TableName() string {
	return "diagnosis_results"
}

type LearningLevelHistory struct {
	BaseModel
	UserID        uint    `gorm:"index:idx_user_department;not null" json:"userId"`
	Department    string  `gorm:"index:idx_user_department;size:50" json:"department"`
	RoundNumber   int     `gorm:"default:1" json:"roundNumber"`
	LearningLevel float64 `gorm:"default:0" json:"learningLevel"`
}

func (LearningLevelHistory) TableName() string {
	return "learning_level_history"
}
