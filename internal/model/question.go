package model

import "encoding/json"

// swagger:model Question
type Question struct {
	BaseModel
	Department   string          `gorm:"size:50;index;not null" json:"department"`
	QuestionType string          `gorm:"size:50;default:'multiple_choice'" json:"questionType"`
	Content      string          `gorm:"type:text;not null" json:"content"`
	Options      json.RawMessage `gorm:"type:json" json:"options,omitempty"`
	Answer       string          `gorm:"type:text" json:"answer"`
	Difficulty   int             `gorm:"default:1" json:"difficulty"` // 1(易) ~ 5(难)
	Domain       string          `gorm:"size:100;index" json:"domain"`
	Explanation  string          `gorm:"type:text" json:"explanation"`
	Enabled      bool            `gorm:"default:true" json:"enabled"`
}

func (Question) TableName() string {
	return "questions"
}
