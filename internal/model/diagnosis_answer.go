package model

// DiagnosisAnswer 一次会话中每道题的作答记录。
// 会话仍在进行时同一题目的再次提交为原地覆盖，完成后不再变更。
type DiagnosisAnswer struct {
	BaseModel
	SessionID      string `gorm:"index:idx_session_question,unique;type:varchar(36);not null" json:"sessionId"`
	QuestionID     uint   `gorm:"index:idx_session_question,unique;not null" json:"questionId"`
	SelectedAnswer string `gorm:"type:text" json:"selectedAnswer"`
	CorrectAnswer  string `gorm:"type:text" json:"correctAnswer"`
	IsCorrect      bool   `gorm:"default:false" json:"isCorrect"`
	TimeSpentMS    int64  `gorm:"default:0" json:"timeSpentMs"`
	Difficulty     int    `gorm:"default:1" json:"difficulty"`
	Domain         string `gorm:"size:100" json:"domain"`
	QuestionType   string `gorm:"size:50" json:"questionType"`
}

func (DiagnosisAnswer) TableName() string {
	return "diagnosis_answers"
}
