package model

import "time"

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchAccepted  MatchStatus = "accepted"
	MatchRejected  MatchStatus = "rejected"
	MatchDissolved MatchStatus = "dissolved"
)

// ProfessorStudentMatch 教授-学生配对关系
type ProfessorStudentMatch struct {
	BaseModel
	ProfessorID uint        `gorm:"index:idx_professor_student,unique;not null" json:"professorId"`
	StudentID   uint        `gorm:"index:idx_professor_student,unique;not null" json:"studentId"`
	Professor   *User       `gorm:"foreignKey:ProfessorID" json:"professor,omitempty"`
	Student     *User       `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Department  string      `gorm:"size:50;index" json:"department"`
	Status      MatchStatus `gorm:"size:20;default:'pending'" json:"status"`
	AcceptedAt  *time.Time  `json:"acceptedAt,omitempty"`
	DissolvedAt *time.Time  `json:"dissolvedAt,omitempty"`
}

func (ProfessorStudentMatch) TableName() string {
	return "professor_student_matches"
}
