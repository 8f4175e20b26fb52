package model

import "time"

type SessionStatus string

const (
	SessionNotStarted SessionStatus = "not_started"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionExpired    SessionStatus = "expired"
	SessionAbandoned  SessionStatus = "abandoned"
)

// Terminal reports whether no further transitions are allowed from s.
func (s SessionStatus) Terminal() bool {
	switch s {
	case SessionCompleted, SessionExpired, SessionAbandoned:
		return true
	}
	return false
}

// MaxRound 同一学科诊断测试的轮次上限
const MaxRound = 10

// swagger:model DiagnosisSession
type DiagnosisSession struct {
	UUIDBase
	UserID           uint          `gorm:"index;not null" json:"userId"`
	User             *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Department       string        `gorm:"size:50;index;not null" json:"department"`
	TestType         string        `gorm:"size:50;default:'diagnosis'" json:"testType"`
	RoundNumber      int           `gorm:"default:1" json:"roundNumber"` // 1..MaxRound
	Status           SessionStatus `gorm:"size:20;index;default:'not_started'" json:"status"`
	TotalQuestions   int           `gorm:"default:0" json:"totalQuestions"`
	TimeLimitMinutes int           `gorm:"default:60" json:"timeLimitMinutes"`
	StartedAt        time.Time     `json:"startedAt"`
	ExpiresAt        time.Time     `json:"expiresAt"`
	CompletedAt      *time.Time    `json:"completedAt,omitempty"`
	TotalTimeMS      int64         `gorm:"default:0" json:"totalTimeMs"`
}

func (DiagnosisSession) TableName() string {
	return "diagnosis_sessions"
}

// ExpiredAt reports whether the session's time limit has elapsed at now.
func (s *DiagnosisSession) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
