package model

import "encoding/json"

type AlertKind string

const (
	AlertDiagnosisCompleted AlertKind = "diagnosis_completed"
	AlertLowLearningLevel   AlertKind = "low_learning_level"
	AlertMatchRequested     AlertKind = "match_requested"
	AlertMatchAccepted      AlertKind = "match_accepted"
)

// Alert 持久化的站内通知。实时推送走 Redis 频道 + WebSocket，
// 这里的记录保证离线接收方之后仍能读到。
type Alert struct {
	BaseModel
	RecipientID uint            `gorm:"index;not null" json:"recipientId"`
	Kind        AlertKind       `gorm:"size:50" json:"kind"`
	Title       string          `gorm:"size:255" json:"title"`
	Payload     json.RawMessage `gorm:"type:json" json:"payload,omitempty"`
	Read        bool            `gorm:"default:false;index" json:"read"`
}

func (Alert) TableName() string {
	return "alerts"
}
