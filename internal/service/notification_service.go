package service

import (
	"encoding/json"

	"edu_diagnosis_backend/internal/model"
	"edu_diagnosis_backend/internal/repository"
	"edu_diagnosis_backend/internal/util"
	"edu_diagnosis_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 学习水平低于该值时额外发出预警通知
const lowLevelThreshold = 0.4

type NotificationService struct {
	AlertRepo *repository.AlertRepository
	MatchRepo *repository.MatchRepository
	Hub       *NotificationHub
}

func NewNotificationService(alertRepo *repository.AlertRepository, matchRepo *repository.MatchRepository, hub *NotificationHub) *NotificationService {
	return &NotificationService{
		AlertRepo: alertRepo,
		MatchRepo: matchRepo,
		Hub:       hub,
	}
}

type alertPayload struct {
	Kind          model.AlertKind `json:"kind"`
	Title         string          `json:"title"`
	StudentID     uint            `json:"studentId"`
	SessionID     string          `json:"sessionId,omitempty"`
	Department    string          `json:"department,omitempty"`
	RoundNumber   int             `json:"roundNumber,omitempty"`
	LearningLevel float64         `json:"learningLevel,omitempty"`
}

// NotifyCompletion 实现 CompletionNotifier。
// 给学生已配对的教授写入告警并实时推送；失败只记日志。
func (s *NotificationService) NotifyCompletion(session *model.DiagnosisSession, result *model.DiagnosisResult) {
	professorIDs, err := s.MatchRepo.AcceptedProfessorIDs(session.UserID)
	if err != nil {
		logger.Log.Warn("completion notify: professor lookup failed",
			zap.Uint("studentID", session.UserID), zap.Error(err))
		return
	}
	if len(professorIDs) == 0 {
		return
	}

	payload := alertPayload{
		Kind:          model.AlertDiagnosisCompleted,
		Title:         "学生完成了一轮诊断测试",
		StudentID:     session.UserID,
		SessionID:     session.ID,
		Department:    session.Department,
		RoundNumber:   session.RoundNumber,
		LearningLevel: result.LearningLevel,
	}
	s.deliver(professorIDs, payload)

	if result.LearningLevel < lowLevelThreshold {
		payload.Kind = model.AlertLowLearningLevel
		payload.Title = "学生学习水平偏低，建议关注"
		s.deliver(professorIDs, payload)
	}
}

func (s *NotificationService) deliver(recipientIDs []uint, payload alertPayload) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}

	for _, id := range recipientIDs {
		alert := &model.Alert{
			RecipientID: id,
			Kind:        payload.Kind,
			Title:       payload.Title,
			Payload:     raw,
		}
		if err := s.AlertRepo.Create(alert); err != nil {
			logger.Log.Warn("alert persist failed",
				zap.Uint("recipientID", id), zap.Error(err))
		}
	}

	if s.Hub != nil {
		s.Hub.Publish(recipientIDs, payload)
	}
}

// NotifyMatchEvent 配对请求/接受时通知对方
func (s *NotificationService) NotifyMatchEvent(kind model.AlertKind, recipientID, counterpartID uint, department string) {
	payload := alertPayload{
		Kind:       kind,
		StudentID:  counterpartID,
		Department: department,
	}
	switch kind {
	case model.AlertMatchRequested:
		payload.Title = "收到新的配对申请"
	case model.AlertMatchAccepted:
		payload.Title = "配对申请已通过"
	}
	s.deliver([]uint{recipientID}, payload)
}

func (s *NotificationService) ListAlerts(recipientID uint, unreadOnly bool, page, limit int) ([]model.Alert, int64, error) {
	return s.AlertRepo.ListByRecipient(recipientID, unreadOnly, page, limit)
}

func (s *NotificationService) MarkRead(recipientID, alertID uint) error {
	err := s.AlertRepo.MarkRead(recipientID, alertID)
	if err == gorm.ErrRecordNotFound {
		return util.ErrAlertNotFound
	}
	return err
}

func (s *NotificationService) MarkAllRead(recipientID uint) error {
	return s.AlertRepo.MarkAllRead(recipientID)
}
