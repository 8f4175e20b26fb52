package repository

import (
	"time"

	"edu_diagnosis_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(s *model.DiagnosisSession) error {
	return r.DB.Create(s).Error
}

func (r *SessionRepository) FindByID(id string) (*model.DiagnosisSession, error) {
	var s model.DiagnosisSession
	err := r.DB.Where("id = ?", id).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindOwned 按会话ID+用户ID查找，归属不符与不存在同样返回 ErrRecordNotFound
func (r *SessionRepository) FindOwned(id string, userID uint) (*model.DiagnosisSession, error) {
	var s model.DiagnosisSession
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// MaxCompletedRound 用户在某学科某测试类型下已完成会话的最大轮次，无记录时返回 0
func (r *SessionRepository) MaxCompletedRound(userID uint, department, testType string) (int, error) {
	var maxRound *int
	err := r.DB.Model(&model.DiagnosisSession{}).
		Where("user_id = ? AND department = ? AND test_type = ? AND status = ?",
			userID, department, testType, model.SessionCompleted).
		Select("MAX(round_number)").Scan(&maxRound).Error
	if err != nil {
		return 0, err
	}
	if maxRound == nil {
		return 0, nil
	}
	return *maxRound, nil
}

func (r *SessionRepository) UpdateStatus(id string, status model.SessionStatus) error {
	return r.DB.Model(&model.DiagnosisSession{}).Where("id = ?", id).Update("status", status).Error
}

func (r *SessionRepository) Save(s *model.DiagnosisSession) error {
	return r.DB.Save(s).Error
}

func (r *SessionRepository) ListByUser(userID uint, department string, page, limit int) ([]model.DiagnosisSession, int64, error) {
	var sessions []model.DiagnosisSession
	var total int64

	query := r.DB.Model(&model.DiagnosisSession{}).Where("user_id = ?", userID)
	if department != "" {
		query = query.Where("department = ?", department)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("started_at desc").Offset(offset).Limit(limit).Find(&sessions).Error
	return sessions, total, err
}

// UpsertAnswer 同一会话内同一题目的重复提交在原行上覆盖
func (r *SessionRepository) UpsertAnswer(a *model.DiagnosisAnswer) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"selected_answer", "correct_answer", "is_correct",
			"time_spent_ms", "difficulty", "domain", "question_type", "updated_at",
		}),
	}).Create(a).Error
}

func (r *SessionRepository) ListAnswers(sessionID string) ([]model.DiagnosisAnswer, error) {
	var answers []model.DiagnosisAnswer
	err := r.DB.Where("session_id = ?", sessionID).Order("question_id asc").Find(&answers).Error
	return answers, err
}

func (r *SessionRepository) CountAnswers(sessionID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.DiagnosisAnswer{}).Where("session_id = ?", sessionID).Count(&count).Error
	return count, err
}

// DeleteOlderThan 管理员清理：删除 cutoff 之前开始的会话及其作答记录
func (r *SessionRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	var stale []model.DiagnosisSession
	if err := r.DB.Where("started_at < ?", cutoff).Find(&stale).Error; err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	ids := make([]string, len(stale))
	for i, s := range stale {
		ids[i] = s.ID
	}

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id IN ?", ids).Delete(&model.DiagnosisAnswer{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&model.DiagnosisSession{}).Error
	})
	return int64(len(ids)), err
}
