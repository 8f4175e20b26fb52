package repository

import (
	"edu_diagnosis_backend/internal/model"

	"gorm.io/gorm"
)

type ResultRepository struct {
	DB *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

func (r *ResultRepository) Create(res *model.DiagnosisResult) error {
	return r.DB.Create(res).Error
}

func (r *ResultRepository) FindBySessionID(sessionID string) (*model.DiagnosisResult, error) {
	var res model.DiagnosisResult
	err := r.DB.Where("session_id = ?", sessionID).First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// AttachAnalysis 完成后回填异步分析元数据，只更新分析字段
func (r *ResultRepository) AttachAnalysis(sessionID, source string, content []byte) error {
	return r.DB.Model(&model.DiagnosisResult{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"analysis_source":  source,
			"analysis_content": content,
		}).Error
}

func (r *ResultRepository) ListByUser(userID uint, department string, limit int) ([]model.DiagnosisResult, error) {
	var results []model.DiagnosisResult
	query := r.DB.Where("user_id = ?", userID)
	if department != "" {
		query = query.Where("department = ?", department)
	}
	err := query.Order("created_at desc").Limit(limit).Find(&results).Error
	return results, err
}

type HistoryRepository struct {
	DB *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{DB: db}
}

func (r *HistoryRepository) ListByUserAndDepartment(userID uint, department string) ([]model.LearningLevelHistory, error) {
	var rows []model.LearningLevelHistory
	err := r.DB.Where("user_id = ? AND department = ?", userID, department).
		Order("created_at asc").Find(&rows).Error
	return rows, err
}

// DepartmentAverage 某学科全体学生最近水平的平均值（每人取最新一条）
func (r *HistoryRepository) DepartmentAverage(department string) (float64, int64, error) {
	type row struct {
		Avg   float64
		Count int64
	}
	var res row
	err := r.DB.Raw(`
		SELECT COALESCE(AVG(latest.learning_level), 0) AS avg, COUNT(*) AS count
		FROM (
			SELECT DISTINCT ON (user_id) learning_level
			FROM learning_level_history
			WHERE department = ? AND deleted_at IS NULL
			ORDER BY user_id, created_at DESC
		) latest`, department).Scan(&res).Error
	return res.Avg, res.Count, err
}
