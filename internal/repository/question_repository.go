package repository

import (
	"edu_diagnosis_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, id).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) Update(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *QuestionRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Question{}, id).Error
}

func (r *QuestionRepository) List(department, domain string, difficulty, page, limit int) ([]model.Question, int64, error) {
	var qs []model.Question
	var total int64

	query := r.DB.Model(&model.Question{}).Where("enabled = ?", true)
	if department != "" {
		query = query.Where("department = ?", department)
	}
	if domain != "" {
		query = query.Where("domain = ?", domain)
	}
	if difficulty > 0 {
		query = query.Where("difficulty = ?", difficulty)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&qs).Error
	return qs, total, err
}

// DrawRandom 按学科随机抽取 count 道启用中的题目，用于组卷
func (r *QuestionRepository) DrawRandom(department string, count int) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("department = ? AND enabled = ?", department, true).
		Order("RANDOM()").Limit(count).Find(&qs).Error
	return qs, err
}
