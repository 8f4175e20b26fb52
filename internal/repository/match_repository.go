package repository

import (
	"edu_diagnosis_backend/internal/model"

	"gorm.io/gorm"
)

type MatchRepository struct {
	DB *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{DB: db}
}

func (r *MatchRepository) Create(m *model.ProfessorStudentMatch) error {
	return r.DB.Create(m).Error
}

func (r *MatchRepository) FindByID(id uint) (*model.ProfessorStudentMatch, error) {
	var m model.ProfessorStudentMatch
	err := r.DB.Preload("Professor").Preload("Student").First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MatchRepository) FindByPair(professorID, studentID uint) (*model.ProfessorStudentMatch, error) {
	var m model.ProfessorStudentMatch
	err := r.DB.Where("professor_id = ? AND student_id = ?", professorID, studentID).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MatchRepository) Save(m *model.ProfessorStudentMatch) error {
	return r.DB.Save(m).Error
}

func (r *MatchRepository) ListByProfessor(professorID uint, status model.MatchStatus, page, limit int) ([]model.ProfessorStudentMatch, int64, error) {
	return r.list("professor_id", professorID, status, page, limit, "Student")
}

func (r *MatchRepository) ListByStudent(studentID uint, status model.MatchStatus, page, limit int) ([]model.ProfessorStudentMatch, int64, error) {
	return r.list("student_id", studentID, status, page, limit, "Professor")
}

func (r *MatchRepository) list(column string, id uint, status model.MatchStatus, page, limit int, preload string) ([]model.ProfessorStudentMatch, int64, error) {
	var ms []model.ProfessorStudentMatch
	var total int64

	query := r.DB.Model(&model.ProfessorStudentMatch{}).Where(column+" = ?", id)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload(preload).Order("created_at desc").Offset(offset).Limit(limit).Find(&ms).Error
	return ms, total, err
}

// AcceptedProfessorIDs 学生当前已建立配对关系的教授ID列表，用于完成诊断后的通知投递
func (r *MatchRepository) AcceptedProfessorIDs(studentID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.ProfessorStudentMatch{}).
		Where("student_id = ? AND status = ?", studentID, model.MatchAccepted).
		Pluck("professor_id", &ids).Error
	return ids, err
}
