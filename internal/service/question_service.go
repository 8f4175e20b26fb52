package service

import (
	"encoding/json"
	"errors"

	"edu_diagnosis_backend/internal/model"
	"edu_diagnosis_backend/internal/repository"
	"edu_diagnosis_backend/internal/util"

	"gorm.io/gorm"
)

type QuestionService struct {
	Repo *repository.QuestionRepository
}

func NewQuestionService(repo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{Repo: repo}
}

type QuestionRequest struct {
	Department   string          `json:"department" binding:"required"`
	QuestionType string          `json:"questionType"`
	Content      string          `json:"content" binding:"required"`
	Options      json.RawMessage `json:"options"`
	Answer       string          `json:"answer"`
	Difficulty   int             `json:"difficulty"`
	Domain       string          `json:"domain"`
	Explanation  string          `json:"explanation"`
	Enabled      *bool           `json:"enabled"`
}

func (s *QuestionService) Create(req QuestionRequest) (*model.Question, error) {
	if req.Difficulty < 1 || req.Difficulty > 5 {
		req.Difficulty = 1
	}
	if req.QuestionType == "" {
		req.QuestionType = "multiple_choice"
	}

	q := &model.Question{
		Department:   req.Department,
		QuestionType: req.QuestionType,
		Content:      req.Content,
		Options:      req.Options,
		Answer:       req.Answer,
		Difficulty:   req.Difficulty,
		Domain:       req.Domain,
		Explanation:  req.Explanation,
		Enabled:      true,
	}
	if req.Enabled != nil {
		q.Enabled = *req.Enabled
	}
	if err := s.Repo.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) Get(id uint) (*model.Question, error) {
	q, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) Update(id uint, req QuestionRequest) (*model.Question, error) {
	q, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if req.Difficulty >= 1 && req.Difficulty <= 5 {
		q.Difficulty = req.Difficulty
	}
	q.Department = req.Department
	q.Content = req.Content
	q.Options = req.Options
	q.Answer = req.Answer
	q.Domain = req.Domain
	q.Explanation = req.Explanation
	if req.QuestionType != "" {
		q.QuestionType = req.QuestionType
	}
	if req.Enabled != nil {
		q.Enabled = *req.Enabled
	}

	if err := s.Repo.Update(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) Delete(id uint) error {
	return s.Repo.Delete(id)
}

func (s *QuestionService) List(department, domain string, difficulty, page, limit int) ([]model.Question, int64, error) {
	return s.Repo.List(department, domain, difficulty, page, limit)
}

// StudentQuestion 学生视图隐藏正确答案和解析
type StudentQuestion struct {
	ID           uint            `json:"id"`
	Department   string          `json:"department"`
	QuestionType string          `json:"questionType"`
	Content      string          `json:"content"`
	Options      json.RawMessage `json:"options,omitempty"`
	Difficulty   int             `json:"difficulty"`
	Domain       string          `json:"domain"`
}

// DrawForSession 按学科随机抽题组卷
func (s *QuestionService) DrawForSession(department string, count int) ([]StudentQuestion, error) {
	qs, err := s.Repo.DrawRandom(department, count)
	if err != nil {
		return nil, err
	}

	res := make([]StudentQuestion, len(qs))
	for i, q := range qs {
		res[i] = StudentQuestion{
			ID:           q.ID,
			Department:   q.Department,
			QuestionType: q.QuestionType,
			Content:      q.Content,
			Options:      q.Options,
			Difficulty:   q.Difficulty,
			Domain:       q.Domain,
		}
	}
	return res, nil
}
