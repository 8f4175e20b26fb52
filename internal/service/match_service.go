package service

import (
	"errors"
	"time"

	"edu_diagnosis_backend/internal/model"
	"edu_diagnosis_backend/internal/repository"
	"edu_diagnosis_backend/internal/util"

	"gorm.io/gorm"
)

type MatchService struct {
	MatchRepo *repository.MatchRepository
	UserRepo  *repository.UserRepository
	Notifier  *NotificationService
}

func NewMatchService(matchRepo *repository.MatchRepository, userRepo *repository.UserRepository, notifier *NotificationService) *MatchService {
	return &MatchService{
		MatchRepo: matchRepo,
		UserRepo:  userRepo,
		Notifier:  notifier,
	}
}

type MatchRequest struct {
	ProfessorID uint `json:"professorId" binding:"required"`
}

// RequestMatch 学生向教授发起配对申请。
// 已被拒绝或已解除的旧记录重新置为 pending。
func (s *MatchService) RequestMatch(studentID uint, req MatchRequest) (*model.ProfessorStudentMatch, error) {
	professor, err := s.UserRepo.FindByID(req.ProfessorID)
	if err != nil || professor.Role != model.Professor {
		return nil, util.ErrUserNotFound
	}
	student, err := s.UserRepo.FindByID(studentID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	existing, err := s.MatchRepo.FindByPair(req.ProfessorID, studentID)
	if err == nil {
		switch existing.Status {
		case model.MatchPending, model.MatchAccepted:
			return nil, util.ErrMatchExists
		default:
			existing.Status = model.MatchPending
			existing.AcceptedAt = nil
			existing.DissolvedAt = nil
			if err := s.MatchRepo.Save(existing); err != nil {
				return nil, err
			}
			s.Notifier.NotifyMatchEvent(model.AlertMatchRequested, req.ProfessorID, studentID, student.Department)
			return existing, nil
		}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	match := &model.ProfessorStudentMatch{
		ProfessorID: req.ProfessorID,
		StudentID:   studentID,
		Department:  student.Department,
		Status:      model.MatchPending,
	}
	if err := s.MatchRepo.Create(match); err != nil {
		return nil, err
	}

	s.Notifier.NotifyMatchEvent(model.AlertMatchRequested, req.ProfessorID, studentID, student.Department)
	return match, nil
}

// Respond 教授处理配对申请，只能从 pending 出发
func (s *MatchService) Respond(professorID, matchID uint, accept bool) (*model.ProfessorStudentMatch, error) {
	match, err := s.MatchRepo.FindByID(matchID)
	if err != nil {
		return nil, util.ErrMatchNotFound
	}
	if match.ProfessorID != professorID {
		return nil, util.ErrMatchNotFound
	}
	if match.Status != model.MatchPending {
		return nil, util.ErrInvalidMatchState
	}

	if accept {
		now := time.Now()
		match.Status = model.MatchAccepted
		match.AcceptedAt = &now
	} else {
		match.Status = model.MatchRejected
	}
	if err := s.MatchRepo.Save(match); err != nil {
		return nil, err
	}

	if accept {
		s.Notifier.NotifyMatchEvent(model.AlertMatchAccepted, match.StudentID, professorID, match.Department)
	}
	return match, nil
}

// Dissolve 双方任意一方解除已建立的配对
func (s *MatchService) Dissolve(callerID, matchID uint) error {
	match, err := s.MatchRepo.FindByID(matchID)
	if err != nil {
		return util.ErrMatchNotFound
	}
	if match.ProfessorID != callerID && match.StudentID != callerID {
		return util.ErrMatchNotFound
	}
	if match.Status != model.MatchAccepted {
		return util.ErrInvalidMatchState
	}

	now := time.Now()
	match.Status = model.MatchDissolved
	match.DissolvedAt = &now
	return s.MatchRepo.Save(match)
}

func (s *MatchService) ListForProfessor(professorID uint, status model.MatchStatus, page, limit int) ([]model.ProfessorStudentMatch, int64, error) {
	return s.MatchRepo.ListByProfessor(professorID, status, page, limit)
}

func (s *MatchService) ListForStudent(studentID uint, status model.MatchStatus, page, limit int) ([]model.ProfessorStudentMatch, int64, error) {
	return s.MatchRepo.ListByStudent(studentID, status, page, limit)
}

// ListProfessors 学生浏览本学科可配对的教授
func (s *MatchService) ListProfessors(department string, page, limit int) ([]model.User, int64, error) {
	return s.UserRepo.ListByRoleAndDepartment(model.Professor, department, page, limit)
}
