package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"edu_diagnosis_backend/internal/config"
	"edu_diagnosis_backend/internal/model"
	"edu_diagnosis_backend/internal/repository"
	"edu_diagnosis_backend/internal/scoring"
	"edu_diagnosis_backend/internal/util"
	"edu_diagnosis_backend/pkg/logger"
	"edu_diagnosis_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CompletionNotifier 完成诊断后的通知协作方。
// 通知失败只记录日志，绝不回滚或中断主流程。
type CompletionNotifier interface {
	NotifyCompletion(session *model.DiagnosisSession, result *model.DiagnosisResult)
}

type DiagnosisService struct {
	SessionRepo *repository.SessionRepository
	ResultRepo  *repository.ResultRepository
	HistoryRepo *repository.HistoryRepository
	Notifier    CompletionNotifier
	Analyzer    AnalysisProvider
	Config      *config.Config
	DB          *gorm.DB
}

func NewDiagnosisService(
	sessionRepo *repository.SessionRepository,
	resultRepo *repository.ResultRepository,
	historyRepo *repository.HistoryRepository,
	notifier CompletionNotifier,
	analyzer AnalysisProvider,
	cfg *config.Config,
	db *gorm.DB,
) *DiagnosisService {
	return &DiagnosisService{
		SessionRepo: sessionRepo,
		ResultRepo:  resultRepo,
		HistoryRepo: historyRepo,
		Notifier:    notifier,
		Analyzer:    analyzer,
		Config:      cfg,
		DB:          db,
	}
}

type StartSessionRequest struct {
	TestType         string `json:"testType"`
	Department       string `json:"department" binding:"required"`
	TotalQuestions   int    `json:"totalQuestions"`
	TimeLimitMinutes int    `json:"timeLimitMinutes"`
}

type StartSessionResponse struct {
	SessionID   string    `json:"sessionId"`
	RoundNumber int       `json:"roundNumber"`
	StartedAt   time.Time `json:"startedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// NextRound 根据已完成会话的最大轮次推进轮次，封顶 MaxRound。
// maxCompleted 为 0（无完成记录）时从第 1 轮开始。
func NextRound(maxCompleted int) int {
	if maxCompleted < 0 {
		maxCompleted = 0
	}
	next := maxCompleted + 1
	if next > model.MaxRound {
		return model.MaxRound
	}
	return next
}

// StartSession 开始一次诊断会话。
// 同一用户同时只允许一个进行中的会话：旧会话（不限学科）转为 abandoned。
func (s *DiagnosisService) StartSession(userID uint, req StartSessionRequest) (*StartSessionResponse, error) {
	if req.TestType == "" {
		req.TestType = "diagnosis"
	}
	if req.TimeLimitMinutes <= 0 {
		req.TimeLimitMinutes = s.Config.Diagnosis.DefaultTimeLimitMinutes
	}
	if req.TotalQuestions <= 0 {
		req.TotalQuestions = s.Config.Diagnosis.DefaultTotalQuestions
	}

	now := time.Now()
	session := &model.DiagnosisSession{
		UserID:           userID,
		Department:       req.Department,
		TestType:         req.TestType,
		Status:           model.SessionInProgress,
		TotalQuestions:   req.TotalQuestions,
		TimeLimitMinutes: req.TimeLimitMinutes,
		StartedAt:        now,
		ExpiresAt:        now.Add(time.Duration(req.TimeLimitMinutes) * time.Minute),
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// 放弃用户所有进行中的旧会话
		if err := tx.Model(&model.DiagnosisSession{}).
			Where("user_id = ? AND status = ?", userID, model.SessionInProgress).
			Update("status", model.SessionAbandoned).Error; err != nil {
			return err
		}

		maxRound, err := s.SessionRepo.MaxCompletedRound(userID, req.Department, req.TestType)
		if err != nil {
			// 轮次查询异常时显式回退到第 1 轮，而不是静默分支
			logger.Log.Warn("round lookup failed, falling back to round 1",
				zap.Uint("userID", userID),
				zap.String("department", req.Department),
				zap.Error(err))
			maxRound = 0
		}
		session.RoundNumber = NextRound(maxRound)

		return tx.Create(session).Error
	})
	if err != nil {
		return nil, err
	}

	monitoring.SessionTransitions.WithLabelValues(req.Department, string(model.SessionInProgress)).Inc()

	return &StartSessionResponse{
		SessionID:   session.ID,
		RoundNumber: session.RoundNumber,
		StartedAt:   session.StartedAt,
		ExpiresAt:   session.ExpiresAt,
	}, nil
}

type SubmitAnswerRequest struct {
	QuestionID     uint   `json:"questionId" binding:"required"`
	SelectedAnswer string `json:"selectedAnswer"`
	CorrectAnswer  string `json:"correctAnswer"`
	IsCorrect      bool   `json:"isCorrect"`
	TimeSpentMS    int64  `json:"timeSpentMs"`
	Difficulty     int    `json:"difficulty"`
	Domain         string `json:"domain"`
	QuestionType   string `json:"questionType"`
}

// loadActiveSession 取归属于调用者且仍在进行中的会话，
// 过期的进行中会话先惰性转为 expired 再报超时。
func (s *DiagnosisService) loadActiveSession(userID uint, sessionID string) (*model.DiagnosisSession, error) {
	session, err := s.SessionRepo.FindOwned(sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}

	if session.Status != model.SessionInProgress {
		if session.Status == model.SessionExpired {
			return nil, util.ErrSessionExpired
		}
		return nil, util.ErrInvalidSessionState
	}

	if session.ExpiredAt(time.Now()) {
		if err := s.SessionRepo.UpdateStatus(session.ID, model.SessionExpired); err != nil {
			return nil, err
		}
		monitoring.SessionTransitions.WithLabelValues(session.Department, string(model.SessionExpired)).Inc()
		return nil, util.ErrSessionExpired
	}
	return session, nil
}

// SubmitAnswer 记录单题作答；同一题目的重复提交覆盖旧答案。
func (s *DiagnosisService) SubmitAnswer(userID uint, sessionID string, req SubmitAnswerRequest) error {
	session, err := s.loadActiveSession(userID, sessionID)
	if err != nil {
		return err
	}

	if req.Difficulty < 1 || req.Difficulty > 5 {
		// 未知难度按最低档入库，和评分引擎保持一致
		req.Difficulty = 1
	}

	answer := &model.DiagnosisAnswer{
		SessionID:      session.ID,
		QuestionID:     req.QuestionID,
		SelectedAnswer: req.SelectedAnswer,
		CorrectAnswer:  req.CorrectAnswer,
		IsCorrect:      req.IsCorrect,
		TimeSpentMS:    req.TimeSpentMS,
		Difficulty:     req.Difficulty,
		Domain:         req.Domain,
		QuestionType:   req.QuestionType,
	}
	if err := s.SessionRepo.UpsertAnswer(answer); err != nil {
		return err
	}

	monitoring.AnswerSubmissions.WithLabelValues(session.Department).Inc()
	return nil
}

type DetailedResult struct {
	QuestionID     uint   `json:"questionId"`
	SelectedAnswer string `json:"selectedAnswer"`
	CorrectAnswer  string `json:"correctAnswer"`
	IsCorrect      bool   `json:"isCorrect"`
	TimeSpentMS    int64  `json:"timeSpentMs"`
	Difficulty     int    `json:"difficulty"`
	Domain         string `json:"domain"`
	QuestionType   string `json:"questionType"`
}

type CompleteSessionRequest struct {
	TotalScore      float64          `json:"totalScore"`
	CorrectAnswers  int              `json:"correctAnswers"`
	WrongAnswers    int              `json:"wrongAnswers"`
	TotalTimeMS     int64            `json:"totalTimeMs"`
	DetailedResults []DetailedResult `json:"detailedResults"`
}

type CompleteSessionResponse struct {
	FinalScore     float64                `json:"finalScore"`
	LearningLevel  float64                `json:"learningLevel"`
	CompletionTime time.Time              `json:"completionTime"`
	Result         *model.DiagnosisResult `json:"result"`
}

// CompleteSession 结束会话并评分。
// 已完成的会话重复调用是幂等的，直接返回既有结果。
func (s *DiagnosisService) CompleteSession(userID uint, sessionID string, req CompleteSessionRequest) (*CompleteSessionResponse, error) {
	// 幂等：已完成直接返回既有结果
	if existing, err := s.SessionRepo.FindOwned(sessionID, userID); err == nil &&
		existing.Status == model.SessionCompleted {
		result, rerr := s.ResultRepo.FindBySessionID(sessionID)
		if rerr != nil {
			return nil, rerr
		}
		return &CompleteSessionResponse{
			FinalScore:     result.TotalScore,
			LearningLevel:  result.LearningLevel,
			CompletionTime: *existing.CompletedAt,
			Result:         result,
		}, nil
	}

	session, err := s.loadActiveSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	if err := validateDetailedResults(req.DetailedResults); err != nil {
		return nil, err
	}

	// 补录提交体里带来、但逐题接口尚未记录的作答
	for _, d := range req.DetailedResults {
		difficulty := d.Difficulty
		if difficulty < 1 || difficulty > 5 {
			difficulty = 1
		}
		if err := s.SessionRepo.UpsertAnswer(&model.DiagnosisAnswer{
			SessionID:      session.ID,
			QuestionID:     d.QuestionID,
			SelectedAnswer: d.SelectedAnswer,
			CorrectAnswer:  d.CorrectAnswer,
			IsCorrect:      d.IsCorrect,
			TimeSpentMS:    d.TimeSpentMS,
			Difficulty:     difficulty,
			Domain:         d.Domain,
			QuestionType:   d.QuestionType,
		}); err != nil {
			return nil, err
		}
	}

	answers, err := s.SessionRepo.ListAnswers(session.ID)
	if err != nil {
		return nil, err
	}

	scoreRes := scoring.Calculate(toGradedAnswers(answers))

	byDifficulty, _ := json.Marshal(scoreRes.ByDifficulty)
	byDomain, _ := json.Marshal(scoreRes.ByDomain)
	recommendations, _ := json.Marshal(scoring.Recommendations(scoreRes))

	now := time.Now()
	result := &model.DiagnosisResult{
		SessionID:        session.ID,
		UserID:           session.UserID,
		Department:       session.Department,
		LearningLevel:    scoreRes.LearningLevel,
		TotalScore:       scoreRes.TotalScore,
		MaxPossibleScore: scoreRes.MaxPossibleScore,
		AccuracyRate:     scoreRes.AccuracyRate,
		ByDifficulty:     byDifficulty,
		ByDomain:         byDomain,
		Feedback:         scoring.Feedback(scoreRes.LearningLevel),
		Recommendations:  recommendations,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		session.Status = model.SessionCompleted
		session.CompletedAt = &now
		session.TotalTimeMS = req.TotalTimeMS
		if err := tx.Save(session).Error; err != nil {
			return err
		}
		if err := tx.Create(result).Error; err != nil {
			return err
		}
		return tx.Create(&model.LearningLevelHistory{
			UserID:        session.UserID,
			Department:    session.Department,
			RoundNumber:   session.RoundNumber,
			LearningLevel: scoreRes.LearningLevel,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	monitoring.SessionTransitions.WithLabelValues(session.Department, string(model.SessionCompleted)).Inc()

	// 通知与异步分析都在请求路径之外尽力而为，失败只记日志
	if s.Notifier != nil {
		go s.Notifier.NotifyCompletion(session, result)
	}
	s.dispatchAnalysis(session, answers)

	return &CompleteSessionResponse{
		FinalScore:     result.TotalScore,
		LearningLevel:  result.LearningLevel,
		CompletionTime: now,
		Result:         result,
	}, nil
}

// validateDetailedResults 拒绝一次提交中重复出现的题目ID
func validateDetailedResults(results []DetailedResult) error {
	seen := make(map[uint]bool, len(results))
	for _, d := range results {
		if d.QuestionID == 0 {
			return fmt.Errorf("%w: question id is required", util.ErrValidation)
		}
		if seen[d.QuestionID] {
			return fmt.Errorf("%w: duplicate question id %d", util.ErrValidation, d.QuestionID)
		}
		seen[d.QuestionID] = true
	}
	return nil
}

func toGradedAnswers(answers []model.DiagnosisAnswer) []scoring.GradedAnswer {
	graded := make([]scoring.GradedAnswer, len(answers))
	for i, a := range answers {
		graded[i] = scoring.GradedAnswer{
			IsCorrect:  a.IsCorrect,
			Difficulty: a.Difficulty,
			Domain:     a.Domain,
		}
		if a.TimeSpentMS > 0 {
			secs := float64(a.TimeSpentMS) / 1000
			graded[i].TimeSpentSeconds = &secs
		}
	}
	return graded
}

func (s *DiagnosisService) dispatchAnalysis(session *model.DiagnosisSession, answers []model.DiagnosisAnswer) {
	if s.Analyzer == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		analysis, err := s.Analyzer.Analyze(ctx, session, answers)
		if err != nil {
			if !errors.Is(err, ErrAnalysisUnavailable) {
				logger.Log.Warn("analysis provider failed",
					zap.String("sessionID", session.ID), zap.Error(err))
			}
			return
		}
		content, err := json.Marshal(analysis)
		if err != nil {
			return
		}
		if err := s.ResultRepo.AttachAnalysis(session.ID, analysis.Source, content); err != nil {
			logger.Log.Warn("failed to attach analysis metadata",
				zap.String("sessionID", session.ID), zap.Error(err))
		}
	}()
}

// GetSession 查询会话详情（含惰性过期）
// SessionDetail 会话详情，附带已作答题数供前端展示进度
type SessionDetail struct {
	*model.DiagnosisSession
	AnsweredCount int64 `json:"answeredCount"`
}

func (s *DiagnosisService) GetSession(userID uint, sessionID string) (*SessionDetail, error) {
	session, err := s.SessionRepo.FindOwned(sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	if session.Status == model.SessionInProgress && session.ExpiredAt(time.Now()) {
		session.Status = model.SessionExpired
		if err := s.SessionRepo.UpdateStatus(session.ID, model.SessionExpired); err != nil {
			return nil, err
		}
		monitoring.SessionTransitions.WithLabelValues(session.Department, string(model.SessionExpired)).Inc()
	}

	count, err := s.SessionRepo.CountAnswers(session.ID)
	if err != nil {
		return nil, err
	}
	return &SessionDetail{DiagnosisSession: session, AnsweredCount: count}, nil
}

func (s *DiagnosisService) GetResult(userID uint, sessionID string) (*model.DiagnosisResult, error) {
	session, err := s.SessionRepo.FindOwned(sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	result, err := s.ResultRepo.FindBySessionID(session.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	return result, nil
}

func (s *DiagnosisService) ListSessions(userID uint, department string, page, limit int) ([]model.DiagnosisSession, int64, error) {
	return s.SessionRepo.ListByUser(userID, department, page, limit)
}

// CleanupStaleSessions 管理员清理：删除保留期之前的会话数据
func (s *DiagnosisService) CleanupStaleSessions() (int64, error) {
	retention := s.Config.Diagnosis.CleanupRetentionDays
	if retention <= 0 {
		retention = 180
	}
	cutoff := time.Now().AddDate(0, 0, -retention)
	deleted, err := s.SessionRepo.DeleteOlderThan(cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		logger.Log.Info("stale diagnosis sessions removed",
			zap.Int64("count", deleted), zap.Time("cutoff", cutoff))
	}
	return deleted, nil
}
