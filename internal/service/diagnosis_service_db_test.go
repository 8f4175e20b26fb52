package service

import (
	"fmt"
	"os"
	"testing"
	"time"

	"edu_diagnosis_backend/internal/config"
	"edu_diagnosis_backend/internal/model"
	"edu_diagnosis_backend/internal/repository"
	"edu_diagnosis_backend/pkg/logger"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// newDiagnosisTestService 在内存 sqlite 上搭一个完整的诊断服务，
// 每个测试用独立的库名避免互相串数据。
func newDiagnosisTestService(t *testing.T, notifier CompletionNotifier) *DiagnosisService {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.DiagnosisSession{},
		&model.DiagnosisAnswer{},
		&model.DiagnosisResult{},
		&model.LearningLevelHistory{},
	))

	cfg := &config.Config{Diagnosis: config.DiagnosisConfig{
		DefaultTimeLimitMinutes: 30,
		DefaultTotalQuestions:   10,
	}}
	return NewDiagnosisService(
		repository.NewSessionRepository(db),
		repository.NewResultRepository(db),
		repository.NewHistoryRepository(db),
		notifier, nil, cfg, db,
	)
}

func TestStartSession_AbandonsPriorInProgress(t *testing.T) {
	svc := newDiagnosisTestService(t, nil)

	first, err := svc.StartSession(7, StartSessionRequest{Department: "计算机"})
	require.NoError(t, err)
	other, err := svc.StartSession(8, StartSessionRequest{Department: "计算机"})
	require.NoError(t, err)

	// 不限学科：换学科开新会话同样顶掉旧会话
	second, err := svc.StartSession(7, StartSessionRequest{Department: "数学"})
	require.NoError(t, err)

	old, err := svc.SessionRepo.FindByID(first.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionAbandoned, old.Status)

	cur, err := svc.SessionRepo.FindByID(second.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionInProgress, cur.Status)

	// 别的用户的进行中会话不受影响
	theirs, err := svc.SessionRepo.FindByID(other.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionInProgress, theirs.Status)
}

func TestSubmitAnswer_ResubmitOverwrites(t *testing.T) {
	svc := newDiagnosisTestService(t, nil)

	resp, err := svc.StartSession(3, StartSessionRequest{Department: "计算机"})
	require.NoError(t, err)

	req := SubmitAnswerRequest{
		QuestionID:     42,
		SelectedAnswer: "A",
		CorrectAnswer:  "B",
		IsCorrect:      false,
		TimeSpentMS:    1000,
		Difficulty:     2,
		Domain:         "算法",
	}
	require.NoError(t, svc.SubmitAnswer(3, resp.SessionID, req))

	req.SelectedAnswer = "B"
	req.IsCorrect = true
	req.TimeSpentMS = 2500
	require.NoError(t, svc.SubmitAnswer(3, resp.SessionID, req))

	answers, err := svc.SessionRepo.ListAnswers(resp.SessionID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "B", answers[0].SelectedAnswer)
	assert.True(t, answers[0].IsCorrect)
	assert.EqualValues(t, 2500, answers[0].TimeSpentMS)
}

type stallingNotifier struct {
	called  chan struct{}
	release chan struct{}
}

func (n *stallingNotifier) NotifyCompletion(*model.DiagnosisSession, *model.DiagnosisResult) {
	close(n.called)
	<-n.release
}

func TestCompleteSession_NotifierOffRequestPath(t *testing.T) {
	notifier := &stallingNotifier{
		called:  make(chan struct{}),
		release: make(chan struct{}),
	}
	defer close(notifier.release)

	svc := newDiagnosisTestService(t, notifier)

	resp, err := svc.StartSession(5, StartSessionRequest{Department: "计算机"})
	require.NoError(t, err)

	// 通知方一直卡住，完成调用也必须正常返回
	out, err := svc.CompleteSession(5, resp.SessionID, CompleteSessionRequest{
		TotalTimeMS: 60000,
		DetailedResults: []DetailedResult{
			{QuestionID: 1, IsCorrect: true, Difficulty: 3, Domain: "算法"},
			{QuestionID: 2, IsCorrect: false, Difficulty: 1, Domain: "语法"},
		},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, out.LearningLevel, 1e-9)

	select {
	case <-notifier.called:
	case <-time.After(2 * time.Second):
		t.Fatal("完成通知未被派发")
	}

	// 重复完成是幂等的：结果不变，历史不追加
	again, err := svc.CompleteSession(5, resp.SessionID, CompleteSessionRequest{})
	require.NoError(t, err)
	assert.Equal(t, out.LearningLevel, again.LearningLevel)

	var historyCount int64
	require.NoError(t, svc.DB.Model(&model.LearningLevelHistory{}).Count(&historyCount).Error)
	assert.EqualValues(t, 1, historyCount)
}

func TestCompleteSession_RoundAdvancesAfterCompletion(t *testing.T) {
	svc := newDiagnosisTestService(t, nil)

	resp, err := svc.StartSession(9, StartSessionRequest{Department: "计算机"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.RoundNumber)

	_, err = svc.CompleteSession(9, resp.SessionID, CompleteSessionRequest{
		DetailedResults: []DetailedResult{{QuestionID: 1, IsCorrect: true, Difficulty: 2}},
	})
	require.NoError(t, err)

	next, err := svc.StartSession(9, StartSessionRequest{Department: "计算机"})
	require.NoError(t, err)
	assert.Equal(t, 2, next.RoundNumber)
}
