package service

import (
	"context"
	"encoding/json"
	"testing"

	"edu_diagnosis_backend/internal/config"
	"edu_diagnosis_backend/internal/model"
	"edu_diagnosis_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportExport_CompletedSession(t *testing.T) {
	svc := newDiagnosisTestService(t, nil)
	store, err := NewReportStore(&config.StorageConfig{
		Type:      util.StorageLocal,
		LocalPath: t.TempDir(),
	})
	require.NoError(t, err)
	reports := NewReportService(svc, store)

	resp, err := svc.StartSession(11, StartSessionRequest{Department: "计算机"})
	require.NoError(t, err)

	// 归属校验在前：不是自己的会话一律当不存在
	_, err = reports.Export(context.Background(), 12, resp.SessionID)
	assert.ErrorIs(t, err, util.ErrSessionNotFound)

	// 未完成的会话不允许导出
	_, err = reports.Export(context.Background(), 11, resp.SessionID)
	assert.ErrorIs(t, err, util.ErrInvalidSessionState)

	_, err = svc.CompleteSession(11, resp.SessionID, CompleteSessionRequest{
		DetailedResults: []DetailedResult{
			{QuestionID: 1, IsCorrect: true, Difficulty: 2, Domain: "算法"},
		},
	})
	require.NoError(t, err)

	raw, err := reports.Export(context.Background(), 11, resp.SessionID)
	require.NoError(t, err)

	var doc struct {
		Session *model.DiagnosisSession `json:"session"`
		Result  *model.DiagnosisResult  `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.NotNil(t, doc.Session)
	assert.Equal(t, resp.SessionID, doc.Session.ID)
	assert.Equal(t, model.SessionCompleted, doc.Session.Status)
	require.NotNil(t, doc.Result)
	assert.InDelta(t, 1.0, doc.Result.LearningLevel, 1e-9)

	// 再次导出命中已生成的报告文件
	cached, err := reports.Export(context.Background(), 11, resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, raw, cached)
}
