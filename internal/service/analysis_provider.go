package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"edu_diagnosis_backend/internal/config"
	"edu_diagnosis_backend/internal/model"
)

// ErrAnalysisUnavailable 分析服务不可用（未配置、超时、响应不合法）。
// 调用方收到该错误时静默降级，诊断主流程不受影响。
var ErrAnalysisUnavailable = errors.New("analysis provider unavailable")

type AnalysisResult struct {
	Source     string   `json:"source"`
	Summary    string   `json:"summary"`
	WeakPoints []string `json:"weakPoints,omitempty"`
}

// AnalysisProvider 异步学情分析的可插拔接口
type AnalysisProvider interface {
	Analyze(ctx context.Context, session *model.DiagnosisSession, answers []model.DiagnosisAnswer) (*AnalysisResult, error)
}

// NewAnalysisProvider 根据配置决定具体实现，未配置时返回禁用实现
func NewAnalysisProvider(cfg *config.AnalysisConfig) AnalysisProvider {
	if cfg == nil || cfg.BaseURL == "" || cfg.Model == "" {
		return disabledProvider{}
	}
	return &llmProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type disabledProvider struct{}

func (disabledProvider) Analyze(context.Context, *model.DiagnosisSession, []model.DiagnosisAnswer) (*AnalysisResult, error) {
	return nil, ErrAnalysisUnavailable
}

// llmProvider 调用 OpenAI 兼容的 chat completions 接口。
// 任何失败都折叠为 ErrAnalysisUnavailable。
type llmProvider struct {
	cfg    *config.AnalysisConfig
	client *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (p *llmProvider) Analyze(ctx context.Context, session *model.DiagnosisSession, answers []model.DiagnosisAnswer) (*AnalysisResult, error) {
	correct := 0
	for _, a := range answers {
		if a.IsCorrect {
			correct++
		}
	}

	prompt := fmt.Sprintf(
		"请分析 %s 学科的诊断测试结果：第 %d 轮，共 %d 题，答对 %d 题。给出简短总结和薄弱点。",
		session.Department, session.RoundNumber, len(answers), correct)

	body, err := json.Marshal(chatRequest{
		Model: p.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a learning diagnostics assistant. Reply with a short summary."},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, ErrAnalysisUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, ErrAnalysisUnavailable
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, ErrAnalysisUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrAnalysisUnavailable
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil || len(parsed.Choices) == 0 {
		return nil, ErrAnalysisUnavailable
	}

	return &AnalysisResult{
		Source:  p.cfg.Model,
		Summary: parsed.Choices[0].Message.Content,
	}, nil
}
