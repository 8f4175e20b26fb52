package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"edu_diagnosis_backend/internal/config"
	"edu_diagnosis_backend/internal/model"
	"edu_diagnosis_backend/internal/util"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ReportStore 诊断报告文件的通用存储接口
type ReportStore interface {
	Put(ctx context.Context, objectName string, reader io.Reader, size int64) error
	Get(ctx context.Context, objectName string) (io.ReadCloser, error)
}

func NewReportStore(cfg *config.StorageConfig) (ReportStore, error) {
	switch cfg.Type {
	case util.StorageMinio:
		client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
			Secure: cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, err
		}
		return &minioReportStore{cfg: cfg, client: client}, nil
	case util.StorageLocal, "":
		return &localReportStore{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

type localReportStore struct {
	cfg *config.StorageConfig
}

func (s *localReportStore) Put(ctx context.Context, objectName string, reader io.Reader, size int64) error {
	dst := filepath.Join(s.cfg.LocalPath, objectName)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, reader)
	return err
}

func (s *localReportStore) Get(ctx context.Context, objectName string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.cfg.LocalPath, objectName))
}

type minioReportStore struct {
	cfg    *config.StorageConfig
	client *minio.Client
}

func (s *minioReportStore) Put(ctx context.Context, objectName string, reader io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, s.cfg.MinioBucket, objectName, reader, size,
		minio.PutObjectOptions{ContentType: "application/json"})
	return err
}

func (s *minioReportStore) Get(ctx context.Context, objectName string) (io.ReadCloser, error) {
	return s.client.GetObject(ctx, s.cfg.MinioBucket, objectName, minio.GetObjectOptions{})
}

// ReportService 将完成的诊断结果导出为 JSON 报告文件
type ReportService struct {
	Diagnosis *DiagnosisService
	Store     ReportStore
}

func NewReportService(diagnosis *DiagnosisService, store ReportStore) *ReportService {
	return &ReportService{Diagnosis: diagnosis, Store: store}
}

type reportDocument struct {
	GeneratedAt string                  `json:"generatedAt"`
	Session     *model.DiagnosisSession `json:"session"`
	Result      *model.DiagnosisResult  `json:"result"`
}

func reportObjectName(sessionID string) string {
	return fmt.Sprintf("reports/%s.json", sessionID)
}

// Export 生成（或返回已生成的）诊断报告
func (s *ReportService) Export(ctx context.Context, userID uint, sessionID string) ([]byte, error) {
	objectName := reportObjectName(sessionID)

	// 已有报告直接返回；归属校验仍要先过
	session, err := s.Diagnosis.GetSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if existing, err := s.Store.Get(ctx, objectName); err == nil {
		defer existing.Close()
		if raw, err := io.ReadAll(existing); err == nil && len(raw) > 0 {
			return raw, nil
		}
	}

	if session.Status != model.SessionCompleted {
		return nil, util.ErrInvalidSessionState
	}
	result, err := s.Diagnosis.GetResult(userID, sessionID)
	if err != nil {
		return nil, err
	}

	raw, err := json.MarshalIndent(reportDocument{
		GeneratedAt: time.Now().Format(util.TimeFormat),
		Session:     session.DiagnosisSession,
		Result:      result,
	}, "", "  ")
	if err != nil {
		return nil, err
	}

	if err := s.Store.Put(ctx, objectName, bytes.NewReader(raw), int64(len(raw))); err != nil {
		return nil, err
	}
	return raw, nil
}
