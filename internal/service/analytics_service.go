package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"edu_diagnosis_backend/internal/repository"
	"edu_diagnosis_backend/internal/scoring"
	"edu_diagnosis_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const departmentAvgTTL = 5 * time.Minute

type AnalyticsService struct {
	HistoryRepo *repository.HistoryRepository
	ResultRepo  *repository.ResultRepository
	Redis       *redis.Client
}

func NewAnalyticsService(historyRepo *repository.HistoryRepository, resultRepo *repository.ResultRepository, rdb *redis.Client) *AnalyticsService {
	return &AnalyticsService{
		HistoryRepo: historyRepo,
		ResultRepo:  resultRepo,
		Redis:       rdb,
	}
}

type LearningLevelSeries struct {
	Points     []scoring.TrendPoint `json:"points"`
	Trend      scoring.TrendResult  `json:"trend"`
	Projection scoring.Projection   `json:"projection"`
}

// GetLearningLevelSeries 学习水平历史序列 + 趋势分类 + 线性外推。
// 趋势只是描述性统计，用于前端曲线展示。
func (s *AnalyticsService) GetLearningLevelSeries(userID uint, department string, windowDays int, horizonDays float64) (*LearningLevelSeries, error) {
	rows, err := s.HistoryRepo.ListByUserAndDepartment(userID, department)
	if err != nil {
		return nil, err
	}

	points := make([]scoring.TrendPoint, len(rows))
	for i, r := range rows {
		points[i] = scoring.TrendPoint{At: r.CreatedAt, Level: r.LearningLevel}
	}

	window := scoring.DefaultTrendWindow
	if windowDays > 0 {
		window = time.Duration(windowDays) * 24 * time.Hour
	}
	if horizonDays <= 0 {
		horizonDays = 7
	}

	return &LearningLevelSeries{
		Points:     points,
		Trend:      scoring.AnalyzeTrend(points, window),
		Projection: scoring.Project(points, window, horizonDays),
	}, nil
}

type DepartmentStats struct {
	Department   string  `json:"department"`
	AverageLevel float64 `json:"averageLevel"`
	StudentCount int64   `json:"studentCount"`
}

// GetDepartmentStats 学科平均学习水平，结果短暂缓存在 Redis
func (s *AnalyticsService) GetDepartmentStats(ctx context.Context, department string) (*DepartmentStats, error) {
	cacheKey := fmt.Sprintf("dept:avg_level:%s", department)

	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var stats DepartmentStats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	avg, count, err := s.HistoryRepo.DepartmentAverage(department)
	if err != nil {
		return nil, err
	}

	stats := &DepartmentStats{
		Department:   department,
		AverageLevel: avg,
		StudentCount: count,
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.Redis.Set(ctx, cacheKey, raw, departmentAvgTTL).Err(); err != nil {
				logger.Log.Warn("department stats cache write failed", zap.Error(err))
			}
		}
	}
	return stats, nil
}

// GetRecentResults 学生最近的诊断结果列表
func (s *AnalyticsService) GetRecentResults(userID uint, department string, limit int) (interface{}, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.ResultRepo.ListByUser(userID, department, limit)
}
