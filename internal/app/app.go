package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edu_diagnosis_backend/internal/config"
	"edu_diagnosis_backend/internal/controller"
	"edu_diagnosis_backend/internal/repository"
	"edu_diagnosis_backend/internal/service"
	"edu_diagnosis_backend/pkg/database"
	"edu_diagnosis_backend/pkg/logger"
	"edu_diagnosis_backend/pkg/monitoring"
	"edu_diagnosis_backend/pkg/security"
	"edu_diagnosis_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	question *repository.QuestionRepository
	session  *repository.SessionRepository
	result   *repository.ResultRepository
	history  *repository.HistoryRepository
	match    *repository.MatchRepository
	alert    *repository.AlertRepository
}

type services struct {
	hub          *service.NotificationHub
	notification *service.NotificationService
	diagnosis    *service.DiagnosisService
	question     *service.QuestionService
	analytics    *service.AnalyticsService
	match        *service.MatchService
	report       *service.ReportService
}

type controllers struct {
	diagnosis    *controller.DiagnosisController
	question     *controller.QuestionController
	analytics    *controller.AnalyticsController
	match        *controller.MatchController
	notification *controller.NotificationController
	report       *controller.ReportController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置热更新入口，只刷新可以安全热替换的部分
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config.Analysis = cfg.Analysis
	a.Config.Diagnosis = cfg.Diagnosis
	a.Config.RateLimit = cfg.RateLimit
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
	logger.Log.Info("配置热更新完成")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		question: repository.NewQuestionRepository(db),
		session:  repository.NewSessionRepository(db),
		result:   repository.NewResultRepository(db),
		history:  repository.NewHistoryRepository(db),
		match:    repository.NewMatchRepository(db),
		alert:    repository.NewAlertRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*services, error) {
	s := &services{}

	s.hub = service.NewNotificationHub(rdb)
	go s.hub.Run()

	s.notification = service.NewNotificationService(repos.alert, repos.match, s.hub)

	analyzer := service.NewAnalysisProvider(&cfg.Analysis)
	s.diagnosis = service.NewDiagnosisService(repos.session, repos.result, repos.history, s.notification, analyzer, cfg, db)

	s.question = service.NewQuestionService(repos.question)
	s.analytics = service.NewAnalyticsService(repos.history, repos.result, rdb)
	s.match = service.NewMatchService(repos.match, repos.user, s.notification)

	store, err := service.NewReportStore(&cfg.Storage)
	if err != nil {
		return nil, err
	}
	s.report = service.NewReportService(s.diagnosis, store)

	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		diagnosis:    controller.NewDiagnosisController(s.diagnosis),
		question:     controller.NewQuestionController(s.question),
		analytics:    controller.NewAnalyticsController(s.analytics),
		match:        controller.NewMatchController(s.match),
		notification: controller.NewNotificationController(s.notification, s.hub),
		report:       controller.NewReportController(s.report),
		health:       controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services) {
	// 定时清理过期会话并归档超出保留期的历史记录
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			expired, err := s.diagnosis.CleanupStaleSessions()
			if err != nil {
				logger.Log.Error("清理过期会话失败", zap.Error(err))
				continue
			}
			if expired > 0 {
				logger.Log.Info("过期会话清理完成", zap.Int64("count", expired))
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	svcs, err := app.initServices(repos, cfg, db, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	app.services = svcs
	ctrls := app.initControllers(svcs, db)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("diagnosis-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		go func() {
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	}

	app.registerRoutes(router, ctrls, repos, cfg)

	app.startBackgroundTasks(svcs)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// 清理 WebSocket 连接和 Redis 订阅
	if a.services != nil && a.services.hub != nil {
		a.services.hub.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
