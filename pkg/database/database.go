package database

import (
	"edu_diagnosis_backend/internal/config"
	"edu_diagnosis_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		cfg.Host,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.Port,
		cfg.SSLMode,
		cfg.TimeZone,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Question{},
		&model.DiagnosisSession{},
		&model.DiagnosisAnswer{},
		&model.DiagnosisResult{},
		&model.LearningLevelHistory{},
		&model.ProfessorStudentMatch{},
		&model.Alert{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 默认题库：题库为空时插入少量示例题，保证开发环境可直接发起诊断
	var qCount int64
	db.Model(&model.Question{}).Count(&qCount)
	if qCount == 0 {
		defaultQuestions := []model.Question{
			{Department: "computer_science", Content: "数组下标从几开始？", Answer: "0", Difficulty: 1, Domain: "array", Options: []byte(`["0","1","-1","由编译器决定"]`)},
			{Department: "computer_science", Content: "以下哪种循环至少执行一次？", Answer: "do-while", Difficulty: 2, Domain: "loop", Options: []byte(`["for","while","do-while","goto"]`)},
			{Department: "computer_science", Content: "指针解引用空指针的结果是什么？", Answer: "未定义行为", Difficulty: 3, Domain: "pointer", Options: []byte(`["返回0","抛出异常","未定义行为","编译错误"]`)},
			{Department: "computer_science", Content: "快速排序平均时间复杂度？", Answer: "O(n log n)", Difficulty: 4, Domain: "sort", Options: []byte(`["O(n)","O(n log n)","O(n^2)","O(log n)"]`)},
			{Department: "computer_science", Content: "二分查找要求输入满足什么条件？", Answer: "有序", Difficulty: 5, Domain: "search", Options: []byte(`["去重","有序","等长","非空"]`)},
		}
		for _, q := range defaultQuestions {
			db.Create(&q)
		}
	}

	return db, nil
}
