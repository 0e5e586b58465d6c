package database

import (
	"fmt"
	"learntwin_backend/internal/config"
	"learntwin_backend/internal/model"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.CourseModule{},
		&model.Lesson{},
		&model.Quiz{},
		&model.QuizQuestion{},
		&model.QuizAttempt{},
		&model.LessonProgress{},
		&model.Enrollment{},
		&model.Achievement{},
		&model.MintRecord{},
		&model.CertificateRecord{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 空库时插入一门演示课程，方便联调
	var count int64
	db.Model(&model.Course{}).Count(&count)
	if count == 0 {
		course := &model.Course{
			Title:       "区块链与智能合约入门",
			Description: "从零开始认识区块链、NFT与智能合约",
			Published:   true,
		}
		db.Create(course)

		moduleA := &model.CourseModule{CourseID: course.ID, Title: "区块链基础", Position: 0}
		moduleB := &model.CourseModule{CourseID: course.ID, Title: "智能合约", Position: 1}
		db.Create(moduleA)
		db.Create(moduleB)

		db.Create(&model.Lesson{ModuleID: moduleA.ID, Title: "什么是区块链", Kind: model.LessonVideo, Position: 0})
		db.Create(&model.Lesson{ModuleID: moduleA.ID, Title: "共识机制", Kind: model.LessonVideo, Position: 1})
		db.Create(&model.Lesson{ModuleID: moduleB.ID, Title: "第一个智能合约", Kind: model.LessonText, Position: 0})

		quiz := &model.Quiz{ModuleID: moduleA.ID, Title: "区块链基础测验", PassingScore: 70, TotalPoints: 100, TimeLimitSec: 600}
		db.Create(quiz)
		db.Create(&model.QuizQuestion{
			QuizID:  quiz.ID,
			Text:    "区块链中区块通过什么连接？",
			Options: []string{"哈希指针", "随机数", "时间戳", "IP地址"},
			Answer:  0,
			Points:  1,
		})
		db.Create(&model.QuizQuestion{
			QuizID:   quiz.ID,
			Text:     "NFT 的含义是？",
			Options:  []string{"可替代代币", "非同质化代币", "网络文件传输", "节点容错"},
			Answer:   1,
			Points:   1,
			Position: 1,
		})
	}

	return db, nil
}
