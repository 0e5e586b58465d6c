package model

import (
	"time"
)

// LessonProgress 学员对单个课时的完成状态。
// 完成标志单调：一旦置为 true 不再回退
type LessonProgress struct {
	BaseModel
	UserID      uint       `gorm:"uniqueIndex:idx_user_lesson;type:bigint unsigned" json:"userId"`
	LessonID    uint       `gorm:"uniqueIndex:idx_user_lesson;type:bigint unsigned" json:"lessonId"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	Percentage  float64    `gorm:"default:0" json:"percentage"` // 观看/阅读进度
	TimeSpent   int        `gorm:"default:0" json:"timeSpent"`  // 秒
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}
