package model

import (
	"time"
)

// Quiz 模块内的测验。同一模块的测验之间没有先后顺序，
// 模块课时全部完成后同时解锁
type Quiz struct {
	BaseModel
	ModuleID     uint           `gorm:"index;type:bigint unsigned;not null" json:"moduleId"`
	Title        string         `gorm:"size:255;not null" json:"title"`
	PassingScore int            `gorm:"default:60" json:"passingScore"` // 及格线（百分比）
	TotalPoints  int            `gorm:"default:100" json:"totalPoints"`
	TimeLimitSec int            `gorm:"default:0" json:"timeLimitSec"` // 0 表示不限时
	Questions    []QuizQuestion `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

type QuizQuestion struct {
	BaseModel
	QuizID   uint     `gorm:"index;type:bigint unsigned;not null" json:"quizId"`
	Text     string   `gorm:"type:text;not null" json:"text"`
	Options  []string `gorm:"type:json;serializer:json" json:"options"`
	Answer   int      `gorm:"not null" json:"-"` // 正确选项下标，不下发给学员
	Points   int      `gorm:"default:1" json:"points"`
	Position int      `gorm:"default:0" json:"position"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
	AttemptExpired    AttemptStatus = "expired" // 到期自动提交
)

// QuizAttempt 一次答题。限时测验带 Deadline，到期由后台巡检
// 用已记录的答案自动提交，且仅提交一次（状态迁移作为幂等护栏）
type QuizAttempt struct {
	UUIDBase
	UserID      uint          `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	QuizID      uint          `gorm:"index;type:bigint unsigned;not null" json:"quizId"`
	Status      AttemptStatus `gorm:"type:enum('in_progress','submitted','expired');default:'in_progress'" json:"status"`
	Answers     map[uint]int  `gorm:"type:json;serializer:json" json:"answers"` // questionID -> 选项下标
	Score       int           `gorm:"default:0" json:"score"`                   // 百分比得分
	Passed      bool          `gorm:"default:false" json:"passed"`
	StartedAt   time.Time     `json:"startedAt"`
	Deadline    *time.Time    `gorm:"index" json:"deadline,omitempty"`
	SubmittedAt *time.Time    `json:"submittedAt,omitempty"`
	WarnedAt    *time.Time    `json:"-"` // "即将到期"提醒只发一次
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
