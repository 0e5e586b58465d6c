package model

import "time"

type LessonKind string

const (
	LessonVideo      LessonKind = "video"
	LessonText       LessonKind = "text"
	LessonQuiz       LessonKind = "quiz"
	LessonAssignment LessonKind = "assignment"
)

// Course 顶层可报名单元，按 Position 排序的模块序列
type Course struct {
	BaseModel
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	CreatorID   uint           `gorm:"index;type:bigint unsigned" json:"creatorId"`
	Published   bool           `gorm:"default:false" json:"published"`
	Modules     []CourseModule `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// CourseModule 课程内的有序模块，包含课时与测验
type CourseModule struct {
	BaseModel
	CourseID uint     `gorm:"index;type:bigint unsigned;not null" json:"courseId"`
	Title    string   `gorm:"size:255;not null" json:"title"`
	Position int      `gorm:"default:0" json:"position"`
	Lessons  []Lesson `gorm:"foreignKey:ModuleID" json:"lessons,omitempty"`
	Quizzes  []Quiz   `gorm:"foreignKey:ModuleID" json:"quizzes,omitempty"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}

// Lesson 最小学习单元。Position 在所属模块内唯一
type Lesson struct {
	BaseModel
	ModuleID    uint       `gorm:"uniqueIndex:idx_module_position;type:bigint unsigned;not null" json:"moduleId"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Kind        LessonKind `gorm:"type:enum('video','text','quiz','assignment');default:'video'" json:"kind"`
	Position    int        `gorm:"uniqueIndex:idx_module_position;default:0" json:"position"`
	Content     string     `gorm:"type:text" json:"content,omitempty"`
	VideoURL    string     `gorm:"size:512" json:"videoUrl,omitempty"`
	DurationSec int        `gorm:"default:0" json:"durationSec"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// Enrollment 学员报名记录，进度查询的前置条件
type Enrollment struct {
	BaseModel
	UserID     uint       `gorm:"uniqueIndex:idx_user_course;type:bigint unsigned" json:"userId"`
	CourseID   uint       `gorm:"uniqueIndex:idx_user_course;type:bigint unsigned" json:"courseId"`
	EnrolledAt time.Time  `json:"enrolledAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
