package repository

import (
	"learntwin_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

// FindCourseTree 加载课程及其按序排列的模块、课时与测验
func (r *CourseRepository) FindCourseTree(courseID uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).
		Preload("Modules.Quizzes").
		First(&course, courseID).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) ListPublished(page, limit int) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	q := r.DB.Model(&model.Course{}).Where("published = ?", true)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Offset((page - 1) * limit).Limit(limit).Find(&courses).Error
	return courses, total, err
}

func (r *CourseRepository) FindModule(moduleID uint) (*model.CourseModule, error) {
	var mod model.CourseModule
	err := r.DB.
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).
		Preload("Quizzes").
		First(&mod, moduleID).Error
	if err != nil {
		return nil, err
	}
	return &mod, nil
}

func (r *CourseRepository) FindLesson(lessonID uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.First(&lesson, lessonID).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// CourseIDOfModule 模块所属课程，不存在返回 0
func (r *CourseRepository) CourseIDOfModule(moduleID uint) (uint, error) {
	var mod model.CourseModule
	err := r.DB.Select("course_id").First(&mod, moduleID).Error
	if err != nil {
		return 0, err
	}
	return mod.CourseID, nil
}

func (r *CourseRepository) CreateCourse(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) SaveCourse(course *model.Course) error {
	return r.DB.Save(course).Error
}

// NextLessonPosition 模块内下一个课时序号（从 1 开始）
func (r *CourseRepository) NextLessonPosition(moduleID uint) (int, error) {
	var max int
	err := r.DB.Model(&model.Lesson{}).
		Where("module_id = ?", moduleID).
		Select("COALESCE(MAX(position), 0)").Scan(&max).Error
	return max + 1, err
}

func (r *CourseRepository) CreateModule(mod *model.CourseModule) error {
	return r.DB.Create(mod).Error
}

func (r *CourseRepository) CreateLesson(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}

func (r *CourseRepository) SaveLesson(lesson *model.Lesson) error {
	return r.DB.Save(lesson).Error
}

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) Find(userID, courseID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentRepository) Create(e *model.Enrollment) error {
	return r.DB.Create(e).Error
}

func (r *EnrollmentRepository) Save(e *model.Enrollment) error {
	return r.DB.Save(e).Error
}

func (r *EnrollmentRepository) ListByUser(userID uint) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&list).Error
	return list, err
}
