package service

import (
	"context"
	"fmt"
	"learntwin_backend/internal/model"
	"learntwin_backend/internal/repository"
	"learntwin_backend/internal/util"
	"learntwin_backend/pkg/logger"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContentService 课程内容的创作与维护（教师侧）
type ContentService struct {
	CourseRepo *repository.CourseRepository
	QuizRepo   *repository.QuizRepository
	Storage    *StorageService
}

func NewContentService(courseRepo *repository.CourseRepository, quizRepo *repository.QuizRepository, storage *StorageService) *ContentService {
	return &ContentService{
		CourseRepo: courseRepo,
		QuizRepo:   quizRepo,
		Storage:    storage,
	}
}

type CourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type ModuleRequest struct {
	Title    string `json:"title" binding:"required"`
	Position int    `json:"position"`
}

type LessonRequest struct {
	Title    string           `json:"title" binding:"required"`
	Kind     model.LessonKind `json:"kind"`
	Content  string           `json:"content"`
	VideoURL string           `json:"videoUrl"`
}

type QuestionRequest struct {
	Text    string   `json:"text" binding:"required"`
	Options []string `json:"options" binding:"required,min=2"`
	Answer  int      `json:"answer"`
	Points  int      `json:"points"`
}

type QuizRequest struct {
	Title        string            `json:"title" binding:"required"`
	PassingScore int               `json:"passingScore"`
	TimeLimitSec int               `json:"timeLimitSec"`
	Questions    []QuestionRequest `json:"questions"`
}

func (s *ContentService) CreateCourse(creatorID uint, req *CourseRequest) (*model.Course, error) {
	course := &model.Course{
		Title:       req.Title,
		Description: req.Description,
		CreatorID:   creatorID,
	}
	if err := s.CourseRepo.CreateCourse(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *ContentService) PublishCourse(courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindCourseTree(courseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	course.Published = true
	if err := s.CourseRepo.SaveCourse(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *ContentService) AddModule(courseID uint, req *ModuleRequest) (*model.CourseModule, error) {
	course, err := s.CourseRepo.FindCourseTree(courseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	position := req.Position
	if position <= 0 {
		position = len(course.Modules) + 1
	}

	mod := &model.CourseModule{
		CourseID: courseID,
		Title:    req.Title,
		Position: position,
	}
	if err := s.CourseRepo.CreateModule(mod); err != nil {
		return nil, err
	}
	return mod, nil
}

// AddLesson 追加课时。省略序号时排到模块末尾，
// 序号在模块内的唯一性由数据库唯一索引保证
func (s *ContentService) AddLesson(moduleID uint, req *LessonRequest) (*model.Lesson, error) {
	if _, err := s.CourseRepo.FindModule(moduleID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}

	position, err := s.CourseRepo.NextLessonPosition(moduleID)
	if err != nil {
		return nil, err
	}

	kind := req.Kind
	if kind == "" {
		kind = model.LessonVideo
	}

	lesson := &model.Lesson{
		ModuleID: moduleID,
		Title:    req.Title,
		Kind:     kind,
		Position: position,
		Content:  req.Content,
		VideoURL: req.VideoURL,
	}
	if err := s.CourseRepo.CreateLesson(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// AddQuiz 创建模块测验。总分按题目分值求和，空分值按 1 计
func (s *ContentService) AddQuiz(moduleID uint, req *QuizRequest) (*model.Quiz, error) {
	if _, err := s.CourseRepo.FindModule(moduleID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}

	passingScore := req.PassingScore
	if passingScore <= 0 {
		passingScore = 60
	}

	quiz := &model.Quiz{
		ModuleID:     moduleID,
		Title:        req.Title,
		PassingScore: passingScore,
		TimeLimitSec: req.TimeLimitSec,
	}

	total := 0
	for i, q := range req.Questions {
		points := q.Points
		if points <= 0 {
			points = 1
		}
		total += points
		quiz.Questions = append(quiz.Questions, model.QuizQuestion{
			Text:     q.Text,
			Options:  q.Options,
			Answer:   q.Answer,
			Points:   points,
			Position: i + 1,
		})
	}
	quiz.TotalPoints = total

	if err := s.QuizRepo.CreateQuiz(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// UploadLessonVideo 上传课时视频并回填时长。
// 先落临时文件探测元数据，再交给存储后端
func (s *ContentService) UploadLessonVideo(ctx context.Context, lessonID uint, file *multipart.FileHeader) (*model.Lesson, error) {
	lesson, err := s.CourseRepo.FindLesson(lessonID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	ext := filepath.Ext(file.Filename)
	tmp, err := os.CreateTemp("", "lesson-video-*"+ext)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.ReadFrom(src); err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("lessons/%d/%s%s", lessonID, uuid.New().String(), ext)
	contentType := file.Header.Get("Content-Type")
	url, err := s.Storage.UploadFile(ctx, filename, tmp.Name(), contentType)
	if err != nil {
		return nil, err
	}

	lesson.VideoURL = url
	if info, err := util.ProbeVideo(tmp.Name()); err != nil {
		logger.Log.Warn("探测视频时长失败", zap.Error(err), zap.Uint("lessonId", lessonID))
	} else {
		lesson.DurationSec = int(info.Duration)
	}

	if err := s.CourseRepo.SaveLesson(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}
