package service

import (
	"context"
	"fmt"
	"learntwin_backend/internal/model"
	"learntwin_backend/internal/progression"
	"learntwin_backend/internal/repository"
	"learntwin_backend/internal/util"
	"learntwin_backend/pkg/logger"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LearningService 串联完成存储、解锁判定、进度汇总与完成事件分发：
// 数据库 -> 快照 -> 解锁判定/进度 -> 事件分发 -> 成就/铸造副作用
type LearningService struct {
	CourseRepo   *repository.CourseRepository
	EnrollRepo   *repository.EnrollmentRepository
	ProgressRepo *repository.ProgressRepository
	QuizRepo     *repository.QuizRepository
	Achievement  *AchievementService

	// 每个学习会话 (user, course) 一个分发器，进程内存活即可：
	// 跨会话的恰好一次由铸造/证书记录的唯一键兜底。
	// 课程完成时条目即释放；重建的分发器只会基线化已完成的快照
	mu          sync.Mutex
	dispatchers map[string]*progression.Dispatcher
}

func NewLearningService(
	courseRepo *repository.CourseRepository,
	enrollRepo *repository.EnrollmentRepository,
	progressRepo *repository.ProgressRepository,
	quizRepo *repository.QuizRepository,
	achievement *AchievementService,
) *LearningService {
	return &LearningService{
		CourseRepo:   courseRepo,
		EnrollRepo:   enrollRepo,
		ProgressRepo: progressRepo,
		QuizRepo:     quizRepo,
		Achievement:  achievement,
		dispatchers:  make(map[string]*progression.Dispatcher),
	}
}

// LockedError 内容被前置条件锁定，Reason 指明具体的阻塞前置
type LockedError struct {
	Reason string
}

func (e *LockedError) Error() string {
	return "content locked: " + e.Reason
}

type LessonView struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Kind        model.LessonKind `json:"kind"`
	Position    int              `json:"position"`
	VideoURL    string           `json:"videoUrl,omitempty"`
	DurationSec int              `json:"durationSec"`
	Completed   bool             `json:"completed"`
	Accessible  bool             `json:"accessible"`
	LockReason  string           `json:"lockReason,omitempty"`
}

type QuizView struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	PassingScore int    `json:"passingScore"`
	TotalPoints  int    `json:"totalPoints"`
	TimeLimitSec int    `json:"timeLimitSec"`
	Completed    bool   `json:"completed"`
	Accessible   bool   `json:"accessible"`
	LockReason   string `json:"lockReason,omitempty"`
}

type ModuleView struct {
	ID       uint         `json:"id"`
	Title    string       `json:"title"`
	Position int          `json:"position"`
	Progress float64      `json:"progress"`
	Phase    string       `json:"phase"`
	Lessons  []LessonView `json:"lessons"`
	Quizzes  []QuizView   `json:"quizzes"`
}

type CourseView struct {
	ID          uint         `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Progress    float64      `json:"progress"`
	Complete    bool         `json:"complete"`
	Modules     []ModuleView `json:"modules"`
}

// LessonProgressView 单课时进度查询结果
type LessonProgressView struct {
	LessonID   uint    `json:"lessonId"`
	Completed  bool    `json:"completed"`
	Percentage float64 `json:"percentage"`
	TimeSpent  int     `json:"timeSpent"`
}

// LessonCompletionResult 课时完成提交的返回：最新进度 + 本次触发的事件与副作用
type LessonCompletionResult struct {
	LessonID       uint                `json:"lessonId"`
	ModuleProgress float64             `json:"moduleProgress"`
	CourseProgress float64             `json:"courseProgress"`
	Events         []progression.Event `json:"events,omitempty"`
	SideEffects    []*SideEffectStatus `json:"sideEffects,omitempty"`
}

func (s *LearningService) dispatcherFor(userID, courseID uint) *progression.Dispatcher {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%d:%d", userID, courseID)
	d, ok := s.dispatchers[key]
	if !ok {
		d = progression.NewDispatcher()
		s.dispatchers[key] = d
	}
	return d
}

// releaseDispatcher 学习会话结束（课程完成）后释放分发器条目
func (s *LearningService) releaseDispatcher(userID, courseID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dispatchers, fmt.Sprintf("%d:%d", userID, courseID))
}

// BuildSnapshot 从课程树、课时进度与测验完成状态装配进度快照。
// 测验完成取数据库与兜底缓存的并集
func (s *LearningService) BuildSnapshot(ctx context.Context, userID uint, course *model.Course) (*progression.CourseState, error) {
	var lessonIDs, quizIDs []uint
	for i := range course.Modules {
		for j := range course.Modules[i].Lessons {
			lessonIDs = append(lessonIDs, course.Modules[i].Lessons[j].ID)
		}
		for j := range course.Modules[i].Quizzes {
			quizIDs = append(quizIDs, course.Modules[i].Quizzes[j].ID)
		}
	}

	progressMap, err := s.ProgressRepo.MapByLessonIDs(userID, lessonIDs)
	if err != nil {
		return nil, err
	}

	passed, err := s.QuizRepo.PassedQuizIDs(userID, quizIDs)
	if err != nil {
		return nil, err
	}
	cached := s.ProgressRepo.CachedQuizCompletions(ctx, userID, course.ID)
	quizDone := repository.MergeQuizCompletions(passed, cached)

	state := &progression.CourseState{
		ID:    course.ID,
		Title: course.Title,
	}
	for i := range course.Modules {
		m := &course.Modules[i]
		ms := progression.ModuleState{
			ID:       m.ID,
			Title:    m.Title,
			Position: m.Position,
		}
		for j := range m.Lessons {
			l := &m.Lessons[j]
			ms.Lessons = append(ms.Lessons, progression.LessonState{
				ID:        l.ID,
				Title:     l.Title,
				Position:  l.Position,
				Completed: progressMap[l.ID].Completed,
			})
		}
		for j := range m.Quizzes {
			q := &m.Quizzes[j]
			ms.Quizzes = append(ms.Quizzes, progression.QuizState{
				ID:        q.ID,
				Title:     q.Title,
				Completed: quizDone[q.ID],
			})
		}
		state.Modules = append(state.Modules, ms)
	}
	return state, nil
}

// GetCourseView 课程树 + 每个课时/测验的完成与可访问标志。
// 首次调用会为该学习会话建立分发器基线
func (s *LearningService) GetCourseView(ctx context.Context, userID, courseID uint) (*CourseView, error) {
	course, err := s.CourseRepo.FindCourseTree(courseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	state, err := s.BuildSnapshot(ctx, userID, course)
	if err != nil {
		return nil, err
	}

	// 建立基线：加载已持久化的完成状态不重放副作用
	s.dispatcherFor(userID, courseID).Update(state, 0)

	view := &CourseView{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Progress:    state.Progress(),
		Complete:    state.Complete(),
	}
	for i := range state.Modules {
		ms := &state.Modules[i]
		mv := ModuleView{
			ID:       ms.ID,
			Title:    ms.Title,
			Position: ms.Position,
			Progress: ms.Progress(),
			Phase:    ms.Phase().String(),
			Lessons:  []LessonView{},
			Quizzes:  []QuizView{},
		}
		for j := range ms.Lessons {
			ls := &ms.Lessons[j]
			lesson := &course.Modules[i].Lessons[j]
			reason := state.LessonLockReason(ms.ID, ls.ID)
			mv.Lessons = append(mv.Lessons, LessonView{
				ID:          ls.ID,
				Title:       ls.Title,
				Kind:        lesson.Kind,
				Position:    ls.Position,
				VideoURL:    lesson.VideoURL,
				DurationSec: lesson.DurationSec,
				Completed:   ls.Completed,
				Accessible:  reason == "",
				LockReason:  reason,
			})
		}
		for j := range ms.Quizzes {
			qs := &ms.Quizzes[j]
			quiz := &course.Modules[i].Quizzes[j]
			reason := state.QuizLockReason(ms.ID, qs.ID)
			mv.Quizzes = append(mv.Quizzes, QuizView{
				ID:           qs.ID,
				Title:        qs.Title,
				PassingScore: quiz.PassingScore,
				TotalPoints:  quiz.TotalPoints,
				TimeLimitSec: quiz.TimeLimitSec,
				Completed:    qs.Completed,
				Accessible:   reason == "",
				LockReason:   reason,
			})
		}
		view.Modules = append(view.Modules, mv)
	}
	return view, nil
}

func (s *LearningService) Enroll(userID, courseID uint) (*model.Enrollment, error) {
	if _, err := s.CourseRepo.FindCourseTree(courseID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	existing, err := s.EnrollRepo.Find(userID, courseID)
	if err == nil {
		return existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	e := &model.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	}
	if err := s.EnrollRepo.Create(e); err != nil {
		return nil, err
	}
	return e, nil
}

// RequireEnrollment 进度相关操作的前置：必须已报名
func (s *LearningService) RequireEnrollment(userID, courseID uint) error {
	if _, err := s.EnrollRepo.Find(userID, courseID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrNotEnrolled
		}
		return err
	}
	return nil
}

// CompleteLesson 记录课时完成并驱动进度引擎。
// 不做乐观更新：先由数据库确认，再重建快照、分发完成事件
func (s *LearningService) CompleteLesson(ctx context.Context, userID, lessonID uint, percentage float64, timeSpent int) (*LessonCompletionResult, error) {
	lesson, err := s.CourseRepo.FindLesson(lessonID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	courseID, err := s.CourseRepo.CourseIDOfModule(lesson.ModuleID)
	if err != nil {
		return nil, util.ErrModuleNotFound
	}

	if err := s.RequireEnrollment(userID, courseID); err != nil {
		return nil, err
	}

	course, err := s.CourseRepo.FindCourseTree(courseID)
	if err != nil {
		return nil, err
	}

	state, err := s.BuildSnapshot(ctx, userID, course)
	if err != nil {
		return nil, err
	}

	// 锁定内容直接拒绝，不发生任何状态变更
	if reason := state.LessonLockReason(lesson.ModuleID, lessonID); reason != "" {
		return nil, &LockedError{Reason: reason}
	}

	// 分发器基线（若本会话还没建立）
	dispatcher := s.dispatcherFor(userID, courseID)
	dispatcher.Update(state, 0)

	if _, err := s.ProgressRepo.MarkLessonCompleted(userID, lessonID, percentage, timeSpent); err != nil {
		return nil, err
	}

	newState, err := s.BuildSnapshot(ctx, userID, course)
	if err != nil {
		return nil, err
	}

	events := dispatcher.Update(newState, 0)
	sideEffects := s.applyEvents(ctx, userID, events)

	result := &LessonCompletionResult{
		LessonID:       lessonID,
		CourseProgress: newState.Progress(),
		Events:         events,
		SideEffects:    sideEffects,
	}
	for i := range newState.Modules {
		if newState.Modules[i].ID == lesson.ModuleID {
			result.ModuleProgress = newState.Modules[i].Progress()
		}
	}

	if newState.Complete() {
		s.markEnrollmentFinished(userID, courseID)
		s.releaseDispatcher(userID, courseID)
	}
	return result, nil
}

// ApplyQuizPass 测验及格后由测验服务调用：重建快照并分发事件
func (s *LearningService) ApplyQuizPass(ctx context.Context, userID, courseID uint, score int) ([]progression.Event, []*SideEffectStatus, error) {
	course, err := s.CourseRepo.FindCourseTree(courseID)
	if err != nil {
		return nil, nil, err
	}

	dispatcher := s.dispatcherFor(userID, courseID)

	state, err := s.BuildSnapshot(ctx, userID, course)
	if err != nil {
		return nil, nil, err
	}

	events := dispatcher.Update(state, score)
	sideEffects := s.applyEvents(ctx, userID, events)

	if state.Complete() {
		s.markEnrollmentFinished(userID, courseID)
		s.releaseDispatcher(userID, courseID)
	}
	return events, sideEffects, nil
}

// EnsureBaseline 为学习会话建立分发器基线（测验开始等入口调用）
func (s *LearningService) EnsureBaseline(ctx context.Context, userID, courseID uint) (*progression.CourseState, error) {
	course, err := s.CourseRepo.FindCourseTree(courseID)
	if err != nil {
		return nil, err
	}
	state, err := s.BuildSnapshot(ctx, userID, course)
	if err != nil {
		return nil, err
	}
	s.dispatcherFor(userID, courseID).Update(state, 0)
	return state, nil
}

func (s *LearningService) applyEvents(ctx context.Context, userID uint, events []progression.Event) []*SideEffectStatus {
	var sideEffects []*SideEffectStatus
	for _, ev := range events {
		switch ev.Type {
		case progression.EventQuizzesUnlocked:
			// 仅提示：模块课时完成，测验解锁
			logger.Log.Info("模块测验解锁",
				zap.Uint("userId", userID),
				zap.Uint("moduleId", ev.ModuleID),
				zap.String("module", ev.ModuleTitle))
		case progression.EventModuleCompleted:
			sideEffects = append(sideEffects, s.Achievement.HandleModuleCompleted(ctx, userID, ev))
		case progression.EventCourseCompleted:
			sideEffects = append(sideEffects, s.Achievement.HandleCourseCompleted(ctx, userID, ev))
		}
	}
	return sideEffects
}

func (s *LearningService) markEnrollmentFinished(userID, courseID uint) {
	e, err := s.EnrollRepo.Find(userID, courseID)
	if err != nil || e.FinishedAt != nil {
		return
	}
	now := time.Now()
	e.FinishedAt = &now
	if err := s.EnrollRepo.Save(e); err != nil {
		logger.Log.Error("更新报名完成时间失败", zap.Error(err))
	}
}

func (s *LearningService) GetLessonProgress(userID, lessonID uint) (*LessonProgressView, error) {
	if _, err := s.CourseRepo.FindLesson(lessonID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	p, err := s.ProgressRepo.GetLessonProgress(userID, lessonID)
	if err == gorm.ErrRecordNotFound {
		return &LessonProgressView{LessonID: lessonID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &LessonProgressView{
		LessonID:   lessonID,
		Completed:  p.Completed,
		Percentage: p.Percentage,
		TimeSpent:  p.TimeSpent,
	}, nil
}

// ModuleQuizzes 模块测验列表，附带可访问标志
func (s *LearningService) ModuleQuizzes(ctx context.Context, userID, moduleID uint) ([]QuizView, error) {
	courseID, err := s.CourseRepo.CourseIDOfModule(moduleID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}

	course, err := s.CourseRepo.FindCourseTree(courseID)
	if err != nil {
		return nil, err
	}
	state, err := s.BuildSnapshot(ctx, userID, course)
	if err != nil {
		return nil, err
	}

	quizzes, err := s.QuizRepo.FindByModuleID(moduleID)
	if err != nil {
		return nil, err
	}

	views := make([]QuizView, 0, len(quizzes))
	for _, q := range quizzes {
		reason := state.QuizLockReason(moduleID, q.ID)
		completed := false
		for i := range state.Modules {
			if state.Modules[i].ID != moduleID {
				continue
			}
			for _, qs := range state.Modules[i].Quizzes {
				if qs.ID == q.ID {
					completed = qs.Completed
				}
			}
		}
		views = append(views, QuizView{
			ID:           q.ID,
			Title:        q.Title,
			PassingScore: q.PassingScore,
			TotalPoints:  q.TotalPoints,
			TimeLimitSec: q.TimeLimitSec,
			Completed:    completed,
			Accessible:   reason == "",
			LockReason:   reason,
		})
	}
	return views, nil
}

func (s *LearningService) ListCourses(page, limit int) ([]model.Course, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.CourseRepo.ListPublished(page, limit)
}
