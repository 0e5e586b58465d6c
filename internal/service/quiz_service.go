package service

import (
	"context"
	"learntwin_backend/internal/model"
	"learntwin_backend/internal/progression"
	"learntwin_backend/internal/repository"
	"learntwin_backend/internal/util"
	"learntwin_backend/pkg/logger"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuizService struct {
	QuizRepo     *repository.QuizRepository
	CourseRepo   *repository.CourseRepository
	ProgressRepo *repository.ProgressRepository
	Learning     *LearningService
}

func NewQuizService(
	quizRepo *repository.QuizRepository,
	courseRepo *repository.CourseRepository,
	progressRepo *repository.ProgressRepository,
	learning *LearningService,
) *QuizService {
	return &QuizService{
		QuizRepo:     quizRepo,
		CourseRepo:   courseRepo,
		ProgressRepo: progressRepo,
		Learning:     learning,
	}
}

// QuizSubmissionResult 一次提交的评分结果与触发的完成事件
type QuizSubmissionResult struct {
	AttemptID    string              `json:"attemptId"`
	Score        int                 `json:"score"`
	PassingScore int                 `json:"passingScore"`
	Passed       bool                `json:"passed"`
	AutoClosed   bool                `json:"autoClosed"` // 到期自动提交
	Events       []progression.Event `json:"events,omitempty"`
	SideEffects  []*SideEffectStatus `json:"sideEffects,omitempty"`
}

// ScoreSubmission 按题目分值加权评分，返回百分比得分。
// 纯函数：同一提交重复评分结果一致
func ScoreSubmission(quiz *model.Quiz, answers map[uint]int) int {
	total := 0
	earned := 0
	for _, q := range quiz.Questions {
		points := q.Points
		if points <= 0 {
			points = 1
		}
		total += points
		if chosen, ok := answers[q.ID]; ok && chosen == q.Answer {
			earned += points
		}
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(earned) / float64(total)))
}

// StartAttempt 开始一次答题。测验必须已解锁；已有进行中的答题则直接续用
func (s *QuizService) StartAttempt(ctx context.Context, userID, quizID uint) (*model.QuizAttempt, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	courseID, err := s.CourseRepo.CourseIDOfModule(quiz.ModuleID)
	if err != nil {
		return nil, util.ErrModuleNotFound
	}

	if err := s.Learning.RequireEnrollment(userID, courseID); err != nil {
		return nil, err
	}

	state, err := s.Learning.EnsureBaseline(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if reason := state.QuizLockReason(quiz.ModuleID, quizID); reason != "" {
		return nil, &LockedError{Reason: reason}
	}

	if open, err := s.QuizRepo.FindOpenAttempt(userID, quizID); err == nil {
		return open, nil
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	attempt := &model.QuizAttempt{
		UserID:    userID,
		QuizID:    quizID,
		Status:    model.AttemptInProgress,
		Answers:   map[uint]int{},
		StartedAt: time.Now(),
	}
	if quiz.TimeLimitSec > 0 {
		deadline := attempt.StartedAt.Add(time.Duration(quiz.TimeLimitSec) * time.Second)
		attempt.Deadline = &deadline
	}
	if err := s.QuizRepo.CreateAttempt(attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// SaveAnswers 保存进行中答题的作答快照（到期自动提交以此为准）
func (s *QuizService) SaveAnswers(userID uint, attemptID string, answers map[uint]int) error {
	attempt, err := s.QuizRepo.FindAttempt(attemptID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrAttemptNotFound
		}
		return err
	}
	if attempt.UserID != userID {
		return util.ErrPermissionDenied
	}
	if attempt.Status != model.AttemptInProgress {
		return util.ErrAttemptClosed
	}
	return s.QuizRepo.SaveAnswers(attemptID, answers)
}

// SubmitAttempt 提交答题并评分。到期后的迟到提交按自动提交处理：
// 以已记录的作答快照评分，而不是迟到送达的答案
func (s *QuizService) SubmitAttempt(ctx context.Context, userID uint, attemptID string, answers map[uint]int) (*QuizSubmissionResult, error) {
	attempt, err := s.QuizRepo.FindAttempt(attemptID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	if attempt.Status != model.AttemptInProgress {
		return nil, util.ErrAttemptClosed
	}

	if attempt.Deadline != nil && time.Now().After(*attempt.Deadline) {
		return s.finalize(ctx, attempt, attempt.Answers, model.AttemptExpired)
	}
	return s.finalize(ctx, attempt, answers, model.AttemptSubmitted)
}

// finalize 评分并以受控状态迁移落库。迁移失败（别处已关闭）视为重复提交
func (s *QuizService) finalize(ctx context.Context, attempt *model.QuizAttempt, answers map[uint]int, to model.AttemptStatus) (*QuizSubmissionResult, error) {
	quiz, err := s.QuizRepo.FindByID(attempt.QuizID)
	if err != nil {
		return nil, err
	}

	courseID, err := s.CourseRepo.CourseIDOfModule(quiz.ModuleID)
	if err != nil {
		return nil, err
	}

	// 落库前先建立分发器基线：基线必须取自本次提交生效前的状态。
	// 进程重启后恢复的会话若在落库后才首次 Update，会把已持久化的
	// 通过当作基线，模块/课程完成事件被吞掉且无铸造记录可重试
	if _, err := s.Learning.EnsureBaseline(ctx, attempt.UserID, courseID); err != nil {
		return nil, err
	}

	if answers == nil {
		answers = map[uint]int{}
	}
	score := ScoreSubmission(quiz, answers)
	passed := score >= quiz.PassingScore

	attempt.Answers = answers
	attempt.Score = score
	attempt.Passed = passed

	transitioned, err := s.QuizRepo.CloseAttempt(attempt, to)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		return nil, util.ErrAttemptClosed
	}

	result := &QuizSubmissionResult{
		AttemptID:    attempt.ID,
		Score:        score,
		PassingScore: quiz.PassingScore,
		Passed:       passed,
		AutoClosed:   to == model.AttemptExpired,
	}

	// 未及格：不标记完成、不推进模块状态，允许重考
	if !passed {
		return result, nil
	}

	// 先写兜底缓存再分发事件：缓存失败只记日志，完成状态以数据库为准
	if err := s.ProgressRepo.CacheQuizCompletion(ctx, attempt.UserID, courseID, quiz.ID); err != nil {
		logger.Log.Warn("测验完成兜底缓存写入失败", zap.Error(err), zap.Uint("quizId", quiz.ID))
	}

	events, sideEffects, err := s.Learning.ApplyQuizPass(ctx, attempt.UserID, courseID, score)
	if err != nil {
		logger.Log.Error("测验通过后的进度更新失败", zap.Error(err))
		return result, nil
	}
	result.Events = events
	result.SideEffects = sideEffects
	return result, nil
}

// FinalizeExpired 把已过期的进行中答题按记录的作答自动提交。
// 后台巡检调用；CloseAttempt 的状态迁移保证每次答题只结算一次
func (s *QuizService) FinalizeExpired(now time.Time) int {
	attempts, err := s.QuizRepo.ListExpiredInProgress(now)
	if err != nil {
		logger.Log.Error("查询过期答题失败", zap.Error(err))
		return 0
	}

	closed := 0
	for i := range attempts {
		attempt := attempts[i]
		if _, err := s.finalize(context.Background(), &attempt, attempt.Answers, model.AttemptExpired); err != nil {
			if err != util.ErrAttemptClosed {
				logger.Log.Error("自动提交过期答题失败",
					zap.Error(err), zap.String("attemptId", attempt.ID))
			}
			continue
		}
		closed++
		logger.Log.Info("答题到期自动提交",
			zap.String("attemptId", attempt.ID),
			zap.Uint("quizId", attempt.QuizID),
			zap.Uint("userId", attempt.UserID))
	}
	return closed
}

// WarnExpiring 对即将到期的答题发出一次性提醒
func (s *QuizService) WarnExpiring(now time.Time, within time.Duration) int {
	attempts, err := s.QuizRepo.ListExpiringSoon(now, within)
	if err != nil {
		logger.Log.Error("查询即将到期答题失败", zap.Error(err))
		return 0
	}

	warned := 0
	for i := range attempts {
		ok, err := s.QuizRepo.MarkWarned(attempts[i].ID)
		if err != nil || !ok {
			continue
		}
		warned++
		logger.Log.Info("答题即将到期",
			zap.String("attemptId", attempts[i].ID),
			zap.Uint("userId", attempts[i].UserID),
			zap.Time("deadline", *attempts[i].Deadline))
	}
	return warned
}
