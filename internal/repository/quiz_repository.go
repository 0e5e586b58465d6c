package repository

import (
	"learntwin_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) FindByID(quizID uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).First(&quiz, quizID).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizRepository) FindByModuleID(moduleID uint) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Where("module_id = ?", moduleID).Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) CreateQuiz(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

// PassedQuizIDs 在给定测验集合中，用户已有及格提交的测验ID
func (r *QuizRepository) PassedQuizIDs(userID uint, quizIDs []uint) (map[uint]bool, error) {
	passed := make(map[uint]bool, len(quizIDs))
	if len(quizIDs) == 0 {
		return passed, nil
	}

	var rows []model.QuizAttempt
	err := r.DB.Select("quiz_id").
		Where("user_id = ? AND quiz_id IN ? AND passed = ?", userID, quizIDs, true).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		passed[row.QuizID] = true
	}
	return passed, nil
}

func (r *QuizRepository) CreateAttempt(attempt *model.QuizAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *QuizRepository) FindAttempt(attemptID string) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.DB.Where("id = ?", attemptID).First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// FindOpenAttempt 用户在某测验上进行中的答题
func (r *QuizRepository) FindOpenAttempt(userID, quizID uint) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.DB.Where("user_id = ? AND quiz_id = ? AND status = ?",
		userID, quizID, model.AttemptInProgress).First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// CloseAttempt 以 in_progress -> 终态 的受控迁移落库评分结果。
// WHERE 条件带上旧状态，返回是否真的发生迁移：并发的重复提交
// 或到期自动提交中只有一方能赢，评分副作用因此恰好生效一次
func (r *QuizRepository) CloseAttempt(attempt *model.QuizAttempt, to model.AttemptStatus) (bool, error) {
	now := time.Now()
	res := r.DB.Model(&model.QuizAttempt{}).
		Where("id = ? AND status = ?", attempt.ID, model.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":       to,
			"answers":      attempt.Answers,
			"score":        attempt.Score,
			"passed":       attempt.Passed,
			"submitted_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		attempt.Status = to
		attempt.SubmittedAt = &now
		return true, nil
	}
	return false, nil
}

// SaveAnswers 记录进行中答题的作答快照，到期自动提交用
func (r *QuizRepository) SaveAnswers(attemptID string, answers map[uint]int) error {
	return r.DB.Model(&model.QuizAttempt{}).
		Where("id = ? AND status = ?", attemptID, model.AttemptInProgress).
		Update("answers", answers).Error
}

// ListExpiredInProgress 已过期但仍处于进行中的答题
func (r *QuizRepository) ListExpiredInProgress(now time.Time) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("status = ? AND deadline IS NOT NULL AND deadline < ?",
		model.AttemptInProgress, now).Find(&attempts).Error
	return attempts, err
}

// ListExpiringSoon 即将到期且尚未提醒过的答题
func (r *QuizRepository) ListExpiringSoon(now time.Time, within time.Duration) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where(
		"status = ? AND warned_at IS NULL AND deadline IS NOT NULL AND deadline > ? AND deadline < ?",
		model.AttemptInProgress, now, now.Add(within)).Find(&attempts).Error
	return attempts, err
}

// MarkWarned 置提醒标志，WHERE warned_at IS NULL 保证每次答题只提醒一次
func (r *QuizRepository) MarkWarned(attemptID string) (bool, error) {
	res := r.DB.Model(&model.QuizAttempt{}).
		Where("id = ? AND warned_at IS NULL", attemptID).
		Update("warned_at", time.Now())
	return res.RowsAffected > 0, res.Error
}
