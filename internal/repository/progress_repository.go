package repository

import (
	"context"
	"fmt"
	"learntwin_backend/internal/model"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// 测验完成状态的本地兜底缓存，按 (用户, 课程) 维度存完成的测验ID集合。
// 读取时与数据库取并集（任一来源完成即视为完成），绝不覆盖式写回，
// 避免回退掉其它会话已记录的完成状态
const quizDoneKeyFmt = "quiz_done:%d:%d"

type ProgressRepository struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewProgressRepository(db *gorm.DB, rdb *redis.Client) *ProgressRepository {
	return &ProgressRepository{DB: db, RDB: rdb}
}

func (r *ProgressRepository) GetLessonProgress(userID, lessonID uint) (*model.LessonProgress, error) {
	var p model.LessonProgress
	err := r.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// MapByLessonIDs 批量读取课时进度，返回 lessonID -> progress
func (r *ProgressRepository) MapByLessonIDs(userID uint, lessonIDs []uint) (map[uint]model.LessonProgress, error) {
	result := make(map[uint]model.LessonProgress, len(lessonIDs))
	if len(lessonIDs) == 0 {
		return result, nil
	}

	var rows []model.LessonProgress
	err := r.DB.Where("user_id = ? AND lesson_id IN ?", userID, lessonIDs).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.LessonID] = row
	}
	return result, nil
}

// MarkLessonCompleted 记录课时完成。完成标志单调：
// 已完成的记录不会被后续提交回退，只累加学习时长
func (r *ProgressRepository) MarkLessonCompleted(userID, lessonID uint, percentage float64, timeSpent int) (*model.LessonProgress, error) {
	var p model.LessonProgress
	err := r.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&p).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}

	now := time.Now()
	if err == gorm.ErrRecordNotFound {
		p = model.LessonProgress{
			UserID:      userID,
			LessonID:    lessonID,
			Completed:   true,
			Percentage:  percentage,
			TimeSpent:   timeSpent,
			CompletedAt: &now,
		}
		if err := r.DB.Create(&p).Error; err != nil {
			return nil, err
		}
		return &p, nil
	}

	p.TimeSpent += timeSpent
	if percentage > p.Percentage {
		p.Percentage = percentage
	}
	if !p.Completed {
		p.Completed = true
		p.CompletedAt = &now
	}
	if err := r.DB.Save(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// CacheQuizCompletion 在兜底缓存中记录测验完成
func (r *ProgressRepository) CacheQuizCompletion(ctx context.Context, userID, courseID, quizID uint) error {
	key := fmt.Sprintf(quizDoneKeyFmt, userID, courseID)
	if err := r.RDB.SAdd(ctx, key, strconv.FormatUint(uint64(quizID), 10)).Err(); err != nil {
		return err
	}
	// 缓存是兜底不是事实来源，过期即可
	return r.RDB.Expire(ctx, key, 30*24*time.Hour).Err()
}

// CachedQuizCompletions 读取兜底缓存中的完成测验ID集合。
// 缓存不可用时返回空集而不是错误：缓存缺失只会少合并，不会出错
func (r *ProgressRepository) CachedQuizCompletions(ctx context.Context, userID, courseID uint) map[uint]bool {
	key := fmt.Sprintf(quizDoneKeyFmt, userID, courseID)
	members, err := r.RDB.SMembers(ctx, key).Result()
	if err != nil {
		return map[uint]bool{}
	}

	set := make(map[uint]bool, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 32)
		if err != nil {
			continue
		}
		set[uint(id)] = true
	}
	return set
}

// MergeQuizCompletions 两来源合并：任一来源标记完成即为完成。
// 并集而非"后写覆盖"，防止某一来源缺数据时回退完成状态
func MergeQuizCompletions(db, cache map[uint]bool) map[uint]bool {
	merged := make(map[uint]bool, len(db)+len(cache))
	for id, done := range db {
		if done {
			merged[id] = true
		}
	}
	for id, done := range cache {
		if done {
			merged[id] = true
		}
	}
	return merged
}
