package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func twoModuleCourse() *CourseState {
	return &CourseState{
		ID:    1,
		Title: "C语言入门",
		Modules: []ModuleState{
			{
				ID: 10, Title: "基础语法", Position: 0,
				Lessons: []LessonState{
					{ID: 101, Title: "变量", Position: 0},
					{ID: 102, Title: "循环", Position: 1},
				},
				Quizzes: []QuizState{{ID: 501, Title: "基础测验"}},
			},
			{
				ID: 20, Title: "指针", Position: 1,
				Lessons: []LessonState{
					{ID: 201, Title: "指针入门", Position: 0},
				},
			},
		},
	}
}

func TestFirstLessonOfFirstModuleAlwaysAccessible(t *testing.T) {
	c := twoModuleCourse()
	assert.True(t, c.LessonAccessible(10, 101))

	// 与其它状态无关
	c.Modules[1].Lessons[0].Completed = true
	assert.True(t, c.LessonAccessible(10, 101))
}

func TestLessonRequiresPredecessorInSameModule(t *testing.T) {
	c := twoModuleCourse()
	assert.False(t, c.LessonAccessible(10, 102))
	assert.Equal(t, "请先完成上一课时「变量」", c.LessonLockReason(10, 102))

	c.Modules[0].Lessons[0].Completed = true
	assert.True(t, c.LessonAccessible(10, 102))
	assert.Empty(t, c.LessonLockReason(10, 102))
}

func TestFirstLessonOfLaterModuleRequiresPreviousModuleLessons(t *testing.T) {
	c := twoModuleCourse()
	assert.False(t, c.LessonAccessible(20, 201))
	assert.Equal(t, "请先完成上一模块「基础语法」的全部课时", c.LessonLockReason(20, 201))

	c.Modules[0].Lessons[0].Completed = true
	assert.False(t, c.LessonAccessible(20, 201))

	// 前一模块课时全部完成即可，测验不阻塞下一模块的课时
	c.Modules[0].Lessons[1].Completed = true
	assert.True(t, c.LessonAccessible(20, 201))
}

func TestEmptyModuleUnlocksNextModule(t *testing.T) {
	c := &CourseState{
		ID: 1,
		Modules: []ModuleState{
			{ID: 10, Title: "空模块"},
			{ID: 20, Title: "正文", Lessons: []LessonState{{ID: 201, Title: "第一课"}}},
		},
	}
	// 零课时模块按空真处理
	assert.True(t, c.LessonAccessible(20, 201))
}

func TestQuizRequiresAllModuleLessons(t *testing.T) {
	c := twoModuleCourse()
	assert.False(t, c.QuizAccessible(10, 501))
	assert.Equal(t, "请先完成本模块的全部课时", c.QuizLockReason(10, 501))

	c.Modules[0].Lessons[0].Completed = true
	assert.False(t, c.QuizAccessible(10, 501))

	c.Modules[0].Lessons[1].Completed = true
	assert.True(t, c.QuizAccessible(10, 501))
}

func TestQuizzesUnlockSimultaneously(t *testing.T) {
	c := twoModuleCourse()
	c.Modules[0].Quizzes = append(c.Modules[0].Quizzes, QuizState{ID: 502, Title: "附加测验"})
	c.Modules[0].Lessons[0].Completed = true
	c.Modules[0].Lessons[1].Completed = true

	// 同模块内测验之间没有先后顺序
	assert.True(t, c.QuizAccessible(10, 501))
	assert.True(t, c.QuizAccessible(10, 502))
}

func TestMissingReferencesResolveLocked(t *testing.T) {
	c := twoModuleCourse()

	assert.False(t, c.LessonAccessible(99, 101))
	assert.False(t, c.LessonAccessible(10, 999))
	assert.False(t, c.QuizAccessible(99, 501))
	assert.False(t, c.QuizAccessible(10, 999))
	assert.NotEmpty(t, c.LessonLockReason(99, 101))
}
