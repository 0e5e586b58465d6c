package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModuleProgress(t *testing.T) {
	m := ModuleState{
		Lessons: []LessonState{
			{ID: 1, Completed: true},
			{ID: 2, Completed: true},
			{ID: 3},
		},
	}
	assert.InDelta(t, 100.0*2/3, m.Progress(), 1e-9)

	m.Lessons[2].Completed = true
	assert.Equal(t, 100.0, m.Progress())
}

func TestEmptyModuleProgressZeroButLessonsDone(t *testing.T) {
	m := ModuleState{}
	assert.Equal(t, 0.0, m.Progress())
	assert.True(t, m.LessonsDone())
}

func TestCourseProgressFlattensLessonCounts(t *testing.T) {
	// 模块课时数不均时不能对模块百分比取平均
	c := CourseState{
		Modules: []ModuleState{
			{Lessons: []LessonState{
				{ID: 1, Completed: true}, {ID: 2, Completed: true},
				{ID: 3, Completed: true}, {ID: 4, Completed: true},
			}},
			{Lessons: []LessonState{{ID: 5}}},
		},
	}
	// 拉平：4/5，而不是 (100+0)/2
	assert.InDelta(t, 80.0, c.Progress(), 1e-9)
}

func TestProgressIdempotent(t *testing.T) {
	c := CourseState{
		Modules: []ModuleState{
			{Lessons: []LessonState{{ID: 1, Completed: true}, {ID: 2}}},
			{Lessons: []LessonState{{ID: 3}, {ID: 4}, {ID: 5, Completed: true}}},
		},
	}
	first := c.Progress()
	assert.Equal(t, first, c.Progress())
	assert.Equal(t, c.Modules[0].Progress(), c.Modules[0].Progress())
}

func TestModulePhase(t *testing.T) {
	m := ModuleState{
		Lessons: []LessonState{{ID: 1}, {ID: 2}},
		Quizzes: []QuizState{{ID: 9}},
	}
	assert.Equal(t, PhaseNotStarted, m.Phase())

	m.Lessons[0].Completed = true
	assert.Equal(t, PhaseInProgress, m.Phase())

	m.Lessons[1].Completed = true
	assert.Equal(t, PhaseLessonsDone, m.Phase())

	m.Quizzes[0].Completed = true
	assert.Equal(t, PhaseComplete, m.Phase())
}

func TestModuleWithoutQuizzesSkipsLessonsDone(t *testing.T) {
	m := ModuleState{Lessons: []LessonState{{ID: 1}}}
	assert.Equal(t, PhaseNotStarted, m.Phase())

	m.Lessons[0].Completed = true
	assert.Equal(t, PhaseComplete, m.Phase())
}

func TestCourseCompleteRequiresLessonsAndQuizzes(t *testing.T) {
	c := CourseState{
		Modules: []ModuleState{
			{
				Lessons: []LessonState{{ID: 1, Completed: true}},
				Quizzes: []QuizState{{ID: 9}},
			},
		},
	}
	assert.False(t, c.Complete())

	c.Modules[0].Quizzes[0].Completed = true
	assert.True(t, c.Complete())
}
