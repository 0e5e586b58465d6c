package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(d *Dispatcher) *[]Event {
	var got []Event
	d.Subscribe(func(ev Event) { got = append(got, ev) })
	return &got
}

func TestFirstUpdateEstablishesBaselineWithoutEvents(t *testing.T) {
	c := twoModuleCourse()
	// 已有历史进度的快照加载时不得重放副作用
	c.Modules[0].Lessons[0].Completed = true

	d := NewDispatcher()
	got := collect(d)

	events := d.Update(c, 0)
	assert.Empty(t, events)
	assert.Empty(t, *got)
}

func TestQuizzesUnlockedEdge(t *testing.T) {
	c := twoModuleCourse()
	d := NewDispatcher()
	d.Update(c, 0)

	c.Modules[0].Lessons[0].Completed = true
	assert.Empty(t, d.Update(c, 0))

	c.Modules[0].Lessons[1].Completed = true
	events := d.Update(c, 0)
	require.Len(t, events, 1)
	assert.Equal(t, EventQuizzesUnlocked, events[0].Type)
	assert.Equal(t, uint(10), events[0].ModuleID)
	assert.Equal(t, "基础语法", events[0].ModuleTitle)
}

func TestModuleCompletionFiresExactlyOnce(t *testing.T) {
	// 两课时一测验：完成课时1、课时2、通过测验，模块完成副作用恰好一次
	c := twoModuleCourse()
	d := NewDispatcher()
	got := collect(d)
	d.Update(c, 0)

	c.Modules[0].Lessons[0].Completed = true
	d.Update(c, 0)
	c.Modules[0].Lessons[1].Completed = true
	d.Update(c, 0)
	c.Modules[0].Quizzes[0].Completed = true
	d.Update(c, 80)

	var completions []Event
	for _, ev := range *got {
		if ev.Type == EventModuleCompleted {
			completions = append(completions, ev)
		}
	}
	require.Len(t, completions, 1)
	assert.Equal(t, uint(10), completions[0].ModuleID)
	assert.Equal(t, 80, completions[0].Score)

	// 终态吸收：重复更新不再触发
	d.Update(c, 80)
	d.Update(c, 80)
	n := 0
	for _, ev := range *got {
		if ev.Type == EventModuleCompleted {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func TestModuleWithoutQuizzesCompletesDirectly(t *testing.T) {
	c := &CourseState{
		ID: 1,
		Modules: []ModuleState{
			{ID: 10, Title: "单模块", Lessons: []LessonState{{ID: 101, Title: "唯一课时"}}},
		},
	}
	d := NewDispatcher()
	d.Update(c, 0)

	c.Modules[0].Lessons[0].Completed = true
	events := d.Update(c, 0)

	// IN_PROGRESS → COMPLETE 直接跃迁，不发 quizzes_unlocked
	require.Len(t, events, 2)
	assert.Equal(t, EventModuleCompleted, events[0].Type)
	assert.Equal(t, EventCourseCompleted, events[1].Type)
}

func TestCourseCompletionFiresOnceAcrossModules(t *testing.T) {
	c := twoModuleCourse()
	d := NewDispatcher()
	got := collect(d)
	d.Update(c, 0)

	c.Modules[0].Lessons[0].Completed = true
	c.Modules[0].Lessons[1].Completed = true
	d.Update(c, 0)
	c.Modules[0].Quizzes[0].Completed = true
	d.Update(c, 90)
	c.Modules[1].Lessons[0].Completed = true
	d.Update(c, 0)

	var courseEvents []Event
	for _, ev := range *got {
		if ev.Type == EventCourseCompleted {
			courseEvents = append(courseEvents, ev)
		}
	}
	require.Len(t, courseEvents, 1)
	assert.Equal(t, uint(1), courseEvents[0].CourseID)

	d.Update(c, 0)
	for _, ev := range *got {
		if ev.Type == EventCourseCompleted {
			assert.Equal(t, courseEvents[0], ev)
		}
	}
}

// 进程重启后恢复的学习会话：基线必须取自提交生效前的快照，
// 再应用提交后的快照，完成跃迁才会发出。测验提交路径据此
// 在落库前先建立基线（与课时完成路径对称）
func TestResumedSessionBaselineBeforeQuizPass(t *testing.T) {
	pre := twoModuleCourse()
	pre.Modules[0].Lessons[0].Completed = true
	pre.Modules[0].Lessons[1].Completed = true

	// 新进程里的分发器，以提交前的持久化状态建立基线
	d := NewDispatcher()
	assert.Empty(t, d.Update(pre, 0))

	post := twoModuleCourse()
	post.Modules[0].Lessons[0].Completed = true
	post.Modules[0].Lessons[1].Completed = true
	post.Modules[0].Quizzes[0].Completed = true

	events := d.Update(post, 85)
	require.Len(t, events, 1)
	assert.Equal(t, EventModuleCompleted, events[0].Type)
	assert.Equal(t, uint(10), events[0].ModuleID)
	assert.Equal(t, 85, events[0].Score)
}

// 若首个快照里通过已经落库，新分发器把它当作基线吞掉——
// 这正是调用方必须先建立基线的原因。基线之后的跃迁不受影响
func TestFreshDispatcherAbsorbsPersistedPass(t *testing.T) {
	post := twoModuleCourse()
	post.Modules[0].Lessons[0].Completed = true
	post.Modules[0].Lessons[1].Completed = true
	post.Modules[0].Quizzes[0].Completed = true

	d := NewDispatcher()
	assert.Empty(t, d.Update(post, 85))

	// 后续的真实跃迁仍正常发出
	post.Modules[1].Lessons[0].Completed = true
	events := d.Update(post, 0)
	require.Len(t, events, 2)
	assert.Equal(t, EventModuleCompleted, events[0].Type)
	assert.Equal(t, uint(20), events[0].ModuleID)
	assert.Equal(t, EventCourseCompleted, events[1].Type)
}

// 课程完成后分发器条目被释放；重建的分发器对已完成的快照
// 只建立基线，不会重放课程完成副作用
func TestRebuiltDispatcherAfterCourseCompletionStaysSilent(t *testing.T) {
	c := twoModuleCourse()
	c.Modules[0].Lessons[0].Completed = true
	c.Modules[0].Lessons[1].Completed = true
	c.Modules[0].Quizzes[0].Completed = true
	c.Modules[1].Lessons[0].Completed = true

	d := NewDispatcher()
	assert.Empty(t, d.Update(c, 0))
	assert.Empty(t, d.Update(c, 0))
}

// 规格化场景：模块A（课时a1,a2 + 测验qa，及格线70）、模块B（课时b1）
func TestScenarioSequentialUnlock(t *testing.T) {
	c := &CourseState{
		ID:    1,
		Title: "区块链基础",
		Modules: []ModuleState{
			{
				ID: 1, Title: "模块A",
				Lessons: []LessonState{{ID: 11, Title: "a1"}, {ID: 12, Title: "a2", Position: 1}},
				Quizzes: []QuizState{{ID: 91, Title: "qa"}},
			},
			{
				ID: 2, Title: "模块B",
				Lessons: []LessonState{{ID: 21, Title: "b1"}},
			},
		},
	}
	d := NewDispatcher()
	got := collect(d)
	d.Update(c, 0)

	// 初始仅 a1 可访问
	assert.True(t, c.LessonAccessible(1, 11))
	assert.False(t, c.LessonAccessible(1, 12))
	assert.False(t, c.QuizAccessible(1, 91))
	assert.False(t, c.LessonAccessible(2, 21))

	// 完成 a1：a2 解锁，qa 仍锁
	c.Modules[0].Lessons[0].Completed = true
	d.Update(c, 0)
	assert.True(t, c.LessonAccessible(1, 12))
	assert.False(t, c.QuizAccessible(1, 91))
	assert.False(t, c.LessonAccessible(2, 21))

	// 完成 a2：qa 解锁；b1 只依赖前一模块的课时，与 qa 无关
	c.Modules[0].Lessons[1].Completed = true
	d.Update(c, 0)
	assert.True(t, c.QuizAccessible(1, 91))
	assert.True(t, c.LessonAccessible(2, 21))

	// qa 得 80 分（≥70）：模块A完成，恰好一次铸造请求
	c.Modules[0].Quizzes[0].Completed = true
	d.Update(c, 80)

	var mints []Event
	for _, ev := range *got {
		if ev.Type == EventModuleCompleted {
			mints = append(mints, ev)
		}
	}
	require.Len(t, mints, 1)
	assert.Equal(t, uint(1), mints[0].ModuleID)
	assert.Equal(t, "模块A", mints[0].ModuleTitle)
	assert.Equal(t, 80, mints[0].Score)
}
