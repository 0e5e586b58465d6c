// Package progression 实现课程进度引擎的纯逻辑部分：
// 课时/测验的解锁判定、进度百分比汇总、以及完成事件的边沿触发。
// 本包不做任何 I/O，服务层负责从数据库装配快照并消费事件。
package progression

// LessonState 课时完成状态快照
type LessonState struct {
	ID        uint
	Title     string
	Position  int
	Completed bool
}

// QuizState 测验完成状态快照。"完成"指存在一次达到及格线的提交
type QuizState struct {
	ID        uint
	Title     string
	Completed bool
}

// ModuleState 模块快照。Lessons 必须已按 Position 升序排列
type ModuleState struct {
	ID       uint
	Title    string
	Position int
	Lessons  []LessonState
	Quizzes  []QuizState
}

// CourseState 课程快照。Modules 必须已按 Position 升序排列
type CourseState struct {
	ID      uint
	Title   string
	Modules []ModuleState
}

func (c *CourseState) moduleIndex(moduleID uint) int {
	for i := range c.Modules {
		if c.Modules[i].ID == moduleID {
			return i
		}
	}
	return -1
}

func (m *ModuleState) lessonIndex(lessonID uint) int {
	for i := range m.Lessons {
		if m.Lessons[i].ID == lessonID {
			return i
		}
	}
	return -1
}

func (m *ModuleState) quizIndex(quizID uint) int {
	for i := range m.Quizzes {
		if m.Quizzes[i].ID == quizID {
			return i
		}
	}
	return -1
}
