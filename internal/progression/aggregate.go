package progression

// ModulePhase 模块的进度阶段
type ModulePhase int

const (
	PhaseNotStarted  ModulePhase = iota
	PhaseInProgress              // 有课时或测验完成，但课时未全部完成
	PhaseLessonsDone             // 课时全部完成，测验待完成
	PhaseComplete                // 课时与测验全部完成，终态
)

func (p ModulePhase) String() string {
	switch p {
	case PhaseNotStarted:
		return "NOT_STARTED"
	case PhaseInProgress:
		return "IN_PROGRESS"
	case PhaseLessonsDone:
		return "LESSONS_DONE"
	case PhaseComplete:
		return "COMPLETE"
	}
	return "UNKNOWN"
}

func (m *ModuleState) completedLessons() int {
	n := 0
	for i := range m.Lessons {
		if m.Lessons[i].Completed {
			n++
		}
	}
	return n
}

func (m *ModuleState) completedQuizzes() int {
	n := 0
	for i := range m.Quizzes {
		if m.Quizzes[i].Completed {
			n++
		}
	}
	return n
}

// Progress 模块进度百分比。零课时模块为 0
func (m *ModuleState) Progress() float64 {
	if len(m.Lessons) == 0 {
		return 0
	}
	return 100 * float64(m.completedLessons()) / float64(len(m.Lessons))
}

// LessonsDone 课时是否全部完成。零课时模块按空真处理，
// 用于解锁下一模块（注意与 Progress==0 并不矛盾）
func (m *ModuleState) LessonsDone() bool {
	return m.completedLessons() == len(m.Lessons)
}

// QuizzesDone 测验是否全部完成，无测验时为真
func (m *ModuleState) QuizzesDone() bool {
	return m.completedQuizzes() == len(m.Quizzes)
}

// Complete 模块是否完成：课时与测验都完成
func (m *ModuleState) Complete() bool {
	return m.LessonsDone() && m.QuizzesDone()
}

// Phase 当前进度阶段
func (m *ModuleState) Phase() ModulePhase {
	if m.LessonsDone() {
		if m.QuizzesDone() {
			return PhaseComplete
		}
		return PhaseLessonsDone
	}
	if m.completedLessons() == 0 && m.completedQuizzes() == 0 {
		return PhaseNotStarted
	}
	return PhaseInProgress
}

// Progress 课程进度百分比：按全课程课时总数拉平计算，
// 而不是对各模块百分比取平均，避免模块课时数不均时的偏差
func (c *CourseState) Progress() float64 {
	total, done := 0, 0
	for i := range c.Modules {
		total += len(c.Modules[i].Lessons)
		done += c.Modules[i].completedLessons()
	}
	if total == 0 {
		return 0
	}
	return 100 * float64(done) / float64(total)
}

// Complete 课程是否完成：所有模块的课时与测验全部完成
func (c *CourseState) Complete() bool {
	for i := range c.Modules {
		if !c.Modules[i].Complete() {
			return false
		}
	}
	return true
}
