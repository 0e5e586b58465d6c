package progression

import "fmt"

// 解锁规则：
//   - 第一个模块的第一个课时无条件可访问
//   - 非第一个模块的第一个课时：前一个模块的全部课时完成后解锁
//     （不要求前一模块的测验，见模块完成与解锁的区分）
//   - 其余课时：同模块内前一个课时完成后解锁
//   - 测验：所属模块全部课时完成后同时解锁，测验之间无顺序
//
// 所有判定对缺失的模块/课时/测验一律返回不可访问（宁锁勿开），不会 panic。

// LessonAccessible 判定课时当前是否可访问
func (c *CourseState) LessonAccessible(moduleID, lessonID uint) bool {
	return c.LessonLockReason(moduleID, lessonID) == ""
}

// LessonLockReason 返回阻塞课时访问的具体前置条件说明，空串表示可访问
func (c *CourseState) LessonLockReason(moduleID, lessonID uint) string {
	mi := c.moduleIndex(moduleID)
	if mi < 0 {
		return "模块不存在"
	}
	m := &c.Modules[mi]

	li := m.lessonIndex(lessonID)
	if li < 0 {
		return "课时不存在"
	}

	if li == 0 {
		if mi == 0 {
			// 全课程第一个课时永远可访问
			return ""
		}
		prev := &c.Modules[mi-1]
		// 零课时模块视为"课时已全部完成"，不阻塞下一模块
		if !prev.LessonsDone() {
			return fmt.Sprintf("请先完成上一模块「%s」的全部课时", prev.Title)
		}
		return ""
	}

	prev := &m.Lessons[li-1]
	if !prev.Completed {
		return fmt.Sprintf("请先完成上一课时「%s」", prev.Title)
	}
	return ""
}

// QuizAccessible 判定测验当前是否可访问
func (c *CourseState) QuizAccessible(moduleID, quizID uint) bool {
	return c.QuizLockReason(moduleID, quizID) == ""
}

// QuizLockReason 返回阻塞测验访问的说明，空串表示可访问
func (c *CourseState) QuizLockReason(moduleID, quizID uint) string {
	mi := c.moduleIndex(moduleID)
	if mi < 0 {
		return "模块不存在"
	}
	m := &c.Modules[mi]

	if m.quizIndex(quizID) < 0 {
		return "测验不存在"
	}

	if !m.LessonsDone() {
		return "请先完成本模块的全部课时"
	}
	return ""
}
