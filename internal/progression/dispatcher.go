package progression

import "sync"

type EventType string

const (
	// EventQuizzesUnlocked 模块课时全部完成且仍有测验待做（仅提示用途）
	EventQuizzesUnlocked EventType = "quizzes_unlocked"
	// EventModuleCompleted 模块课时与测验全部完成，触发成就/NFT铸造
	EventModuleCompleted EventType = "module_completed"
	// EventCourseCompleted 整个课程完成，触发证书签发
	EventCourseCompleted EventType = "course_completed"
)

// Event 完成事件。ModuleCompleted 携带触发完成的测验得分
type Event struct {
	Type        EventType
	CourseID    uint
	ModuleID    uint
	ModuleTitle string
	CourseTitle string
	Score       int
}

// Dispatcher 检测进度状态的跃迁边沿并通知订阅者。
// 事件按跃迁触发而非按电平触发：同一模块的同一次跃迁只通知一次，
// COMPLETE 为吸收态，之后的任何快照更新都不会再触发该模块的事件。
//
// 首次 Update 仅建立基线不发事件——加载时服务端已持久化的完成状态
// 不应重放副作用，跨会话的恰好一次由铸造/证书记录的唯一键保证。
type Dispatcher struct {
	mu             sync.Mutex
	subs           []func(Event)
	modulePhase    map[uint]ModulePhase
	courseComplete bool
	initialized    bool
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		modulePhase: make(map[uint]ModulePhase),
	}
}

// Subscribe 注册事件回调。回调在 Update 的调用栈内同步执行
func (d *Dispatcher) Subscribe(fn func(Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = append(d.subs, fn)
}

// Update 接收最新快照，与上一次观察到的状态比对，
// 对每条跃迁边沿通知订阅者并返回本次发出的事件。
// triggerScore 为引起本次更新的测验得分（课时完成传 0）
func (d *Dispatcher) Update(c *CourseState, triggerScore int) []Event {
	d.mu.Lock()
	defer d.mu.Unlock()

	var events []Event

	first := !d.initialized
	d.initialized = true

	for i := range c.Modules {
		m := &c.Modules[i]
		phase := m.Phase()
		prev, seen := d.modulePhase[m.ID]

		if first || !seen {
			d.modulePhase[m.ID] = phase
			continue
		}

		// 吸收态：已记录 COMPLETE 的模块不再产生任何事件
		if prev == PhaseComplete {
			continue
		}
		// 阶段只进不退，快照抖动不会导致重复跃迁
		if phase <= prev {
			continue
		}

		if phase == PhaseLessonsDone && prev < PhaseLessonsDone {
			events = append(events, Event{
				Type:        EventQuizzesUnlocked,
				CourseID:    c.ID,
				CourseTitle: c.Title,
				ModuleID:    m.ID,
				ModuleTitle: m.Title,
			})
		}
		if phase == PhaseComplete {
			events = append(events, Event{
				Type:        EventModuleCompleted,
				CourseID:    c.ID,
				CourseTitle: c.Title,
				ModuleID:    m.ID,
				ModuleTitle: m.Title,
				Score:       triggerScore,
			})
		}

		d.modulePhase[m.ID] = phase
	}

	complete := c.Complete()
	if !first && !d.courseComplete && complete {
		events = append(events, Event{
			Type:        EventCourseCompleted,
			CourseID:    c.ID,
			CourseTitle: c.Title,
			Score:       triggerScore,
		})
	}
	if complete {
		d.courseComplete = true
	}

	for _, ev := range events {
		for _, fn := range d.subs {
			fn(ev)
		}
	}
	return events
}
