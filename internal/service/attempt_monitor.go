package service

import (
	"learntwin_backend/internal/config"
	"learntwin_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

// AttemptMonitor 后台巡检进行中的限时答题：
// 先对即将到期的发一次提醒，再把已过期的按记录的答案自动提交
type AttemptMonitor struct {
	Quiz     *QuizService
	interval time.Duration
	warning  time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewAttemptMonitor(quiz *QuizService, cfg *config.Config) *AttemptMonitor {
	return &AttemptMonitor{
		Quiz:     quiz,
		interval: time.Duration(cfg.Quiz.MonitorIntervalSeconds) * time.Second,
		warning:  time.Duration(cfg.Quiz.ExpiryWarningSeconds) * time.Second,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (m *AttemptMonitor) Start() {
	go m.run()
	logger.Log.Info("答题巡检已启动",
		zap.Duration("interval", m.interval),
		zap.Duration("warning", m.warning))
}

func (m *AttemptMonitor) Stop() {
	close(m.stop)
	<-m.done
}

func (m *AttemptMonitor) run() {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.tick(time.Now())
		}
	}
}

// tick 每轮巡检可重复执行：提醒与自动提交都由数据库状态迁移兜底幂等
func (m *AttemptMonitor) tick(now time.Time) {
	warned := m.Quiz.WarnExpiring(now, m.warning)
	closed := m.Quiz.FinalizeExpired(now)
	if warned > 0 || closed > 0 {
		logger.Log.Info("答题巡检完成",
			zap.Int("warned", warned),
			zap.Int("autoClosed", closed))
	}
}
