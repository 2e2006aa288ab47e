package viewsession

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SweepSpec runs the memory sweep once a minute.
const SweepSpec = "@every 1m"

// StartSweeper schedules m.Sweep on a cron runner. Stop the returned runner
// on shutdown.
func StartSweeper(m *MemoryStore, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(SweepSpec, func() {
		if n := m.Sweep(); n > 0 {
			log.Debug("만료된 뷰 세션 정리", zap.Int("removed", n), zap.Int("remaining", m.Len()))
		}
	}); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
