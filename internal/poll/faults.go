package poll

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/event"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/sampler"
)

// Faults logs and publishes per-category sampling failures. Logs for a
// category that keeps failing are throttled to one per interval.
type Faults struct {
	bus  *event.Bus
	log  *zap.Logger
	now  func() time.Time
	logs map[model.Category]*rate.Sometimes
}

func NewFaults(bus *event.Bus, every time.Duration, now func() time.Time, logger *zap.Logger) *Faults {
	if logger == nil {
		logger = zap.NewNop()
	}
	if every <= 0 {
		every = time.Minute
	}
	if now == nil {
		now = time.Now
	}
	logs := make(map[model.Category]*rate.Sometimes, len(model.Categories))
	for _, cat := range model.Categories {
		logs[cat] = &rate.Sometimes{First: 1, Interval: every}
	}
	return &Faults{bus: bus, log: logger, now: now, logs: logs}
}

// Report records err for cat and publishes a fault event while live.
func (f *Faults) Report(live func() bool, cat model.Category, err error) {
	kind := sampler.FaultKind(err)
	if s, ok := f.logs[cat]; ok {
		s.Do(func() {
			f.log.Warn("sampling failed",
				zap.String("category", string(cat)),
				zap.String("kind", string(kind)),
				zap.Error(err))
		})
	}
	if live() {
		f.bus.Faults.Publish(model.Fault{
			Category:  cat,
			Kind:      kind,
			Message:   err.Error(),
			SampledAt: f.now(),
		})
	}
}
