package sampler

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/Dicklesworthstone/pulse_resource_monitor/internal/model"
)

// SyntheticCPU is a development stand-in that produces a plausible CPU curve
// (slow wave plus gaussian noise around a drifting base load). Every reading
// it returns is labeled Synthetic. It is never enabled by default.
type SyntheticCPU struct {
	mu       sync.Mutex
	rng      *rand.Rand
	baseLoad float64
}

func NewSyntheticCPU(seed int64) *SyntheticCPU {
	return &SyntheticCPU{rng: rand.New(rand.NewSource(seed)), baseLoad: 30}
}

// Reading returns the generated value for now, clamped to [10,90].
func (s *SyntheticCPU) Reading(now time.Time) model.CPUReading {
	s.mu.Lock()
	defer s.mu.Unlock()
	seconds := now.Unix() % 60
	wave := math.Sin(float64(seconds)*0.1) * 20
	noise := s.rng.NormFloat64() * 8
	v := clampFloat(s.baseLoad+wave+noise, 10, 90)
	// The base load drifts on quarter-minute boundaries.
	if seconds%15 == 0 {
		s.baseLoad = float64(20 + s.rng.Intn(31))
	}
	return model.CPUReading{Percent: v, Synthetic: true}
}
