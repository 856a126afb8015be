package writer

import (
	"time"

	"github.com/rs/zerolog/log"
)

// meter tracks replay throughput and emits one log line per interval of
// wall-clock time. A lull in arrivals simply delays the next line; nothing
// fires on a timer.
type meter struct {
	start    time.Time
	next     time.Time
	interval time.Duration
	replays  int
	samples  int
}

func newMeter(interval time.Duration, now time.Time) *meter {
	return &meter{
		start:    now,
		next:     now.Add(interval),
		interval: interval,
	}
}

// observe records one written replay and reports whether it emitted a
// throughput line.
func (m *meter) observe(now time.Time, samples int) bool {
	m.replays++
	m.samples += samples

	if now.Before(m.next) {
		return false
	}
	secs := now.Sub(m.start).Seconds()
	log.Info().
		Float64("secs", secs).
		Int("replays", m.replays).
		Int("samples", m.samples).
		Float64("replays_per_sec", float64(m.replays)/secs).
		Float64("samples_per_sec", float64(m.samples)/secs).
		Msg("replay throughput")
	// Skip the intervals a lull left behind so only one line fires per
	// interval of wall-clock time.
	for !m.next.After(now) {
		m.next = m.next.Add(m.interval)
	}
	return true
}
