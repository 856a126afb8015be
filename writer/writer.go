// Package writer consumes completed replays from every worker and persists
// them through a pluggable sink, reporting throughput as it goes.
package writer

import (
	"fmt"
	"time"

	"craft/replay"
)

// Sink persists replay records. Write may buffer; Flush forces everything
// buffered out. Neither is retried: a failure terminates the writer.
type Sink interface {
	Write(r *replay.Replay) error
	Flush() error
}

// Run consumes the replay channel until every producer has dropped its
// sender, then flushes the sink. It is the body of the writer goroutine.
func Run(replays <-chan *replay.Replay, sink Sink, logInterval time.Duration) error {
	m := newMeter(logInterval, time.Now())
	for r := range replays {
		if err := sink.Write(r); err != nil {
			return fmt.Errorf("write replay: %w", err)
		}
		m.observe(time.Now(), len(r.Samples))
	}
	if err := sink.Flush(); err != nil {
		return fmt.Errorf("flush sink: %w", err)
	}
	return nil
}
