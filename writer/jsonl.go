package writer

import (
	"bufio"
	"fmt"
	"os"

	"craft/replay"
)

// JSONLSink appends one JSON-encoded replay per line to a file. It is the
// storage backend for runs without a database.
type JSONLSink struct {
	f *os.File
	w *bufio.Writer
}

func NewJSONLSink(path string) (*JSONLSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay file: %w", err)
	}
	return &JSONLSink{f: f, w: bufio.NewWriter(f)}, nil
}

func (s *JSONLSink) Write(r *replay.Replay) error {
	data, err := replay.Encode(r)
	if err != nil {
		return fmt.Errorf("failed to encode replay: %w", err)
	}
	if _, err := s.w.Write(data); err != nil {
		return fmt.Errorf("failed to write replay: %w", err)
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write replay: %w", err)
	}
	return nil
}

func (s *JSONLSink) Flush() error {
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush replay file: %w", err)
	}
	return s.f.Sync()
}

// Close flushes and closes the underlying file.
func (s *JSONLSink) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	return s.f.Close()
}
