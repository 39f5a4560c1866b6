package sensitivedata

import (
	"bytes"
	"io"
	"sync"
)

// Writer redacts publisher output line by line before it reaches the
// underlying writer. A partial last line is held back until a newline
// arrives or Flush is called, so a secret split across two writes is
// still caught. Safe for concurrent use (stdout and stderr of one command
// usually share a Writer).
type Writer struct {
	mu         sync.Mutex
	underlying io.Writer
	redactor   *Redactor
	pending    []byte
}

// NewWriter creates a redacting writer. A nil redactor passes data through.
func NewWriter(w io.Writer, r *Redactor) *Writer {
	return &Writer{underlying: w, redactor: r}
}

// Write buffers p and writes every complete line, redacted. It reports
// len(p) on success even when redaction changes the length.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.redactor == nil {
		return w.underlying.Write(p)
	}

	w.pending = append(w.pending, p...)
	idx := bytes.LastIndexByte(w.pending, '\n')
	if idx < 0 {
		return len(p), nil
	}

	complete := w.pending[:idx+1]
	if err := w.emit(complete); err != nil {
		return 0, err
	}
	w.pending = append(w.pending[:0], w.pending[idx+1:]...)
	return len(p), nil
}

// Flush writes any buffered partial line.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.pending) == 0 {
		return nil
	}
	err := w.emit(w.pending)
	w.pending = w.pending[:0]
	return err
}

func (w *Writer) emit(b []byte) error {
	_, err := io.WriteString(w.underlying, w.redactor.Redact(string(b)))
	return err
}
