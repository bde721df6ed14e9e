// Package logutil configures the standard logger.
package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

const (
	maxSizeBytes = 10 * 1024 * 1024 // 10 MB
	maxArchives  = 3
)

// Setup sets the standard log flags and, when enableFileLogging is true,
// sends log output to path with size based rotation (10MB, max 3 archives).
// Otherwise the log goes to stderr. The returned closer releases the file.
func Setup(enableFileLogging bool, path string) io.Closer {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if !enableFileLogging {
		log.SetOutput(os.Stderr)
		return nopCloser{}
	}

	w, err := NewRotatingWriter(path, maxSizeBytes, maxArchives)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		return nopCloser{}
	}
	log.SetOutput(w)
	return w
}

// RotatingWriter appends to a file and rotates it to path.1, path.2, ...
// once it would grow past its size limit.
type RotatingWriter struct {
	mu       sync.Mutex
	path     string
	maxSize  int64
	archives int
	f        *os.File // nil while the file cannot be reopened

	fallback io.Writer // receives output while f is nil
}

// NewRotatingWriter opens path for appending, rotating first if it is
// already over maxSize.
func NewRotatingWriter(path string, maxSize int64, archives int) (*RotatingWriter, error) {
	w := &RotatingWriter{path: path, maxSize: maxSize, archives: archives, fallback: os.Stderr}
	w.rotateIfNeeded(0)
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

// Write appends p to the log file. If the file cannot be reopened after a
// rotation, output goes to stderr until a later write reopens it.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		if err := w.open(); err != nil {
			return w.fallback.Write(p)
		}
		fmt.Fprintf(w.fallback, "Log file %s reopened\n", w.path)
	}
	if st, err := w.f.Stat(); err == nil && st.Size()+int64(len(p)) > w.maxSize {
		_ = w.f.Close()
		w.f = nil
		w.rotateIfNeeded(int64(len(p)))
		if err := w.open(); err != nil {
			fmt.Fprintf(w.fallback, "Failed to reopen log file, logging to stderr: %v\n", err)
			return w.fallback.Write(p)
		}
	}
	return w.f.Write(p)
}

// Close closes the current file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	w.f = f
	return nil
}

// rotateIfNeeded shifts archives when the current file plus incoming bytes
// exceeds the limit. The oldest archive is discarded.
func (w *RotatingWriter) rotateIfNeeded(incoming int64) {
	st, err := os.Stat(w.path)
	if err != nil || st.Size() == 0 || st.Size()+incoming <= w.maxSize {
		return
	}
	_ = os.Remove(w.archiveName(w.archives))
	for i := w.archives - 1; i >= 1; i-- {
		_ = os.Rename(w.archiveName(i), w.archiveName(i+1))
	}
	_ = os.Rename(w.path, w.archiveName(1))
}

func (w *RotatingWriter) archiveName(n int) string { return fmt.Sprintf("%s.%d", w.path, n) }

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
