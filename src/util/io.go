package util

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Writer buffers formatted text in a strings.Builder and flushes it to an
// underlying *bufio.Writer on demand. The VM's PRINT instruction and the
// driver's debug trace both go through one, so output formatting stays in
// one place regardless of whether the destination is stdout or a file.
type Writer struct {
	sb strings.Builder
	w  *bufio.Writer
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewWriter returns a Writer flushing to f. If f is nil, stdout is used.
func NewWriter(f *os.File) *Writer {
	if f == nil {
		f = os.Stdout
	}
	return &Writer{w: bufio.NewWriter(f)}
}

// Write writes a format string to the Writer's buffer.
func (w *Writer) Write(format string, args ...interface{}) {
	w.sb.WriteString(fmt.Sprintf(format, args...))
}

// WriteString writes a plain string to the Writer's buffer.
func (w *Writer) WriteString(s string) {
	w.sb.WriteString(s)
}

// Flush empties the Writer's buffer to the underlying output.
func (w *Writer) Flush() error {
	if _, err := w.w.WriteString(w.sb.String()); err != nil {
		return err
	}
	w.sb.Reset()
	return w.w.Flush()
}

// ReadSource reads source code from file or stdin.
// If path is non-empty the file is opened and read. Otherwise the function
// waits briefly for input on stdin, and returns an error if none arrives.
func ReadSource(path string) (string, error) {
	if len(path) > 0 {
		b, err := os.ReadFile(path)
		return string(b), err
	}

	c := make(chan string)
	cerr := make(chan error)

	go func(c chan string, cerr chan error) {
		defer close(c)
		defer close(cerr)
		reader := bufio.NewReader(os.Stdin)
		text, err := reader.ReadString(0)
		if err == nil || (err == io.EOF && text != "") {
			c <- text
		} else {
			cerr <- err
		}
	}(c, cerr)

	select {
	case <-time.After(500 * time.Millisecond):
		return "", errors.New("expected input from stdin, got none")
	case s := <-c:
		return s, nil
	case err := <-cerr:
		return "", err
	}
}
