// Package cli provides utilities for nicer CLI output
package cli

import (
	"bytes"
	"io"

	"github.com/muesli/reflow/indent"
)

const indentWidth = 2

// IndentedWriter indents each line written to it before forwarding the line. Lines are forwarded
// whole (terminated by `\n` or `\r`).
type IndentedWriter struct {
	indent  uint
	forward io.Writer
	buf     bytes.Buffer
}

func NewIndentedWriter(indentLevel int, forward io.Writer) *IndentedWriter {
	return &IndentedWriter{
		indent:  uint(max(indentLevel, 0) * indentWidth),
		forward: forward,
	}
}

// IndentedWriter: io.Writer

func (w *IndentedWriter) Write(b []byte) (n int, err error) {
	for _, c := range b {
		w.buf.WriteByte(c)
		if c != '\n' && c != '\r' {
			continue
		}
		if err = w.flushLine(); err != nil {
			return 0, err
		}
	}
	return len(b), nil
}

// Flush forwards any incomplete line which was written.
func (w *IndentedWriter) Flush() error {
	if w.buf.Len() == 0 {
		return nil
	}
	return w.flushLine()
}

func (w *IndentedWriter) flushLine() error {
	line := w.buf.Bytes()
	_, err := w.forward.Write(indent.Bytes(line, w.indent))
	w.buf.Reset()
	return err
}
