package logging

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter fans every write out to all Writers. A failing writer does
// not stop the others; the errors are combined.
type CombinedWriter struct {
	Writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{Writers: writers}
}

// Write reports len(p) when every writer succeeded. Otherwise n is the most
// any single writer accepted, so it never exceeds len(p).
func (cw *CombinedWriter) Write(p []byte) (n int, err error) {
	for _, w := range cw.Writers {
		written, werr := w.Write(p)
		if werr != nil {
			err = multierr.Append(err, werr)
		}
		n = max(n, min(written, len(p)))
	}
	if err == nil {
		return len(p), nil
	}
	return n, err
}
