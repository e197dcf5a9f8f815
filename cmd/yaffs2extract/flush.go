package main

import (
	"bufio"
	"io"
)

// flushWriter buffers stdout so a fatal error can flush pending listing
// output before writing its one line to stderr, matching the original's
// fflush(stdout) call inside prt_err.
type flushWriter struct {
	*bufio.Writer
}

func newFlushWriter(w io.Writer) *flushWriter {
	return &flushWriter{Writer: bufio.NewWriter(w)}
}
