// Package utils contains small helpers shared by the CLI entrypoint.
package utils

import (
	"io"
	"slices"
	"sync"
)

// DeferredWriter buffers writes until Flush is called. Each Write is kept as
// its own entry so line-oriented writers such as zerolog.ConsoleWriter
// receive one event per call.
type DeferredWriter struct {
	mu      sync.Mutex
	entries [][]byte
}

// Write implements io.Writer.
func (d *DeferredWriter) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.entries = append(d.entries, slices.Clone(p))
	return len(p), nil
}

// Len returns the number of buffered entries.
func (d *DeferredWriter) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// Flush writes every buffered entry to w in order and clears the buffer.
// Entries after a failed write are kept.
func (d *DeferredWriter) Flush(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, entry := range d.entries {
		if _, err := w.Write(entry); err != nil {
			d.entries = d.entries[i:]
			return err
		}
	}
	d.entries = nil
	return nil
}
