//go:build !unix

package cachesim

import (
	"fmt"
	"io"
	"os"
)

// loadTrace reads the whole file into memory. Memory mapping saves a copy on
// unix, but the simulator only needs a contiguous byte buffer, so a plain
// read keeps everything else portable.
func loadTrace(f *os.File, size int64) (*Trace, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, fmt.Errorf(`cachesim: couldn't read the trace file: %w`, err)
	}
	return &Trace{Data: data}, nil
}
