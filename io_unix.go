//go:build unix

package cachesim

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// loadTrace memory-maps the file read-only and advises the kernel that
// access will be sequential, which measurably improves read-ahead on large
// traces. An empty file maps to an empty buffer without touching mmap, which
// rejects zero-length mappings.
func loadTrace(f *os.File, size int64) (*Trace, error) {
	if size == 0 {
		return &Trace{Data: []byte{}}, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf(`cachesim: couldn't memory map the trace file: %w`, err)
	}
	if err := unix.Madvise(data, unix.MADV_SEQUENTIAL); err != nil {
		_ = unix.Munmap(data)
		return nil, fmt.Errorf(`cachesim: couldn't advise sequential access on the trace mapping: %w`, err)
	}
	return &Trace{
		Data:  data,
		close: func() error { return unix.Munmap(data) },
	}, nil
}
