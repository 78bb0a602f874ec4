package cachesim

import (
	"fmt"
	"os"
)

// Trace is a trace file's contents, ready to hand to [Simulator.Simulate].
// On unix it is a read-only memory mapping advised for sequential access;
// elsewhere the file is read into memory. Close releases the mapping (or the
// buffer) and must be called once the data is no longer needed.
type Trace struct {
	Data  []byte
	close func() error
}

// OpenTrace opens and maps (or reads) the trace file at path.
func OpenTrace(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf(`cachesim: couldn't open the trace file at path %s: %w`, path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf(`cachesim: couldn't stat the trace file at path %s: %w`, path, err)
	}
	return loadTrace(f, info.Size())
}

func (x *Trace) Close() error {
	x.Data = nil
	if x.close != nil {
		c := x.close
		x.close = nil
		return c()
	}
	return nil
}
