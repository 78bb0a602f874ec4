package cachesim

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/joeycumines/logiface"
)

// Trace record layout. Each record is exactly 40 bytes, newline included:
// a 16-char hex instruction pointer (ignored), a 16-char hex data address,
// an R/W mode byte (ignored), and a 3-digit zero-padded decimal size.
const (
	RecordSize    = 40
	addressOffset = 17
	addressUpper  = addressOffset + 16
	sizeOffset    = addressUpper + 3
	sizeUpper     = sizeOffset + 3
)

// readerChunkSize is a multiple of RecordSize, sized so chunked reads stay
// aligned with whole records and with typical filesystem block sizes.
const readerChunkSize = RecordSize * 4096

type (
	// Simulator runs a memory-access trace against a layered cache
	// hierarchy, splitting each access at the outermost level's line
	// granularity and propagating misses down the levels.
	//
	// It supports calling Simulate multiple times; counters and the
	// accumulated simulation time carry across calls, which is what makes
	// streaming a trace in chunks work.
	//
	// A Simulator is not safe for concurrent use. Nothing is shared between
	// instances.
	Simulator struct {
		caches  []genericCache
		result  LayeredCacheResult
		simTime time.Duration
		logger  *logiface.Logger[logiface.Event]
	}

	// Option configures a Simulator, see also the package level functions
	// returning values of this type.
	Option interface {
		apply(x *Simulator)
	}

	optionFunc func(x *Simulator)
)

var (
	// compile time assertions

	_ Option = optionFunc(nil)
)

func (x optionFunc) apply(s *Simulator) { x(s) }

// WithLogger attaches a structured logger to the simulator. Events are
// emitted at debug level, on construction and after each Simulate call,
// never per record. A nil logger is equivalent to no logger.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return optionFunc(func(x *Simulator) {
		x.logger = logger
	})
}

// NewSimulator builds one cache per configured level, in order, with zeroed
// counters. The configuration is validated first; an empty level list is an
// error.
func NewSimulator(config *LayeredCacheConfig, options ...Option) (*Simulator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	x := Simulator{
		caches: make([]genericCache, 0, len(config.Caches)),
		result: LayeredCacheResult{
			Caches: make([]CacheResult, 0, len(config.Caches)),
		},
	}
	for i := range config.Caches {
		x.caches = append(x.caches, newGenericCache(&config.Caches[i]))
		x.result.Caches = append(x.result.Caches, CacheResult{Name: config.Caches[i].Name})
	}
	for _, o := range options {
		o.apply(&x)
	}
	x.logger.Debug().
		Int(`levels`, len(x.caches)).
		Log(`simulator initialised`)
	return &x, nil
}

// read dispatches one trace record's access to the hierarchy, splitting it
// into line-aligned sub-accesses at the outermost level's granularity. Deeper
// levels are assumed to have line sizes that are multiples of the outermost,
// so the same aligned address is valid for every level.
func (x *Simulator) read(address uint64, size uint16) {
	stride := x.caches[0].getLineSize()
	aligned := address & x.caches[0].alignmentMask()
	for ; aligned < address+uint64(size); aligned += stride {
		for i := range x.caches {
			if x.caches[i].readAndUpdateLine(aligned) {
				x.result.Caches[i].Hits++
				break
			}
			x.result.Caches[i].Misses++
		}
	}
}

// Simulate consumes a byte buffer of whole trace records, updating the
// internal counters and accumulated simulation time, and returns the live
// result. The buffer length must be a multiple of RecordSize; anything else
// is a programmer error and panics.
//
// Record content is not validated: the parsers are best-effort on ill-formed
// input, so callers needing safety must validate upstream. The buffer is
// borrowed only for the duration of the call, and is read strictly
// sequentially, which is worth advising the OS about when memory-mapping.
//
// The returned pointer aliases internal state shared by subsequent calls.
// MainMemoryAccesses is assigned once per call, at the end; between calls it
// holds the value from the previous completed Simulate.
func (x *Simulator) Simulate(buf []byte) (*LayeredCacheResult, error) {
	if len(buf)%RecordSize != 0 {
		panic(`cachesim: simulator: buffer length must be a multiple of the record size`)
	}
	start := time.Now()
	for i := 0; i < len(buf); i += RecordSize {
		record := buf[i : i+RecordSize]
		address := ParseAddress((*[16]byte)(record[addressOffset:addressUpper]))
		size := ParseSize((*[3]byte)(record[sizeOffset:sizeUpper]))
		x.read(address, size)
	}
	x.simTime += time.Since(start)
	// main memory accesses are whatever misses the last cache
	x.result.MainMemoryAccesses = x.result.Caches[len(x.result.Caches)-1].Misses
	if b := x.logger.Debug(); b.Enabled() {
		b.Int(`records`, len(buf)/RecordSize).
			Dur(`simulation_time`, x.simTime).
			RawJSON(`result`, x.result.AppendJSON(nil)).
			Log(`simulate call complete`)
	}
	return &x.result, nil
}

// SimulateReader streams a trace from r through Simulate in record-aligned
// chunks. It is the portable alternative to handing Simulate a memory-mapped
// buffer, and produces identical results. A trailing partial record is an
// error.
func (x *Simulator) SimulateReader(r io.Reader) (*LayeredCacheResult, error) {
	buf := make([]byte, readerChunkSize)
	for {
		n, err := io.ReadFull(r, buf)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf(`cachesim: simulator: trace read failed: %w`, err)
		}
		if n%RecordSize != 0 {
			return nil, fmt.Errorf(`cachesim: simulator: trace ends with a partial record (%d trailing bytes)`, n%RecordSize)
		}
		if n != 0 {
			if _, err := x.Simulate(buf[:n]); err != nil {
				return nil, err
			}
		}
		if err != nil {
			return &x.result, nil
		}
	}
}

// ExecutionTime is the accumulated wall-clock time spent inside Simulate.
func (x *Simulator) ExecutionTime() time.Duration {
	return x.simTime
}

// UninitialisedLineCounts reports, per level, the number of cache lines never
// filled since construction. Useful when analysing whether a configuration is
// oversized for a workload. O(total lines).
func (x *Simulator) UninitialisedLineCounts() []uint64 {
	counts := make([]uint64, len(x.caches))
	for i := range x.caches {
		counts[i] = x.caches[i].uninitialisedLineCount()
	}
	return counts
}
