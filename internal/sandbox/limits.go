package sandbox

import (
	"errors"
	"time"
)

// ErrOutputLimit is returned when a bounded writer exceeds its configured cap.
var ErrOutputLimit = errors.New("OUTPUT_LIMIT")

// ErrTimeout is returned by helpers when execution exceeds the wall-time budget.
var ErrTimeout = errors.New("TIMEOUT")

// BoundedBuffer caps the total bytes a script may emit through console
// bindings. Writes past the cap are truncated and reported via Truncated().
// A zero or negative maxKB defaults to 64 KiB.
type BoundedBuffer struct {
	buf       []byte
	capBytes  int
	truncated bool
}

// NewBoundedBuffer creates a new BoundedBuffer with the provided maxKB capacity.
func NewBoundedBuffer(maxKB int) *BoundedBuffer {
	if maxKB <= 0 {
		maxKB = 64
	}
	return &BoundedBuffer{capBytes: maxKB * 1024}
}

// Write appends p up to the remaining capacity. If the write is truncated,
// the portion that fit is kept and ErrOutputLimit is returned.
func (b *BoundedBuffer) Write(p []byte) (int, error) {
	remaining := b.capBytes - len(b.buf)
	if remaining <= 0 {
		b.truncated = true
		return 0, ErrOutputLimit
	}
	if len(p) > remaining {
		b.buf = append(b.buf, p[:remaining]...)
		b.truncated = true
		return remaining, ErrOutputLimit
	}
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// WriteString is a convenience wrapper over Write.
func (b *BoundedBuffer) WriteString(s string) (int, error) {
	return b.Write([]byte(s))
}

// String returns the accumulated output (possibly truncated).
func (b *BoundedBuffer) String() string { return string(b.buf) }

// Len returns the number of bytes accumulated so far.
func (b *BoundedBuffer) Len() int { return len(b.buf) }

// Truncated reports whether any write exceeded the cap.
func (b *BoundedBuffer) Truncated() bool { return b.truncated }

// Reset clears the buffer for reuse between executions.
func (b *BoundedBuffer) Reset() {
	b.buf = b.buf[:0]
	b.truncated = false
}

// Interrupter is satisfied by script engines that can be stopped from
// another goroutine (goja's Runtime.Interrupt).
type Interrupter interface {
	Interrupt(v any)
	ClearInterrupt()
}

// GuardWall interrupts vm if the returned stop function is not called
// within wallMS milliseconds. Callers must invoke stop() once execution
// finishes, on every path.
func GuardWall(vm Interrupter, wallMS int) (stop func()) {
	if wallMS <= 0 {
		wallMS = 1000
	}
	timer := time.AfterFunc(time.Duration(wallMS)*time.Millisecond, func() {
		vm.Interrupt(ErrTimeout)
	})
	return func() {
		timer.Stop()
		vm.ClearInterrupt()
	}
}
