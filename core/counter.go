package core

import "sync/atomic"

// TickMax is the last value the tick counter holds before it resets to 0
const TickMax = 0xFFFFFFFF

// tickCount is written only by SysTickHandler and read everywhere else.
// A single aligned 32-bit word, so loads and stores never tear.
var tickCount uint32

// Ticks returns the number of SysTick wraps seen by the handler, modulo 2^32
func Ticks() uint32 {
	return atomic.LoadUint32(&tickCount)
}

// TicksSince returns how many ticks elapsed since start, correct across a
// counter wrap as long as fewer than 2^32 ticks passed.
func TicksSince(start uint32) uint32 {
	return Ticks() - start
}

// ResetTicks zeroes the counter. Only for start-up and tests: it races with
// the handler if the SysTick exception is enabled.
func ResetTicks() {
	atomic.StoreUint32(&tickCount, 0)
}

// SysTickHandler advances the tick counter by one, resetting to zero after
// TickMax. It must stay bounded-time: no logging, no blocking.
func SysTickHandler() {
	n := atomic.LoadUint32(&tickCount)
	if n == TickMax {
		n = 0
	} else {
		n++
	}
	atomic.StoreUint32(&tickCount, n)
}

// DefaultHandler absorbs any exception without a dedicated handler
func DefaultHandler() {}
