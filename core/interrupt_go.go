//go:build !tinygo

package core

import "sync"

// State mirrors interrupt.State on regular Go
type State uintptr

// irqMask stands in for PRIMASK. While it is held, Raise cannot preempt.
var irqMask sync.Mutex

// disableInterrupts masks simulated exceptions. Does not nest.
func disableInterrupts() State {
	irqMask.Lock()
	return 0
}

// restoreInterrupts unmasks simulated exceptions
func restoreInterrupts(state State) {
	irqMask.Unlock()
}

// Raise delivers exception exc the way the NVIC would: never while masked,
// and never reentrantly.
func Raise(exc Exception) {
	irqMask.Lock()
	Dispatch(exc)
	irqMask.Unlock()
}
