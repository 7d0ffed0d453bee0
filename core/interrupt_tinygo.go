//go:build tinygo

package core

import "runtime/interrupt"

// disableInterrupts sets PRIMASK and returns the previous state
func disableInterrupts() interrupt.State {
	return interrupt.Disable()
}

// restoreInterrupts puts PRIMASK back
func restoreInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}

// sysTickVector overrides the weak SysTick_Handler entry in the vector table.
// The NVIC never re-enters an active exception, so no locking is needed here.
//
//export SysTick_Handler
func sysTickVector() {
	Dispatch(ExceptionSysTick)
}
