//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"picotick/core"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWL = timerBase + 0x0C // Raw timer low word
)

var timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))

// GetHardwareTime reads the low 32 bits of the 1MHz microsecond timer
func GetHardwareTime() uint32 {
	return timerRAWL.Get()
}

// checkTicks is how many SysTick periods CheckTickRate measures
const checkTicks = 10

// CheckTickRate times a short delay against the independent 1MHz timer and
// logs the measured tick period. A wrong ClockHz shows up here long before
// anyone notices the LED blinking at the wrong rate.
func CheckTickRate(timer *core.TickTimer) {
	if !core.IsDebugEnabled() {
		return
	}
	ms := checkTicks * timer.TickPeriodMs()
	start := GetHardwareTime()
	timer.DelayMs(ms)
	elapsed := GetHardwareTime() - start

	core.DebugPrintln("[SYSTICK] " + core.Utoa(ms) + "ms delay took " + core.Utoa(elapsed) + "us")
}
