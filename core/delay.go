package core

// DelayMs busy-waits for ms milliseconds using the strategy chosen at Init.
// The wait is ms / TickPeriodMs whole ticks: requests that are not a
// multiple of the period come out short. There is no cancellation.
//
// In ModeInterrupt this never returns if the SysTick exception cannot run
// (interrupts masked, called from another handler, vector not installed).
func (t *TickTimer) DelayMs(ms uint32) {
	ticks := t.cfg.TicksFor(ms)
	start := Ticks()
	RecordTiming(EvtDelayStart, uint8(t.cfg.Mode), start, ms, ticks)

	if t.cfg.Mode == ModeInterrupt {
		t.waitTicks(start, ticks)
	} else {
		t.pollWraps(ticks)
	}

	RecordTiming(EvtDelayDone, uint8(t.cfg.Mode), Ticks(), ms, ticks)
}

// pollWraps consumes n COUNTFLAG events
func (t *TickTimer) pollWraps(n uint32) {
	for n > 0 {
		if t.HasWrapped() {
			n--
		}
		if t.spin != nil {
			t.spin()
		}
	}
}

// waitTicks spins until the shared counter is n ticks past start.
// The subtraction is modulo 2^32 so a counter reset mid-wait is harmless.
func (t *TickTimer) waitTicks(start, n uint32) {
	for TicksSince(start) < n {
		if t.spin != nil {
			t.spin()
		}
	}
}
