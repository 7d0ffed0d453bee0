//go:build !tinygo

// Package sim models the Cortex-M SysTick peripheral closely enough to run
// the timer core on a regular Go host.
package sim

import (
	"runtime"
	"sync"

	"picotick/core"
)

// Write records one store issued to the peripheral
type Write struct {
	Reg   core.Register
	Value uint32
}

// SysTick is a cycle-level model of the SysTick block. It implements
// core.Bus. Hardware side effects modelled:
//   - reading CSR clears COUNTFLAG
//   - writing CVR clears the counter and COUNTFLAG
//   - the counter reloads one clock after reaching zero
//   - a 1->0 transition sets COUNTFLAG and, with TICKINT, raises SysTick
type SysTick struct {
	mu sync.Mutex

	csr   uint32
	rvr   uint32
	cvr   uint32
	calib uint32

	raise    func(core.Exception)
	autoStep uint32

	writes        []Write
	loads         uint64
	wraps         uint64
	flagsConsumed uint64
}

// NewSysTick returns a stopped peripheral with the given CALIB contents.
// Exceptions are delivered through core.Raise.
func NewSysTick(calib uint32) *SysTick {
	return &SysTick{
		calib: calib,
		raise: core.Raise,
	}
}

// SetExceptionSink replaces the function used to deliver SysTick exceptions
func (s *SysTick) SetExceptionSink(fn func(core.Exception)) {
	s.mu.Lock()
	s.raise = fn
	s.mu.Unlock()
}

// SetAutoStep makes every CSR load advance the model by cycles, so a
// polling loop makes progress without a separate clock goroutine.
func (s *SysTick) SetAutoStep(cycles uint32) {
	s.mu.Lock()
	s.autoStep = cycles
	s.mu.Unlock()
}

func (s *SysTick) Load(offset uintptr) uint32 {
	s.mu.Lock()
	s.loads++
	var v uint32
	step := uint32(0)
	switch core.Register(offset) {
	case core.ControlStatus:
		v = s.csr
		if v&core.CSRCountFlag != 0 {
			s.flagsConsumed++
			s.csr &^= core.CSRCountFlag
		}
		step = s.autoStep
	case core.Reload:
		v = s.rvr
	case core.CurrentValue:
		v = s.cvr
	case core.Calibration:
		v = s.calib
	}
	s.mu.Unlock()

	if step > 0 {
		s.Advance(step)
	}
	return v
}

func (s *SysTick) Store(offset uintptr, value uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg := core.Register(offset)
	s.writes = append(s.writes, Write{Reg: reg, Value: value})

	switch reg {
	case core.ControlStatus:
		const writable = core.CSREnable | core.CSRTickInt | core.CSRClockSource
		s.csr = (s.csr &^ writable) | (value & writable)
	case core.Reload:
		s.rvr = value & core.ReloadMax
	case core.CurrentValue:
		s.cvr = 0
		s.csr &^= core.CSRCountFlag
	case core.Calibration:
		// read-only
	}
}

// Advance runs the counter for the given number of clock cycles and
// delivers one SysTick exception per wrap when TICKINT is set.
func (s *SysTick) Advance(cycles uint32) {
	s.mu.Lock()
	pending := 0
	for cycles > 0 && s.csr&core.CSREnable != 0 {
		if s.cvr == 0 {
			s.cvr = s.rvr
			cycles--
			if s.cvr == 0 {
				// RVR of zero stops the counter after the next wrap
				break
			}
			continue
		}
		if cycles < s.cvr {
			s.cvr -= cycles
			break
		}
		cycles -= s.cvr
		s.cvr = 0
		s.wraps++
		s.csr |= core.CSRCountFlag
		if s.csr&core.CSRTickInt != 0 {
			pending++
		}
	}
	raise := s.raise
	s.mu.Unlock()

	for ; pending > 0 && raise != nil; pending-- {
		raise(core.ExceptionSysTick)
	}
}

// AdvancePeriods runs n full reload periods (RVR+1 cycles each)
func (s *SysTick) AdvancePeriods(n int) {
	s.mu.Lock()
	period := s.rvr + 1
	s.mu.Unlock()
	for i := 0; i < n; i++ {
		s.Advance(period)
	}
}

// Run advances the model by step cycles per iteration until stop is closed
func (s *SysTick) Run(stop <-chan struct{}, step uint32) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		s.Advance(step)
		runtime.Gosched()
	}
}

// Writes returns a copy of every store issued since the last ResetTrace
func (s *SysTick) Writes() []Write {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Write, len(s.writes))
	copy(out, s.writes)
	return out
}

// LastWrite returns the most recent value stored to reg
func (s *SysTick) LastWrite(reg core.Register) (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.writes) - 1; i >= 0; i-- {
		if s.writes[i].Reg == reg {
			return s.writes[i].Value, true
		}
	}
	return 0, false
}

// Wraps returns how many times the counter reached zero
func (s *SysTick) Wraps() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wraps
}

// FlagsConsumed returns how many CSR reads returned COUNTFLAG set
func (s *SysTick) FlagsConsumed() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flagsConsumed
}

// Loads returns the number of bus reads issued
func (s *SysTick) Loads() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

// ResetTrace clears the write log and the observation counters
func (s *SysTick) ResetTrace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = nil
	s.loads = 0
	s.wraps = 0
	s.flagsConsumed = 0
}
