// Package blink is the demo application: toggle an LED, report the tick
// counter, wait. It runs unchanged on the board and against the simulator.
package blink

import (
	"errors"

	"picotick/core"
	"picotick/protocol"
)

// DefaultHalfPeriodMs is the time the LED spends in each state
const DefaultHalfPeriodMs = 500

// Indicator is anything that can show the loop is alive (an LED pin)
type Indicator func(on bool)

// Options configures the loop
type Options struct {
	Board        string // Reported in tick_config
	HalfPeriodMs uint32 // Delay between toggles
}

// Loop drives the timer and the reporter
type Loop struct {
	timer    *core.TickTimer
	reporter *protocol.Reporter
	led      Indicator
	opts     Options

	seq     uint32
	ledOn   bool
	started bool
}

// NewLoop creates a loop around an initialized timer
func NewLoop(timer *core.TickTimer, reporter *protocol.Reporter, led Indicator, opts Options) (*Loop, error) {
	if !timer.Initialized() {
		return nil, errors.New("timer not initialized")
	}
	if opts.HalfPeriodMs == 0 {
		opts.HalfPeriodMs = DefaultHalfPeriodMs
	}
	return &Loop{
		timer:    timer,
		reporter: reporter,
		led:      led,
		opts:     opts,
	}, nil
}

// Start sends the tick_config frame describing the timer setup
func (l *Loop) Start() {
	cfg := l.timer.Config()
	l.reporter.SendConfig(protocol.TickConfig{
		IntervalMs: cfg.TickIntervalMs,
		ClockHz:    cfg.ClockHz,
		Reload:     l.timer.Reload(),
		Mode:       uint8(cfg.Mode),
		TickInt:    boolByte(cfg.TickInterruptEnabled()),
		Board:      l.opts.Board,
	})
	l.started = true
}

// Step toggles the LED, waits one half period and reports the counter
func (l *Loop) Step() {
	if !l.started {
		l.Start()
	}

	l.ledOn = !l.ledOn
	if l.led != nil {
		l.led(l.ledOn)
	}

	ms := l.opts.HalfPeriodMs
	start := core.Ticks()
	l.timer.DelayMs(ms)
	end := core.Ticks()

	l.seq++
	l.reporter.SendReport(protocol.TickReport{
		Seq:     l.seq,
		Start:   start,
		Ticks:   end,
		DelayMs: ms,
		Waited:  l.timer.Config().TicksFor(ms),
	})
}

// Run loops forever
func (l *Loop) Run() {
	for {
		l.Step()
	}
}

// Steps returns how many iterations have completed
func (l *Loop) Steps() uint32 {
	return l.seq
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
