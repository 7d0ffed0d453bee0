package core

import "errors"

var (
	ErrZeroInterval  = errors.New("tick interval must be at least 1ms")
	ErrClockTooSlow  = errors.New("clock frequency below 1kHz")
	ErrReloadRange   = errors.New("reload value exceeds 24-bit SysTick range")
	ErrNoTickHandler = errors.New("SysTick handler not registered")
)

// ClockSource selects what drives the SysTick counter
type ClockSource uint8

const (
	ClockCore     ClockSource = iota // Processor clock
	ClockExternal                    // Implementation-defined reference clock
)

// DelayMode selects how DelayMs measures time
type DelayMode uint8

const (
	// ModePolling spins on the COUNTFLAG bit. The exception is only needed
	// if the tick counter should keep running (Config.TickInterrupt).
	ModePolling DelayMode = iota

	// ModeInterrupt lets the SysTick handler advance the tick counter and
	// spins on the counter. Never returns if the exception is not firing.
	ModeInterrupt
)

func (m DelayMode) String() string {
	if m == ModeInterrupt {
		return "interrupt"
	}
	return "polling"
}

// Config describes how the SysTick peripheral is programmed
type Config struct {
	TickIntervalMs uint32      // Time between wraps
	ClockHz        uint32      // Frequency of the selected clock source
	ClockSource    ClockSource // Counter clock
	Mode           DelayMode   // Delay strategy

	// TickInterrupt raises the SysTick exception on every wrap so the tick
	// counter advances. Always on in ModeInterrupt.
	TickInterrupt bool
}

// Defaults match a Raspberry Pi Pico running at 125MHz
const (
	DefaultTickIntervalMs = 10
	DefaultClockHz        = 125000000
)

// DefaultConfig returns a 10ms polling configuration on the core clock
func DefaultConfig() Config {
	return Config{
		TickIntervalMs: DefaultTickIntervalMs,
		ClockHz:        DefaultClockHz,
		ClockSource:    ClockCore,
		Mode:           ModePolling,
	}
}

// ClockTicksPerMs returns the number of counter decrements per millisecond
func (c Config) ClockTicksPerMs() uint32 {
	return c.ClockHz / 1000
}

// ReloadValue returns the RVR value for the configured interval.
// The counter runs from reload down to zero inclusive, hence the -1.
func (c Config) ReloadValue() uint32 {
	return c.TickIntervalMs*c.ClockTicksPerMs() - 1
}

// Validate checks that the interval can be programmed into RVR
func (c Config) Validate() error {
	if c.TickIntervalMs == 0 {
		return ErrZeroInterval
	}
	perMs := c.ClockTicksPerMs()
	if perMs == 0 {
		return ErrClockTooSlow
	}
	if uint64(c.TickIntervalMs)*uint64(perMs)-1 > ReloadMax {
		return ErrReloadRange
	}
	return nil
}

// TicksFor returns how many wraps a delay of ms milliseconds waits for.
// Requests that are not a multiple of the interval are truncated.
func (c Config) TicksFor(ms uint32) uint32 {
	if c.TickIntervalMs == 0 {
		return 0
	}
	return ms / c.TickIntervalMs
}

// TickInterruptEnabled reports whether Init sets TICKINT
func (c Config) TickInterruptEnabled() bool {
	return c.Mode == ModeInterrupt || c.TickInterrupt
}

// csrBase returns the CSR bits requested by the config, with counting off
func (c Config) csrBase() uint32 {
	var csr uint32
	if c.ClockSource == ClockCore {
		csr |= CSRClockSource
	}
	if c.TickInterruptEnabled() {
		csr |= CSRTickInt
	}
	return csr
}
