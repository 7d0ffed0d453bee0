package core

import "sync/atomic"

// bound is set once the fixed SysTick address has an owner
var bound uint32

// TickTimer owns the SysTick register block and the delay built on it
type TickTimer struct {
	regs        RegisterBlock
	cfg         Config
	initialized bool
	spin        func()
}

// New binds to the SysTick peripheral at SysTickBase. Only one binding may
// exist for the life of the program; a second call panics.
func New() *TickTimer {
	if !atomic.CompareAndSwapUint32(&bound, 0, 1) {
		panic("systick: peripheral already bound")
	}
	return NewWithBus(hardwareBus())
}

// NewWithBus binds to an arbitrary bus (simulator, test double).
// It does not claim the hardware singleton.
func NewWithBus(bus Bus) *TickTimer {
	return &TickTimer{
		regs: NewRegisterBlock(bus),
		cfg:  DefaultConfig(),
	}
}

// Init programs the peripheral and starts it counting:
// stop and select clock source, write reload, write current value, enable.
// If TICKINT is requested the SysTick vector must already have a handler.
func (t *TickTimer) Init(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.TickInterruptEnabled() && !HandlerRegistered(ExceptionSysTick) {
		return ErrNoTickHandler
	}

	reload := cfg.ReloadValue()
	csr := cfg.csrBase()

	// Stop SysTick, clean slate for TICKINT and CLKSOURCE
	t.regs.Write(ControlStatus, csr)
	t.regs.Write(Reload, reload)
	// Any write clears CVR, so the first period starts from a full reload
	t.regs.Write(CurrentValue, reload)
	t.regs.Write(ControlStatus, csr|CSREnable)

	t.cfg = cfg
	t.initialized = true

	RecordTiming(EvtInit, uint8(cfg.Mode), Ticks(), reload, cfg.TickIntervalMs)
	tickint := "off"
	if cfg.TickInterruptEnabled() {
		tickint = "on"
	}
	DebugPrintln("[SYSTICK] init interval=" + Utoa(cfg.TickIntervalMs) +
		"ms reload=" + Utoa(reload) + " mode=" + cfg.Mode.String() + " tickint=" + tickint)
	return nil
}

// HasWrapped reports whether the counter reached zero since the last read of
// the control/status register. The read clears COUNTFLAG, so a second call
// without an intervening wrap returns false.
func (t *TickTimer) HasWrapped() bool {
	return t.regs.Read(ControlStatus)&CSRCountFlag != 0
}

// SetReload writes RVR. The new value takes effect at the next wrap.
func (t *TickTimer) SetReload(value uint32) {
	t.regs.Write(Reload, value)
	RecordTiming(EvtReload, 0, Ticks(), value, 0)
}

// EnableCounter, DisableCounter, EnableInterrupt and DisableInterrupt
// read-modify-write CSR. The read clears a pending COUNTFLAG, so calling
// any of them while a polling DelayMs runs loses that wrap.
func (t *TickTimer) EnableCounter() {
	t.regs.Modify(ControlStatus, func(v uint32) uint32 { return v | CSREnable })
}

// DisableCounter stops the countdown. Consumes COUNTFLAG.
func (t *TickTimer) DisableCounter() {
	t.regs.Modify(ControlStatus, func(v uint32) uint32 { return v &^ CSREnable })
}

// EnableInterrupt sets TICKINT. Consumes COUNTFLAG.
func (t *TickTimer) EnableInterrupt() {
	t.regs.Modify(ControlStatus, func(v uint32) uint32 { return v | CSRTickInt })
}

// DisableInterrupt clears TICKINT. Consumes COUNTFLAG.
func (t *TickTimer) DisableInterrupt() {
	t.regs.Modify(ControlStatus, func(v uint32) uint32 { return v &^ CSRTickInt })
}

// Reload returns the programmed RVR value
func (t *TickTimer) Reload() uint32 {
	return t.regs.Read(Reload)
}

// CurrentValue returns the live counter value
func (t *TickTimer) CurrentValue() uint32 {
	return t.regs.Read(CurrentValue)
}

// CalibrationInfo is the decoded SYST_CALIB register
type CalibrationInfo struct {
	TenMs uint32 // Reload value for 10ms, 0 if unknown
	Skew  bool   // TenMs is not exact
	NoRef bool   // No external reference clock
}

// Calibration decodes SYST_CALIB
func (t *TickTimer) Calibration() CalibrationInfo {
	v := t.regs.Read(Calibration)
	return CalibrationInfo{
		TenMs: v & CalibTenMsMask,
		Skew:  v&CalibSkew != 0,
		NoRef: v&CalibNoRef != 0,
	}
}

// Config returns the configuration applied by the last Init
func (t *TickTimer) Config() Config {
	return t.cfg
}

// Initialized reports whether Init has succeeded at least once
func (t *TickTimer) Initialized() bool {
	return t.initialized
}

// TickPeriodMs returns the time between wraps
func (t *TickTimer) TickPeriodMs() uint32 {
	return t.cfg.TickIntervalMs
}

// SetSpinHook installs fn to run once per busy-wait iteration of DelayMs,
// e.g. to feed a watchdog. fn must not read the control/status register.
func (t *TickTimer) SetSpinHook(fn func()) {
	t.spin = fn
}

// DumpRegisters prints RVR, CVR and CALIB through the debug writer. CSR is
// skipped because reading it would consume a pending COUNTFLAG.
func (t *TickTimer) DumpRegisters() {
	DebugPrintln("[SYSTICK] RVR=" + hex32(t.regs.Read(Reload)) +
		" CVR=" + hex32(t.regs.Read(CurrentValue)) +
		" CALIB=" + hex32(t.regs.Read(Calibration)))
}
