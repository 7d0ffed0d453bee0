package core

import (
	"strings"
	"sync/atomic"
	"testing"
)

func TestInitWriteSequence(t *testing.T) {
	bus := &countingBus{}
	timer := NewWithBus(bus)

	if err := timer.Init(DefaultConfig()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	expectedRegs := []uintptr{
		uintptr(ControlStatus), uintptr(Reload), uintptr(CurrentValue), uintptr(ControlStatus),
	}
	expectedVals := []uint32{
		CSRClockSource, 1249999, 1249999, CSRClockSource | CSREnable,
	}

	if len(bus.stores) != len(expectedRegs) {
		t.Fatalf("Init issued %d stores, expected %d", len(bus.stores), len(expectedRegs))
	}
	for i := range expectedRegs {
		if bus.stores[i] != expectedRegs[i] || bus.values[i] != expectedVals[i] {
			t.Errorf("Store %d: %s=0x%X, expected %s=0x%X", i,
				Register(bus.stores[i]), bus.values[i], Register(expectedRegs[i]), expectedVals[i])
		}
	}
	if !timer.Initialized() || timer.TickPeriodMs() != 10 {
		t.Errorf("Timer state after Init: initialized=%v period=%d", timer.Initialized(), timer.TickPeriodMs())
	}
}

func TestInitInterruptModeNeedsHandler(t *testing.T) {
	SetHandler(ExceptionSysTick, nil)
	bus := &countingBus{}
	timer := NewWithBus(bus)

	cfg := DefaultConfig()
	cfg.Mode = ModeInterrupt

	if err := timer.Init(cfg); err != ErrNoTickHandler {
		t.Fatalf("Init without handler = %v, expected ErrNoTickHandler", err)
	}
	if len(bus.stores) != 0 {
		t.Errorf("Failed Init touched the peripheral: %v", bus.stores)
	}

	InstallTickHandler()
	defer SetHandler(ExceptionSysTick, nil)

	if err := timer.Init(cfg); err != nil {
		t.Fatalf("Init with handler failed: %v", err)
	}
	if got := bus.values[0]; got != CSRClockSource|CSRTickInt {
		t.Errorf("First CSR write 0x%X, expected TICKINT|CLKSOURCE with counting off", got)
	}
	if got := bus.values[3]; got != CSRClockSource|CSRTickInt|CSREnable {
		t.Errorf("Final CSR write 0x%X", got)
	}
}

func TestInitPollingWithTickInterrupt(t *testing.T) {
	SetHandler(ExceptionSysTick, nil)
	bus := &countingBus{}
	timer := NewWithBus(bus)

	cfg := DefaultConfig()
	cfg.TickInterrupt = true

	if err := timer.Init(cfg); err != ErrNoTickHandler {
		t.Fatalf("Init without handler = %v, expected ErrNoTickHandler", err)
	}

	InstallTickHandler()
	defer SetHandler(ExceptionSysTick, nil)

	if err := timer.Init(cfg); err != nil {
		t.Fatalf("Init with handler failed: %v", err)
	}
	if got := bus.values[len(bus.values)-1]; got != CSRClockSource|CSRTickInt|CSREnable {
		t.Errorf("Final CSR write 0x%X, expected TICKINT set in polling mode", got)
	}
	if timer.Config().Mode != ModePolling {
		t.Errorf("Mode changed to %s", timer.Config().Mode)
	}
}

func TestInitRejectsInvalidConfig(t *testing.T) {
	bus := &countingBus{}
	timer := NewWithBus(bus)

	if err := timer.Init(Config{TickIntervalMs: 0, ClockHz: DefaultClockHz}); err != ErrZeroInterval {
		t.Errorf("Init(0ms) = %v, expected ErrZeroInterval", err)
	}
	if timer.Initialized() {
		t.Error("Timer marked initialized after failed Init")
	}
	if len(bus.stores) != 0 {
		t.Errorf("Failed Init touched the peripheral: %v", bus.stores)
	}
}

func TestNewBindsOnce(t *testing.T) {
	atomic.StoreUint32(&bound, 0)
	defer atomic.StoreUint32(&bound, 0)

	first := New()
	if first == nil {
		t.Fatal("New returned nil")
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("Second New did not panic")
		}
	}()
	New()
}

func TestCounterAndInterruptBits(t *testing.T) {
	bus := &countingBus{}
	timer := NewWithBus(bus)
	if err := timer.Init(DefaultConfig()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	csr := func() uint32 { return bus.MemoryBus.Load(uintptr(ControlStatus)) }

	timer.DisableCounter()
	if csr()&CSREnable != 0 {
		t.Error("DisableCounter left ENABLE set")
	}
	timer.EnableInterrupt()
	if csr()&CSRTickInt == 0 {
		t.Error("EnableInterrupt did not set TICKINT")
	}
	timer.EnableCounter()
	if csr() != CSRClockSource|CSRTickInt|CSREnable {
		t.Errorf("CSR = 0x%X", csr())
	}
	timer.DisableInterrupt()
	if csr() != CSRClockSource|CSREnable {
		t.Errorf("DisableInterrupt changed other bits: CSR = 0x%X", csr())
	}

	timer.SetReload(124999)
	if timer.Reload() != 124999 {
		t.Errorf("Reload() = %d after SetReload", timer.Reload())
	}
}

func TestCalibrationDecode(t *testing.T) {
	bus := &MemoryBus{}
	bus.Store(uintptr(Calibration), CalibNoRef|CalibSkew|1249999)
	timer := NewWithBus(bus)

	cal := timer.Calibration()
	if cal.TenMs != 1249999 || !cal.Skew || !cal.NoRef {
		t.Errorf("Calibration decoded as %+v", cal)
	}
}

func TestDumpRegistersSkipsCSR(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	SetDebugEnabled(true)
	defer SetDebugEnabled(false)

	bus := &countingBus{}
	timer := NewWithBus(bus)
	bus.MemoryBus.Store(uintptr(Reload), 1249999)

	timer.DumpRegisters()

	for _, off := range bus.loads {
		if off == uintptr(ControlStatus) {
			t.Error("DumpRegisters read CSR and would consume COUNTFLAG")
		}
	}
	if len(lines) != 1 || !strings.Contains(lines[0], "RVR=0x001312CF") {
		t.Errorf("Unexpected dump output: %v", lines)
	}
}

func TestInitLogsReload(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	SetDebugEnabled(true)
	defer SetDebugEnabled(false)

	timer := NewWithBus(&MemoryBus{})
	if err := timer.Init(DefaultConfig()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if len(lines) != 1 || !strings.Contains(lines[0], "reload=1249999") {
		t.Errorf("Unexpected init log: %v", lines)
	}
}
