package core

import "testing"

// countingBus records every access so tests can check one access per call
type countingBus struct {
	MemoryBus
	loads  []uintptr
	stores []uintptr
	values []uint32
}

func (c *countingBus) Load(offset uintptr) uint32 {
	c.loads = append(c.loads, offset)
	return c.MemoryBus.Load(offset)
}

func (c *countingBus) Store(offset uintptr, value uint32) {
	c.stores = append(c.stores, offset)
	c.values = append(c.values, value)
	c.MemoryBus.Store(offset, value)
}

func TestRegisterOffsets(t *testing.T) {
	// Four consecutive 32-bit words starting at SysTickBase
	regs := []Register{ControlStatus, Reload, CurrentValue, Calibration}
	for i, r := range regs {
		if uintptr(r) != uintptr(i*4) {
			t.Errorf("%s at offset %d, expected %d", r, r, i*4)
		}
	}
	if SysTickBase != 0xE000E010 {
		t.Errorf("SysTickBase = 0x%X", SysTickBase)
	}
}

func TestControlStatusBits(t *testing.T) {
	if CSREnable != 1 || CSRTickInt != 2 || CSRClockSource != 4 || CSRCountFlag != 0x10000 {
		t.Errorf("CSR bit layout wrong: %X %X %X %X", CSREnable, CSRTickInt, CSRClockSource, CSRCountFlag)
	}
}

func TestRegisterBlockReadWrite(t *testing.T) {
	bus := &countingBus{}
	block := NewRegisterBlock(bus)

	block.Write(Reload, 1249999)
	if got := block.Read(Reload); got != 1249999 {
		t.Errorf("Read(Reload) = %d, expected 1249999", got)
	}

	if len(bus.loads) != 1 || len(bus.stores) != 1 {
		t.Errorf("Expected 1 load and 1 store, got %d and %d", len(bus.loads), len(bus.stores))
	}
}

func TestRegisterBlockModify(t *testing.T) {
	bus := &countingBus{}
	block := NewRegisterBlock(bus)

	block.Write(ControlStatus, CSRClockSource)
	bus.loads, bus.stores = nil, nil

	block.Modify(ControlStatus, func(v uint32) uint32 { return v | CSREnable })

	if got := block.Read(ControlStatus); got != CSRClockSource|CSREnable {
		t.Errorf("CSR = 0x%X after Modify", got)
	}
	// Modify is exactly one load and one store, plus the Read above
	if len(bus.loads) != 2 || len(bus.stores) != 1 {
		t.Errorf("Expected 2 loads and 1 store, got %d and %d", len(bus.loads), len(bus.stores))
	}
}

func TestCalibrationReadOnly(t *testing.T) {
	bus := &countingBus{}
	bus.MemoryBus.Store(uintptr(Calibration), 0x40000000|1249999)
	block := NewRegisterBlock(bus)

	block.Write(Calibration, 0)
	block.Modify(Calibration, func(uint32) uint32 { return 0 })

	if len(bus.stores) != 0 {
		t.Errorf("Calibration writes reached the bus: %v", bus.stores)
	}
	if got := block.Read(Calibration); got != 0x40000000|1249999 {
		t.Errorf("Calibration changed to 0x%X", got)
	}
}

func TestRegisterNames(t *testing.T) {
	if ControlStatus.String() != "SYST_CSR" || Calibration.String() != "SYST_CALIB" {
		t.Errorf("Unexpected names %s %s", ControlStatus, Calibration)
	}
	if Register(0x10).String() != "SYST_?" {
		t.Errorf("Unknown register name %s", Register(0x10))
	}
}
