package core

// SysTick peripheral memory map (ARMv6-M System Control Space)
const (
	SysTickBase = 0xE000E010
)

// Register identifies one of the four consecutive SysTick registers.
// The value is the byte offset from SysTickBase.
type Register uintptr

const (
	ControlStatus Register = 0x0 // SYST_CSR, read/write
	Reload        Register = 0x4 // SYST_RVR, read/write
	CurrentValue  Register = 0x8 // SYST_CVR, read/write (any write clears)
	Calibration   Register = 0xC // SYST_CALIB, read-only
)

// Control/status register bits
const (
	CSREnable      = 1 << 0  // Counter enable
	CSRTickInt     = 1 << 1  // Raise the SysTick exception on wrap
	CSRClockSource = 1 << 2  // 1 = processor clock, 0 = external reference
	CSRCountFlag   = 1 << 16 // Set on wrap, cleared on read
)

// Calibration register fields
const (
	CalibTenMsMask = 0x00FFFFFF
	CalibSkew      = 1 << 30
	CalibNoRef     = 1 << 31
)

// ReloadMax is the largest value the 24-bit RVR field holds
const ReloadMax = 0x00FFFFFF

// String returns the ARM name of the register
func (r Register) String() string {
	switch r {
	case ControlStatus:
		return "SYST_CSR"
	case Reload:
		return "SYST_RVR"
	case CurrentValue:
		return "SYST_CVR"
	case Calibration:
		return "SYST_CALIB"
	default:
		return "SYST_?"
	}
}

// Bus is the native boundary to the peripheral. Each call must be a single
// real bus transaction: implementations may not cache, merge or elide accesses.
type Bus interface {
	// Load reads the 32-bit word at offset bytes from SysTickBase
	Load(offset uintptr) uint32

	// Store writes the 32-bit word at offset bytes from SysTickBase
	Store(offset uintptr, value uint32)
}

// RegisterBlock gives typed access to the SysTick registers. Its fields are
// unexported so callers can only go through Read, Write and Modify.
type RegisterBlock struct {
	bus Bus
}

// NewRegisterBlock wraps a bus. The caller is responsible for making sure no
// other RegisterBlock reconfigures the same peripheral concurrently.
func NewRegisterBlock(bus Bus) RegisterBlock {
	return RegisterBlock{bus: bus}
}

// Read issues one load of register r
func (b RegisterBlock) Read(r Register) uint32 {
	return b.bus.Load(uintptr(r))
}

// Write issues one store to register r. Writes to Calibration are dropped.
func (b RegisterBlock) Write(r Register, value uint32) {
	if r == Calibration {
		return
	}
	b.bus.Store(uintptr(r), value)
}

// Modify performs a read-modify-write of register r: one load, one store.
// It is not atomic with respect to the hardware or to exception handlers.
func (b RegisterBlock) Modify(r Register, f func(uint32) uint32) {
	if r == Calibration {
		return
	}
	b.bus.Store(uintptr(r), f(b.bus.Load(uintptr(r))))
}
