//go:build tinygo

package core

import (
	"runtime/volatile"
	"unsafe"
)

// mmioBus reaches the real SysTick block through volatile loads and stores
type mmioBus struct{}

func (mmioBus) Load(offset uintptr) uint32 {
	return volatile.LoadUint32((*uint32)(unsafe.Pointer(uintptr(SysTickBase) + offset)))
}

func (mmioBus) Store(offset uintptr, value uint32) {
	volatile.StoreUint32((*uint32)(unsafe.Pointer(uintptr(SysTickBase)+offset)), value)
}

// hardwareBus returns the bus bound to the fixed peripheral address
func hardwareBus() Bus {
	return mmioBus{}
}
