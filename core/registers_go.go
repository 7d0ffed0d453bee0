//go:build !tinygo

package core

import "sync/atomic"

// MemoryBus is a plain word array standing in for the peripheral on regular Go.
// It has none of the hardware side effects; use the sim package for those.
type MemoryBus struct {
	words [4]uint32
}

func (m *MemoryBus) Load(offset uintptr) uint32 {
	return atomic.LoadUint32(&m.words[offset/4])
}

func (m *MemoryBus) Store(offset uintptr, value uint32) {
	atomic.StoreUint32(&m.words[offset/4], value)
}

// hardwareBus returns an in-memory bus (regular Go has no SysTick to map)
func hardwareBus() Bus {
	return &MemoryBus{}
}
