package core

import (
	"sync"
	"testing"
)

func TestSysTickHandlerIncrements(t *testing.T) {
	ResetTicks()
	for i := 0; i < 100; i++ {
		SysTickHandler()
	}
	if got := Ticks(); got != 100 {
		t.Errorf("Ticks() = %d after 100 wraps, expected 100", got)
	}
}

func TestSysTickHandlerResetsAtMax(t *testing.T) {
	tickCount = TickMax
	SysTickHandler()
	if got := Ticks(); got != 0 {
		t.Errorf("Ticks() = %d after wrap at 0xFFFFFFFF, expected 0", got)
	}
}

func TestTickCounterWraparoundLaw(t *testing.T) {
	testCases := []struct {
		initial uint32
		n       uint32
	}{
		{0, 0},
		{0, 1000},
		{TickMax - 5, 10},
		{TickMax, 1},
		{TickMax - 999, 1000},
	}

	for _, tc := range testCases {
		tickCount = tc.initial
		for i := uint32(0); i < tc.n; i++ {
			SysTickHandler()
		}
		expected := uint32((uint64(tc.initial) + uint64(tc.n)) % (uint64(TickMax) + 1))
		if got := Ticks(); got != expected {
			t.Errorf("initial=%d n=%d: Ticks() = %d, expected %d", tc.initial, tc.n, got, expected)
		}
	}
	ResetTicks()
}

func TestTicksSinceAcrossWrap(t *testing.T) {
	tickCount = TickMax - 2
	start := Ticks()
	for i := 0; i < 5; i++ {
		SysTickHandler()
	}
	if got := TicksSince(start); got != 5 {
		t.Errorf("TicksSince across wrap = %d, expected 5", got)
	}
	if Ticks() >= start {
		t.Errorf("Counter should have wrapped below start: %d >= %d", Ticks(), start)
	}
	ResetTicks()
}

func TestTicksConcurrentReaders(t *testing.T) {
	ResetTicks()
	InstallTickHandler()
	defer SetHandler(ExceptionSysTick, nil)

	const wraps = 10000
	var wg sync.WaitGroup
	stop := make(chan struct{})

	// Readers must only ever see the counter move forward
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			last := Ticks()
			for {
				select {
				case <-stop:
					return
				default:
				}
				now := Ticks()
				if now < last {
					t.Errorf("Counter went backwards: %d -> %d", last, now)
					return
				}
				last = now
			}
		}()
	}

	for i := 0; i < wraps; i++ {
		Raise(ExceptionSysTick)
	}
	close(stop)
	wg.Wait()

	if got := Ticks(); got != wraps {
		t.Errorf("Ticks() = %d after %d exceptions, expected %d", got, wraps, wraps)
	}
	ResetTicks()
}

func TestDefaultHandlerIsNoop(t *testing.T) {
	ResetTicks()
	DefaultHandler()
	if Ticks() != 0 {
		t.Error("DefaultHandler modified the tick counter")
	}
}
