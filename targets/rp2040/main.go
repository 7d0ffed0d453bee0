//go:build rp2040

package main

import (
	"machine"

	"picotick/blink"
	"picotick/core"
	"picotick/protocol"
)

func main() {
	// CRITICAL: Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitUSB()
	InitDebugUART()
	core.SetDebugWriter(DebugPrintln)
	core.SetDebugEnabled(debugEnabled)

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	InitStatus()

	cfg := core.DefaultConfig()
	cfg.ClockHz = machine.CPUFrequency()
	cfg.Mode = delayMode
	// The counter runs in both modes so reports show it advancing
	cfg.TickInterrupt = true
	// The vector must be live before Init sets TICKINT
	core.InstallTickHandler()

	timer := core.New()
	if err := timer.Init(cfg); err != nil {
		core.DebugPrintln("[SYSTICK] init failed: " + err.Error())
		ShowStatus(statusFault)
		halt()
	}
	timer.DumpRegisters()
	CheckTickRate(timer)

	reporter := protocol.NewReporter(writeUSB)
	loop, err := blink.NewLoop(timer, reporter, led.Set, blink.Options{Board: "rp2040"})
	if err != nil {
		ShowStatus(statusFault)
		halt()
	}

	ShowStatus(statusRunning(cfg.Mode))
	loop.Run()
}

// writeUSB sends one frame. Frames are dropped while no host is attached.
func writeUSB(frame []byte) {
	written := 0
	for written < len(frame) {
		n, err := USBWriteBytes(frame[written:])
		if err != nil || n == 0 {
			writeFailures++
			return
		}
		written += n
	}
}

var writeFailures uint32

func halt() {
	for {
	}
}
