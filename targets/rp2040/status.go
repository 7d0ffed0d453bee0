//go:build rp2040

package main

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ws2812"

	"picotick/core"
)

// statusPin drives an optional WS2812 pixel (GPIO16 on RP2040-Zero style
// boards). Without one attached the writes go nowhere.
const statusPin = machine.GPIO16

var (
	statusLED ws2812.Device
	statusBuf [1]color.RGBA

	statusFault   = color.RGBA{R: 0x20}
	statusPolling = color.RGBA{B: 0x20}
	statusIRQ     = color.RGBA{G: 0x20}
)

// InitStatus configures the status pixel
func InitStatus() {
	statusPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	statusLED = ws2812.New(statusPin)
}

func statusRunning(mode core.DelayMode) color.RGBA {
	if mode == core.ModeInterrupt {
		return statusIRQ
	}
	return statusPolling
}

// ShowStatus sets the pixel colour. The bit-banged write masks interrupts
// for about 30us, well under one tick.
func ShowStatus(c color.RGBA) {
	statusBuf[0] = c
	statusLED.WriteColors(statusBuf[:])
}
