//go:build rp2040 && systick_irq

package main

import "picotick/core"

const delayMode = core.ModeInterrupt
