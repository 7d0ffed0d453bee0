//go:build rp2040 && !systick_irq

package main

import "picotick/core"

// delayMode selects how DelayMs waits. The default build polls COUNTFLAG
// while the SysTick exception keeps the tick counter running. Build with
// -tags systick_irq to wait on the counter instead.
const delayMode = core.ModePolling
