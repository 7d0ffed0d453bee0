package core

// Exception is a Cortex-M exception number (1-15 are system exceptions)
type Exception uint8

const (
	ExceptionNMI       Exception = 2
	ExceptionHardFault Exception = 3
	ExceptionSVCall    Exception = 11
	ExceptionPendSV    Exception = 14
	ExceptionSysTick   Exception = 15

	numExceptions = 16
)

// handlers is the dispatch table consulted by Dispatch. A nil slot falls
// through to DefaultHandler.
var handlers [numExceptions]func()

// SetHandler installs fn for exception exc. Passing nil removes the handler.
func SetHandler(exc Exception, fn func()) {
	if exc >= numExceptions {
		return
	}
	state := disableInterrupts()
	handlers[exc] = fn
	restoreInterrupts(state)
}

// HandlerRegistered reports whether exc has a dedicated handler
func HandlerRegistered(exc Exception) bool {
	if exc >= numExceptions {
		return false
	}
	state := disableInterrupts()
	ok := handlers[exc] != nil
	restoreInterrupts(state)
	return ok
}

// Dispatch runs the handler for exc, or DefaultHandler for anything unknown.
// Called from exception context.
func Dispatch(exc Exception) {
	if exc < numExceptions {
		if fn := handlers[exc]; fn != nil {
			fn()
			return
		}
	}
	DefaultHandler()
}

// InstallTickHandler wires SysTickHandler into the table. Must run before
// Init enables the SysTick exception.
func InstallTickHandler() {
	SetHandler(ExceptionSysTick, SysTickHandler)
}
