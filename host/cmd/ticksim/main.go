// Command ticksim runs the blink loop against the SysTick model and writes
// the report stream, so tickmon can be exercised without a board:
//
//	ticksim --mode interrupt --steps 40 --out run.bin
//	tickmon --replay run.bin
package main

import (
	goflag "flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/juju/errors"
	flag "github.com/spf13/pflag"

	"picotick/blink"
	"picotick/core"
	"picotick/host/flagenv"
	"picotick/protocol"
	"picotick/sim"
)

const envPrefix = "TICKSIM_"

var (
	mode     = flag.String("mode", core.ModePolling.String(), "Delay mode: polling or interrupt")
	interval = flag.Uint32("interval", core.DefaultTickIntervalMs, "Tick interval in ms")
	clockHz  = flag.Uint32("clock", core.DefaultClockHz, "Simulated core clock in Hz")
	halfMs   = flag.Uint32("half-period", blink.DefaultHalfPeriodMs, "Delay between LED toggles in ms")
	steps    = flag.IntP("steps", "n", 20, "Loop iterations to run")
	out      = flag.StringP("out", "o", "-", "Output file for frames, - for stdout")
	tickint  = flag.Bool("tickint", true, "Enable the SysTick exception in polling mode too")
	realtime = flag.Bool("realtime", false, "Pace the model to wall-clock time")
	board    = flag.String("board", "ticksim", "Board name put in tick_config")
)

func parseMode(s string) (core.DelayMode, error) {
	switch s {
	case core.ModePolling.String():
		return core.ModePolling, nil
	case core.ModeInterrupt.String():
		return core.ModeInterrupt, nil
	}
	return 0, errors.Errorf("unknown mode %q", s)
}

func openOutput() (io.WriteCloser, error) {
	if *out == "-" {
		return os.Stdout, nil
	}
	f, err := os.Create(*out)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return f, nil
}

func run() error {
	m, err := parseMode(*mode)
	if err != nil {
		return errors.Trace(err)
	}
	cfg := core.Config{
		TickIntervalMs: *interval,
		ClockHz:        *clockHz,
		ClockSource:    core.ClockCore,
		Mode:           m,
		TickInterrupt:  *tickint,
	}
	if err := cfg.Validate(); err != nil {
		return errors.Annotatef(err, "interval %dms at %dHz", cfg.TickIntervalMs, cfg.ClockHz)
	}

	w, err := openOutput()
	if err != nil {
		return errors.Trace(err)
	}
	defer w.Close()

	core.SetDebugWriter(func(s string) { glog.Info(s) })
	core.SetDebugEnabled(bool(glog.V(1)))

	// CALIB advertises the 10ms count of the simulated clock
	st := sim.NewSysTick((cfg.ClockHz/100 - 1) & core.CalibTenMsMask)
	if cfg.TickInterruptEnabled() {
		core.InstallTickHandler()
	}

	timer := core.NewWithBus(st)
	if err := timer.Init(cfg); err != nil {
		return errors.Trace(err)
	}

	// Each spin of a delay loop advances the model by a millisecond
	perSpin := cfg.ClockTicksPerMs()
	timer.SetSpinHook(func() {
		st.Advance(perSpin)
		if *realtime {
			time.Sleep(time.Millisecond)
		}
	})

	var writeErr error
	reporter := protocol.NewReporter(func(frame []byte) {
		if writeErr != nil {
			return
		}
		if _, err := w.Write(frame); err != nil {
			writeErr = errors.Trace(err)
		}
	})

	led := func(on bool) { glog.V(2).Infof("led %v at tick %d", on, core.Ticks()) }
	loop, err := blink.NewLoop(timer, reporter, led, blink.Options{Board: *board, HalfPeriodMs: *halfMs})
	if err != nil {
		return errors.Trace(err)
	}

	loop.Start()
	for i := 0; i < *steps && writeErr == nil; i++ {
		loop.Step()
	}

	glog.Infof("%d steps, %d wraps, counter %d", loop.Steps(), st.Wraps(), core.Ticks())
	if glog.V(1) {
		timer.DumpRegisters()
		core.DumpTimingRing()
	}
	return writeErr
}

func main() {
	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	flag.Parse()
	if err := flagenv.ParseFlagSet(flag.CommandLine, envPrefix); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(2)
	}
	defer glog.Flush()

	if err := run(); err != nil {
		glog.Infof("Error: %s", errors.ErrorStack(err))
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		glog.Flush()
		os.Exit(1)
	}
}
