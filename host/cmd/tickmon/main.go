// Command tickmon listens to a board running the blink firmware and checks
// its tick reports: reload value, whole-tick truncation, counter advance
// across wraparound, and host-observed report spacing.
package main

import (
	"context"
	goflag "flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/juju/errors"
	flag "github.com/spf13/pflag"

	"picotick/host/flagenv"
	"picotick/host/monitor"
	"picotick/host/serial"
	"picotick/protocol"
)

const envPrefix = "TICKMON_"

var (
	device    = flag.StringP("device", "d", "/dev/ttyACM0", "Serial device path")
	baud      = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	expect    = flag.String("expect", "", "YAML file with the expected interval, clock and mode")
	count     = flag.IntP("count", "n", 0, "Stop after this many reports (0 = until interrupted)")
	replay    = flag.String("replay", "", "Check a captured report stream instead of a live device")
	tolerance = flag.Float64("tolerance", -1, "Allowed deviation of the mean report spacing in percent, overrides --expect")

	errFailed = errors.New("checks failed")
)

// glog flags that only clutter --help
var hiddenFlags = []string{
	"alsologtostderr",
	"log_backtrace_at",
	"log_dir",
	"logtostderr",
	"stderrthreshold",
	"vmodule",
}

func initFlags() {
	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	for _, f := range hiddenFlags {
		flag.CommandLine.MarkHidden(f)
	}
}

func expectations() (*monitor.Expectations, error) {
	exp := monitor.DefaultExpectations()
	if *expect != "" {
		var err error
		if exp, err = monitor.LoadExpectations(*expect); err != nil {
			return nil, errors.Annotatef(err, "loading %s", *expect)
		}
	}
	if *replay != "" {
		// Arrival times of a replayed file say nothing about the board
		exp.TolerancePct = 0
	}
	if *tolerance >= 0 {
		exp.TolerancePct = *tolerance
	}
	return exp, nil
}

func openSource(ctx context.Context) (io.Reader, func(), error) {
	if *replay != "" {
		f, err := os.Open(*replay)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
		return f, func() { f.Close() }, nil
	}

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	if err := port.Flush(); err != nil {
		glog.Warningf("flush %s: %v", *device, err)
	}
	glog.Infof("listening on %s", *device)
	return serial.Live(port, ctx.Done()), func() { port.Close() }, nil
}

func run(ctx context.Context) error {
	exp, err := expectations()
	if err != nil {
		return errors.Trace(err)
	}

	src, closeSrc, err := openSource(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	defer closeSrc()

	dec := protocol.NewDecoder(src)
	m := monitor.New(exp)
	if err := m.Run(ctx, dec, time.Now, *count); err != nil {
		return errors.Trace(err)
	}
	glog.V(1).Infof("decoder: frames=%d crc_errors=%d resyncs=%d discarded=%d",
		dec.Frames, dec.CRCErrors, dec.Resyncs, dec.BytesDiscarded)

	s := m.Summarize(dec)
	s.Print(os.Stdout)
	if !s.Passed() {
		return errFailed
	}
	return nil
}

func main() {
	initFlags()
	flag.Parse()
	if err := flagenv.ParseFlagSet(flag.CommandLine, envPrefix); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(2)
	}
	defer glog.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		glog.Infof("Error: %s", errors.ErrorStack(err))
		if err != errFailed {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		glog.Flush()
		os.Exit(1)
	}
}
