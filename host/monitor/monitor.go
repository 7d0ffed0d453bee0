// Package monitor checks the tick reports a board streams over serial.
//
// Checks, per report:
//   - the programmed reload is interval*(clock/1000)-1
//   - the delay waited for exactly delay_ms/interval ticks
//   - with the SysTick exception enabled the counter advanced by that many
//     ticks across the delay, modulo 2^32; otherwise it never moves
//
// Host arrival times give a rough jitter figure on top.
package monitor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"
	"github.com/juju/errors"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"

	"picotick/core"
	"picotick/protocol"
)

// Kind classifies a violation
type Kind string

const (
	KindNoConfig     Kind = "no-config"
	KindReload       Kind = "reload"
	KindConfig       Kind = "config"
	KindTruncation   Kind = "waited"
	KindCounterDelta Kind = "counter"
	KindSequence     Kind = "sequence"
	KindTiming       Kind = "timing"
	KindUnknownMsg   Kind = "unknown-message"
)

// Violation is one failed check
type Violation struct {
	Kind   Kind
	Seq    uint32
	Detail string
}

// Monitor accumulates reports and checks them
type Monitor struct {
	exp *Expectations

	config     *protocol.TickConfig
	last       *protocol.TickReport
	lastAt     time.Time
	reports    int
	violations []Violation
	spacings   []float64 // Seconds between consecutive reports
	expectedMs []float64 // Requested delay for each spacing
}

// New creates a monitor. A nil exp uses DefaultExpectations.
func New(exp *Expectations) *Monitor {
	if exp == nil {
		exp = DefaultExpectations()
	}
	return &Monitor{exp: exp}
}

// Handle checks one frame received at host time at
func (m *Monitor) Handle(msg *protocol.Message, at time.Time) error {
	id, err := msg.ID()
	if err != nil {
		return errors.Annotatef(err, "frame seq 0x%02x", msg.Sequence)
	}
	body, err := msg.Body()
	if err != nil {
		return errors.Trace(err)
	}

	switch id {
	case protocol.MsgTickConfig:
		var c protocol.TickConfig
		if err := c.Decode(&body); err != nil {
			return errors.Annotatef(err, "decoding tick_config")
		}
		m.handleConfig(c)
	case protocol.MsgTickReport:
		var r protocol.TickReport
		if err := r.Decode(&body); err != nil {
			return errors.Annotatef(err, "decoding tick_report")
		}
		m.handleReport(r, at)
	default:
		m.fail(KindUnknownMsg, 0, "message id %d", id)
	}
	return nil
}

func (m *Monitor) handleConfig(c protocol.TickConfig) {
	glog.Infof("board %q: interval=%dms clock=%dHz reload=%d mode=%s tickint=%d",
		c.Board, c.IntervalMs, c.ClockHz, c.Reload, core.DelayMode(c.Mode), c.TickInt)

	cfg := core.Config{TickIntervalMs: c.IntervalMs, ClockHz: c.ClockHz}
	if err := cfg.Validate(); err != nil {
		m.fail(KindConfig, 0, "board config invalid: %v", err)
	} else if c.Reload != cfg.ReloadValue() {
		m.fail(KindReload, 0, "reload %d, expected %d", c.Reload, cfg.ReloadValue())
	}

	if m.exp.IntervalMs != 0 && c.IntervalMs != m.exp.IntervalMs {
		m.fail(KindConfig, 0, "interval %dms, expected %dms", c.IntervalMs, m.exp.IntervalMs)
	}
	if m.exp.ClockHz != 0 && c.ClockHz != m.exp.ClockHz {
		m.fail(KindConfig, 0, "clock %dHz, expected %dHz", c.ClockHz, m.exp.ClockHz)
	}
	if m.exp.Mode != "" && core.DelayMode(c.Mode).String() != m.exp.Mode {
		m.fail(KindConfig, 0, "mode %s, expected %s", core.DelayMode(c.Mode), m.exp.Mode)
	}

	// A new config means the board restarted
	m.config = &c
	m.last = nil
}

func (m *Monitor) handleReport(r protocol.TickReport, at time.Time) {
	m.reports++
	glog.V(1).Infof("report seq=%d start=%d ticks=%d delay=%dms waited=%d",
		r.Seq, r.Start, r.Ticks, r.DelayMs, r.Waited)

	if m.config == nil {
		if m.reports == 1 {
			m.fail(KindNoConfig, r.Seq, "report before tick_config, attach the monitor before reset")
		}
		m.last, m.lastAt = &r, at
		return
	}

	cfg := core.Config{TickIntervalMs: m.config.IntervalMs, ClockHz: m.config.ClockHz}
	if want := cfg.TicksFor(r.DelayMs); r.Waited != want {
		m.fail(KindTruncation, r.Seq, "waited %d ticks for %dms, expected %d", r.Waited, r.DelayMs, want)
	}

	m.checkDelta(r)

	if m.last != nil {
		if r.Seq != m.last.Seq+1 {
			m.fail(KindSequence, r.Seq, "report %d follows %d", r.Seq, m.last.Seq)
		} else {
			if !m.counting() && r.Start != m.last.Ticks {
				m.fail(KindCounterDelta, r.Seq, "counter moved %d ticks between reports without TICKINT",
					r.Start-m.last.Ticks)
			}
			m.spacings = append(m.spacings, at.Sub(m.lastAt).Seconds())
			m.expectedMs = append(m.expectedMs, float64(r.DelayMs))
		}
	}
	m.last, m.lastAt = &r, at
}

// counting reports whether the board's SysTick exception advances the counter
func (m *Monitor) counting() bool {
	return m.config.TickInt != 0 || core.DelayMode(m.config.Mode) == core.ModeInterrupt
}

// checkDelta compares the counter before and after the delay, modulo 2^32.
// The board samples the counter just outside DelayMs, so one extra tick may
// land in between. A polling delay may also start on a COUNTFLAG left over
// from before the sample and finish one tick early.
func (m *Monitor) checkDelta(r protocol.TickReport) {
	delta := r.Ticks - r.Start
	if !m.counting() {
		if delta != 0 {
			m.fail(KindCounterDelta, r.Seq, "counter moved %d ticks without TICKINT", delta)
		}
		return
	}

	lo, hi := r.Waited, r.Waited+1
	if core.DelayMode(m.config.Mode) == core.ModePolling && lo > 0 {
		lo--
	}
	if delta < lo || delta > hi {
		m.fail(KindCounterDelta, r.Seq, "counter advanced %d ticks (%d -> %d), expected %d",
			delta, r.Start, r.Ticks, r.Waited)
	}
}

func (m *Monitor) fail(kind Kind, seq uint32, format string, args ...interface{}) {
	v := Violation{Kind: kind, Seq: seq, Detail: fmt.Sprintf(format, args...)}
	glog.Warningf("%s: %s", kind, v.Detail)
	m.violations = append(m.violations, v)
}

// Run decodes frames until EOF, ctx is done, or maxReports reports have
// been seen (0 = no limit). now supplies host arrival times.
func (m *Monitor) Run(ctx context.Context, dec *protocol.Decoder, now func() time.Time, maxReports int) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msg, err := dec.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Trace(err)
		}
		if err := m.Handle(msg, now()); err != nil {
			return errors.Trace(err)
		}
		if maxReports > 0 && m.reports >= maxReports {
			return nil
		}
	}
}

// Summary is the outcome of a run
type Summary struct {
	Reports    int
	Violations []Violation
	ByKind     map[Kind]int
	SeqGaps    uint64
	CRCErrors  uint64

	// Host-observed spacing between reports, milliseconds
	MeanMs   float64
	StdDevMs float64

	// Mean requested delay over the same reports
	ExpectedMs float64
}

// Passed reports whether no check failed
func (s *Summary) Passed() bool {
	return len(s.Violations) == 0
}

// Kinds returns the violation kinds present, sorted
func (s *Summary) Kinds() []Kind {
	kinds := make([]Kind, 0, len(s.ByKind))
	for k := range s.ByKind {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Summarize computes statistics and runs the end-of-run checks. Call it
// once, after Run. dec may be nil.
func (m *Monitor) Summarize(dec *protocol.Decoder) *Summary {
	s := &Summary{
		Reports: m.reports,
		ByKind:  make(map[Kind]int),
	}
	if dec != nil {
		s.SeqGaps = dec.SeqGaps
		s.CRCErrors = dec.CRCErrors
		if dec.SeqGaps > m.exp.MaxSeqGaps {
			m.fail(KindSequence, 0, "%d frames lost, %d allowed", dec.SeqGaps, m.exp.MaxSeqGaps)
		}
	}

	if len(m.spacings) > 1 {
		mean, std := stat.MeanStdDev(m.spacings, nil)
		s.MeanMs = mean * 1000
		s.StdDevMs = std * 1000
		s.ExpectedMs = stat.Mean(m.expectedMs, nil)

		if m.exp.TolerancePct > 0 && s.ExpectedMs > 0 {
			dev := (s.MeanMs - s.ExpectedMs) / s.ExpectedMs * 100
			if dev < 0 {
				dev = -dev
			}
			if dev > m.exp.TolerancePct {
				m.fail(KindTiming, 0, "mean spacing %.1fms is %.1f%% off %.1fms", s.MeanMs, dev, s.ExpectedMs)
			}
		}
	}

	s.Violations = append(s.Violations, m.violations...)
	for _, v := range s.Violations {
		s.ByKind[v.Kind]++
	}
	return s
}
