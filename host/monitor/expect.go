package monitor

import (
	"os"

	"github.com/juju/errors"
	"gopkg.in/yaml.v2"

	"picotick/core"
)

// Expectations is what the monitor checks the board against. Zero fields
// are taken from the board's own tick_config frame.
type Expectations struct {
	IntervalMs uint32 `yaml:"interval_ms"`
	ClockHz    uint32 `yaml:"clock_hz"`
	Mode       string `yaml:"mode"`

	// Allowed deviation of the host-observed report spacing, in percent
	TolerancePct float64 `yaml:"tolerance_pct"`

	// Frames that may go missing before the run fails
	MaxSeqGaps uint64 `yaml:"max_seq_gaps"`
}

// DefaultExpectations accepts whatever the board reports, with 10% jitter
func DefaultExpectations() *Expectations {
	return &Expectations{TolerancePct: 10}
}

// LoadExpectations reads a YAML expectations file
func LoadExpectations(path string) (*Expectations, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return ParseExpectations(data)
}

// ParseExpectations parses YAML and fills defaults
func ParseExpectations(data []byte) (*Expectations, error) {
	exp := DefaultExpectations()
	if err := yaml.Unmarshal(data, exp); err != nil {
		return nil, errors.Annotatef(err, "bad expectations")
	}
	switch exp.Mode {
	case "", core.ModePolling.String(), core.ModeInterrupt.String():
	default:
		return nil, errors.Errorf("unknown mode %q", exp.Mode)
	}
	if exp.TolerancePct < 0 {
		return nil, errors.Errorf("negative tolerance %v", exp.TolerancePct)
	}
	return exp, nil
}
