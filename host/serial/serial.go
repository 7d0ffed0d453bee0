package serial

import (
	"io"
)

// Port is a byte stream from a board. Implementations:
// - native serial (github.com/tarm/serial)
// - a capture file replayed by the monitor
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate (USB CDC ignores this)
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the settings the board's USB CDC console uses
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
	}
}

// liveReader turns read timeouts into empty reads so a decoder keeps
// waiting on a port that is merely idle
type liveReader struct {
	p    Port
	stop <-chan struct{}
}

// Live wraps p for continuous reading. io.EOF is only returned once stop
// is closed.
func Live(p Port, stop <-chan struct{}) io.Reader {
	return &liveReader{p: p, stop: stop}
}

func (l *liveReader) Read(b []byte) (int, error) {
	select {
	case <-l.stop:
		return 0, io.EOF
	default:
	}
	n, err := l.p.Read(b)
	if n == 0 && err == io.EOF {
		return 0, nil
	}
	return n, err
}
