package serial

import (
	"bytes"
	"io"
	"testing"
)

// fakePort returns its chunks one per Read, then io.EOF forever (like an
// idle tarm/serial port hitting its read timeout)
type fakePort struct {
	chunks [][]byte
	reads  int
}

func (f *fakePort) Read(b []byte) (int, error) {
	f.reads++
	if len(f.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(b, f.chunks[0])
	f.chunks = f.chunks[1:]
	return n, nil
}

func (f *fakePort) Write(b []byte) (int, error) { return len(b), nil }
func (f *fakePort) Close() error                { return nil }
func (f *fakePort) Flush() error                { return nil }

func TestLiveReaderHidesTimeouts(t *testing.T) {
	port := &fakePort{chunks: [][]byte{{1, 2}, {3}}}
	stop := make(chan struct{})
	r := Live(port, stop)

	var got bytes.Buffer
	buf := make([]byte, 8)
	for i := 0; i < 5; i++ {
		n, err := r.Read(buf)
		if err != nil {
			t.Fatalf("Read %d returned %v while not stopped", i, err)
		}
		got.Write(buf[:n])
	}
	if !bytes.Equal(got.Bytes(), []byte{1, 2, 3}) {
		t.Errorf("Read %v, expected [1 2 3]", got.Bytes())
	}

	close(stop)
	if _, err := r.Read(buf); err != io.EOF {
		t.Errorf("Read after stop returned %v, expected io.EOF", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyACM0")
	if cfg.Device != "/dev/ttyACM0" || cfg.Baud != 115200 || cfg.ReadTimeout != 100 {
		t.Errorf("Unexpected default config %+v", cfg)
	}
}

func TestOpenNilConfig(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Error("Open(nil) succeeded")
	}
}
