package flagenv

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestEnvName(t *testing.T) {
	if got := EnvName("tick-ms", "TICKMON_"); got != "TICKMON_TICK_MS" {
		t.Errorf("EnvName = %q", got)
	}
}

func TestParseFlagSetFromEnv(t *testing.T) {
	t.Setenv("TEST_DEVICE", "/dev/ttyUSB3")
	t.Setenv("TEST_COUNT", "12")
	t.Setenv("TEST_VERBOSE", "true")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	device := fs.String("device", "/dev/ttyACM0", "")
	count := fs.Int("count", 0, "")
	verbose := fs.Bool("verbose", false, "")

	if err := fs.Parse([]string{"--count=3"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := ParseFlagSet(fs, "TEST_"); err != nil {
		t.Fatalf("ParseFlagSet: %v", err)
	}

	if *device != "/dev/ttyUSB3" {
		t.Errorf("device = %q, expected value from environment", *device)
	}
	if *count != 3 {
		t.Errorf("count = %d, command line must win over environment", *count)
	}
	if !*verbose {
		t.Error("verbose not taken from environment")
	}
	if !fs.Changed("device") {
		t.Error("device not marked changed")
	}
}

func TestParseFlagSetBadValue(t *testing.T) {
	t.Setenv("TEST_COUNT", "many")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("count", 0, "")
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if err := ParseFlagSet(fs, "TEST_"); err == nil {
		t.Error("Expected an error for a non-numeric value")
	}
}
