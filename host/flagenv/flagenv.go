// Package flagenv fills unset pflag flags from environment variables, so
// TICKMON_DEVICE=/dev/ttyACM1 works as well as --device.
package flagenv

import (
	"os"
	"strings"

	"github.com/juju/errors"
	"github.com/spf13/pflag"
)

// ParseFlagSet sets every flag not given on the command line from the
// environment variable envPrefix + upper-cased flag name ('-' becomes '_').
// It must be called after fs.Parse.
func ParseFlagSet(fs *pflag.FlagSet, envPrefix string) error {
	// pflag cannot tell "set to the default" from "not set", so collect all
	// flags and drop those that were visited by Parse.
	unset := make(map[string]*pflag.Flag)
	fs.VisitAll(func(f *pflag.Flag) {
		unset[f.Name] = f
	})
	fs.Visit(func(f *pflag.Flag) {
		delete(unset, f.Name)
	})

	for name, f := range unset {
		value, ok := os.LookupEnv(EnvName(name, envPrefix))
		if !ok || value == "" {
			continue
		}
		if err := f.Value.Set(value); err != nil {
			return errors.Annotatef(err, "invalid value %q for $%s", value, EnvName(name, envPrefix))
		}
		f.Changed = true
	}
	return nil
}

// EnvName returns the environment variable consulted for a flag
func EnvName(flagName, envPrefix string) string {
	return envPrefix + strings.ReplaceAll(strings.ToUpper(flagName), "-", "_")
}
