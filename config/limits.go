// Package config loads execution limits from command line flags, the
// environment and an optional config file.
package config

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/onflow/flow-vmext/vmext"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. VMEXT_MAX_WRITES.
	EnvPrefix = "VMEXT"

	configFile     = "config-file"
	maxComputation = "max-computation"
	maxEventBytes  = "max-event-bytes"
	maxWrites      = "max-writes"
	maxKeySize     = "max-key-size"
	maxValueSize   = "max-value-size"
)

func AllFlagNames() []string {
	return []string{configFile, maxComputation, maxEventBytes, maxWrites, maxKeySize, maxValueSize}
}

// InitializeLimitsFlags registers the limit flags on flags.  A zero limit
// disables the limit.
func InitializeLimitsFlags(flags *pflag.FlagSet, defaults vmext.Limits) {
	flags.String(configFile, "", "path to a config file holding execution limits")
	flags.Uint64(maxComputation, defaults.MaxComputation, "computation units allowed per execute call")
	flags.Uint64(maxEventBytes, defaults.MaxEventBytes, "event bytes allowed per execute call")
	flags.Uint64(maxWrites, defaults.MaxWrites, "written keys allowed per execute call")
	flags.Uint64(maxKeySize, defaults.MaxKeySize, "maximum encoded state key size in bytes")
	flags.Uint64(maxValueSize, defaults.MaxValueSize, "maximum state value size in bytes")
}

// LoadLimits resolves the limits from flags, VMEXT_* environment variables
// and the config file, in that order of precedence.  Unset values fall back
// to the flag defaults.
func LoadLimits(flags *pflag.FlagSet) (vmext.Limits, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	err := v.BindPFlags(flags)
	if err != nil {
		return vmext.Limits{}, fmt.Errorf("failed to bind flags: %w", err)
	}

	if path := v.GetString(configFile); path != "" {
		v.SetConfigFile(path)
		err = v.ReadInConfig()
		if err != nil {
			return vmext.Limits{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	// every limit has a flag, so an unset field means the flags were not
	// initialized with InitializeLimitsFlags
	var limits vmext.Limits
	err = v.Unmarshal(&limits, func(c *mapstructure.DecoderConfig) {
		c.ErrorUnset = true
	})
	if err != nil {
		return vmext.Limits{}, fmt.Errorf("failed to decode limits: %w", err)
	}
	return limits, nil
}
