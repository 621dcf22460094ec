// cmd/config.go
package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bsc-mem/mess-simulator/memctrl"
)

// ChannelConfig is the YAML shape for one memory channel's construction
// parameters (the fields memctrl.Config needs), read from bench's --config
// file. Decoding uses KnownFields(true), so a stray or misspelled key is a
// load-time error rather than silently ignored; a key that is left out is
// not an error and leaves its field at the zero value.
type ChannelConfig struct {
	CurvePath         string  `yaml:"curve_path"`
	CurveFrequencyGHz float64 `yaml:"curve_frequency_ghz"`
	CPUFrequencyGHz   float64 `yaml:"cpu_frequency_ghz"`
	OnCoreLatency     float64 `yaml:"on_core_latency"`
	WindowSize        int64   `yaml:"window_size"`
}

// toMemctrlConfig converts the YAML-decoded shape into memctrl.Config.
func (c ChannelConfig) toMemctrlConfig() memctrl.Config {
	return memctrl.Config{
		CurvePath:         c.CurvePath,
		CurveFrequencyGHz: c.CurveFrequencyGHz,
		CPUFrequencyGHz:   c.CPUFrequencyGHz,
		OnCoreLatency:     c.OnCoreLatency,
		WindowSize:        c.WindowSize,
	}
}

// loadChannelConfig parses a channel config file with strict field checking,
// the same convention the teacher's defaults.yaml loader uses.
func loadChannelConfig(path string) (ChannelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ChannelConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg ChannelConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return ChannelConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
