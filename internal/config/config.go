// Package config loads and saves run configuration in YAML form.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt        = 0.01
	DefaultDuration  = 10.0
	DefaultMasses    = 3
	DefaultMass      = 1.0
	DefaultStiffness = 3.0
	DefaultAmplitude = 1.0
)

type Config struct {
	Kind      string          `yaml:"kind"` // "mode" or "system"
	Dt        float64         `yaml:"dt"`
	Duration  float64         `yaml:"duration"`
	Chain     ChainConfig     `yaml:"chain"`
	InitState InitStateConfig `yaml:"init_state"`
}

type ChainConfig struct {
	Masses    int     `yaml:"masses"`
	Mass      float64 `yaml:"mass"`
	Stiffness float64 `yaml:"stiffness"`
}

type InitStateConfig struct {
	Mode         int     `yaml:"mode"`          // 1-based mode index for kind=mode
	Amplitude    float64 `yaml:"amplitude"`     // mode-shape scaling for kind=mode
	DisplaceMass int     `yaml:"displace_mass"` // 1-based mass index for kind=system
	Displacement float64 `yaml:"displacement"`  // initial offset of that mass
}

func DefaultConfig() *Config {
	return &Config{
		Kind:     "mode",
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Chain: ChainConfig{
			Masses:    DefaultMasses,
			Mass:      DefaultMass,
			Stiffness: DefaultStiffness,
		},
		InitState: InitStateConfig{
			Mode:         1,
			Amplitude:    DefaultAmplitude,
			DisplaceMass: 1,
			Displacement: 1.0,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
