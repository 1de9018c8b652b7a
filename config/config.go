// Package config loads the flat "rpc.*" configuration surface (spec.md §6)
// from a YAML file, grounded on the teacher's lack of any config loader at
// all — the teacher hardcodes its wiring in test/bench code — and on
// gopkg.in/yaml.v2's direct use elsewhere in the retrieved pack
// (upspin-upspin's go.mod). This is the minimal non-DI substitute for the
// original's Spring-Boot application.yml loading, which spec.md places out
// of scope as a DI-container concern.
package config

import (
	"os"

	"gopkg.in/yaml.v2"

	"mini-rpc/model"
)

// RegistryConfig mirrors the "rpc.registryConfig.*" keys.
type RegistryConfig struct {
	Registry string   `yaml:"registry"`
	Address  []string `yaml:"address"`
	Timeout  int      `yaml:"timeout"` // milliseconds
}

// Config is the flat "rpc.*" surface of spec.md §6.
type Config struct {
	Name             string         `yaml:"name"`
	Version          string         `yaml:"version"`
	ServerHost       string         `yaml:"serverHost"`
	ServerPort       int            `yaml:"serverPort"`
	Serializer       string         `yaml:"serializer"`
	LoadBalancer     string         `yaml:"loadBalancer"`
	RetryStrategy    string         `yaml:"retryStrategy"`
	TolerantStrategy string         `yaml:"tolerantStrategy"`
	Mock             bool           `yaml:"mock"`
	RegistryConfig   RegistryConfig `yaml:"registryConfig"`
}

// Default returns the documented defaults for every key.
func Default() *Config {
	return &Config{
		Name:             "mini-rpc",
		Version:          model.DefaultServiceVersion,
		ServerHost:       "localhost",
		ServerPort:       8121,
		Serializer:       "jdk",
		LoadBalancer:     "roundRobin",
		RetryStrategy:    "no",
		TolerantStrategy: "failFast",
		Mock:             false,
		RegistryConfig: RegistryConfig{
			Registry: "etcd",
			Timeout:  5000,
		},
	}
}

// Load reads path as YAML into Default()'s base, so a file that sets only
// a handful of keys still gets every documented default for the rest.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
