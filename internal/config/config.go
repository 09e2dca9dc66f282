// Package config provides configuration file support for synreach.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the synreach configuration file structure.
type Config struct {
	// Defaults are applied when flags are not specified
	Defaults Defaults `yaml:"defaults"`

	// Aliases for common targets
	Aliases map[string]string `yaml:"aliases,omitempty"`
}

// Defaults holds default values for scan parameters.
type Defaults struct {
	// Output mode
	TUI     bool `yaml:"tui"`
	Verbose bool `yaml:"verbose"`
	JSON    bool `yaml:"json"`
	CSV     bool `yaml:"csv"`
	NoColor bool `yaml:"no_color"`

	// Scan type: tcp_syn, tcp_connect, icmp_ping, tcp_ping, udp_ping
	ScanType string `yaml:"scan_type"`

	// Interface selection
	Interface string `yaml:"interface"`

	// Scan timing
	Timeout        time.Duration `yaml:"timeout"`
	WaitTime       time.Duration `yaml:"wait_time"`
	SendRate       time.Duration `yaml:"send_rate"`
	MinimizePacket bool          `yaml:"minimize_packet"`

	// Network
	IPv4 bool `yaml:"ipv4"`
	IPv6 bool `yaml:"ipv6"`

	// Enrichment
	Enrichment EnrichmentConfig `yaml:"enrichment"`
}

// EnrichmentConfig holds enrichment settings. Only reverse DNS is
// supported: ASN and GeoIP lookups are out of scope for a reachability
// engine (they depend on external databases this engine never loads).
type EnrichmentConfig struct {
	Enabled bool `yaml:"enabled"`
	RDNS    bool `yaml:"rdns"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Defaults: Defaults{
			TUI:            false,
			Verbose:        false,
			JSON:           false,
			CSV:            false,
			NoColor:        false,
			ScanType:       "tcp_syn",
			Timeout:        5 * time.Second,
			WaitTime:       2 * time.Second,
			SendRate:       0,
			MinimizePacket: false,
			IPv4:           false,
			IPv6:           false,
			Enrichment: EnrichmentConfig{
				Enabled: true,
				RDNS:    true,
			},
		},
		Aliases: make(map[string]string),
	}
}

// Load reads configuration from the default config file locations.
// It searches in order:
//  1. ./synreach.yaml (current directory)
//  2. ~/.config/synreach/config.yaml (Linux/macOS)
//  3. %APPDATA%\synreach\config.yaml (Windows)
//
// If no config file is found, returns default configuration.
func Load() (*Config, error) {
	paths := getConfigPaths()

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return LoadFrom(path)
		}
	}

	// No config file found, return defaults
	return DefaultConfig(), nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save writes the configuration to the default user config path.
func (c *Config) Save() error {
	path := getUserConfigPath()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SaveTo writes the configuration to a specific file path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// getConfigPaths returns the list of config file paths to search.
func getConfigPaths() []string {
	paths := []string{
		"synreach.yaml",
		"synreach.yml",
		".synreach.yaml",
		".synreach.yml",
	}

	userPath := getUserConfigPath()
	if userPath != "" {
		paths = append(paths, userPath)
	}

	return paths
}

// getUserConfigPath returns the user-specific config file path.
func getUserConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "synreach", "config.yaml")
		}
	default: // Linux, macOS, etc.
		home, err := os.UserHomeDir()
		if err == nil {
			xdgConfig := os.Getenv("XDG_CONFIG_HOME")
			if xdgConfig != "" {
				return filepath.Join(xdgConfig, "synreach", "config.yaml")
			}
			return filepath.Join(home, ".config", "synreach", "config.yaml")
		}
	}
	return ""
}

// GetConfigPath returns the path where user config would be saved.
func GetConfigPath() string {
	return getUserConfigPath()
}

// GenerateExample generates an example configuration file content.
func GenerateExample() string {
	return `# synreach Configuration File
# Location: ~/.config/synreach/config.yaml (Linux/macOS)
#           %APPDATA%\synreach\config.yaml (Windows)
#           ./synreach.yaml (current directory)

defaults:
  # Output mode (only one should be true)
  tui: false              # Interactive TUI mode
  verbose: false          # Detailed table output
  json: false             # JSON output
  csv: false              # CSV output
  no_color: false         # Disable colors

  # Scan type: tcp_syn, tcp_connect, icmp_ping, tcp_ping, udp_ping
  scan_type: tcp_syn

  # Interface selection (name; empty picks the first up, non-loopback interface with an address)
  interface: ""

  # Scan timing
  timeout: 5s             # Total scan wall-clock budget
  wait_time: 2s           # Post-transmit grace for late replies
  send_rate: 0s           # Inter-packet delay
  minimize_packet: false  # Use the reduced TCP options set

  # Network settings
  ipv4: false             # Force IPv4
  ipv6: false             # Force IPv6

  # Enrichment settings
  enrichment:
    enabled: true         # Master switch for enrichment
    rdns: true             # Reverse DNS lookups

# Target aliases (optional)
aliases:
  dns: 8.8.8.8
  cf: 1.1.1.1
  google: google.com
`
}
