// Package config loads the reportgen configuration: global settings plus the
// hierarchical report tree that the generator walks.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Report option names recognized in the report tree. Any other scalar is
// carried through unchanged and visible to templates via the extras provider.
const (
	OptionTemplate    = "template"
	OptionEncoding    = "encoding"
	OptionStaleAge    = "stale_age"
	OptionSummarizeBy = "summarize_by"
	OptionDatabase    = "database"
)

// Config represents the application configuration.
type Config struct {
	Root      string                    `yaml:"root"`
	SkinDir   string                    `yaml:"skin_dir,omitempty"`
	OutputDir string                    `yaml:"output_dir,omitempty"`
	Timezone  string                    `yaml:"timezone,omitempty"`
	Defaults  Defaults                  `yaml:"defaults,omitempty"`
	Databases map[string]DatabaseConfig `yaml:"databases"`
	Providers ProvidersConfig           `yaml:"providers,omitempty"`
	Station   StationConfig             `yaml:"station,omitempty"`
	Units     map[string]UnitStyle      `yaml:"units,omitempty"`
	Extras    map[string]string         `yaml:"extras,omitempty"`
	Daemon    *DaemonConfig             `yaml:"daemon,omitempty"`
	Metrics   *MetricsConfig            `yaml:"metrics,omitempty"`
	Events    *EventsConfig             `yaml:"events,omitempty"`
	Reports   Node                      `yaml:"reports"`
}

// Defaults are report options applied at the root of the report tree.
// Any node may override them.
type Defaults struct {
	Encoding string `yaml:"encoding,omitempty"`
	Database string `yaml:"database,omitempty"`
}

// DatabaseConfig describes one archive database binding.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ProvidersConfig lists the variable providers to register for a run.
// SearchList replaces the default modern provider list wholesale;
// SearchListAdditions is the preferred extension point and is appended to
// it. SearchListExtensions holds the legacy single-bundle providers. A
// missing list means none.
type ProvidersConfig struct {
	SearchList           []string `yaml:"search_list,omitempty"`
	SearchListAdditions  []string `yaml:"search_list_additions,omitempty"`
	SearchListExtensions []string `yaml:"search_list_extensions,omitempty"`
}

// ModernProviders returns the effective modern provider identifiers: the
// search list followed by any additions, in declaration order.
func (p ProvidersConfig) ModernProviders() []string {
	out := append([]string(nil), p.SearchList...)
	return append(out, p.SearchListAdditions...)
}

// StationConfig carries site metadata exposed to templates by the station
// provider.
type StationConfig struct {
	Name      string  `yaml:"name,omitempty"`
	Location  string  `yaml:"location,omitempty"`
	Latitude  float64 `yaml:"latitude,omitempty"`
	Longitude float64 `yaml:"longitude,omitempty"`
	Altitude  float64 `yaml:"altitude,omitempty"`
}

// UnitStyle describes how a field's values are presented, exposed to
// templates by the unit_info provider.
type UnitStyle struct {
	Label  string `yaml:"label,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// DaemonConfig controls periodic regeneration. Interval is a Go duration
// string such as "5m".
type DaemonConfig struct {
	Interval string `yaml:"interval"`
}

// MetricsConfig enables the Prometheus endpoint in daemon mode.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// EventsConfig enables run-summary publishing to NATS.
type EventsConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject,omitempty"`
}

// DefaultSearchList is used when the configuration does not name one.
var DefaultSearchList = []string{"station", "stats", "unit_info", "extras"}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Root == "" {
		c.Root = "."
	}
	if c.SkinDir == "" {
		c.SkinDir = "skins"
	}
	if c.OutputDir == "" {
		c.OutputDir = "public_html"
	}
	if c.Defaults.Encoding == "" {
		c.Defaults.Encoding = "html_entities"
	}
	if c.Defaults.Database == "" {
		c.Defaults.Database = "archive"
	}
	if c.Providers.SearchList == nil {
		c.Providers.SearchList = append([]string(nil), DefaultSearchList...)
	}
	if c.Events != nil && c.Events.Subject == "" {
		c.Events.Subject = "reportgen.runs"
	}
}

// Location resolves the configured timezone, defaulting to local civil time.
// Calendar windows are computed in this location.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// BaseOptions returns the effective options at the root of the report tree.
func (c *Config) BaseOptions() Options {
	return NewOptions(map[string]string{
		OptionSummarizeBy: "none",
		OptionEncoding:    c.Defaults.Encoding,
		OptionDatabase:    c.Defaults.Database,
	})
}

const exampleConfig = `# reportgen configuration
root: .
skin_dir: skins
output_dir: public_html
# timezone: Europe/Oslo

databases:
  archive:
    path: archive.db

station:
  name: Home
  latitude: 59.91
  longitude: 10.75
  altitude: 94

# units:
#   outTemp: {label: "°C", format: "%.1f"}

providers:
  search_list: [station, stats, unit_info, extras]
  # search_list_additions: [forecast]
  # search_list_extensions: [current]

# daemon:
#   interval: 5m
# metrics:
#   listen: :9099
# events:
#   url: nats://localhost:4222
#   subject: reportgen.runs

reports:
  SummaryByMonth:
    NOAA_month:
      encoding: strict_ascii
      template: NOAA/NOAA-YYYY-MM.txt.tmpl
  SummaryByYear:
    NOAA_year:
      encoding: strict_ascii
      template: NOAA/NOAA-YYYY.txt.tmpl
  ToDate:
    index:
      template: index.html.tmpl
  forecast:
    stale_age: 3600
    template: forecast.html.tmpl
`

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
