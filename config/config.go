package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mshekow/vm-benchmark/cluster"
)

// Duration is a time.Duration that unmarshals from strings like "30s" or "90m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	dur, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(dur)
	return nil
}

// One VM type to benchmark. When NodeSelector is empty, the workload is pinned onto
// the node pool whose label value equals the VM type name.
type VMType struct {
	Name         string            `yaml:"name"`
	NodeSelector map[string]string `yaml:"node_selector"`
}

// Config is the full configuration for a benchmark session. It is built once and
// passed into the runner and aggregator; nothing reads the environment mid-run.
type Config struct {
	// VMTypes defines the benchmark subjects; their order here is the column order
	// of the output matrix.
	VMTypes []VMType `yaml:"vm_types"`

	Image         string         `yaml:"image"`
	Namespace     string         `yaml:"namespace"`
	Parser        string         `yaml:"parser"`
	ParserOptions map[string]any `yaml:"parser_options"`

	PollInterval Duration `yaml:"poll_interval"`
	WaitBudget   Duration `yaml:"wait_budget"`
	// Concurrency limits how many VM types are watched at once. 0 means no limit.
	Concurrency int `yaml:"concurrency"`

	Normalize bool   `yaml:"normalize"`
	ResultDir string `yaml:"result_dir"`
	Output    string `yaml:"output"`

	MinServerVersion string `yaml:"min_server_version"`
	// DeleteUnits enables best-effort pod cleanup once the session is finished.
	DeleteUnits bool `yaml:"delete_units"`
}

func DefaultConfig() *Config {
	return &Config{
		Image:        "ghcr.io/mshekow/pts-docker-benchmark:2023.12.15",
		Namespace:    "default",
		Parser:       "pts",
		PollInterval: Duration(30 * time.Second),
		WaitBudget:   Duration(90 * time.Minute),
		Normalize:    true,
		ResultDir:    "raw-results",
		Output:       "benchmark_results.csv",
	}
}

// Load reads the configuration from a file, filling in defaults for absent fields.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if len(cfg.VMTypes) == 0 {
		return nil, fmt.Errorf("config file %s declares no vm_types", path)
	}
	for i := range cfg.VMTypes {
		if cfg.VMTypes[i].NodeSelector == nil {
			cfg.VMTypes[i].NodeSelector = map[string]string{cluster.NodePoolLabel: cfg.VMTypes[i].Name}
		}
	}

	return cfg, nil
}

// VMTypeNames returns the VM type names in declared order.
func (c *Config) VMTypeNames() []string {
	names := make([]string, len(c.VMTypes))
	for i, vt := range c.VMTypes {
		names[i] = vt.Name
	}
	return names
}
