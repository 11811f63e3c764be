package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	CMHealth CMHealthConfig `yaml:"cmhealth"`
}

// CMHealthConfig is the project configuration.
type CMHealthConfig struct {
	Workspace WorkspaceConfig `yaml:"workspace"`
	Status    StatusConfig    `yaml:"status"`
	Activity  ActivityConfig  `yaml:"activity"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// WorkspaceConfig locates the working directory that holds the input
// spreadsheets.
type WorkspaceConfig struct {
	Root string `yaml:"root"`
}

// StatusConfig holds the agent status vocabularies. Matching is
// case-insensitive; the inactive set is checked first.
type StatusConfig struct {
	Active   []string `yaml:"active"`
	Inactive []string `yaml:"inactive"`
	Success  []string `yaml:"success"`
}

// ActivityConfig holds the monitored aggregation process types.
type ActivityConfig struct {
	Monitored []string `yaml:"monitored"`
}

// PipelineConfig controls pipeline behavior.
type PipelineConfig struct {
	Workers int `yaml:"workers"`
}

// OutputConfig controls report artifact placement, relative to the workspace
// output folder unless absolute.
type OutputConfig struct {
	Workbook  string `yaml:"workbook"`
	Narrative string `yaml:"narrative"`
}

// LoggingConfig controls logging output.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a configuration with every default applied, used when no
// config file is present.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills unset fields. The status vocabularies default to the
// values the upstream appliance exports actually use.
func ApplyDefaults(cfg *Config) {
	c := &cfg.CMHealth

	if c.Workspace.Root == "" {
		c.Workspace.Root = "CM"
	}

	if len(c.Status.Active) == 0 {
		c.Status.Active = []string{"active", "up", "running", "connected", "online"}
	}
	if len(c.Status.Inactive) == 0 {
		c.Status.Inactive = []string{"inactive", "down", "stopped", "disconnected", "offline", "failed", "error"}
	}
	if len(c.Status.Success) == 0 {
		c.Status.Success = []string{"success", "done", "completed", "ok"}
	}

	if len(c.Activity.Monitored) == 0 {
		c.Activity.Monitored = []string{"Purge", "Export", "Archive"}
	}

	if c.Pipeline.Workers <= 0 {
		c.Pipeline.Workers = 4
	}

	if c.Output.Workbook == "" {
		c.Output.Workbook = "CM_report.xlsx"
	}
	if c.Output.Narrative == "" {
		c.Output.Narrative = "executive_report.md"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
