package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/viewspace/internal/associate"
	"github.com/danielpatrickdp/viewspace/internal/cluster"
	"github.com/danielpatrickdp/viewspace/internal/similarity"
)

type ValueSource string

const (
	SourceDefault ValueSource = "default"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
)

// ResolvedValue records where a setting came from.
type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

// #region config
// Config is the resolved runtime configuration.
type Config struct {
	ConfigPath string `json:"config_path,omitempty"`

	DBPath      string             `json:"db_path"`
	RemoteAddr  string             `json:"remote_addr"`
	UseRemote   bool               `json:"use_remote"`
	MaxGroups   int                `json:"max_groups"`
	Cluster     cluster.Config     `json:"-"`
	Weights     similarity.Weights `json:"weights"`
	Association associate.Config   `json:"-"`
	HTTPAddr    string             `json:"http_addr"`
	CORSOrigins []string           `json:"cors_origins"`

	Sources map[string]ResolvedValue `json:"sources"`
}

// Default returns the built-in configuration.
func Default() Config {
	c := Config{
		DBPath:      "viewspace.db",
		MaxGroups:   10,
		Cluster:     cluster.DefaultConfig(),
		Weights:     similarity.DefaultWeights(),
		Association: associate.DefaultConfig(),
		HTTPAddr:    ":8080",
		CORSOrigins: []string{"*"},
		Sources:     map[string]ResolvedValue{},
	}
	c.Association.Limit = 20
	for _, s := range settings {
		c.Sources[s.name] = ResolvedValue{Value: s.format(&c), Source: SourceDefault, From: "built-in default"}
	}
	return c
}

// #endregion config

// #region file-config
type fileConfig struct {
	DBPath      string   `yaml:"db_path"`
	HTTPAddr    string   `yaml:"http_addr"`
	CORSOrigins []string `yaml:"cors_origins"`
	Cluster     struct {
		MaxGroups     *int                `yaml:"max_groups"`
		Threshold     *float64            `yaml:"threshold"`
		UseRemote     *bool               `yaml:"use_remote"`
		RemoteAddr    string              `yaml:"remote_addr"`
		RemoteTimeout string              `yaml:"remote_timeout"`
		RemoteRetries *int                `yaml:"remote_retries"`
		Weights       *similarity.Weights `yaml:"weights"`
	} `yaml:"cluster"`
	Associations struct {
		InterestWeight *float64 `yaml:"interest_weight"`
		Limit          *int     `yaml:"limit"`
	} `yaml:"associations"`
}

// #endregion file-config

// #region load
// Load resolves configuration: built-in defaults, then the YAML file at
// path (if it exists), then VIEWSPACE_* environment variables.
func Load(path string) (Config, error) {
	c := Default()
	path = strings.TrimSpace(path)
	if path == "" {
		path = strings.TrimSpace(os.Getenv("VIEWSPACE_CONFIG"))
	}
	c.ConfigPath = path

	if path != "" {
		fc, err := loadFile(path)
		if err != nil {
			return c, err
		}
		if fc != nil {
			if err := c.applyFile(fc, path); err != nil {
				return c, err
			}
		}
	}

	for _, s := range settings {
		v := strings.TrimSpace(os.Getenv(s.env))
		if v == "" {
			continue
		}
		if err := s.parse(&c, v); err != nil {
			return c, fmt.Errorf("%s: %w", s.env, err)
		}
		c.Sources[s.name] = ResolvedValue{Value: s.format(&c), Source: SourceEnv, From: s.env}
	}

	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func loadFile(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &fc, nil
}

func (c *Config) applyFile(fc *fileConfig, path string) error {
	set := func(name string) {
		for _, s := range settings {
			if s.name == name {
				c.Sources[name] = ResolvedValue{Value: s.format(c), Source: SourceConfig, From: path}
				return
			}
		}
	}

	if v := strings.TrimSpace(fc.DBPath); v != "" {
		c.DBPath = v
		set("db_path")
	}
	if v := strings.TrimSpace(fc.HTTPAddr); v != "" {
		c.HTTPAddr = v
		set("http_addr")
	}
	if len(fc.CORSOrigins) > 0 {
		c.CORSOrigins = fc.CORSOrigins
		set("cors_origins")
	}
	if fc.Cluster.MaxGroups != nil {
		c.MaxGroups = *fc.Cluster.MaxGroups
		set("max_groups")
	}
	if fc.Cluster.Threshold != nil {
		c.Cluster.Threshold = *fc.Cluster.Threshold
		set("threshold")
	}
	if fc.Cluster.UseRemote != nil {
		c.UseRemote = *fc.Cluster.UseRemote
		set("use_remote")
	}
	if v := strings.TrimSpace(fc.Cluster.RemoteAddr); v != "" {
		c.RemoteAddr = v
		set("remote_addr")
	}
	if v := strings.TrimSpace(fc.Cluster.RemoteTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing %s: remote_timeout: %w", path, err)
		}
		c.Cluster.RemoteTimeout = d
		set("remote_timeout")
	}
	if fc.Cluster.RemoteRetries != nil {
		c.Cluster.RemoteRetries = *fc.Cluster.RemoteRetries
		set("remote_retries")
	}
	if fc.Cluster.Weights != nil {
		c.Weights = *fc.Cluster.Weights
		set("weights")
	}
	if fc.Associations.InterestWeight != nil {
		c.Association.InterestWeight = *fc.Associations.InterestWeight
		set("interest_weight")
	}
	if fc.Associations.Limit != nil {
		c.Association.Limit = *fc.Associations.Limit
		set("association_limit")
	}
	return nil
}

// #endregion load

// #region validate
// Validate checks ranges that would otherwise surface as odd behavior later.
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	if c.Cluster.Threshold <= 0 || c.Cluster.Threshold > 1 {
		return fmt.Errorf("threshold must be in (0, 1], got %v", c.Cluster.Threshold)
	}
	if c.MaxGroups < 0 {
		return fmt.Errorf("max_groups must be >= 0, got %d", c.MaxGroups)
	}
	if c.Cluster.RemoteTimeout <= 0 {
		return fmt.Errorf("remote_timeout must be positive, got %s", c.Cluster.RemoteTimeout)
	}
	if c.Cluster.RemoteRetries < 0 {
		return fmt.Errorf("remote_retries must be >= 0, got %d", c.Cluster.RemoteRetries)
	}
	if c.Association.InterestWeight < 0 || c.Association.InterestWeight > 1 {
		return fmt.Errorf("interest_weight must be in [0, 1], got %v", c.Association.InterestWeight)
	}
	if c.Association.Limit < 0 {
		return fmt.Errorf("association_limit must be >= 0, got %d", c.Association.Limit)
	}
	if c.UseRemote && c.RemoteAddr == "" {
		return fmt.Errorf("use_remote requires remote_addr")
	}
	return nil
}

// #endregion validate

// #region settings
type setting struct {
	name   string
	env    string
	parse  func(c *Config, raw string) error
	format func(c *Config) string
}

var settings = []setting{
	{"db_path", "VIEWSPACE_DB",
		func(c *Config, raw string) error { c.DBPath = raw; return nil },
		func(c *Config) string { return c.DBPath }},
	{"remote_addr", "VIEWSPACE_REMOTE_ADDR",
		func(c *Config, raw string) error { c.RemoteAddr = raw; return nil },
		func(c *Config) string { return c.RemoteAddr }},
	{"use_remote", "VIEWSPACE_USE_REMOTE",
		func(c *Config, raw string) (err error) { c.UseRemote, err = strconv.ParseBool(raw); return },
		func(c *Config) string { return strconv.FormatBool(c.UseRemote) }},
	{"max_groups", "VIEWSPACE_MAX_GROUPS",
		func(c *Config, raw string) (err error) { c.MaxGroups, err = strconv.Atoi(raw); return },
		func(c *Config) string { return strconv.Itoa(c.MaxGroups) }},
	{"threshold", "VIEWSPACE_THRESHOLD",
		func(c *Config, raw string) (err error) {
			c.Cluster.Threshold, err = strconv.ParseFloat(raw, 64)
			return
		},
		func(c *Config) string { return formatFloat(c.Cluster.Threshold) }},
	{"remote_timeout", "VIEWSPACE_REMOTE_TIMEOUT",
		func(c *Config, raw string) (err error) {
			c.Cluster.RemoteTimeout, err = time.ParseDuration(raw)
			return
		},
		func(c *Config) string { return c.Cluster.RemoteTimeout.String() }},
	{"remote_retries", "VIEWSPACE_REMOTE_RETRIES",
		func(c *Config, raw string) (err error) { c.Cluster.RemoteRetries, err = strconv.Atoi(raw); return },
		func(c *Config) string { return strconv.Itoa(c.Cluster.RemoteRetries) }},
	{"interest_weight", "VIEWSPACE_INTEREST_WEIGHT",
		func(c *Config, raw string) (err error) {
			c.Association.InterestWeight, err = strconv.ParseFloat(raw, 64)
			return
		},
		func(c *Config) string { return formatFloat(c.Association.InterestWeight) }},
	{"association_limit", "VIEWSPACE_ASSOCIATION_LIMIT",
		func(c *Config, raw string) (err error) { c.Association.Limit, err = strconv.Atoi(raw); return },
		func(c *Config) string { return strconv.Itoa(c.Association.Limit) }},
	{"http_addr", "VIEWSPACE_HTTP_ADDR",
		func(c *Config, raw string) error { c.HTTPAddr = raw; return nil },
		func(c *Config) string { return c.HTTPAddr }},
	{"cors_origins", "VIEWSPACE_CORS_ORIGINS",
		func(c *Config, raw string) error { c.CORSOrigins = splitList(raw); return nil },
		func(c *Config) string { return strings.Join(c.CORSOrigins, ",") }},
	{"weights", "VIEWSPACE_WEIGHTS", parseWeights,
		func(c *Config) string {
			return formatFloat(c.Weights.Dimension) + "," + formatFloat(c.Weights.Measure) + "," + formatFloat(c.Weights.Profile)
		}},
}

// parseWeights reads "dimension,measure,profile".
func parseWeights(c *Config, raw string) error {
	parts := splitList(raw)
	if len(parts) != 3 {
		return fmt.Errorf("expected 3 comma-separated weights, got %q", raw)
	}
	var vals [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return fmt.Errorf("weight %d: %w", i, err)
		}
		vals[i] = v
	}
	c.Weights = similarity.Weights{Dimension: vals[0], Measure: vals[1], Profile: vals[2]}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// #endregion settings
