// Package config resolves seedkit's configuration surface from spec.md
// §6: CLI flag > environment variable > local env file > config file >
// defaults, grounded on the teacher's internal/config/config.go
// viper+godotenv layering.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type GenerateConfig struct {
	Rows     int    `mapstructure:"rows"`
	Seed     int64  `mapstructure:"seed"`
	Format   string `mapstructure:"format"`
	Copy     bool   `mapstructure:"copy"`
	Include  []string `mapstructure:"include"`
	Exclude  []string `mapstructure:"exclude"`
	FromLock bool   `mapstructure:"from_lock"`
	Force    bool   `mapstructure:"force"`
	Subset   string `mapstructure:"subset"`
}

type TableConfig struct {
	Rows int `mapstructure:"rows"`
}

type ColumnOverrideConfig struct {
	Values  []string  `mapstructure:"values"`
	Weights []float64 `mapstructure:"weights"`
}

type GraphConfig struct {
	BreakCycleAt []string `mapstructure:"break_cycle_at"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// Config is the resolved configuration surface enumerated in spec.md §6,
// unmarshaled from seedkit.config.json/.yaml (viper.Unmarshal, mirroring
// the teacher's Config struct shape) with environment variables taking
// precedence via viper's AutomaticEnv; CLI flags are applied on top of the
// returned Config by the cmd package.
type Config struct {
	Database DatabaseConfig                  `mapstructure:"database"`
	Generate GenerateConfig                  `mapstructure:"generate"`
	Tables   map[string]TableConfig          `mapstructure:"tables"`
	Columns  map[string]ColumnOverrideConfig  `mapstructure:"columns"`
	Graph    GraphConfig                     `mapstructure:"graph"`
}

// DefaultFilename is the config file name the teacher's convention
// (flash.config.json) is adapted to for this project.
const DefaultFilename = "seedkit.config"

// Load resolves configuration following spec.md §6's precedence: local
// .env.local/.env files are loaded into the process environment first,
// without replacing variables that are already set (.env.local wins over
// .env), then a seedkit.config.{json,yaml} file is merged in, then viper's
// AutomaticEnv lets SEEDKIT_* environment variables override file values.
// CLI flags are not read here; the cmd package applies them on top of the
// returned Config.
func Load(configDir string) (*Config, error) {
	loadDotEnv(configDir)

	v := viper.New()
	v.SetConfigName(DefaultFilename)
	v.SetConfigType("json")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	v.SetEnvPrefix("SEEDKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && filepath.Ext(v.ConfigFileUsed()) == ".json" {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// No seedkit.config.json was read (none exists, or viper found the
		// .yaml/.yml form, which the json config type cannot parse); fall
		// back to the YAML form, parsed with yaml.v3 directly and merged so
		// SEEDKIT_* env vars still override it.
		if yamlMap, ok := loadYAMLConfig(configDir); ok {
			if err := v.MergeConfigMap(yamlMap); err != nil {
				return nil, fmt.Errorf("merge yaml config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// loadYAMLConfig looks for seedkit.config.yaml/.yml and parses it with
// yaml.v3 into a generic map, suitable for viper.MergeConfigMap.
func loadYAMLConfig(dir string) (map[string]interface{}, bool) {
	for _, name := range []string{"seedkit.config.yaml", "seedkit.config.yml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var raw map[string]interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			continue
		}
		return raw, true
	}
	return nil, false
}

func loadDotEnv(dir string) {
	candidates := []string{
		filepath.Join(dir, ".env.local"),
		filepath.Join(dir, ".env"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
		}
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("generate.rows", 10)
	v.SetDefault("generate.seed", int64(42))
	v.SetDefault("generate.format", "sql")
	v.SetDefault("generate.copy", false)
	v.SetDefault("generate.from_lock", false)
	v.SetDefault("generate.force", false)
	v.SetDefault("database.url", os.Getenv("DATABASE_URL"))
}

// Validate checks the resolved configuration against spec.md §6's
// enumerated surface, returning a ConfigInvalid-shaped error the caller
// wraps into seedkiterr.ConfigInvalid.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	switch c.Generate.Format {
	case "", "sql", "copy", "json", "csv", "direct":
	default:
		return fmt.Errorf("generate.format %q is not one of sql|copy|json|csv|direct", c.Generate.Format)
	}
	return nil
}

// RowsFor resolves spec.md §4.3's row-count precedence:
// config.tables[T].rows, else config.generate.rows, else 10.
func (c *Config) RowsFor(table string) int {
	if t, ok := c.Tables[table]; ok && t.Rows > 0 {
		return t.Rows
	}
	if c.Generate.Rows > 0 {
		return c.Generate.Rows
	}
	return 10
}
