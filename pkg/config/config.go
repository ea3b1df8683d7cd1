/*
Package config manages the TOML config for wordguard.

A missing file is created with defaults. A file that fails to decode is
recovered section by section: every value that still parses is kept, the
rest fall back to defaults. Config problems never stop startup.
*/
package config

import (
	"github.com/bastiangx/wordguard/internal/utils"
	"github.com/bastiangx/wordguard/pkg/dictionary"
	"github.com/bastiangx/wordguard/pkg/filter"
	"github.com/charmbracelet/log"
)

// FileName is the config file name inside the config dir.
const FileName = "wordguard.toml"

// Config holds the entire config structure
type Config struct {
	Dict   DictConfig   `toml:"dict"`
	Build  BuildConfig  `toml:"build"`
	Filter FilterConfig `toml:"filter"`
	Server ServerConfig `toml:"server"`
}

// DictConfig holds options for opening a compiled dictionary.
type DictConfig struct {
	Path         string `toml:"path"`
	Mmap         bool   `toml:"mmap"`
	CacheEntries int    `toml:"cache_entries"`
	Normalize    bool   `toml:"normalize"`
}

// BuildConfig holds word list compiler options.
type BuildConfig struct {
	SourceEncoding string `toml:"source_encoding"`
	Strict         bool   `toml:"strict"`
}

// FilterConfig holds matching options.
// An empty StopChars disables stop characters, so words may match across
// spaces and punctuation.
type FilterConfig struct {
	StopChars   string `toml:"stop_chars"`
	Replacement string `toml:"replacement"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxTextLen int `toml:"max_text_len"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Dict: DictConfig{
			Path:         "data/dict.bin",
			Mmap:         false,
			CacheEntries: 4096,
			Normalize:    false,
		},
		Build: BuildConfig{
			SourceEncoding: "utf-8",
			Strict:         false,
		},
		Filter: FilterConfig{
			StopChars:   filter.DefaultStops,
			Replacement: "***",
		},
		Server: ServerConfig{
			MaxTextLen: 65536,
		},
	}
}

// OpenOptions translates the [dict] section for dictionary.Open.
func (c *Config) OpenOptions() []dictionary.OpenOption {
	return []dictionary.OpenOption{
		dictionary.WithMmap(c.Dict.Mmap),
		dictionary.WithCache(c.Dict.CacheEntries),
	}
}

// SourceOptions translates the [build] section for dictionary.Make.
func (c *Config) SourceOptions() []dictionary.SourceOption {
	return []dictionary.SourceOption{
		dictionary.WithEncoding(c.Build.SourceEncoding),
		dictionary.WithStrict(c.Build.Strict),
		dictionary.WithNormalize(c.Dict.Normalize),
	}
}

// FilterOptions translates the [filter] section for filter.New.
func (c *Config) FilterOptions() []filter.Option {
	return []filter.Option{
		filter.WithStops(c.Filter.StopChars),
		filter.WithNormalize(c.Dict.Normalize),
	}
}

// validate replaces values that cannot work with their defaults.
func (c *Config) validate() {
	def := DefaultConfig()
	if c.Dict.CacheEntries < 0 {
		log.Warnf("cache_entries %d is negative, using %d", c.Dict.CacheEntries, def.Dict.CacheEntries)
		c.Dict.CacheEntries = def.Dict.CacheEntries
	}
	if c.Server.MaxTextLen <= 0 {
		log.Warnf("max_text_len %d is not positive, using %d", c.Server.MaxTextLen, def.Server.MaxTextLen)
		c.Server.MaxTextLen = def.Server.MaxTextLen
	}
}

// GetDefaultConfigPath returns the default path for wordguard.toml
func GetDefaultConfigPath() (string, error) {
	pr, err := utils.NewPathResolver()
	if err != nil {
		return "", err
	}
	return pr.GetConfigPath(FileName)
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from -config flag
// 2. Default path: [UserConfigDir]/wordguard/wordguard.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if utils.FileExists(customConfigPath) {
			config, err := LoadConfig(customConfigPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
		} else {
			log.Warnf("Custom config file not found at %s. Trying default path...", customConfigPath)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.validate()
	return config, nil
}

// tryPartialParse keeps whatever sections still parse as generic TOML.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		extractDictConfig(section, &config.Dict)
	}
	if section, ok := utils.ExtractSection(tempConfig, "build"); ok {
		extractBuildConfig(section, &config.Build)
	}
	if section, ok := utils.ExtractSection(tempConfig, "filter"); ok {
		extractFilterConfig(section, &config.Filter)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		if val, ok := utils.ExtractInt64(section, "max_text_len"); ok {
			config.Server.MaxTextLen = val
		}
	}
	config.validate()
	return config, nil
}

func extractDictConfig(data map[string]any, dict *DictConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		dict.Path = val
	}
	if val, ok := utils.ExtractBool(data, "mmap"); ok {
		dict.Mmap = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_entries"); ok {
		dict.CacheEntries = val
	}
	if val, ok := utils.ExtractBool(data, "normalize"); ok {
		dict.Normalize = val
	}
}

func extractBuildConfig(data map[string]any, build *BuildConfig) {
	if val, ok := utils.ExtractString(data, "source_encoding"); ok {
		build.SourceEncoding = val
	}
	if val, ok := utils.ExtractBool(data, "strict"); ok {
		build.Strict = val
	}
}

func extractFilterConfig(data map[string]any, f *FilterConfig) {
	if val, ok := utils.ExtractString(data, "stop_chars"); ok {
		f.StopChars = val
	}
	if val, ok := utils.ExtractString(data, "replacement"); ok {
		f.Replacement = val
	}
}

// RebuildConfigFile force creates a new wordguard.toml at the default path
func RebuildConfigFile() (string, error) {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return "", err
	}
	return defaultPath, SaveConfig(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		return "builtin defaults"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
