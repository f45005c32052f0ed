package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug          = "debug"
	ConfigDefaultDepth   = "default-depth"
	ConfigMaxDepth       = "max-depth"
	ConfigSearchTimeout  = "search-timeout"
	ConfigEngine         = "engine"
	ConfigSearchLogPath  = "search-log-path"
	ConfigHistoryFile    = "history-file"
	ConfigListenAddr     = "listen-addr"
	ConfigCPUProfile     = "cpu-profile"
	ConfigMemProfile     = "mem-profile"
	ConfigConfigFile     = "config"
	EngineAlphaBeta      = "alphabeta"
	EngineRandom         = "random"
	defaultSearchLogPath = "/tmp/saurus-search.log"
)

type Config struct {
	viper.Viper
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigDefaultDepth, 6)
	v.SetDefault(ConfigMaxDepth, 16)
	v.SetDefault(ConfigSearchTimeout, time.Duration(0))
	v.SetDefault(ConfigEngine, EngineAlphaBeta)
	v.SetDefault(ConfigSearchLogPath, defaultSearchLogPath)
	v.SetDefault(ConfigHistoryFile, "/tmp/saurus-readline.tmp")
	v.SetDefault(ConfigListenAddr, ":8088")
	v.SetDefault(ConfigCPUProfile, "")
	v.SetDefault(ConfigMemProfile, "")
}

// DefaultConfig returns a config with only the defaults set. Tests use it.
func DefaultConfig() *Config {
	c := &Config{Viper: *viper.New()}
	setDefaults(&c.Viper)
	return c
}

// Load reads flags from args, then SAURUS_* environment variables, then an
// optional YAML config file. Flags win over the environment, which wins
// over the file.
func (c *Config) Load(args []string) error {
	c.Viper = *viper.New()
	setDefaults(&c.Viper)

	fs := pflag.NewFlagSet("saurus", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Int(ConfigDefaultDepth, 6, "search depth used when none is given")
	fs.Int(ConfigMaxDepth, 16, "deepest search a caller may ask for")
	fs.Duration(ConfigSearchTimeout, 0, "abort searches after this long (0 means never)")
	fs.String(ConfigEngine, EngineAlphaBeta, "engine to use: alphabeta or random")
	fs.String(ConfigSearchLogPath, defaultSearchLogPath, "where `go -log` writes the search tree")
	fs.String(ConfigHistoryFile, "/tmp/saurus-readline.tmp", "shell history file")
	fs.String(ConfigListenAddr, ":8088", "address for the HTTP server")
	fs.String(ConfigCPUProfile, "", "write a CPU profile here")
	fs.String(ConfigMemProfile, "", "write a memory profile here")
	fs.String(ConfigConfigFile, "", "optional YAML config file")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	// Only bind flags that were actually given, so env vars and the config
	// file are not shadowed by flag defaults.
	fs.Visit(func(f *pflag.Flag) {
		if bindErr := c.BindPFlag(f.Name, f); bindErr != nil && err == nil {
			err = bindErr
		}
	})
	if err != nil {
		return err
	}

	c.SetEnvPrefix("SAURUS")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	if cfgFile, _ := fs.GetString(ConfigConfigFile); cfgFile != "" {
		c.SetConfigFile(cfgFile)
		if err := c.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
	}
	return c.validate()
}

func (c *Config) validate() error {
	if d := c.GetInt(ConfigDefaultDepth); d < 0 {
		return fmt.Errorf("%s must not be negative, got %d", ConfigDefaultDepth, d)
	}
	if c.GetInt(ConfigMaxDepth) < c.GetInt(ConfigDefaultDepth) {
		return fmt.Errorf("%s (%d) is smaller than %s (%d)", ConfigMaxDepth,
			c.GetInt(ConfigMaxDepth), ConfigDefaultDepth, c.GetInt(ConfigDefaultDepth))
	}
	switch e := c.GetString(ConfigEngine); e {
	case EngineAlphaBeta, EngineRandom:
	default:
		return fmt.Errorf("unknown engine %q", e)
	}
	return nil
}

// AdjustRelativePaths makes relative file paths relative to basepath
// (normally the directory of the executable).
func (c *Config) AdjustRelativePaths(basepath string) {
	for _, key := range []string{ConfigSearchLogPath, ConfigHistoryFile} {
		p := c.GetString(key)
		if p != "" && !filepath.IsAbs(p) {
			c.Set(key, filepath.Join(basepath, p))
		}
	}
}

// SanitizedSettings returns the settings for logging.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
