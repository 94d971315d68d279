// Package config loads the enumerated configuration surface (spec.md §6)
// via viper, the pack's consensus config library, and resolves the
// ${mapname}/${tempdir}/${ENV_VAR} path substitutions and ~/ expansion.
// ${timestamp} gets no special value: it is looked up like any other
// environment variable.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// TestSet is one entry of the `testsets` config array: a named query with
// its expected coordinates, used to drive the engine in test-set mode
// instead of serving HTTP.
type TestSet struct {
	Name               string
	Text               string
	Latitude           []float64
	Longitude          []float64
	SVGOutputFilename  string
}

// Config is the fully-resolved configuration: every path field has already
// had its ${...} variables substituted and ~/ expanded.
type Config struct {
	TempDir          string
	MapName          string
	OSMPBFFilename   string
	StopwordFilename string
	LogFile          string
	LogLevel         string

	HTTPPort         int // 0 means absent: run in test-set mode
	HTTPInterface    string
	HTTPPublicFiles  string

	TestSets []TestSet
}

// Load reads configuration from path (any format viper supports: yaml,
// json, toml) merged with environment variable overrides, and returns a
// Config with every path field resolved.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()

	v.SetDefault("loglevel", "info")
	v.SetDefault("http_interface", "loop")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	raw := &Config{
		TempDir:          v.GetString("tempdir"),
		MapName:          v.GetString("mapname"),
		OSMPBFFilename:   v.GetString("osmpbffilename"),
		StopwordFilename: v.GetString("stopwordfilename"),
		LogFile:          v.GetString("logfile"),
		LogLevel:         v.GetString("loglevel"),
		HTTPPort:         v.GetInt("http_port"),
		HTTPInterface:    v.GetString("http_interface"),
		HTTPPublicFiles:  v.GetString("http_public_files"),
	}

	var sets []TestSet
	if err := v.UnmarshalKey("testsets", &sets); err != nil {
		return nil, fmt.Errorf("config: testsets: %w", err)
	}
	raw.TestSets = sets

	if err := raw.resolvePaths(); err != nil {
		return nil, err
	}
	return raw, nil
}

// resolvePaths substitutes ${mapname}/${tempdir}/${ENV_VAR} and expands a leading ~/ in every path-shaped field. tempdir and
// mapname are resolved first since other fields may reference them.
func (c *Config) resolvePaths() error {
	var err error
	if c.TempDir, err = expandHome(c.TempDir); err != nil {
		return err
	}

	vars := map[string]string{
		"tempdir": c.TempDir,
		"mapname": c.MapName,
	}

	for _, field := range []*string{
		&c.OSMPBFFilename, &c.StopwordFilename, &c.LogFile, &c.HTTPPublicFiles,
	} {
		*field = substitute(*field, vars)
		*field, err = expandHome(*field)
		if err != nil {
			return err
		}
	}
	for i := range c.TestSets {
		c.TestSets[i].SVGOutputFilename, err = expandHome(substitute(c.TestSets[i].SVGOutputFilename, vars))
		if err != nil {
			return err
		}
	}
	return nil
}

// substitute replaces the ${name} references in s whose name is a key of
// vars, then replaces every remaining ${NAME} with the value of the
// environment variable NAME (empty when unset). ${timestamp} is not given
// a time value: like any other unknown name it becomes the value of the
// environment variable "timestamp", usually the empty string.
func substitute(s string, vars map[string]string) string {
	if s == "" {
		return s
	}
	for name, value := range vars {
		s = strings.ReplaceAll(s, "${"+name+"}", value)
	}
	// ${ENV_VAR} for anything not already covered above.
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			break
		}
		end := strings.Index(s[start:], "}")
		if end < 0 {
			break
		}
		name := s[start+2 : start+end]
		s = s[:start] + os.Getenv(name) + s[start+end+1:]
	}
	return s
}

// expandHome expands a leading ~/ to the current user's home directory.
func expandHome(s string) (string, error) {
	if !strings.HasPrefix(s, "~/") {
		return s, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: expand ~/: %w", err)
	}
	return filepath.Join(home, s[2:]), nil
}

// SnapshotPath builds the path for one of the eight snapshot files
// (spec.md §6: "<mapname>.<suffix>" directly under tempdir).
func (c *Config) SnapshotPath(suffix string) string {
	return filepath.Join(c.TempDir, c.MapName+"."+suffix)
}
