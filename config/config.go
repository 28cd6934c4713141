// Package config loads the optional YAML settings file read by the loxgo CLI.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is looked up in the user's home directory when no path is given.
const FileName = ".loxgo.yaml"

// Config holds REPL presentation settings. Fields absent from the file keep
// their Default values.
type Config struct {
	Prompt      string `yaml:"prompt"`
	HistoryFile string `yaml:"history_file"`
	Banner      bool   `yaml:"banner"`
	Color       bool   `yaml:"color"`

	// Path is the file the settings came from; empty for defaults.
	Path string `yaml:"-"`
}

// ValidationError aggregates config validation failures.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "config: %s is invalid:", e.Path)
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

func Default() *Config {
	return &Config{
		Prompt:      "> ",
		HistoryFile: "~/.loxgo_history",
		Banner:      true,
	}
}

// Load reads settings from path. An empty path means $HOME/.loxgo.yaml,
// which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return Default(), nil
		}
		path = filepath.Join(home, FileName)
	}

	file, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	cfg, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Path = path
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode reads one YAML document over the defaults. Unknown keys are errors;
// an empty document yields the defaults.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	errs := ValidationError{Path: c.Path}
	if strings.ContainsAny(c.Prompt, "\r\n") {
		errs.Issues = append(errs.Issues, "prompt must be a single line")
	}
	if c.HistoryFile != "" && strings.HasSuffix(c.HistoryFile, string(filepath.Separator)) {
		errs.Issues = append(errs.Issues, "history_file must name a file, not a directory")
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// HistoryPath returns HistoryFile with a leading ~ expanded. An empty result
// disables history.
func (c *Config) HistoryPath() string {
	p := c.HistoryFile
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}
