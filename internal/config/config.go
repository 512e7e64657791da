package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	fileName        = "config.yaml"
	historyFileName = "history.db"
)

// Config holds resolved tracker connection settings.
type Config struct {
	Server string `yaml:"server"`
	Email  string `yaml:"email"`
	Token  string `yaml:"token"`
	Listen string `yaml:"listen,omitempty"`

	// Path is the config file the settings were loaded from, empty when
	// nothing was found on disk.
	Path string `yaml:"-"`
}

// Home returns the jex configuration directory: $JEX_HOME when set,
// otherwise ~/.config/jex.
func Home() (string, error) {
	if dir := os.Getenv("JEX_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "jex"), nil
}

// FilePath returns the config file location under Home.
func FilePath() (string, error) {
	dir, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// HistoryPath returns the export journal location under Home.
func HistoryPath() (string, error) {
	dir, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, historyFileName), nil
}

// Resolve loads the config file when present, applies environment
// overrides, and normalizes the result. A missing file is not an error;
// Validate reports what is still unset.
func Resolve() (*Config, error) {
	cfg := &Config{}

	path, err := FilePath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		cfg.Path = path
	case os.IsNotExist(err):
		// environment only
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	applyEnv(cfg)
	normalize(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("JIRA_API_URL"); v != "" {
		cfg.Server = v
	}
	if v := os.Getenv("JIRA_API_USER"); v != "" {
		cfg.Email = v
	} else if v := os.Getenv("JIRA_EMAIL"); v != "" {
		cfg.Email = v
	}
	if v := os.Getenv("JIRA_API_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("JEX_ADDR"); v != "" {
		cfg.Listen = v
	}
}

// normalize cleans up the forms people actually paste: servers without a
// scheme or with trailing slashes, tokens with stray whitespace, and the
// combined "email:token" credential form.
func normalize(cfg *Config) {
	cfg.Server = strings.TrimSpace(cfg.Server)
	cfg.Server = strings.TrimRight(cfg.Server, "/")
	if cfg.Server != "" && !strings.Contains(cfg.Server, "://") {
		cfg.Server = "https://" + cfg.Server
	}

	cfg.Email = strings.TrimSpace(cfg.Email)
	cfg.Token = strings.TrimSpace(cfg.Token)
	if email, token, found := strings.Cut(cfg.Token, ":"); found && strings.Contains(email, "@") {
		if cfg.Email == "" {
			cfg.Email = email
		}
		cfg.Token = token
	}
}

// Validate reports the first connection setting still missing after file
// and environment resolution.
func (c *Config) Validate() error {
	if c.Server == "" {
		return errors.New("tracker server URL is not configured: set JIRA_API_URL or run jex init")
	}
	if c.Email == "" {
		return errors.New("tracker account email is not configured: set JIRA_API_USER or run jex init")
	}
	if c.Token == "" {
		return errors.New("tracker API token is not configured: set JIRA_API_TOKEN or run jex init")
	}
	return nil
}

// Write persists the config under Home. The file carries a credential, so
// it is written owner-only. Values are normalized first so the file holds
// the same canonical form Resolve produces.
func (c *Config) Write() (string, error) {
	normalize(c)

	path, err := FilePath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	return path, nil
}

// Exists reports whether a config file is already present under Home.
// It returns an error for non-existence failures (e.g. permission errors).
func Exists() (bool, error) {
	path, err := FilePath()
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
