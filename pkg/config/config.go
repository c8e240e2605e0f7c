package config

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotConfigured means no Gemini API key is on disk. The REPL refuses to
// start until setup has run.
var ErrNotConfigured = errors.New("no API key configured; run 'twincli config' to set one up")

// Config holds the keys TwinCLI needs: the Gemini API key and the
// Serper.dev key used by the search_web tool.
type Config struct {
	APIKey       string `json:"api_key"`
	SerperAPIKey string `json:"serper_api_key"`
}

// Path returns the config file location, ~/.twincli/config.json.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}
	return filepath.Join(home, ".twincli", "config.json"), nil
}

// Dir returns the directory holding the config file and session logs.
func Dir() (string, error) {
	p, err := Path()
	if err != nil {
		return "", err
	}
	return filepath.Dir(p), nil
}

// Load reads the config file. A missing file or empty api_key yields
// ErrNotConfigured.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotConfigured
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	return &cfg, nil
}

// Save writes keys to the config file, merging with any existing config:
// empty arguments leave the stored value untouched.
func Save(apiKey, serperKey string) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	existing := Config{}
	if data, err := os.ReadFile(path); err == nil {
		// Best effort; a corrupt file is simply replaced.
		_ = json.Unmarshal(data, &existing)
	}

	if k := strings.TrimSpace(apiKey); k != "" {
		existing.APIKey = k
	}
	if k := strings.TrimSpace(serperKey); k != "" {
		existing.SerperAPIKey = k
	}

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// RunSetup prompts for both keys on the terminal and saves them.
func RunSetup(in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprintln(out, "Enter your Gemini API key (blank to keep current):")
	fmt.Fprint(out, "> ")
	apiKey, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}

	fmt.Fprintln(out, "Enter your Serper.dev API key for search (blank to keep current):")
	fmt.Fprint(out, "> ")
	serperKey, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}

	if err := Save(strings.TrimSpace(apiKey), strings.TrimSpace(serperKey)); err != nil {
		return err
	}
	fmt.Fprintln(out, "Keys saved.")
	return nil
}
