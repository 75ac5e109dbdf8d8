// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides configuration management for sirseer-harvest with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables (a .env file in the working directory is
//     loaded first without overriding variables already set)
//  3. Repository-specific configuration
//  4. Global configuration file
//  5. Built-in defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	harvesterrors "github.com/sirseerhq/sirseer-harvest/internal/errors"
)

// DotEnvFile is loaded by LoadConfig when present.
var DotEnvFile = ".env"

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise, it searches standard locations:
//   - .harvest.yaml (current directory)
//   - .harvest.yml (current directory)
//   - ~/.harvest/config.yaml
//
// Returns an error if the specified config file cannot be loaded, but will
// succeed with defaults if no config file is found in standard locations.
func LoadConfig(configPath string) (*Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		defaultPaths := []string{
			".harvest.yaml",
			".harvest.yml",
			filepath.Join(os.Getenv("HOME"), ".harvest", "config.yaml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	applyEnvOverrides(cfg)

	cfg.Defaults.OutputDir = expandPath(cfg.Defaults.OutputDir)
	cfg.Defaults.CheckpointFile = expandPath(cfg.Defaults.CheckpointFile)
	cfg.Defaults.MetadataDir = expandPath(cfg.Defaults.MetadataDir)
	cfg.Defaults.LogFile = expandPath(cfg.Defaults.LogFile)
	cfg.Metrics.Textfile = expandPath(cfg.Metrics.Textfile)
	cfg.Sheets.CredentialsFile = expandPath(cfg.Sheets.CredentialsFile)
	cfg.Sheets.ResumeFile = expandPath(cfg.Sheets.ResumeFile)

	return cfg, nil
}

// loadDotEnv loads path into the environment when it exists.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if endpoint := os.Getenv("GITHUB_API_ENDPOINT"); endpoint != "" {
		cfg.GitHub.APIEndpoint = endpoint
	}

	if pageSize := os.Getenv("HARVEST_PAGE_SIZE"); pageSize != "" {
		if size, err := parsePositiveInt(pageSize); err == nil {
			cfg.Defaults.PageSize = size
		}
	}
	if dir := os.Getenv("HARVEST_OUTPUT_DIR"); dir != "" {
		cfg.Defaults.OutputDir = dir
	}
	if file := os.Getenv("HARVEST_CHECKPOINT_FILE"); file != "" {
		cfg.Defaults.CheckpointFile = file
	}
	if file := os.Getenv("HARVEST_LOG_FILE"); file != "" {
		cfg.Defaults.LogFile = file
	}

	if retries := os.Getenv("HARVEST_MAX_RETRIES"); retries != "" {
		if n, err := parsePositiveInt(retries); err == nil {
			cfg.Retry.MaxRetries = n
		}
	}

	if show := os.Getenv("HARVEST_SHOW_PROGRESS"); show != "" {
		cfg.RateLimit.ShowProgress = parseBool(show)
	}
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home := os.Getenv("HOME")
		if home == "" {
			home = os.Getenv("USERPROFILE") // Windows
		}
		path = filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// parsePositiveInt parses a string to a positive integer
func parsePositiveInt(s string) (int, error) {
	var i int
	_, err := fmt.Sscanf(s, "%d", &i)
	if err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i <= 0 {
		return 0, fmt.Errorf("value must be positive, got: %d", i)
	}
	return i, nil
}

// parseBool parses various boolean representations
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}

// Repository resolves a selector such as "lsb" to its repository settings.
func (c *Config) Repository(selector string) (RepoConfig, error) {
	repo, ok := c.Repositories[selector]
	if !ok {
		return RepoConfig{}, fmt.Errorf("%w: %q (known: %s)",
			harvesterrors.ErrUnknownRepository, selector, strings.Join(c.Selectors(), ", "))
	}
	return repo, nil
}

// Selectors returns the configured selectors in sorted order.
func (c *Config) Selectors() []string {
	selectors := make([]string, 0, len(c.Repositories))
	for s := range c.Repositories {
		selectors = append(selectors, s)
	}
	sort.Strings(selectors)
	return selectors
}

// GetPageSize returns the effective page size for a selector, taking
// into account repository-specific overrides.
func (c *Config) GetPageSize(selector string) int {
	if repoConfig, ok := c.Repositories[selector]; ok && repoConfig.PageSize > 0 {
		return repoConfig.PageSize
	}
	return c.Defaults.PageSize
}

// GetToken returns the configured token, falling back to the environment
// variable named by TokenEnv.
func (c *Config) GetToken() string {
	if c.GitHub.Token != "" {
		return c.GitHub.Token
	}
	if c.GitHub.TokenEnv == "" {
		return ""
	}
	return os.Getenv(c.GitHub.TokenEnv)
}

// Validate checks if the configuration contains valid values. It ensures
// page sizes are within GitHub's limits, endpoints are not empty, and
// other constraints are met. This should be called after loading configuration
// to catch invalid settings early.
func (c *Config) Validate() error {
	if err := validatePageSize("default page size", c.Defaults.PageSize); err != nil {
		return err
	}
	if c.GitHub.APIEndpoint == "" {
		return invalid("GitHub API endpoint cannot be empty")
	}
	if c.GitHub.WebURL == "" {
		return invalid("GitHub web URL cannot be empty")
	}
	if c.Defaults.CheckpointFile == "" {
		return invalid("checkpoint file cannot be empty")
	}
	if c.Retry.MaxRetries < 1 {
		return invalid("max retries must be at least 1, got: %d", c.Retry.MaxRetries)
	}
	if c.Retry.TransientBackoff < 0 || c.Retry.RateLimitBackoff < 0 {
		return invalid("retry backoff cannot be negative")
	}
	if c.RateLimit.SafetyMargin < 0 {
		return invalid("safety margin cannot be negative, got: %d", c.RateLimit.SafetyMargin)
	}
	if c.RateLimit.ResetPadding < 0 {
		return invalid("reset padding cannot be negative")
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		return invalid("requests per second cannot be negative")
	}
	for selector, repo := range c.Repositories {
		if repo.Owner == "" || repo.Name == "" {
			return invalid("repository %q needs both owner and name", selector)
		}
		if repo.PageSize != 0 {
			if err := validatePageSize(fmt.Sprintf("page size of %q", selector), repo.PageSize); err != nil {
				return err
			}
		}
	}
	return nil
}

func validatePageSize(what string, size int) error {
	if size <= 0 {
		return invalid("%s must be positive, got: %d", what, size)
	}
	if size > 100 {
		return invalid("%s %d exceeds GitHub API limit of 100", what, size)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", harvesterrors.ErrInvalidConfig, fmt.Sprintf(format, args...))
}
