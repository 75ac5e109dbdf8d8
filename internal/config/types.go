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

// Package config types define the configuration structures used throughout
// sirseer-harvest. These types represent settings that can be loaded from
// YAML configuration files, environment variables, or command-line flags.
package config

import "time"

// Config represents the complete configuration for sirseer-harvest.
// It consolidates settings from various sources and is passed explicitly
// to the components that need it.
type Config struct {
	GitHub       GitHubConfig          `yaml:"github"`
	Defaults     DefaultsConfig        `yaml:"defaults"`
	Repositories map[string]RepoConfig `yaml:"repositories"`
	Retry        RetryConfig           `yaml:"retry"`
	RateLimit    RateLimitConfig       `yaml:"rate_limit"`
	Metrics      MetricsConfig         `yaml:"metrics"`
	Sheets       SheetsConfig          `yaml:"sheets"`
}

// GitHubConfig contains GitHub-specific settings including API endpoints
// and authentication configuration. This allows easy configuration for
// GitHub Enterprise deployments by specifying custom endpoints.
type GitHubConfig struct {
	APIEndpoint string `yaml:"api_endpoint"`
	// WebURL prefixes commit URLs in emitted records.
	WebURL   string `yaml:"web_url"`
	TokenEnv string `yaml:"token_env"`
	// Token is used as-is when set; otherwise TokenEnv is consulted.
	Token string `yaml:"token"`
}

// DefaultsConfig contains default settings that apply to all fetch operations
// unless overridden by repository-specific settings or command-line flags.
type DefaultsConfig struct {
	PageSize       int    `yaml:"page_size"`
	OutputDir      string `yaml:"output_dir"`
	CheckpointFile string `yaml:"checkpoint_file"`
	MetadataDir    string `yaml:"metadata_dir"`
	LogFile        string `yaml:"log_file"`
}

// RepoConfig maps a selector to an upstream repository, with an optional
// page size override.
type RepoConfig struct {
	Owner    string `yaml:"owner"`
	Name     string `yaml:"name"`
	PageSize int    `yaml:"page_size"`
}

// RetryConfig bounds how often a single API call is attempted.
type RetryConfig struct {
	MaxRetries       int           `yaml:"max_retries"`
	TransientBackoff time.Duration `yaml:"transient_backoff"`
	RateLimitBackoff time.Duration `yaml:"rate_limit_backoff"`
}

// RateLimitConfig controls proactive quota handling and whether progress
// is shown while fetching.
type RateLimitConfig struct {
	SafetyMargin      int           `yaml:"safety_margin"`
	ResetPadding      time.Duration `yaml:"reset_padding"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	ShowProgress      bool          `yaml:"show_progress"`
}

// MetricsConfig enables the Prometheus textfile written after each fetch.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// SheetsConfig configures the spreadsheet reconciliation command.
type SheetsConfig struct {
	CredentialsFile     string `yaml:"credentials_file"`
	SourceSpreadsheetID string `yaml:"source_spreadsheet_id"`
	TargetSpreadsheetID string `yaml:"target_spreadsheet_id"`
	SourceRange         string `yaml:"source_range"`
	TargetRange         string `yaml:"target_range"`
	UpdateSheet         string `yaml:"update_sheet"`
	UpdateColumn        string `yaml:"update_column"`
	ResumeFile          string `yaml:"resume_file"`
}

// DefaultConfig returns a Config with sensible defaults suitable for most
// use cases. These defaults are optimized for public GitHub.com usage but
// can be overridden for GitHub Enterprise or special requirements.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			APIEndpoint: "https://api.github.com",
			WebURL:      "https://github.com",
			TokenEnv:    "GITHUB_TOKEN",
		},
		Defaults: DefaultsConfig{
			PageSize:       100,
			OutputDir:      "output",
			CheckpointFile: "last_state.json",
		},
		Repositories: map[string]RepoConfig{
			"lsb": {Owner: "LandSandBoat", Name: "server"},
			"asb": {Owner: "AirSkyBoat", Name: "AirSkyBoat"},
		},
		Retry: RetryConfig{
			MaxRetries:       3,
			TransientBackoff: 5 * time.Second,
			RateLimitBackoff: 60 * time.Second,
		},
		RateLimit: RateLimitConfig{
			SafetyMargin: 5,
			ResetPadding: 10 * time.Second,
			ShowProgress: true,
		},
		Sheets: SheetsConfig{
			SourceRange:  "Sheet1!A:D",
			TargetRange:  "Sheet1!E:E",
			UpdateSheet:  "Sheet1",
			UpdateColumn: "B",
			ResumeFile:   "last_processed_row.txt",
		},
	}
}
