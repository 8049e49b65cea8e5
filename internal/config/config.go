package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override file configuration.
const (
	EnvSiteURL = "TAGDROP_SITE_URL"
	EnvLogJSON = "TAGDROP_LOG_JSON"
)

// Config holds application configuration.
type Config struct {
	// SiteURL is the origin used to build term archive links (no trailing slash).
	SiteURL string `json:"site_url,omitempty"`

	// PermalinkBases maps a taxonomy name to the path segment of its archive
	// pages, e.g. {"post_tag": "tag"} yields <site_url>/tag/<slug>/.
	// Taxonomies without a base use query-string links.
	PermalinkBases map[string]string `json:"permalink_bases,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of tool groups to disable entirely
	// ("dropdown", "taxonomy", "term", "widget", "options").
	DisabledTypes []string `json:"disabled_types,omitempty"`

	// WebRateLimit is the sustained request rate (per second) the web UI accepts.
	// 0 disables rate limiting.
	WebRateLimit float64 `json:"web_rate_limit,omitempty"`

	// WebRateBurst is the token bucket size for WebRateLimit.
	WebRateBurst int `json:"web_rate_burst,omitempty"`

	// LogJSON switches logging to JSON output.
	LogJSON bool `json:"log_json,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SiteURL:        "http://localhost:8080",
		PermalinkBases: map[string]string{"post_tag": "tag"},
		WebRateLimit:   20,
		WebRateBurst:   40,
	}
}

// Load loads configuration from baseDir/config.json, then applies
// environment overrides from baseDir/.env and the process environment.
// Returns default config if neither exists.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg, filepath.Join(baseDir, ".env")); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithRepo loads configuration from both global (~/.tagdrop) and repo (.tagdrop) directories.
// Repo config is found by walking upward from startDir to find the nearest .tagdrop/config.json.
// Repo config takes precedence for scalar values; lists are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	cfg := Merge(Merge(DefaultConfig(), global), repo)
	if err := ApplyEnv(cfg, filepath.Join(globalDir, ".env")); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindRepoConfig walks upward from startDir to find the nearest .tagdrop/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".tagdrop", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ApplyEnv overlays environment variables on cfg. Non-empty variables in the
// process environment win over values from envFile; a missing envFile is
// not an error.
func ApplyEnv(cfg *Config, envFile string) error {
	fileVars, err := godotenv.Read(envFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		fileVars = map[string]string{}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}

	if v, ok := lookup(EnvSiteURL); ok && strings.TrimSpace(v) != "" {
		cfg.SiteURL = strings.TrimRight(strings.TrimSpace(v), "/")
	}
	if v, ok := lookup(EnvLogJSON); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.LogJSON = b
		}
	}
	return nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; lists are merged and deduplicated;
// permalink bases are merged key by key.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.SiteURL = strings.TrimRight(overlay.SiteURL, "/")
	if result.SiteURL == "" {
		result.SiteURL = base.SiteURL
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.WebRateLimit = overlay.WebRateLimit
	if result.WebRateLimit == 0 {
		result.WebRateLimit = base.WebRateLimit
	}

	result.WebRateBurst = overlay.WebRateBurst
	if result.WebRateBurst == 0 {
		result.WebRateBurst = base.WebRateBurst
	}

	result.LogJSON = base.LogJSON || overlay.LogJSON

	result.PermalinkBases = mergeStringMap(base.PermalinkBases, overlay.PermalinkBases)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

// PermalinkBase returns the archive path base for a taxonomy, or "".
func (c *Config) PermalinkBase(taxonomy string) string {
	if c == nil {
		return ""
	}
	return strings.Trim(c.PermalinkBases[taxonomy], "/")
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// mergeStringMap copies a then b into a new map; b wins on key collisions.
// An empty value in b removes the key.
func mergeStringMap(a, b map[string]string) map[string]string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	result := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		result[k] = v
	}
	for k, v := range b {
		if v == "" {
			delete(result, k)
			continue
		}
		result[k] = v
	}
	return result
}
