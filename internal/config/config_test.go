package config

import (
	"os"
	"path/filepath"
	"testing"
)

// clearEnv neutralizes any TAGDROP_* variables from the outer environment.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvSiteURL, "")
	t.Setenv(EnvLogJSON, "")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SiteURL != DefaultConfig().SiteURL {
		t.Fatalf("SiteURL = %q, want %q", cfg.SiteURL, DefaultConfig().SiteURL)
	}
	if cfg.PermalinkBase("post_tag") != "tag" {
		t.Fatalf("PermalinkBase(post_tag) = %q, want %q", cfg.PermalinkBase("post_tag"), "tag")
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "config.json"), `{"site_url": "https://example.com/", "permalink_bases": {"genre": "/genres/"}}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SiteURL != "https://example.com" {
		t.Fatalf("SiteURL = %q, want %q", cfg.SiteURL, "https://example.com")
	}
	if cfg.PermalinkBase("genre") != "genres" {
		t.Errorf("PermalinkBase(genre) = %q, want %q", cfg.PermalinkBase("genre"), "genres")
	}
	if cfg.PermalinkBase("post_tag") != "tag" {
		t.Errorf("PermalinkBase(post_tag) = %q, want default %q", cfg.PermalinkBase("post_tag"), "tag")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "config.json"), `{not json}`)

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "config.json"), `{"disabled_tools": ["term_delete", "widget_delete"]}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
	if cfg.DisabledTools[0] != "term_delete" {
		t.Errorf("DisabledTools[0] = %q, want %q", cfg.DisabledTools[0], "term_delete")
	}
	if cfg.DisabledTools[1] != "widget_delete" {
		t.Errorf("DisabledTools[1] = %q, want %q", cfg.DisabledTools[1], "widget_delete")
	}
}

func TestLoad_EnvFileOverrides(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "config.json"), `{"site_url": "https://file.example"}`)
	writeFile(t, filepath.Join(tmpDir, ".env"), "TAGDROP_SITE_URL=https://env.example/\nTAGDROP_LOG_JSON=true\n")

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SiteURL != "https://env.example" {
		t.Errorf("SiteURL = %q, want %q", cfg.SiteURL, "https://env.example")
	}
	if !cfg.LogJSON {
		t.Error("LogJSON = false, want true from .env")
	}
}

func TestLoad_ProcessEnvWinsOverEnvFile(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".env"), "TAGDROP_SITE_URL=https://file.example\n")
	t.Setenv(EnvSiteURL, "https://process.example")

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SiteURL != "https://process.example" {
		t.Errorf("SiteURL = %q, want %q", cfg.SiteURL, "https://process.example")
	}
}

func TestLoadWithRepo_BothPresent(t *testing.T) {
	clearEnv(t)
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	writeFile(t, filepath.Join(globalDir, "config.json"), `{"site_url": "https://global.example", "disabled_tools": ["term_delete"]}`)
	writeFile(t, filepath.Join(repoRoot, ".tagdrop", "config.json"), `{"site_url": "https://repo.example", "disabled_tools": ["widget_delete"]}`)

	cfg, err := LoadWithRepo(globalDir, repoRoot)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}

	if cfg.SiteURL != "https://repo.example" {
		t.Errorf("SiteURL = %q, want repo override", cfg.SiteURL)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Errorf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
}

func TestLoadWithRepo_NeitherPresent(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadWithRepo(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}

	if cfg.SiteURL != DefaultConfig().SiteURL {
		t.Errorf("SiteURL = %q, want default", cfg.SiteURL)
	}
	if cfg.WebRateBurst != DefaultConfig().WebRateBurst {
		t.Errorf("WebRateBurst = %d, want default %d", cfg.WebRateBurst, DefaultConfig().WebRateBurst)
	}
	if len(cfg.DisabledTools) != 0 {
		t.Errorf("DisabledTools = %v, want empty", cfg.DisabledTools)
	}
}

func TestMerge_ScalarOverride(t *testing.T) {
	base := &Config{SiteURL: "https://a.example", DBMaxOpenConns: 5}
	overlay := &Config{SiteURL: "https://b.example"}

	result := Merge(base, overlay)

	if result.SiteURL != "https://b.example" {
		t.Errorf("SiteURL = %q, want overlay", result.SiteURL)
	}
	if result.DBMaxOpenConns != 5 {
		t.Errorf("DBMaxOpenConns = %d, want 5 (base, overlay is zero)", result.DBMaxOpenConns)
	}
}

func TestMerge_BooleanOr(t *testing.T) {
	result := Merge(&Config{LogJSON: true}, &Config{LogJSON: false})
	if !result.LogJSON {
		t.Error("LogJSON should be true (base OR overlay)")
	}
}

func TestMerge_ArrayMergeDedup(t *testing.T) {
	base := &Config{DisabledTools: []string{"term_delete", "widget_delete"}}
	overlay := &Config{DisabledTools: []string{"widget_delete", " options_cleanup "}}

	result := Merge(base, overlay)

	if len(result.DisabledTools) != 3 {
		t.Errorf("DisabledTools length = %d, want 3 (merged, deduped)", len(result.DisabledTools))
	}
	has := make(map[string]bool)
	for _, s := range result.DisabledTools {
		has[s] = true
	}
	for _, want := range []string{"term_delete", "widget_delete", "options_cleanup"} {
		if !has[want] {
			t.Errorf("DisabledTools missing %q", want)
		}
	}
}

func TestMerge_PermalinkBases(t *testing.T) {
	base := &Config{PermalinkBases: map[string]string{"post_tag": "tag", "genre": "genre"}}
	overlay := &Config{PermalinkBases: map[string]string{"post_tag": "topics", "genre": ""}}

	result := Merge(base, overlay)

	if result.PermalinkBase("post_tag") != "topics" {
		t.Errorf("post_tag base = %q, want %q", result.PermalinkBase("post_tag"), "topics")
	}
	if _, ok := result.PermalinkBases["genre"]; ok {
		t.Error("empty overlay value should remove the genre base")
	}
}

func TestFindRepoConfig_InParentDir(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".tagdrop", "config.json")
	writeFile(t, configPath, `{}`)

	subdir := filepath.Join(tmpDir, "subdir", "deeper")
	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	if found := FindRepoConfig(subdir); found != configPath {
		t.Errorf("FindRepoConfig() = %q, want %q", found, configPath)
	}
}

func TestFindRepoConfig_NotFound(t *testing.T) {
	if found := FindRepoConfig(t.TempDir()); found != "" {
		t.Errorf("FindRepoConfig() = %q, want empty string", found)
	}
}
