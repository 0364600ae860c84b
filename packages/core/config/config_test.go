package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFindAndLoadConfigDefaults(t *testing.T) {
	cfg, err := FindAndLoadConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CacheSize != 1000 {
		t.Errorf("CacheSize = %d, want 1000", cfg.CacheSize)
	}
	if cfg.SuggestionTTL() != 30*time.Second {
		t.Errorf("SuggestionTTL = %v", cfg.SuggestionTTL())
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".stepvault.config.json")
	content := `{"databasePath": "/tmp/custom.db", "cacheSize": 50, "noColor": true}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := FindAndLoadConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DatabasePath != "/tmp/custom.db" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.CacheSize != 50 {
		t.Errorf("CacheSize = %d", cfg.CacheSize)
	}
	if !cfg.GetNoColor() {
		t.Error("NoColor should be true")
	}
	if cfg.SearchLimit != 10 {
		t.Errorf("unset fields keep defaults, SearchLimit = %d", cfg.SearchLimit)
	}
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	noColor := true
	merged := base.Merge(&Config{CacheSize: 5, NoColor: &noColor})

	if merged.CacheSize != 5 {
		t.Errorf("CacheSize = %d", merged.CacheSize)
	}
	if !merged.GetNoColor() {
		t.Error("NoColor should override")
	}
	if merged.DatabasePath != base.DatabasePath {
		t.Error("unset fields keep base values")
	}
	if base.CacheSize != 1000 {
		t.Error("Merge must not mutate the receiver")
	}
}
