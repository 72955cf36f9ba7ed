package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/data")

	if cfg.SavePath != filepath.Join("/data", "save.json") {
		t.Errorf("SavePath = %q, want /data/save.json", cfg.SavePath)
	}
	if cfg.JournalPath != filepath.Join("/data", "saves", "journal.ndjson") {
		t.Errorf("JournalPath = %q, want /data/saves/journal.ndjson", cfg.JournalPath)
	}
	if cfg.SaveSchemaPath == "" || cfg.JournalSchemaPath == "" {
		t.Error("schema paths should have defaults")
	}
}

func TestLoad_NoFile(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.SavePath != filepath.Join(tmpDir, "save.json") {
		t.Errorf("SavePath = %q, want default under %s", cfg.SavePath, tmpDir)
	}
}

func TestLoad_FileOverlay(t *testing.T) {
	tmpDir := t.TempDir()
	content := `{"journal_path": "/elsewhere/journal.ndjson", "files_base_url": "https://files.example.com"}`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.JournalPath != "/elsewhere/journal.ndjson" {
		t.Errorf("JournalPath = %q, want overlay value", cfg.JournalPath)
	}
	if cfg.FilesBaseURL != "https://files.example.com" {
		t.Errorf("FilesBaseURL = %q, want overlay value", cfg.FilesBaseURL)
	}
	// Untouched fields keep defaults.
	if cfg.SavePath != filepath.Join(tmpDir, "save.json") {
		t.Errorf("SavePath = %q, want default", cfg.SavePath)
	}
}

func TestLoad_EnvOverlay(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("FILES_BASE_URL", "https://env.example.com")

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.FilesBaseURL != "https://env.example.com" {
		t.Errorf("FilesBaseURL = %q, want env value", cfg.FilesBaseURL)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte("{not json"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Error("Load should fail on malformed config.json")
	}
}

func TestMerge_ArraysDeduplicated(t *testing.T) {
	base := &Config{DisabledTools: []string{"vantiel_turn", "vantiel_new_game"}}
	overlay := &Config{DisabledTools: []string{"vantiel_turn", "vantiel_import_save"}}

	merged := Merge(base, overlay)

	if len(merged.DisabledTools) != 3 {
		t.Errorf("DisabledTools = %v, want 3 unique entries", merged.DisabledTools)
	}
}
