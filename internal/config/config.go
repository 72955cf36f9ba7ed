package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds engine configuration. All storage locations are injected here
// at construction; nothing in the engine reads a process-wide path constant.
type Config struct {
	// BaseDir is the data directory every default location derives from.
	BaseDir string `json:"base_dir,omitempty" env:"VANTIEL_BASE_DIR"`

	// SavePath is the canonical save document, overwritten each turn.
	SavePath string `json:"save_path,omitempty" env:"VANTIEL_SAVE_PATH"`

	// SavesDir holds turn-keyed snapshots and the journal.
	SavesDir string `json:"saves_dir,omitempty" env:"VANTIEL_SAVES_DIR"`

	// JournalPath is the append-only NDJSON turn journal.
	JournalPath string `json:"journal_path,omitempty" env:"VANTIEL_JOURNAL_PATH"`

	// SaveSchemaPath and JournalSchemaPath are externally owned schema
	// documents. Their absence is startup-fatal for validating operations.
	SaveSchemaPath    string `json:"save_schema_path,omitempty" env:"VANTIEL_SAVE_SCHEMA_PATH"`
	JournalSchemaPath string `json:"journal_schema_path,omitempty" env:"VANTIEL_JOURNAL_SCHEMA_PATH"`

	// DropinPath is an optional template save for new games. When absent,
	// new games start from the built-in minimal save.
	DropinPath string `json:"dropin_path,omitempty" env:"VANTIEL_DROPIN_PATH"`

	// IndexPath is the SQLite journal index. The index is derived state,
	// rebuildable from the journal at any time.
	IndexPath string `json:"index_path,omitempty" env:"VANTIEL_INDEX_PATH"`

	// FilesBaseURL, when set, turns artifact paths into downloadable links
	// in the turn footer. Purely a presentation concern.
	FilesBaseURL string `json:"files_base_url,omitempty" env:"FILES_BASE_URL"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration rooted at baseDir.
func DefaultConfig(baseDir string) *Config {
	return &Config{
		BaseDir:           baseDir,
		SavePath:          filepath.Join(baseDir, "save.json"),
		SavesDir:          filepath.Join(baseDir, "saves"),
		JournalPath:       filepath.Join(baseDir, "saves", "journal.ndjson"),
		SaveSchemaPath:    filepath.Join(baseDir, "save_schema.v1.2.json"),
		JournalSchemaPath: filepath.Join(baseDir, "journal_schema.v1.0.json"),
		DropinPath:        filepath.Join(baseDir, "save.v1.2.dropin.json"),
		IndexPath:         filepath.Join(baseDir, "vantiel.db"),
	}
}

// Load loads configuration from baseDir/config.json, merged over defaults,
// with environment variables applied last.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.vantiel.
func Load(baseDir string) (*Config, error) {
	overlay, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}

	cfg := Merge(DefaultConfig(baseDir), overlay)

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// A base dir override from file or env re-roots every path that was not
	// itself explicitly overridden.
	if cfg.BaseDir != baseDir {
		rebased := Merge(DefaultConfig(cfg.BaseDir), overlay)
		if err := env.Parse(rebased); err != nil {
			return nil, err
		}
		cfg = rebased
	}

	return cfg, nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
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

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	pick := func(over, fall string) string {
		if over != "" {
			return over
		}
		return fall
	}

	result.BaseDir = pick(overlay.BaseDir, base.BaseDir)
	result.SavePath = pick(overlay.SavePath, base.SavePath)
	result.SavesDir = pick(overlay.SavesDir, base.SavesDir)
	result.JournalPath = pick(overlay.JournalPath, base.JournalPath)
	result.SaveSchemaPath = pick(overlay.SaveSchemaPath, base.SaveSchemaPath)
	result.JournalSchemaPath = pick(overlay.JournalSchemaPath, base.JournalSchemaPath)
	result.DropinPath = pick(overlay.DropinPath, base.DropinPath)
	result.IndexPath = pick(overlay.IndexPath, base.IndexPath)
	result.FilesBaseURL = pick(overlay.FilesBaseURL, base.FilesBaseURL)

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
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
