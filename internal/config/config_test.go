package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"syphon/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.Paths.BaseDir != filepath.Join(tempHome, "syphon") {
		t.Fatalf("unexpected base dir: %q", cfg.Paths.BaseDir)
	}
	if cfg.Library.TargetGain != -12 {
		t.Fatalf("unexpected target gain: %d", cfg.Library.TargetGain)
	}
	if cfg.Library.MaxWorkers != 4 {
		t.Fatalf("unexpected max workers: %d", cfg.Library.MaxWorkers)
	}
	if cfg.Policy.Conditioning != config.PolicyAbort {
		t.Fatalf("expected conditioning to abort by default, got %q", cfg.Policy.Conditioning)
	}
	if cfg.Policy.Devices != config.PolicySkip {
		t.Fatalf("expected devices to skip by default, got %q", cfg.Policy.Devices)
	}
	if cfg.NormalizedDir() != filepath.Join(tempHome, "syphon", "normalized") {
		t.Fatalf("unexpected normalized dir: %q", cfg.NormalizedDir())
	}
}

func TestLoadCustomConfig(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "lib")
	path := filepath.Join(dir, "syphon.toml")

	type sourceDoc struct {
		Name     string `toml:"name"`
		URL      string `toml:"url"`
		Disabled bool   `toml:"disabled"`
	}
	type deviceDoc struct {
		Name      string   `toml:"name"`
		Playlists []string `toml:"playlists"`
	}
	doc := map[string]any{
		"paths":   map[string]any{"base_dir": base, "log_dir": filepath.Join(dir, "logs")},
		"library": map[string]any{"target_gain": -9, "max_workers": 2, "output_extension": "MP3"},
		"policy":  map[string]any{"conditioning": "SKIP"},
		"sources": []sourceDoc{
			{Name: " first ", URL: "https://example.invalid/a"},
			{Name: "second", URL: "https://example.invalid/b", Disabled: true},
		},
		"devices": []deviceDoc{{Name: "walkman", Playlists: []string{"first", "first", " mix "}}},
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s, got %s (exists=%v)", path, resolved, exists)
	}
	if cfg.Library.TargetGain != -9 || cfg.Library.MaxWorkers != 2 {
		t.Fatalf("unexpected library section: %+v", cfg.Library)
	}
	if cfg.Library.OutputExtension != ".mp3" {
		t.Fatalf("expected normalized output extension, got %q", cfg.Library.OutputExtension)
	}
	if cfg.Policy.Conditioning != config.PolicySkip {
		t.Fatalf("expected policy override, got %q", cfg.Policy.Conditioning)
	}
	active := cfg.ActiveSources()
	if len(active) != 1 || active[0].Name != "first" {
		t.Fatalf("unexpected active sources: %+v", active)
	}
	if got := strings.Join(cfg.Devices[0].Playlists, ","); got != "first,mix" {
		t.Fatalf("unexpected device playlists: %q", got)
	}
	if cfg.DownloadsDir("first") != filepath.Join(base, "downloads", "first") {
		t.Fatalf("unexpected downloads dir: %q", cfg.DownloadsDir("first"))
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"workers", func(c *config.Config) { c.Library.MaxWorkers = -1 }},
		{"policy", func(c *config.Config) { c.Policy.Encoding = "retry" }},
		{"source without url", func(c *config.Config) {
			c.Sources = []config.Source{{Name: "a"}}
		}},
		{"source with separator", func(c *config.Config) {
			c.Sources = []config.Source{{Name: "a/b", URL: "https://example.invalid"}}
		}},
		{"duplicate device", func(c *config.Config) {
			c.Devices = []config.Device{{Name: "d"}, {Name: "d"}}
		}},
		{"empty device playlist", func(c *config.Config) {
			c.Devices = []config.Device{{Name: "d", Playlists: []string{""}}}
		}},
		{"parent device", func(c *config.Config) {
			c.Devices = []config.Device{{Name: ".."}}
		}},
		{"current device", func(c *config.Config) {
			c.Devices = []config.Device{{Name: " . "}}
		}},
		{"parent source", func(c *config.Config) {
			c.Sources = []config.Source{{Name: "..", URL: "https://example.invalid"}}
		}},
		{"escaping device playlist", func(c *config.Config) {
			c.Devices = []config.Device{{Name: "d", Playlists: []string{"../x"}}}
		}},
		{"dot device playlist", func(c *config.Config) {
			c.Devices = []config.Device{{Name: "d", Playlists: []string{".."}}}
		}},
		{"relative base", func(c *config.Config) { c.Paths.BaseDir = "relative" }},
		{"metrics textfile", func(c *config.Config) { c.Metrics.Textfile = "/tmp/syphon.txt" }},
		{"ntfy topic", func(c *config.Config) { c.Notifications.NtfyTopic = "ntfy.sh/syphon" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.BaseDir = t.TempDir()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, config.ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoadRejectsUnparseableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("[library\nmax_workers = "), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnsureDirectoriesCreatesAreas(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.BaseDir = t.TempDir()
	cfg.Paths.LogDir = filepath.Join(cfg.Paths.BaseDir, "logs")
	cfg.Sources = []config.Source{{Name: "mix", URL: "https://example.invalid"}}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.NormalizedDir(), cfg.PoolDir(), cfg.OutputDir(), cfg.PlaylistsDir(), cfg.CustomDir(), cfg.DevicesDir(), cfg.DownloadsDir("mix")} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if len(cfg.Sources) != 1 || len(cfg.Devices) != 1 {
		t.Fatalf("unexpected sample contents: %+v %+v", cfg.Sources, cfg.Devices)
	}
}
