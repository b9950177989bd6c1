package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the library base path and the log directory.
type Paths struct {
	BaseDir string `toml:"base_dir"`
	LogDir  string `toml:"log_dir"`
}

// Library contains the audio processing parameters shared by every stage.
type Library struct {
	TargetGain       int    `toml:"target_gain"`
	MaxWorkers       int    `toml:"max_workers"`
	AudioExtension   string `toml:"audio_extension"`
	OutputExtension  string `toml:"output_extension"`
	MP3Quality       int    `toml:"mp3_quality"`
	FilenameFallback bool   `toml:"filename_fallback"`
}

// Silence contains the parameters handed to the silence trimmer.
type Silence struct {
	Regions     int    `toml:"regions"`
	MaxDuration string `toml:"max_duration"`
	Threshold   string `toml:"threshold"`
}

// Tools names the external collaborator binaries.
type Tools struct {
	Fetch       string `toml:"fetch"`
	Loudness    string `toml:"loudness"`
	Metadata    string `toml:"metadata"`
	Sox         string `toml:"sox"`
	Fingerprint string `toml:"fingerprint"`
	Encoder     string `toml:"encoder"`
}

// Policy selects the per-stage failure behaviour. Valid values are
// PolicyAbort and PolicySkip.
type Policy struct {
	Fetch        string `toml:"fetch"`
	Conditioning string `toml:"conditioning"`
	Reconcile    string `toml:"reconcile"`
	Tagging      string `toml:"tagging"`
	Encoding     string `toml:"encoding"`
	Playlists    string `toml:"playlists"`
	Devices      string `toml:"devices"`
}

// Workflow contains run orchestration switches.
type Workflow struct {
	Fetch          bool `toml:"fetch"`
	ParallelStages bool `toml:"parallel_stages"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Metrics contains configuration for the run metrics export.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// Notifications contains the ntfy settings for run notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Source is a download source feeding one auto playlist.
type Source struct {
	Name     string `toml:"name" validate:"required,segment"`
	URL      string `toml:"url" validate:"required"`
	Disabled bool   `toml:"disabled"`
}

// Active reports whether the source participates in runs.
func (s Source) Active() bool {
	return !s.Disabled
}

// Device is a portable device mirrored from a set of playlists.
type Device struct {
	Name      string   `toml:"name" validate:"required,segment"`
	Playlists []string `toml:"playlists" validate:"dive,required,segment"`
}

// Config encapsulates all configuration values for Syphon.
//
// Configuration sections by subsystem:
//   - Paths: library base path and log directory
//   - Library: loudness target, worker count, file extensions
//   - Silence: silence trimming parameters
//   - Tools: external collaborator binaries
//   - Policy: per-stage failure policy (abort or skip)
//   - Workflow: fetch toggle and stage parallelism
//   - Logging: log format and level
//   - Metrics: textfile export
//   - Notifications: ntfy run notifications
//   - Sources: download sources (one auto playlist each)
//   - Devices: mirrored devices and their playlists
type Config struct {
	Paths         Paths         `toml:"paths"`
	Library       Library       `toml:"library"`
	Silence       Silence       `toml:"silence"`
	Tools         Tools         `toml:"tools"`
	Policy        Policy        `toml:"policy"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
	Metrics       Metrics       `toml:"metrics"`
	Notifications Notifications `toml:"notifications"`
	Sources       []Source      `toml:"sources"`
	Devices       []Device      `toml:"devices"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/syphon/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/syphon/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("syphon.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the library areas and the log directory.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.LogDir,
		c.NormalizedDir(),
		c.PoolDir(),
		c.OutputDir(),
		c.PlaylistsDir(),
		c.CustomDir(),
		c.DevicesDir(),
	}
	for _, source := range c.ActiveSources() {
		dirs = append(dirs, c.DownloadsDir(source.Name))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ActiveSources returns the sources that are not disabled, in configuration order.
func (c *Config) ActiveSources() []Source {
	out := make([]Source, 0, len(c.Sources))
	for _, source := range c.Sources {
		if source.Active() {
			out = append(out, source)
		}
	}
	return out
}

// DownloadsDir returns the raw download directory for a source.
func (c *Config) DownloadsDir(source string) string {
	return filepath.Join(c.Paths.BaseDir, "downloads", source)
}

// ArchivePath returns the fetch archive file tracking already retrieved items.
func (c *Config) ArchivePath(source string) string {
	return filepath.Join(c.DownloadsDir(source), archiveFileName)
}

// NormalizedDir returns the conditioned audio area.
func (c *Config) NormalizedDir() string {
	return filepath.Join(c.Paths.BaseDir, "normalized")
}

// PoolDir returns the deduplicated, tagged area.
func (c *Config) PoolDir() string {
	return filepath.Join(c.Paths.BaseDir, "pool")
}

// OutputDir returns the encoded distribution area.
func (c *Config) OutputDir() string {
	return filepath.Join(c.Paths.BaseDir, "output")
}

// PlaylistsDir returns the directory holding generated playlist files.
func (c *Config) PlaylistsDir() string {
	return filepath.Join(c.Paths.BaseDir, "playlists")
}

// CustomDir returns the directory holding user playlist definitions.
func (c *Config) CustomDir() string {
	return filepath.Join(c.Paths.BaseDir, "custom")
}

// DevicesDir returns the parent of every device mirror.
func (c *Config) DevicesDir() string {
	return filepath.Join(c.Paths.BaseDir, "devices")
}

// DeviceDir returns the mirror root of a device.
func (c *Config) DeviceDir(name string) string {
	return filepath.Join(c.DevicesDir(), name)
}

// DatabasePath returns the catalog database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.BaseDir, "catalog.db")
}

// LockPath returns the library run lock location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.BaseDir, ".syphon.lock")
}

// LogFilePath returns the log file for the current day.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "syphon-"+time.Now().Format("20060102")+".log")
}

// LogFilePattern matches every daily log file under the log directory.
const LogFilePattern = "syphon-*.log"

// StagePolicy returns the configured failure policy for a stage name.
func (c *Config) StagePolicy(stage string) string {
	switch stage {
	case "fetch":
		return c.Policy.Fetch
	case "condition":
		return c.Policy.Conditioning
	case "reconcile":
		return c.Policy.Reconcile
	case "resolve", "pool":
		return c.Policy.Tagging
	case "encode":
		return c.Policy.Encoding
	case "playlists":
		return c.Policy.Playlists
	case "devices":
		return c.Policy.Devices
	default:
		return PolicySkip
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
