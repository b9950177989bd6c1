package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLibrary()
	c.normalizeSilence()
	c.normalizeTools()
	c.normalizePolicy()
	c.normalizeSources()
	c.normalizeDevices()
	c.normalizeLogging()
	c.normalizeNotifications()
	c.Metrics.Textfile = strings.TrimSpace(c.Metrics.Textfile)
	if c.Metrics.Textfile != "" {
		var err error
		if c.Metrics.Textfile, err = expandPath(c.Metrics.Textfile); err != nil {
			return fmt.Errorf("metrics.textfile: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.BaseDir) == "" {
		c.Paths.BaseDir = defaultBaseDir
	}
	if c.Paths.BaseDir, err = expandPath(strings.TrimSpace(c.Paths.BaseDir)); err != nil {
		return fmt.Errorf("paths.base_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLibrary() {
	if c.Library.MaxWorkers == 0 {
		c.Library.MaxWorkers = defaultMaxWorkers
	}
	c.Library.AudioExtension = normalizeExtension(c.Library.AudioExtension, defaultAudioExtension)
	c.Library.OutputExtension = normalizeExtension(c.Library.OutputExtension, defaultOutputExtension)
}

func normalizeExtension(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	if !strings.HasPrefix(value, ".") {
		value = "." + value
	}
	return value
}

func (c *Config) normalizeSilence() {
	if c.Silence.Regions == 0 {
		c.Silence.Regions = defaultSilenceRegions
	}
	c.Silence.MaxDuration = strings.TrimSpace(c.Silence.MaxDuration)
	if c.Silence.MaxDuration == "" {
		c.Silence.MaxDuration = defaultSilenceDuration
	}
	c.Silence.Threshold = strings.TrimSpace(c.Silence.Threshold)
	if c.Silence.Threshold == "" {
		c.Silence.Threshold = defaultSilenceThreshold
	}
}

func (c *Config) normalizeTools() {
	c.Tools.Fetch = stringOr(c.Tools.Fetch, defaultFetchBinary)
	c.Tools.Loudness = stringOr(c.Tools.Loudness, defaultLoudnessBinary)
	c.Tools.Metadata = stringOr(c.Tools.Metadata, defaultMetadataBinary)
	c.Tools.Sox = stringOr(c.Tools.Sox, defaultSoxBinary)
	c.Tools.Fingerprint = stringOr(c.Tools.Fingerprint, defaultFingerprintBin)
	c.Tools.Encoder = stringOr(c.Tools.Encoder, defaultEncoderBinary)
}

func (c *Config) normalizePolicy() {
	defaults := Default().Policy
	c.Policy.Fetch = policyOr(c.Policy.Fetch, defaults.Fetch)
	c.Policy.Conditioning = policyOr(c.Policy.Conditioning, defaults.Conditioning)
	c.Policy.Reconcile = policyOr(c.Policy.Reconcile, defaults.Reconcile)
	c.Policy.Tagging = policyOr(c.Policy.Tagging, defaults.Tagging)
	c.Policy.Encoding = policyOr(c.Policy.Encoding, defaults.Encoding)
	c.Policy.Playlists = policyOr(c.Policy.Playlists, defaults.Playlists)
	c.Policy.Devices = policyOr(c.Policy.Devices, defaults.Devices)
}

func (c *Config) normalizeSources() {
	for i := range c.Sources {
		c.Sources[i].Name = strings.TrimSpace(c.Sources[i].Name)
		c.Sources[i].URL = strings.TrimSpace(c.Sources[i].URL)
	}
}

func (c *Config) normalizeDevices() {
	for i := range c.Devices {
		c.Devices[i].Name = strings.TrimSpace(c.Devices[i].Name)
		playlists := make([]string, 0, len(c.Devices[i].Playlists))
		seen := make(map[string]struct{}, len(c.Devices[i].Playlists))
		for _, name := range c.Devices[i].Playlists {
			name = strings.TrimSpace(name)
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			playlists = append(playlists, name)
		}
		c.Devices[i].Playlists = playlists
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}

func stringOr(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}

func policyOr(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	return value
}
