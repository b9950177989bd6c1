package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid marks configuration values that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("segment", validSegment); err != nil {
		panic(err)
	}
	return v
}

// validSegment accepts names that stay a single directory entry when joined
// under a parent directory.
func validSegment(fl validator.FieldLevel) bool {
	name := strings.TrimSpace(fl.Field().String())
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsFunc(name, func(r rune) bool {
		return r == '/' || r == '\\' || unicode.IsControl(r)
	})
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLibrary(); err != nil {
		return err
	}
	if err := c.validateSilence(); err != nil {
		return err
	}
	if err := c.validatePolicy(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateDevices(); err != nil {
		return err
	}
	if c.Metrics.Textfile != "" && !strings.HasSuffix(c.Metrics.Textfile, ".prom") {
		return fmt.Errorf("%w: metrics.textfile must end in .prom, got %q", ErrInvalid, c.Metrics.Textfile)
	}
	if topic := c.Notifications.NtfyTopic; topic != "" && !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("%w: notifications.ntfy_topic must be an http(s) URL, got %q", ErrInvalid, topic)
	}
	return nil
}

func (c *Config) validatePaths() error {
	if !filepath.IsAbs(c.Paths.BaseDir) {
		return fmt.Errorf("%w: paths.base_dir must be absolute, got %q", ErrInvalid, c.Paths.BaseDir)
	}
	return nil
}

func (c *Config) validateLibrary() error {
	if c.Library.MaxWorkers < 1 {
		return fmt.Errorf("%w: library.max_workers must be positive, got %d", ErrInvalid, c.Library.MaxWorkers)
	}
	if c.Library.AudioExtension == c.Library.OutputExtension {
		return fmt.Errorf("%w: library.audio_extension and library.output_extension must differ", ErrInvalid)
	}
	if c.Library.MP3Quality < 0 || c.Library.MP3Quality > 9 {
		return fmt.Errorf("%w: library.mp3_quality must be between 0 and 9, got %d", ErrInvalid, c.Library.MP3Quality)
	}
	return nil
}

func (c *Config) validateSilence() error {
	if c.Silence.Regions < 1 {
		return fmt.Errorf("%w: silence.regions must be positive, got %d", ErrInvalid, c.Silence.Regions)
	}
	if !strings.HasSuffix(c.Silence.Threshold, "%") && !strings.HasSuffix(c.Silence.Threshold, "d") {
		return fmt.Errorf("%w: silence.threshold must be a percentage or dB value, got %q", ErrInvalid, c.Silence.Threshold)
	}
	return nil
}

func (c *Config) validatePolicy() error {
	values := map[string]string{
		"policy.fetch":        c.Policy.Fetch,
		"policy.conditioning": c.Policy.Conditioning,
		"policy.reconcile":    c.Policy.Reconcile,
		"policy.tagging":      c.Policy.Tagging,
		"policy.encoding":     c.Policy.Encoding,
		"policy.playlists":    c.Policy.Playlists,
		"policy.devices":      c.Policy.Devices,
	}
	for key, value := range values {
		if value != PolicyAbort && value != PolicySkip {
			return fmt.Errorf("%w: %s must be %q or %q, got %q", ErrInvalid, key, PolicyAbort, PolicySkip, value)
		}
	}
	return nil
}

func (c *Config) validateSources() error {
	seen := make(map[string]struct{}, len(c.Sources))
	for i, source := range c.Sources {
		if err := structValidator.Struct(source); err != nil {
			return fmt.Errorf("%w: sources[%d]: %s", ErrInvalid, i, describeValidation(err))
		}
		if _, ok := seen[source.Name]; ok {
			return fmt.Errorf("%w: sources[%d]: duplicate source name %q", ErrInvalid, i, source.Name)
		}
		seen[source.Name] = struct{}{}
	}
	return nil
}

func (c *Config) validateDevices() error {
	seen := make(map[string]struct{}, len(c.Devices))
	for i, device := range c.Devices {
		if err := structValidator.Struct(device); err != nil {
			return fmt.Errorf("%w: devices[%d]: %s", ErrInvalid, i, describeValidation(err))
		}
		if _, ok := seen[device.Name]; ok {
			return fmt.Errorf("%w: devices[%d]: duplicate device name %q", ErrInvalid, i, device.Name)
		}
		seen[device.Name] = struct{}{}
	}
	return nil
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
