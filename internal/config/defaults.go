package config

const (
	// PolicyAbort stops the whole run on the first failing item.
	PolicyAbort = "abort"
	// PolicySkip logs a failing item and leaves it for the next run.
	PolicySkip = "skip"
)

const (
	defaultBaseDir          = "~/syphon"
	defaultLogDir           = "~/.local/share/syphon/logs"
	defaultTargetGain       = -12
	defaultMaxWorkers       = 4
	defaultAudioExtension   = ".ogg"
	defaultOutputExtension  = ".mp3"
	defaultMP3Quality       = 2
	defaultSilenceRegions   = 1
	defaultSilenceDuration  = "120"
	defaultSilenceThreshold = "2%"
	defaultFetchBinary      = "youtube-dl"
	defaultLoudnessBinary   = "normalize-ogg"
	defaultMetadataBinary   = "exiftool"
	defaultSoxBinary        = "sox"
	defaultFingerprintBin   = "fpcalc"
	defaultEncoderBinary    = "ffmpeg"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
	defaultNtfyTimeout      = 10
	archiveFileName         = "Archive.txt"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			BaseDir: defaultBaseDir,
			LogDir:  defaultLogDir,
		},
		Library: Library{
			TargetGain:       defaultTargetGain,
			MaxWorkers:       defaultMaxWorkers,
			AudioExtension:   defaultAudioExtension,
			OutputExtension:  defaultOutputExtension,
			MP3Quality:       defaultMP3Quality,
			FilenameFallback: true,
		},
		Silence: Silence{
			Regions:     defaultSilenceRegions,
			MaxDuration: defaultSilenceDuration,
			Threshold:   defaultSilenceThreshold,
		},
		Tools: Tools{
			Fetch:       defaultFetchBinary,
			Loudness:    defaultLoudnessBinary,
			Metadata:    defaultMetadataBinary,
			Sox:         defaultSoxBinary,
			Fingerprint: defaultFingerprintBin,
			Encoder:     defaultEncoderBinary,
		},
		Policy: Policy{
			Fetch:        PolicySkip,
			Conditioning: PolicyAbort,
			Reconcile:    PolicySkip,
			Tagging:      PolicySkip,
			Encoding:     PolicySkip,
			Playlists:    PolicySkip,
			Devices:      PolicySkip,
		},
		Workflow: Workflow{
			Fetch: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
	}
}
