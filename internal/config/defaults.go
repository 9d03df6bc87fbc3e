package config

const (
	defaultStaticDir           = "~/.local/share/lorecast/static"
	defaultLogDir              = "~/.local/share/lorecast/logs"
	defaultRedisAddr           = "localhost:6379"
	defaultRedisPrefix         = "lorecast"
	defaultBrowserURL          = "ws://localhost:3000"
	defaultScrapeTimeout       = 60
	defaultRenderWaitMS        = 7000
	defaultTTSBinary           = "piper"
	defaultTTSTimeout          = 1800
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultAudioBitrate        = "320k"
	defaultSyncTimeout         = 1800
	defaultSyncLockTTL         = 600
	defaultSyncDispatchDelay   = 300
	defaultMaxRetries          = 5
	defaultRetryBaseSeconds    = 60
	defaultRetryMaxSeconds     = 600
	defaultSyncMaxRetries      = 3
	defaultSyncRetryBase       = 300
	defaultDequeueBlockSeconds = 5
	defaultPromoteInterval     = 1
	defaultEnrichLockSeconds   = 600
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StaticDir: defaultStaticDir,
			LogDir:    defaultLogDir,
		},
		Redis: Redis{
			Addr:   defaultRedisAddr,
			Prefix: defaultRedisPrefix,
		},
		Scraper: Scraper{
			BrowserURL:     defaultBrowserURL,
			RequestTimeout: defaultScrapeTimeout,
			RenderWaitMS:   defaultRenderWaitMS,
		},
		TTS: TTS{
			Binary:  defaultTTSBinary,
			Timeout: defaultTTSTimeout,
		},
		Mux: Mux{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			AudioBitrate:  defaultAudioBitrate,
		},
		Sync: Sync{
			TransferTimeout: defaultSyncTimeout,
			LockTTL:         defaultSyncLockTTL,
			DispatchDelay:   defaultSyncDispatchDelay,
		},
		Workflow: Workflow{
			MaxRetries:        defaultMaxRetries,
			RetryBaseSeconds:  defaultRetryBaseSeconds,
			RetryMaxSeconds:   defaultRetryMaxSeconds,
			SyncMaxRetries:    defaultSyncMaxRetries,
			SyncRetryBase:     defaultSyncRetryBase,
			DequeueBlock:      defaultDequeueBlockSeconds,
			PromoteInterval:   defaultPromoteInterval,
			EnrichLockSeconds: defaultEnrichLockSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
