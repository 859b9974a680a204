package config

const (
	defaultDataDir              = "~/.local/share/garland/data"
	defaultLogDir               = "~/.local/share/garland/logs"
	defaultAPIBind              = "127.0.0.1:8135"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultRendererTimeout      = 600
	defaultUploaderTimeout      = 120
	defaultUploaderKeyPrefix    = "invites"
	defaultMusicBaseURL         = "https://openrouter.ai/api/v1/chat/completions"
	defaultMusicModel           = "google/gemini-3-flash-preview"
	defaultMusicReferer         = "https://github.com/garland-app/garland"
	defaultMusicTitle           = "Garland Music Suggestions"
	defaultMusicTimeoutSeconds  = 30
	defaultCacheTTLSeconds      = 300
	defaultQueuePollInterval    = 2
	defaultErrorRetryInterval   = 10
	defaultHeartbeatInterval    = 15
	defaultHeartbeatTimeout     = 120
	defaultRenderTimeoutSeconds = 900
	defaultWorkerCount          = 2
	defaultNtfyRequestTimeout   = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Renderer: Renderer{
			TimeoutSeconds: defaultRendererTimeout,
		},
		Uploader: Uploader{
			KeyPrefix:      defaultUploaderKeyPrefix,
			TimeoutSeconds: defaultUploaderTimeout,
		},
		Music: Music{
			BaseURL:        defaultMusicBaseURL,
			Model:          defaultMusicModel,
			Referer:        defaultMusicReferer,
			Title:          defaultMusicTitle,
			TimeoutSeconds: defaultMusicTimeoutSeconds,
		},
		Catalog: Catalog{
			CacheTTLSeconds: defaultCacheTTLSeconds,
		},
		Workflow: Workflow{
			QueuePollInterval:    defaultQueuePollInterval,
			ErrorRetryInterval:   defaultErrorRetryInterval,
			HeartbeatInterval:    defaultHeartbeatInterval,
			HeartbeatTimeout:     defaultHeartbeatTimeout,
			RenderTimeoutSeconds: defaultRenderTimeoutSeconds,
			WorkerCount:          defaultWorkerCount,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
			Renders:        true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
