package config

const (
	defaultPortalBaseURL        = "https://www.insuniverse.com"
	defaultPortalAPIBaseURL     = "https://api.insuniverse.com"
	defaultPortalAcceptLanguage = "ko-KR"
	defaultPortalTimeout        = 15
	defaultPageSize             = 10
	defaultMaxPages             = 3
	defaultCallDelayMS          = 500
	defaultSearchYear           = 5
	defaultJobStorePath         = "~/.local/share/insuuniverse/jobs.db"
	defaultJobRetentionMinutes  = 30
	defaultWebhookTimeout       = 30
	defaultWebhookRetries       = 3
	defaultWebhookRetryDelayMS  = 1000
	defaultDocstoreBaseURL      = "https://api.notion.com/v1"
	defaultDocstoreAPIVersion   = "2022-06-28"
	defaultDocstoreTimeout      = 30
	defaultDocstoreRetries      = 3
	defaultNtfyTimeout          = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogDir               = "~/.local/share/insuuniverse/logs"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Portal: Portal{
			BaseURL:        defaultPortalBaseURL,
			APIBaseURL:     defaultPortalAPIBaseURL,
			AcceptLanguage: defaultPortalAcceptLanguage,
			RequestTimeout: defaultPortalTimeout,
		},
		Collector: Collector{
			PageSize:    defaultPageSize,
			MaxPages:    defaultMaxPages,
			CallDelayMS: defaultCallDelayMS,
			SearchYear:  defaultSearchYear,
			KeepCallLog: true,
		},
		JobStore: JobStore{
			Path:             defaultJobStorePath,
			RetentionMinutes: defaultJobRetentionMinutes,
		},
		Webhook: Webhook{
			RequestTimeout: defaultWebhookTimeout,
			RetryAttempts:  defaultWebhookRetries,
			RetryDelayMS:   defaultWebhookRetryDelayMS,
		},
		Docstore: Docstore{
			BaseURL:        defaultDocstoreBaseURL,
			APIVersion:     defaultDocstoreAPIVersion,
			RequestTimeout: defaultDocstoreTimeout,
			RetryAttempts:  defaultDocstoreRetries,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			Dir:    defaultLogDir,
		},
	}
}
