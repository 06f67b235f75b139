package settings

// Settings holds the user-tunable application settings.
type Settings struct {
	ItemsPerPage     int    `json:"itemsPerPage" yaml:"items_per_page"`
	EnableViewCache  bool   `json:"enableViewCache" yaml:"enable_view_cache"`
	CacheSizeLimitMB int    `json:"cacheSizeLimitMB" yaml:"cache_size_limit_mb"`
	MaxUploadSizeMB  int    `json:"maxUploadSizeMB" yaml:"max_upload_size_mb"`
	LogLevel         string `json:"logLevel" yaml:"log_level"`
}

var defaultSettings = Settings{
	ItemsPerPage:     25,
	EnableViewCache:  true,
	CacheSizeLimitMB: 64,
	MaxUploadSizeMB:  256,
	LogLevel:         "info",
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return defaultSettings
}
