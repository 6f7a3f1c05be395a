package driven

// Configuration keys read by the application.
const (
	ConfigGitHubToken       = "github.token"
	ConfigGoogleCredentials = "google.credentials_file"
	ConfigGoogleAPIKey      = "google.api_key"
	ConfigS3Region          = "s3.region"
	ConfigS3Endpoint        = "s3.endpoint"
	ConfigRefreshEnabled    = "refresh.enabled"
	ConfigRefreshCron       = "refresh.cron"
	ConfigRefreshSchedules  = "refresh.schedules"
	ConfigDatasets          = "datasets"
	ConfigViewLimit         = "view.limit"
)

// ConfigStore provides access to application configuration.
// Keys are dotted paths into nested tables (e.g. "github.token").
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// GetInt retrieves an integer configuration value.
	// Returns 0 if key doesn't exist or isn't a number.
	GetInt(key string) int

	// GetBool retrieves a boolean configuration value.
	// Returns false if key doesn't exist or isn't a boolean.
	GetBool(key string) bool

	// GetStringMap retrieves a table of string values, such as the
	// [datasets] table mapping dataset names to locations.
	// Returns nil if key doesn't exist or isn't a table.
	GetStringMap(key string) map[string]string

	// Set stores a configuration value.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
