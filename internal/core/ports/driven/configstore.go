package driven

// ConfigStore provides persistent key-value configuration.
type ConfigStore interface {
	// Get retrieves a raw configuration value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string value, "" when unset.
	GetString(key string) string

	// GetInt retrieves an integer value, 0 when unset.
	GetInt(key string) int

	// GetFloat retrieves a float value, 0 when unset.
	GetFloat(key string) float64

	// GetStringSlice retrieves a string slice value, nil when unset.
	GetStringSlice(key string) []string

	// Set stores a value and persists it.
	Set(key string, value any) error
}
