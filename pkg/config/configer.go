package config

// Configer reads credentials and deployment settings from key/value sources.
type Configer interface {
	LoadFromPath(path string) error
	Load() error
	GetKey(key string) string
	GetKeyWithDefault(key, defaultValue string) string
	GetIntKeyWithDefault(key string, defaultValue int) int
	RequireKeys(keys ...string) error
}
