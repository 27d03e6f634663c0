package driven

// ConfigStore holds dot-separated keys such as "retrieval.top_k".
//
// Typed getters return the zero value when a key is missing or cannot be
// converted. Numbers stored as strings and lists stored as comma-separated
// strings are converted, since hand-edited files often contain them.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores a value. File-backed stores also write it out.
	Set(key string, value any) error

	Save() error

	// Load replaces the in-memory values with what is stored.
	Load() error

	// Path is where Save writes.
	Path() string
}
