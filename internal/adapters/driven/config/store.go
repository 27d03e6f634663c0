package config

import "sync"

// Values is a concurrency-safe map of flat dot-separated keys with the typed
// getters of driven.ConfigStore. Stores embed it and add persistence. The
// zero value is empty and ready to use.
type Values struct {
	mu sync.RWMutex
	m  map[string]any
}

// Get returns the raw value stored under key.
func (v *Values) Get(key string) (any, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	val, ok := v.m[key]
	return val, ok
}

func (v *Values) GetString(key string) string        { return String(v.Get(key)) }
func (v *Values) GetInt(key string) int              { return Int(v.Get(key)) }
func (v *Values) GetFloat(key string) float64        { return Float(v.Get(key)) }
func (v *Values) GetBool(key string) bool            { return Bool(v.Get(key)) }
func (v *Values) GetStringSlice(key string) []string { return StringSlice(v.Get(key)) }

// Set stores value under key.
func (v *Values) Set(key string, value any) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.m == nil {
		v.m = make(map[string]any)
	}
	v.m[key] = value
	return nil
}

// Snapshot returns a copy of all values.
func (v *Values) Snapshot() map[string]any {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make(map[string]any, len(v.m))
	for k, val := range v.m {
		out[k] = val
	}
	return out
}

// Replace swaps in m as the full set of values.
func (v *Values) Replace(m map[string]any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.m = m
}
