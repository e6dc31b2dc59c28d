package env

import "os"

// Get returns the value of the given environment variable or a fallback.
// Used during bootstrap for knobs like LOG_FORMAT that are read before the
// full RETAILOPS_ config is loaded and validated.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
