package config

// Default returns the default configuration: an in-memory store served
// on port 8080 without metrics.
func Default() *Config {
	return &Config{
		Listen:       ":8080",
		LogLevel:     "info",
		MaxBodyBytes: 100 << 20,
		CORSOrigins:  []string{},
		Store: &StoreConfig{
			Backend:  BackendMem,
			PageSize: 1000,
		},
	}
}
