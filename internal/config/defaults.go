package config

const (
	defaultProvider    = "gemini"
	defaultConcurrency = 3
	defaultBatchSize   = 50
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Translate: Translate{
			Provider:    defaultProvider,
			Concurrency: defaultConcurrency,
			BatchSize:   defaultBatchSize,
		},
	}
}
