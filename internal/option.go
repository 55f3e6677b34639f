package internal

// application holds the state Run assembles before the servers start.
type application struct {
	config *Config
}

// Option adjusts the application assembled by Run.
type Option func(*application)

// WithConfig supplies the configuration; Run fails without one.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}
