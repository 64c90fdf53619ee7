package types

import "errors"

// Config holds backend selection and parameters for storage.Open.
type Config struct {
	Backend     string `json:"backend" yaml:"backend"`
	DataDir     string `json:"data_dir" yaml:"data_dir,omitempty"`
	PostgresDSN string `json:"postgres_dsn" yaml:"postgres_dsn,omitempty"`
	RemoteURL   string `json:"remote_url" yaml:"remote_url,omitempty"`
}

// Supported backend names.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendRemote   = "remote"
)

// Config validation errors.
var (
	ErrBackendEmpty     = errors.New("backend must not be empty")
	ErrBackendUnknown   = errors.New("unknown backend")
	ErrPostgresDSNEmpty = errors.New("postgres backend requires postgres_dsn")
	ErrRemoteURLEmpty   = errors.New("remote backend requires remote_url")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite:   true,
	BackendPostgres: true,
	BackendMemory:   true,
	BackendRemote:   true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure. DataDir may be empty for sqlite; the backend
// falls back to the working directory.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	switch c.Backend {
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return ErrPostgresDSNEmpty
		}
	case BackendRemote:
		if c.RemoteURL == "" {
			return ErrRemoteURLEmpty
		}
	}
	return nil
}
