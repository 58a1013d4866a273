package repository

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

type openOptions struct {
	databasePath string
	resultsFile  string
}

// Option applies a configuration option to Open.
type Option func(*openOptions)

// WithDatabasePath sets the SQLite database file.
func WithDatabasePath(path string) Option {
	return func(o *openOptions) {
		if path != "" {
			o.databasePath = path
		}
	}
}

// WithResultsFile sets the JSON results file used by the file backend.
func WithResultsFile(path string) Option {
	return func(o *openOptions) {
		o.resultsFile = path
	}
}
