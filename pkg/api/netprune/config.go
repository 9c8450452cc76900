package netprune

// Config holds the run settings that can be kept in a settings file instead
// of being repeated on every command line.
type Config struct {
	// Network is the default network location for commands without one.
	Network       string   `json:"network,omitempty"`
	Epsilon       float64  `json:"epsilon"`
	Oracle        string   `json:"oracle"`
	OracleTimeout string   `json:"oracleTimeout,omitempty"`
	Inputs        int      `json:"inputs"`
	Outputs       int      `json:"outputs"`
	Reps          int      `json:"reps"`
	Workers       int      `json:"workers"`
	MaxRetries    int      `json:"maxRetries"`
	Seed          uint64   `json:"seed"`
	Reduce        bool     `json:"reduce,omitempty"`
	Keep          []string `json:"keep,omitempty"`
	OutputDir     string   `json:"outputDir"`
	Store         *Store   `json:"store,omitempty"`
}

type Store struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}
