package cmd

// Options holds the shared command-line options for the tally CLI.
type Options struct {
	Org       string
	Repo      string
	Since     string
	Format    string
	OutputDir string
	Separate  bool
	NoCache   bool
	Verbosity int
	TUI       *bool // nil = auto-detect, true = force TUI, false = disable TUI

	// Profiling options
	CPUProfile string
	MemProfile string
	Trace      string
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options with defaults and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithOrg sets the organization to scan.
func WithOrg(org string) Option {
	return func(o *Options) {
		o.Org = org
	}
}

// WithRepo restricts the scan to a single repository.
func WithRepo(repo string) Option {
	return func(o *Options) {
		o.Repo = repo
	}
}

// WithSince sets the scan window start (e.g., "2023-01-01", "30d", "6mo").
func WithSince(since string) Option {
	return func(o *Options) {
		o.Since = since
	}
}

// WithFormat sets the output format (csv, json).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithOutputDir sets the directory for report artifacts.
func WithOutputDir(dir string) Option {
	return func(o *Options) {
		o.OutputDir = dir
	}
}

// WithSeparate writes one artifact set per repository.
func WithSeparate(separate bool) Option {
	return func(o *Options) {
		o.Separate = separate
	}
}

// WithNoCache disables the repository scan cache.
func WithNoCache(noCache bool) Option {
	return func(o *Options) {
		o.NoCache = noCache
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithTUI controls TUI mode (nil = auto-detect, true = force, false = disable).
func WithTUI(tui *bool) Option {
	return func(o *Options) {
		o.TUI = tui
	}
}
