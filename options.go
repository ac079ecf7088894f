package succinct

import "log/slog"

// Option is a functional option for opening and writing archive files.
type Option func(*config)

type config struct {
	logger *slog.Logger
	verify bool // verify the body checksum on open
	noMmap bool // read the whole file into memory instead of mapping it
}

func defaultConfig() *config {
	return &config{
		logger: slog.New(slog.DiscardHandler),
	}
}

func newConfig(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithLogger routes debug events (open, write, verify) to l.
// A nil logger keeps the default, which discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithVerify checks the body checksum while opening.
// Without it, corruption is only detected by an explicit Verify call.
func WithVerify() Option {
	return func(c *config) {
		c.verify = true
	}
}

// WithoutMmap reads the file into a heap buffer instead of memory-mapping
// it. Writers ignore this option.
func WithoutMmap() Option {
	return func(c *config) {
		c.noMmap = true
	}
}
