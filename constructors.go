package streamtable

// Option configures a Store at construction time.
type Option func(*Store)

// WithLogger sets the Logger every operation logs through. The default is a
// no-op logger.
func WithLogger(logger Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWriteOptions sets the WriteOptions applied to every Write call that
// doesn't supply its own.
func WithWriteOptions(opts WriteOptions) Option {
	return func(s *Store) {
		s.writeOpts = opts
	}
}

// NewStore builds a Store over client, the narrow partition-level backend
// port. client is typically an *azdata.Client against Azure Data
// Tables, or an in-memory fake in tests.
func NewStore(client PartitionClient, opts ...Option) *Store {
	s := &Store{
		client:    client,
		logger:    nopLogger{},
		writeOpts: DefaultWriteOptions(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
