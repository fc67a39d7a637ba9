// Package obslog binds streamtable.Logger to zerolog, narrowing logging
// behind an interface the same way the core package narrows backend access
// behind PartitionClient, so a caller can supply any logger, or none,
// without the core packages importing a logging library at all.
package obslog

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/streamtable/streamtable"
)

// Zerolog adapts a zerolog.Logger to streamtable.Logger.
type Zerolog struct {
	log zerolog.Logger
}

// NewZerolog wraps log.
func NewZerolog(log zerolog.Logger) *Zerolog {
	return &Zerolog{log: log}
}

// NewDefault returns a Zerolog writing human-readable console output to
// stderr, suitable for cmd/streamctl and local development.
func NewDefault() *Zerolog {
	return &Zerolog{log: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()}
}

var _ streamtable.Logger = (*Zerolog)(nil)

func (z *Zerolog) Debug(msg string, kv ...any) { z.event(z.log.Debug(), msg, kv) }
func (z *Zerolog) Info(msg string, kv ...any)  { z.event(z.log.Info(), msg, kv) }
func (z *Zerolog) Warn(msg string, kv ...any)  { z.event(z.log.Warn(), msg, kv) }
func (z *Zerolog) Error(msg string, kv ...any) { z.event(z.log.Error(), msg, kv) }

func (z *Zerolog) event(e *zerolog.Event, msg string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	e.Msg(msg)
}
