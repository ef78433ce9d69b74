package ports

import "github.com/bft-labs/httprun/pkg/log"

// Logger is the structured logging port. It aliases the public log.Logger
// interface so internal components and user-supplied loggers share one
// contract without conversion.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field

// Field constructors, re-exported for adapter convenience.
var (
	String   = log.String
	Int      = log.Int
	Int64    = log.Int64
	Uint64   = log.Uint64
	Float64  = log.Float64
	Bool     = log.Bool
	Duration = log.Duration
	Err      = log.Err
	Any      = log.Any
)
