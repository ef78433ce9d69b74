package httprun

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bft-labs/httprun/pkg/lifecycle"
)

// Default settings values.
const (
	DefaultPort    = 8000
	DefaultWorkers = 1
)

// Environment variables consulted by ApplyEnv.
const (
	EnvPort    = "PORT"
	EnvDebug   = "DEBUG"
	EnvWorkers = "NUMBER_OF_PROCS"
)

// Settings configures a runner. The zero value is usable: ApplyEnv and
// SetDefaults fill the gaps before Validate runs.
type Settings struct {
	// Port is the TCP port the server listens on.
	Port int

	// Workers is the number of serving processes. Values above one make
	// the runner spawn that many worker processes sharing the port.
	Workers int

	// Debug selects single-process serving, debug-level logging and
	// interrupt handling from the terminal.
	Debug bool

	// ShutdownTimeout bounds graceful shutdown. Work still pending when
	// it expires is abandoned.
	ShutdownTimeout time.Duration
}

// ApplyEnv fills unset fields from the environment. Fields set
// explicitly keep their values. Malformed variable values are reported
// as errors rather than silently ignored.
func (s *Settings) ApplyEnv() error {
	if s.Port == 0 {
		if v, ok := os.LookupEnv(EnvPort); ok && v != "" {
			p, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("httprun: parse %s=%q: %w", EnvPort, v, err)
			}
			s.Port = p
		}
	}
	if !s.Debug {
		if v, ok := os.LookupEnv(EnvDebug); ok && v != "" {
			d, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("httprun: parse %s=%q: %w", EnvDebug, v, err)
			}
			s.Debug = d
		}
	}
	if s.Workers == 0 {
		if v, ok := os.LookupEnv(EnvWorkers); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("httprun: parse %s=%q: %w", EnvWorkers, v, err)
			}
			s.Workers = n
		}
	}
	return nil
}

// SetDefaults fills remaining zero fields. Debug mode always forces a
// single worker.
func (s *Settings) SetDefaults() {
	if s.Port == 0 {
		s.Port = DefaultPort
	}
	if s.Workers == 0 {
		s.Workers = DefaultWorkers
	}
	if s.Debug {
		s.Workers = 1
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = lifecycle.DefaultShutdownTimeout
	}
}

// Validate checks that the settings are usable.
func (s *Settings) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("httprun: port %d out of range", s.Port)
	}
	if s.Workers < 1 {
		return fmt.Errorf("httprun: workers must be at least 1, got %d", s.Workers)
	}
	if s.ShutdownTimeout <= 0 {
		return fmt.Errorf("httprun: shutdown timeout must be positive, got %s", s.ShutdownTimeout)
	}
	return nil
}
