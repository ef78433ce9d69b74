package cliconfig

import (
	"os"

	"github.com/bft-labs/httprun/pkg/httprun"
)

// ApplyEnvConfig applies configuration from the runner's environment
// variables (PORT, DEBUG, NUMBER_OF_PROCS). It respects flags that have
// been explicitly set (changed map).
// Returns an error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	if err := s.setIntFromString("port", os.Getenv(httprun.EnvPort), &cfg.Port); err != nil {
		return err
	}
	if err := s.setBoolFromString("debug", os.Getenv(httprun.EnvDebug), &cfg.Debug); err != nil {
		return err
	}
	if err := s.setIntFromString("workers", os.Getenv(httprun.EnvWorkers), &cfg.Workers); err != nil {
		return err
	}

	return nil
}
