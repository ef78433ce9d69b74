package cliconfig

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadEnvFile applies name=value lines from path to the process
// environment. A # starts a comment, a leading "export " is stripped,
// and matching single or double quotes around the value are removed.
// A name with an empty value removes that variable from the
// environment. Malformed non-empty lines are logged and ignored.
func LoadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("environment file: %w", err)
	}
	defer f.Close()

	log := Logger()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		orig := strings.TrimSpace(scanner.Text())

		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

		name, value, found := strings.Cut(line, "=")
		if !found {
			if line != "" {
				log.Info().Str("line", orig).Msg("malformed environment line ignored")
			}
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" {
			log.Info().Str("line", orig).Msg("malformed environment line ignored")
			continue
		}

		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}

		if value != "" {
			log.Info().Str("name", name).Msg("setting environment variable")
			if err := os.Setenv(name, value); err != nil {
				return fmt.Errorf("set %s: %w", name, err)
			}
		} else {
			log.Info().Str("name", name).Msg("removing environment variable")
			os.Unsetenv(name)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("environment file: %w", err)
	}
	return nil
}
