package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "name.conf")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	return path
}

func TestLoadEnvFile(t *testing.T) {
	// Register restores for every variable the file touches.
	for _, name := range []string{"SIMPLE", "NOT_EXPORTED", "DQUOTED", "SQUOTED", "SHOULD_BE"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	t.Setenv("SHOULD_BE", "REMOVED")

	path := writeEnvFile(t, `export SIMPLE=1
NOT_EXPORTED=2  # with comment too!
export DQUOTED="value with space"
export SQUOTED='value with space'
BAD LINE
# commented line
SHOULD_BE=
`)

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile failed: %v", err)
	}

	want := map[string]string{
		"SIMPLE":       "1",
		"NOT_EXPORTED": "2",
		"DQUOTED":      "value with space",
		"SQUOTED":      "value with space",
	}
	for name, value := range want {
		if got := os.Getenv(name); got != value {
			t.Errorf("%s = %q, want %q", name, got, value)
		}
	}

	if _, ok := os.LookupEnv("SHOULD_BE"); ok {
		t.Error("SHOULD_BE should have been removed from the environment")
	}
}

func TestLoadEnvFile_MissingFile(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "nope.conf")); err == nil {
		t.Error("LoadEnvFile should fail on missing file")
	}
}

func TestLoadEnvFile_ValueWithEquals(t *testing.T) {
	t.Setenv("WITH_EQUALS", "")

	path := writeEnvFile(t, "WITH_EQUALS=a=b=c\n")
	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile failed: %v", err)
	}

	if got := os.Getenv("WITH_EQUALS"); got != "a=b=c" {
		t.Errorf("WITH_EQUALS = %q, want a=b=c", got)
	}
}

func TestLoadEnvFile_RemovingUnsetVariable(t *testing.T) {
	t.Setenv("NEVER_SET_VAR", "")
	os.Unsetenv("NEVER_SET_VAR")

	path := writeEnvFile(t, "NEVER_SET_VAR=\n")
	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile failed: %v", err)
	}

	if _, ok := os.LookupEnv("NEVER_SET_VAR"); ok {
		t.Error("NEVER_SET_VAR should stay unset")
	}
}
