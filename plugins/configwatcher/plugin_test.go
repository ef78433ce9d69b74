package configwatcher

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bft-labs/httprun/pkg/httprun"
	"github.com/bft-labs/httprun/pkg/httpruntest"
)

func testApp(settings httprun.Settings) (*httprun.Application, error) {
	return httprun.NewApplication(http.NotFoundHandler()), nil
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func waitForStopped(t *testing.T, r *httprun.Runner) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if r.State() == httprun.StateStopped {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("runner still %s, want Stopped", r.State())
}

func TestPlugin_Name(t *testing.T) {
	plugin := New(DefaultConfig())
	if plugin.Name() != "configwatcher" {
		t.Errorf("Name() = %v, want configwatcher", plugin.Name())
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.DebounceDelay != 100*time.Millisecond {
		t.Errorf("DebounceDelay = %v, want 100ms", cfg.DebounceDelay)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, want empty", cfg.Path)
	}
}

func TestPlugin_StopsRunnerOnChange(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, cfgPath, "port = 8000\n")

	srv := httpruntest.Start(t, testApp, WithConfigWatcher(Config{
		Path:          cfgPath,
		DebounceDelay: 10 * time.Millisecond,
	}))

	// Give the watch loop time to register with fsnotify.
	time.Sleep(200 * time.Millisecond)

	writeConfig(t, cfgPath, "port = 9000\n")

	waitForStopped(t, srv.Runner)
}

func TestPlugin_DetectsAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	writeConfig(t, cfgPath, "port = 8000\n")

	srv := httpruntest.Start(t, testApp, WithConfigWatcher(Config{
		Path:          cfgPath,
		DebounceDelay: 10 * time.Millisecond,
	}))

	time.Sleep(200 * time.Millisecond)

	// Replace the file the way config writers do: write a temp file and
	// rename it over the target.
	tmpPath := filepath.Join(dir, "config.toml.tmp")
	writeConfig(t, tmpPath, "port = 9000\n")
	if err := os.Rename(tmpPath, cfgPath); err != nil {
		t.Fatalf("rename: %v", err)
	}

	waitForStopped(t, srv.Runner)
}

func TestPlugin_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	writeConfig(t, cfgPath, "port = 8000\n")

	srv := httpruntest.Start(t, testApp, WithConfigWatcher(Config{
		Path:          cfgPath,
		DebounceDelay: 10 * time.Millisecond,
	}))

	time.Sleep(200 * time.Millisecond)

	writeConfig(t, filepath.Join(dir, "other.toml"), "unrelated = true\n")

	time.Sleep(300 * time.Millisecond)
	if got := srv.Runner.State(); got != httprun.StateRunning {
		t.Errorf("State() = %s, want Running after unrelated change", got)
	}
}

func TestPlugin_DisabledWhenPathEmpty(t *testing.T) {
	srv := httpruntest.Start(t, testApp, WithConfigWatcher(Config{}))

	time.Sleep(200 * time.Millisecond)
	if got := srv.Runner.State(); got != httprun.StateRunning {
		t.Errorf("State() = %s, want Running with watcher disabled", got)
	}
}
