package pidfile

import (
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/bft-labs/httprun/pkg/httprun"
	"github.com/bft-labs/httprun/pkg/httpruntest"
	"github.com/bft-labs/httprun/pkg/log"
)

func TestPlugin_Name(t *testing.T) {
	plugin := New(DefaultConfig())
	if plugin.Name() != "pidfile" {
		t.Errorf("Name() = %v, want pidfile", plugin.Name())
	}
}

func TestPlugin_WriteAndRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.pid")
	plugin := New(Config{Path: path})
	plugin.logger = noopLogger{}

	if err := plugin.write(); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read pid file: %v", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid != os.Getpid() {
		t.Errorf("pid file contains %q, want %d", data, os.Getpid())
	}

	if err := plugin.remove(); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("pid file should be removed")
	}
}

func TestPlugin_WriteRefusesHeldFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.pid")
	// PID 1 always exists.
	if err := os.WriteFile(path, []byte("1\n"), 0o644); err != nil {
		t.Fatalf("seed pid file: %v", err)
	}

	plugin := New(Config{Path: path})
	plugin.logger = noopLogger{}

	err := plugin.write()
	if err == nil {
		t.Fatal("write should refuse a PID file held by a live process")
	}
	if !strings.Contains(err.Error(), "held by running process 1") {
		t.Errorf("error = %v, want held-by message", err)
	}
}

func TestPlugin_WriteReplacesStaleFile(t *testing.T) {
	// Run a process to completion so its PID is known dead.
	cmd := exec.Command("true")
	if err := cmd.Run(); err != nil {
		t.Fatalf("run true: %v", err)
	}
	deadPID := cmd.Process.Pid

	path := filepath.Join(t.TempDir(), "test.pid")
	if err := os.WriteFile(path, []byte(strconv.Itoa(deadPID)+"\n"), 0o644); err != nil {
		t.Fatalf("seed pid file: %v", err)
	}

	plugin := New(Config{Path: path})
	plugin.logger = noopLogger{}

	if err := plugin.write(); err != nil {
		t.Fatalf("write should replace a stale pid file: %v", err)
	}

	data, _ := os.ReadFile(path)
	if strings.TrimSpace(string(data)) != strconv.Itoa(os.Getpid()) {
		t.Errorf("pid file contains %q, want own pid", data)
	}
}

func TestPlugin_RemoveLeavesForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.pid")
	if err := os.WriteFile(path, []byte("1\n"), 0o644); err != nil {
		t.Fatalf("seed pid file: %v", err)
	}

	plugin := New(Config{Path: path})
	plugin.logger = noopLogger{}

	if err := plugin.remove(); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("foreign pid file should be left in place")
	}
}

func TestPlugin_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "nested", "test.pid")
	plugin := New(Config{Path: path})
	plugin.logger = noopLogger{}

	if err := plugin.write(); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("pid file missing: %v", err)
	}
	_ = plugin.remove()
}

func TestPlugin_Lifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.pid")

	factory := func(settings httprun.Settings) (*httprun.Application, error) {
		return httprun.NewApplication(http.NotFoundHandler()), nil
	}

	srv := httpruntest.Start(t, factory, WithPIDFile(Config{Path: path}))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("pid file missing while running: %v", err)
	}
	if strings.TrimSpace(string(data)) != strconv.Itoa(os.Getpid()) {
		t.Errorf("pid file contains %q, want own pid", data)
	}

	srv.Stop(t)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("pid file should be removed after shutdown")
	}
}

// noopLogger implements log.Logger for testing
type noopLogger struct{}

func (noopLogger) Debug(msg string, fields ...log.Field) {}
func (noopLogger) Info(msg string, fields ...log.Field)  {}
func (noopLogger) Warn(msg string, fields ...log.Field)  {}
func (noopLogger) Error(msg string, fields ...log.Field) {}
