package proc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/bft-labs/httprun/internal/ports"
)

// WorkerEnv marks a process as a worker child and carries its zero-based id.
// The parent sets it when spawning; workers must never set it themselves.
const WorkerEnv = "HTTPRUN_WORKER_ID"

// WorkerID reports the worker id of the current process, or false when the
// process is a parent (the variable is absent or malformed).
func WorkerID() (int, bool) {
	v, ok := os.LookupEnv(WorkerEnv)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(v)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

// Spawner starts worker processes by re-executing the current binary with
// the worker marker set. Workers inherit the parent's arguments,
// environment and output streams.
type Spawner struct {
	logger ports.Logger
}

func NewSpawner(logger ports.Logger) *Spawner {
	return &Spawner{logger: logger}
}

// Spawn starts worker id as a child process.
func (s *Spawner) Spawn(_ context.Context, id int) (ports.WorkerProcess, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}

	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = append(os.Environ(), fmt.Sprintf("%s=%d", WorkerEnv, id))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start worker %d: %w", id, err)
	}

	s.logger.Info("worker started",
		ports.Int("worker", id),
		ports.Int("pid", cmd.Process.Pid))

	return &process{cmd: cmd}, nil
}

// process wraps an exec.Cmd as a ports.WorkerProcess.
type process struct {
	cmd *exec.Cmd
}

func (p *process) PID() int {
	return p.cmd.Process.Pid
}

func (p *process) Signal(sig os.Signal) error {
	return p.cmd.Process.Signal(sig)
}

// Wait blocks until the child exits and returns its exit code. A non-nil
// error means the wait itself failed, not that the child exited non-zero.
func (p *process) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
