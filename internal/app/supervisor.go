package app

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"github.com/bft-labs/httprun/internal/ports"
)

// DefaultMaxRestarts caps how many crashed workers the supervisor will
// replace before giving up on the whole pool.
const DefaultMaxRestarts = 100

// A crash later than this after the previous one resets the restart backoff.
const backoffResetAfter = 30 * time.Second

// Supervisor runs a fixed-size pool of worker processes and keeps it at
// size until the pool winds down. Workers that crash are replaced, with
// exponential backoff between replacements; workers that exit zero are
// considered done and not replaced.
type Supervisor struct {
	spawner     ports.ProcessSpawner
	logger      ports.Logger
	workers     int
	maxRestarts int
	backoff     *backoff
}

// NewSupervisor creates a supervisor for the given pool size.
func NewSupervisor(spawner ports.ProcessSpawner, logger ports.Logger, workers int) *Supervisor {
	return &Supervisor{
		spawner:     spawner,
		logger:      logger,
		workers:     workers,
		maxRestarts: DefaultMaxRestarts,
		backoff:     newBackoff(DefaultBackoffInitial, DefaultBackoffMax),
	}
}

// workerExit is delivered once per spawned process when it terminates.
type workerExit struct {
	id   int
	code int
	err  error
}

// Run spawns the configured number of workers and supervises them until
// every worker has exited. Cancelling ctx forwards SIGTERM to all live
// workers and stops any further restarts; Run still waits for the workers
// to exit before returning. A nil return means the pool wound down cleanly.
func (s *Supervisor) Run(ctx context.Context) error {
	procs := make(map[int]ports.WorkerProcess, s.workers)
	exits := make(chan workerExit, s.workers)

	var failure error
	stopping := false

	for id := 0; id < s.workers; id++ {
		if err := s.launch(ctx, id, procs, exits); err != nil {
			failure = fmt.Errorf("spawn worker %d: %w", id, err)
			s.logger.Error("worker spawn failed", ports.Int("worker", id), ports.Err(err))
			stopping = true
			s.stopWorkers(procs)
			break
		}
	}

	restarts := 0
	lastRestart := time.Now()
	done := ctx.Done()

	for len(procs) > 0 {
		select {
		case <-done:
			done = nil
			stopping = true
			s.logger.Info("stopping workers", ports.Int("count", len(procs)))
			s.stopWorkers(procs)

		case e := <-exits:
			delete(procs, e.id)
			switch {
			case e.err != nil:
				s.logger.Error("worker wait failed", ports.Int("worker", e.id), ports.Err(e.err))
				if failure == nil {
					failure = fmt.Errorf("wait for worker %d: %w", e.id, e.err)
				}

			case e.code == 0:
				s.logger.Info("worker exited", ports.Int("worker", e.id))

			case stopping:
				s.logger.Warn("worker exited during shutdown",
					ports.Int("worker", e.id), ports.Int("code", e.code))

			default:
				restarts++
				if restarts > s.maxRestarts {
					failure = fmt.Errorf("worker %d exited with code %d after %d restarts",
						e.id, e.code, s.maxRestarts)
					s.logger.Error("too many worker restarts",
						ports.Int("worker", e.id), ports.Int("restarts", restarts-1))
					stopping = true
					s.stopWorkers(procs)
					continue
				}

				s.logger.Warn("worker crashed, restarting",
					ports.Int("worker", e.id), ports.Int("code", e.code))
				if time.Since(lastRestart) > backoffResetAfter {
					s.backoff.Reset()
				}
				lastRestart = time.Now()
				s.backoff.Sleep(ctx)
				if ctx.Err() != nil {
					// Stop request arrived during the backoff wait.
					continue
				}
				if err := s.launch(ctx, e.id, procs, exits); err != nil {
					failure = fmt.Errorf("respawn worker %d: %w", e.id, err)
					s.logger.Error("worker respawn failed", ports.Int("worker", e.id), ports.Err(err))
					stopping = true
					s.stopWorkers(procs)
				}
			}
		}
	}

	return failure
}

// launch spawns worker id, registers it and starts a goroutine that
// reports its exit on the exits channel.
func (s *Supervisor) launch(ctx context.Context, id int, procs map[int]ports.WorkerProcess, exits chan<- workerExit) error {
	p, err := s.spawner.Spawn(ctx, id)
	if err != nil {
		return err
	}
	procs[id] = p
	go func() {
		code, werr := p.Wait()
		exits <- workerExit{id: id, code: code, err: werr}
	}()
	return nil
}

func (s *Supervisor) stopWorkers(procs map[int]ports.WorkerProcess) {
	for id, p := range procs {
		if err := p.Signal(syscall.SIGTERM); err != nil {
			s.logger.Warn("signal worker", ports.Int("worker", id), ports.Err(err))
		}
	}
}
