// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// In Clean Architecture / Hexagonal Architecture, ports are the boundaries
// between the application core and the outside world. They define what the
// application needs from external systems without specifying how those needs
// are fulfilled.
//
// # Port Interfaces
//
//   - [Binder]: Binds TCP listeners, optionally with kernel port sharing
//   - [SignalSource]: Delivers OS termination signals
//   - [ServeRuntime]: Drives the accept loop for a bound listener
//   - [ProcessSpawner]: Spawns and controls worker processes
//   - [Logger]: Structured logging abstraction
//
// # Usage
//
// The orchestration layers (internal/app, pkg/httprun) depend only on these
// interfaces. Infrastructure adapters (internal/adapters) implement these
// interfaces with concrete implementations (net, os/signal, net/http,
// os/exec, zerolog, etc.).
//
// This separation enables:
//   - Testing lifecycle logic with mock implementations
//   - Swapping infrastructure without changing orchestration logic
//   - Clear boundaries and dependency direction
package ports
