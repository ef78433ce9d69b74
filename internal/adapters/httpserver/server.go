package httpserver

import (
	"log"
	"net/http"
	"strings"

	"github.com/bft-labs/httprun/internal/ports"
)

// New builds an *http.Server serving the given handler. The server's
// internal error output (accept errors, handler panics) is bridged into
// the structured logger so nothing writes to the process stderr directly.
func New(handler http.Handler, logger ports.Logger) *http.Server {
	return &http.Server{
		Handler:  handler,
		ErrorLog: log.New(&logWriter{logger: logger}, "", 0),
	}
}

// logWriter adapts ports.Logger to the io.Writer the standard library
// server wants for its error log.
type logWriter struct {
	logger ports.Logger
}

func (w *logWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	w.logger.Warn("http server", ports.String("detail", msg))
	return len(p), nil
}
