package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/bft-labs/httprun/pkg/httprun"
)

// newDemoApplication builds the built-in demonstration service: a single
// GET /status/{code} route that responds with the requested status code.
// Useful for exercising the runner without writing an application first.
func newDemoApplication(logger zerolog.Logger) httprun.Factory {
	return func(settings httprun.Settings) (*httprun.Application, error) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /status/{code}", statusHandler(logger))
		return httprun.NewApplication(mux), nil
	}
}

// statusHandler echoes the requested status code. Error statuses carry a
// JSON error document; the reason phrase and the logged message can be
// overridden with the reason and log_message query parameters.
func statusHandler(logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := strconv.Atoi(r.PathValue("code"))
		if err != nil || code < 200 || code > 599 {
			http.NotFound(w, r)
			return
		}

		if code < 400 {
			w.WriteHeader(code)
			return
		}

		reason := r.URL.Query().Get("reason")
		if reason == "" {
			reason = http.StatusText(code)
			if reason == "" {
				reason = "Unknown"
			}
		}
		logMessage := r.URL.Query().Get("log_message")
		if logMessage == "" {
			logMessage = reason
		}

		evt := logger.Error()
		if code < 500 {
			evt = logger.Warn()
		}
		evt.Str("method", r.Method).Str("uri", r.RequestURI).Int("status", code).Msg(logMessage)

		writeErrorBody(w, code, reason)
	}
}

// writeErrorBody writes the machine-readable error document. The type
// and traceback properties are null unless an exception produced the
// error, which never happens on this route.
func writeErrorBody(w http.ResponseWriter, code int, reason string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	body := map[string]any{"type": nil, "message": reason, "traceback": nil}
	_ = json.NewEncoder(w).Encode(body)
}
