package main

import (
	"context"
	"crypto/subtle"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// resolveDataDir picks the data dir: flag, then environment, then ".".
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if v := os.Getenv("FRANCHISE_DATA_DIR"); v != "" {
		return v
	}
	return "."
}

// writeTokenFile leaves a generated admin token where the operator can find
// it; only the owner can read it.
func writeTokenFile(dir, token string) (string, error) {
	p := filepath.Join(dir, "admin.token")
	return p, os.WriteFile(p, []byte(token+"\n"), 0o600)
}

// shutdownHandler lets a local caller holding the admin token stop the
// server; stop cancels the serve context.
func shutdownHandler(token string, stop context.CancelFunc, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if host != "127.0.0.1" && host != "::1" && host != "localhost" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		got := r.Header.Get("X-Admin-Token")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// Respond immediately; the serve loop drains connections.
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("shutting down\n"))
		log.Info("shutdown requested", zap.String("remote", r.RemoteAddr))
		stop()
	}
}
