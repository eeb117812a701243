// Package statusapi serves the HTTP status surface: unauthenticated
// liveness/hostname info, and pairkey-gated session listing, screenshot
// capture, and power-action routes. It is mounted as the HTTP fallback
// on the WebSocket bridge's listener (internal/wsbridge) so both share
// one port.
package statusapi

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/candiedoperation/spifyrfb/internal/display"
	"github.com/candiedoperation/spifyrfb/internal/ipc"
	"github.com/candiedoperation/spifyrfb/internal/rfbauth"
)

// OrchestratorChannel is the capability the power-action routes delegate
// to. Spawning or supervising the underlying OS session is explicitly
// out of scope for this server; only this interface and a logging stub
// implementation (see stub.go) are provided.
type OrchestratorChannel interface {
	Lock() error
	Logoff() error
	Shutdown() error
	Reboot() error
}

// Config wires the status API's dependencies.
type Config struct {
	Pairing      *rfbauth.Pairing
	Sessions     *ipc.SessionMap
	Display      display.Provider
	Orchestrator OrchestratorChannel
	Hostname     string

	// RateLimit bounds requests per source IP to the pairkey-gated
	// routes, defending against pair-key brute forcing.
	RateLimit rate.Limit
	RateBurst int
}

// NewMux builds the route table described in spec.md §4.I, supplemented
// with /api/screenshot and /api/power/*.
func NewMux(cfg Config) http.Handler {
	if cfg.RateLimit == 0 {
		cfg.RateLimit = rate.Every(time.Second)
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = 5
	}

	limiter := newIPRateLimiter(cfg.RateLimit, cfg.RateBurst)
	gate := pairkeyGate(cfg.Pairing, limiter)

	mux := http.NewServeMux()
	mux.HandleFunc("/", handleRoot)
	mux.HandleFunc("/api/status", handleStatus(cfg))
	mux.Handle("/api/sessions", gate(http.HandlerFunc(handleSessions(cfg))))
	mux.Handle("/api/screenshot", gate(http.HandlerFunc(handleScreenshot(cfg))))
	mux.Handle("/api/power/lock", gate(powerHandler(cfg, OrchestratorChannel.Lock)))
	mux.Handle("/api/power/logoff", gate(powerHandler(cfg, OrchestratorChannel.Logoff)))
	mux.Handle("/api/power/shutdown", gate(powerHandler(cfg, OrchestratorChannel.Shutdown)))
	mux.Handle("/api/power/reboot", gate(powerHandler(cfg, OrchestratorChannel.Reboot)))
	return mux
}
