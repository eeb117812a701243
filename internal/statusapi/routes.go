package statusapi

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/candiedoperation/spifyrfb/internal/rfbauth"
)

const rootBanner = "<html><body><h1>SpifyRFB</h1><p>Remote framebuffer daemon.</p></body></html>"

func handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(rootBanner))
}

type statusResponse struct {
	Online   bool   `json:"online"`
	Hostname string `json:"hostname"`
}

func handleStatus(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, statusResponse{Online: true, Hostname: cfg.Hostname})
	}
}

// sessionResponse mirrors spec.md §4.I's /api/sessions shape exactly:
// {pid, ip, ws, ws_secure, username, logontime}. Username/logontime come
// from WTS session enumeration, which is out of scope for this server
// (external OrchestratorChannel concern); they are always emitted empty.
type sessionResponse struct {
	PID       uint32 `json:"pid"`
	Ip        string `json:"ip"`
	Ws        string `json:"ws"`
	WsSecure  bool   `json:"ws_secure"`
	Username  string `json:"username"`
	Logontime string `json:"logontime"`
}

func handleSessions(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions := cfg.Sessions.List()
		out := make([]sessionResponse, 0, len(sessions))
		for _, s := range sessions {
			out = append(out, sessionResponse{PID: s.PID, Ip: s.Ip, Ws: s.WsAddr, WsSecure: s.WsSecure})
		}
		writeJSON(w, out)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// pairkeyGate returns middleware requiring a valid "Pairkey" header,
// rate-limited per source IP, matching the original's is_paired_server
// guard in daemons/src/webapi/mod.rs.
func pairkeyGate(pairing *rfbauth.Pairing, limiter *ipRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !limiter.Allow(ip) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			key := r.Header.Get("Pairkey")
			if key == "" || pairing == nil || !pairing.Accepts(key) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ipRateLimiter holds one golang.org/x/time/rate.Limiter per source IP,
// grounded on the token-bucket limiter pattern in
// _examples/other_examples/e51260a1_benjamintd-gows__server.go.go.
type ipRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newIPRateLimiter(r rate.Limit, burst int) *ipRateLimiter {
	return &ipRateLimiter{limiters: make(map[string]*rate.Limiter), rate: r, burst: burst}
}

func (l *ipRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[ip] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow()
}
