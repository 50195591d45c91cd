package middleware

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// Per-client request budget. Interactive time-scrubbing fires bursts
// of range queries, so the burst allowance is generous relative to
// the sustained rate.
const (
	requestsPerSecond = 5
	burstSize         = 20
)

var (
	clientLimiters = make(map[string]*rate.Limiter)
	clientMu       sync.Mutex

	// loopback is exempt so the metrics scraper and local health
	// probes are never throttled
	exemptIPs = map[string]bool{
		"127.0.0.1": true,
		"::1":       true,
	}
)

func limiterFor(ip string) *rate.Limiter {
	clientMu.Lock()
	defer clientMu.Unlock()

	if lim, ok := clientLimiters[ip]; ok {
		return lim
	}
	lim := rate.NewLimiter(requestsPerSecond, burstSize)
	clientLimiters[ip] = lim
	return lim
}

func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, _ := net.SplitHostPort(r.RemoteAddr)
		if exemptIPs[ip] {
			next.ServeHTTP(w, r)
			return
		}

		if !limiterFor(ip).Allow() {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
