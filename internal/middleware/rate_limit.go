package middleware

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"dreaming-of-a-jet-plane/scanner/internal/constants"
)

var (
	limiters      = make(map[string]*rate.Limiter)
	limitersMutex sync.Mutex

	whitelistedIPs = map[string]bool{
		"127.0.0.1": true, // health checks
	}
)

func getLimiter(ip string) *rate.Limiter {
	limitersMutex.Lock()
	defer limitersMutex.Unlock()

	if limiter, exists := limiters[ip]; exists {
		return limiter
	}
	perSecond := rate.Limit(float64(constants.FreeTierRatePerMinute) / 60.0)
	limiter := rate.NewLimiter(perSecond, constants.FreeTierRatePerMinute)
	limiters[ip] = limiter
	return limiter
}

// RateLimitMiddleware throttles the free tier per client IP.
func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if whitelistedIPs[ip] {
			next.ServeHTTP(w, r)
			return
		}

		limiter := getLimiter(ip)
		if !limiter.Allow() {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
