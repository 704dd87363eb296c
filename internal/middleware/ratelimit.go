package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"proofdeck/internal/apperror"
)

// RateLimitConfig holds the per-client token-bucket parameters.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a per-client token-bucket limit keyed by remote IP.
// Exceeding the limit answers 429 with a taxonomy payload and a Retry-After
// hint. A janitor goroutine drops limiters for idle clients; Stop terminates
// it.
type RateLimiter struct {
	cfg      RateLimitConfig
	clients  sync.Map // map[string]*clientLimiter
	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter builds a limiter and starts its janitor.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{cfg: cfg, stop: make(chan struct{})}
	go rl.janitor()
	return rl
}

// Stop shuts down the janitor goroutine. Safe to call more than once; the
// middleware keeps serving, limiters just stop being pruned.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) janitor() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.clients.Range(func(key, value any) bool {
				if time.Since(value.(*clientLimiter).lastSeen) > 10*time.Minute {
					rl.clients.Delete(key)
				}
				return true
			})
		}
	}
}

func (rl *RateLimiter) lookup(ip string) *rate.Limiter {
	if v, ok := rl.clients.Load(ip); ok {
		cl := v.(*clientLimiter)
		cl.lastSeen = time.Now()
		return cl.limiter
	}
	limiter := rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)
	rl.clients.Store(ip, &clientLimiter{limiter: limiter, lastSeen: time.Now()})
	return limiter
}

// Middleware returns the http.Handler wrapper applying the limit.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := rl.lookup(clientIP(r))

			reservation := limiter.Reserve()
			if !reservation.OK() {
				writeRateLimited(w, 0)
				return
			}
			if delay := reservation.Delay(); delay > 0 {
				reservation.Cancel()
				writeRateLimited(w, int(delay.Seconds())+1)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.cfg.Burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr. X-Forwarded-For is untrusted and
// ignored so the limit cannot be bypassed by header spoofing.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeRateLimited(w http.ResponseWriter, retryAfterSecs int) {
	if retryAfterSecs > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSecs))
	}
	e := apperror.New("rate limit exceeded", http.StatusTooManyRequests,
		apperror.WithName("RateLimitError"))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e.SerializeForClient(false))
}
