package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/shashiranjanraj/supplydesk/config"
	"github.com/shashiranjanraj/supplydesk/pkg/logger"
	"github.com/shashiranjanraj/supplydesk/pkg/response"
)

var (
	storeMu     sync.RWMutex
	sharedStore limiter.Store
)

// UseRedisRateStore keeps the counters of every limiter built afterwards in
// Redis, so all instances behind a load balancer share one budget. Without
// it each limiter counts in process memory.
func UseRedisRateStore(rdb *redis.Client) error {
	store, err := sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix: "supplydesk:rate",
	})
	if err != nil {
		return fmt.Errorf("middleware: redis rate store: %w", err)
	}
	storeMu.Lock()
	sharedStore = store
	storeMu.Unlock()
	return nil
}

func rateStore() limiter.Store {
	storeMu.RLock()
	defer storeMu.RUnlock()
	if sharedStore != nil {
		return sharedStore
	}
	return memory.NewStore()
}

// Limiter counts requests per client IP. Login endpoints use it to slow
// down password guessing.
type Limiter struct {
	name string
	rate *limiter.Limiter
}

// NewLimiter allows max requests per window for each client. name keeps
// the counters of different limiters apart in a shared store.
func NewLimiter(name string, max int, window time.Duration) *Limiter {
	return &Limiter{
		name: name,
		rate: limiter.New(rateStore(), limiter.Rate{Period: window, Limit: int64(max)}),
	}
}

// Allow records one request from ip and reports whether it is within the
// limit.
func (l *Limiter) Allow(ctx context.Context, ip string) (bool, error) {
	res, err := l.rate.Get(ctx, l.name+":"+ip)
	if err != nil {
		return false, err
	}
	return !res.Reached, nil
}

// Middleware rejects requests over the limit with 429. A failing store
// lets the request through.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, err := l.rate.Get(r.Context(), l.name+":"+ClientIP(r))
		if err != nil {
			logger.WithCtx(r.Context()).Warn("rate limit store unavailable", "limiter", l.name, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
		h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(res.Reset, 10))
		if res.Reached {
			response.TooManyRequests(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit limits each IP to max requests per window.
//
//	middleware.RateLimit("login", 10, time.Minute)
func RateLimit(name string, max int, window time.Duration) func(http.Handler) http.Handler {
	return NewLimiter(name, max, window).Middleware
}

// ClientIP is the socket peer. X-Forwarded-For is only read when the peer is
// one of TRUSTED_PROXIES; the client is then the right-most hop that is not
// itself a trusted proxy.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	proxies := trustedProxies()
	if !proxies.contains(host) {
		return host
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if net.ParseIP(hop) == nil {
			break
		}
		if !proxies.contains(hop) {
			return hop
		}
		host = hop
	}
	return host
}

type proxyList []*net.IPNet

func (p proxyList) contains(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range p {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// parseProxies reads a comma-separated list of IPs and CIDRs.
func parseProxies(raw string) proxyList {
	var out proxyList
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "/") {
			if ip := net.ParseIP(part); ip != nil && ip.To4() != nil {
				part += "/32"
			} else {
				part += "/128"
			}
		}
		_, n, err := net.ParseCIDR(part)
		if err != nil {
			logger.Warn("ignoring bad TRUSTED_PROXIES entry", "entry", part, "error", err)
			continue
		}
		out = append(out, n)
	}
	return out
}

type parsedProxies struct {
	raw  string
	list proxyList
}

var proxyCache atomic.Pointer[parsedProxies]

func trustedProxies() proxyList {
	raw := config.Get("TRUSTED_PROXIES", "")
	if c := proxyCache.Load(); c != nil && c.raw == raw {
		return c.list
	}
	list := parseProxies(raw)
	proxyCache.Store(&parsedProxies{raw: raw, list: list})
	return list
}
