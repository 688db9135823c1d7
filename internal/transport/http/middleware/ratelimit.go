package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hrdesk/internal/platform/lock"
	"hrdesk/internal/transport/http/api"
)

type RateLimitKeyFunc func(r *http.Request) string

type RateLimitOption func(*limiter)

// WithKeyFunc overrides how requests are bucketed.
func WithKeyFunc(fn RateLimitKeyFunc) RateLimitOption {
	return func(l *limiter) {
		if fn != nil {
			l.keyFn = fn
		}
	}
}

// WithCounter shares hit counts through c, typically Redis so that every
// replica enforces the same budget.
func WithCounter(c lock.Counter) RateLimitOption {
	return func(l *limiter) {
		if c != nil {
			l.counter = c
		}
	}
}

type limiter struct {
	name    string
	limit   int
	window  time.Duration
	keyFn   RateLimitKeyFunc
	counter lock.Counter
}

func newLimiter(name string, limit int, window time.Duration, keyFn RateLimitKeyFunc, opts ...RateLimitOption) *limiter {
	l := &limiter{name: name, limit: limit, window: window, keyFn: keyFn}
	for _, opt := range opts {
		opt(l)
	}
	if l.keyFn == nil {
		l.keyFn = actorOrIPKey
	}
	if l.counter == nil {
		l.counter = lock.NewLocalCounter()
	}
	return l
}

// RateLimit caps every request per signed-in user, or per client IP for
// anonymous callers.
func RateLimit(limit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	l := newLimiter("api", limit, window, actorOrIPKey, opts...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.allow(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// SensitiveMutationRateLimit applies tighter budgets to login attempts
// (per IP and per email) and to mutations such as clock-in, leave review
// and salary edits (per actor).
func SensitiveMutationRateLimit(baseLimit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	loginByIP := newLimiter("login-ip", max(baseLimit/4, 1), window, clientIPKey, opts...)
	loginByEmail := newLimiter("login-email", max(baseLimit/4, 1), window, AuthEmailOrIPKey("email"), opts...)
	byActor := newLimiter("mutation", max(baseLimit/2, 1), window, actorOrIPKey, opts...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch sensitiveRateScope(r) {
			case sensitiveScopeAuth:
				if !loginByIP.allow(w, r) || !loginByEmail.allow(w, r) {
					return
				}
			case sensitiveScopeActor:
				if !byActor.allow(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (l *limiter) allow(w http.ResponseWriter, r *http.Request) bool {
	if l.limit <= 0 {
		return true
	}
	key := l.keyFn(r)
	if key == "" {
		key = clientIPKey(r)
	}

	count, resetIn, err := l.counter.Hit(r.Context(), "rl:"+l.name+":"+key, l.window)
	if err != nil {
		// Counting is best effort; an unreachable store must not block the API.
		slog.Warn("rate limit counter failed", "limiter", l.name, "err", err)
		return true
	}

	resetSec := ceilSeconds(resetIn)
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(l.limit-count, 0)))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetSec))
	if count <= l.limit {
		return true
	}

	w.Header().Set("Retry-After", strconv.Itoa(max(resetSec, 1)))
	slog.Warn("rate limit exceeded",
		"limiter", l.name,
		"key", key,
		"method", r.Method,
		"path", r.URL.Path,
		"limit", l.limit,
	)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

func actorOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.UserID
	}
	return clientIPKey(r)
}

// AuthEmailOrIPKey buckets by the lowercased JSON body field, falling back
// to the client IP. The body is restored for the next handler.
func AuthEmailOrIPKey(field string) RateLimitKeyFunc {
	field = strings.TrimSpace(field)
	if field == "" {
		field = "email"
	}
	return func(r *http.Request) string {
		if email := peekJSONField(r, field); email != "" {
			return "email:" + strings.ToLower(email)
		}
		return clientIPKey(r)
	}
}

func peekJSONField(r *http.Request, field string) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	var payload map[string]any
	if json.Unmarshal(raw, &payload) != nil {
		return ""
	}
	value, _ := payload[field].(string)
	return strings.TrimSpace(value)
}

type sensitiveScope string

const (
	sensitiveScopeNone  sensitiveScope = ""
	sensitiveScopeAuth  sensitiveScope = "auth"
	sensitiveScopeActor sensitiveScope = "actor"
)

// Path patterns below /api/v1; "*" matches one segment.
var sensitiveRoutes = []struct {
	pattern string
	scope   sensitiveScope
}{
	{"/auth/login", sensitiveScopeAuth},
	{"/attendance/clock-in", sensitiveScopeActor},
	{"/attendance/clock-out", sensitiveScopeActor},
	{"/attendance/auto-clock-out/run", sensitiveScopeActor},
	{"/salaries", sensitiveScopeActor},
	{"/leave/*/*/approve", sensitiveScopeActor},
	{"/leave/*/*/reject", sensitiveScopeActor},
	{"/profile/profile-pic", sensitiveScopeActor},
}

func sensitiveRateScope(r *http.Request) sensitiveScope {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return sensitiveScopeNone
	}
	path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/v1"), "/")
	for _, route := range sensitiveRoutes {
		if matchSegments(route.pattern, path) {
			return route.scope
		}
	}
	return sensitiveScopeNone
}

func matchSegments(pattern, path string) bool {
	want := strings.Split(pattern, "/")
	got := strings.Split(path, "/")
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] != "*" && want[i] != got[i] {
			return false
		}
	}
	return true
}
