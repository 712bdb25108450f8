package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/generapi/generapi/apitypes"
)

const (
	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "requestID"
	loggerKey    = "logger"
)

func apiError(status int, detail string) *apitypes.ApiError {
	return &apitypes.ApiError{Status: status, Title: http.StatusText(status), Detail: detail}
}

// RequestID reuses the caller's X-Request-ID or assigns a new uuid, and echoes it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// AccessLog logs one line per request and stores a request-scoped logger for handlers.
func AccessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqLogger := logger.With("requestID", c.GetString(requestIDKey), "remote", c.ClientIP())
		c.Set(loggerKey, reqLogger)

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		reqLogger.Log(c.Request.Context(), level, "HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"bytes", c.Writer.Size(),
			"took", time.Since(start),
		)
	}
}

// Logger returns the request-scoped logger set by AccessLog, or slog.Default.
func Logger(c *gin.Context) *slog.Logger {
	if l, ok := c.Get(loggerKey); ok {
		if logger, ok := l.(*slog.Logger); ok {
			return logger
		}
	}
	return slog.Default()
}

// Recovery turns a handler panic into a 500 problem response.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.Error("Panic in handler", "path", c.Request.URL.Path, "panic", recovered)
		Abort(c, ErrInternal("internal error"))
	})
}

// BodyLimit caps the request body; reads past the limit fail with *http.MaxBytesError.
func BodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

// CORS allows the given origins ("*" for any).
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposeHeaders: []string{"Content-Disposition", "ETag", RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// DefaultLimiterIdle is how long RateLimit keeps the bucket of a quiet client.
const DefaultLimiterIdle = 10 * time.Minute

// RateLimit limits each client IP to r requests per second with the given burst.
// A non-positive r disables limiting.
func RateLimit(r float64, burst int) gin.HandlerFunc {
	if r <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return NewClientLimiter(r, burst, DefaultLimiterIdle).Middleware()
}

type clientBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// ClientLimiter keeps one token bucket per client key. Buckets unused for the idle
// period are dropped; the sweep runs at most once per idle period, on a request.
// The idle period is never shorter than a full refill, so a dropped client gets
// back no more than its bucket would have held.
type ClientLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration

	mu        sync.Mutex
	clients   map[string]*clientBucket
	lastSweep time.Time
}

func NewClientLimiter(r float64, burst int, idle time.Duration) *ClientLimiter {
	if burst < 1 {
		burst = 1
	}
	if refill := time.Duration(float64(burst) / r * float64(time.Second)); idle < refill {
		idle = refill
	}
	return &ClientLimiter{
		limit:   rate.Limit(r),
		burst:   burst,
		idle:    idle,
		clients: make(map[string]*clientBucket),
	}
}

// Allow takes one token from key's bucket.
func (l *ClientLimiter) Allow(key string) bool { return l.AllowAt(key, time.Now()) }

func (l *ClientLimiter) AllowAt(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.idle {
		for k, b := range l.clients {
			if now.Sub(b.seen) >= l.idle {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.clients[key]
	if !ok {
		b = &clientBucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

// Len is the number of clients currently tracked.
func (l *ClientLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Middleware rejects requests over the limit with 429, keyed by client IP.
func (l *ClientLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			Abort(c, ErrTooManyRequests("rate limit exceeded"))
			return
		}
		c.Next()
	}
}
