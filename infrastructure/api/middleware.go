package api

import (
	"chat-hub/auth"
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

const (
	defaultAuthRateLimit  = 10
	defaultAuthRatePeriod = time.Minute
)

// Authorize rejects requests without a valid bearer token and stores the
// caller id in the context.
func Authorize(verifier contract.IdentityVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortWithError(c, errors.ErrMissingToken)
			return
		}
		userID, err := verifier.Verify(token)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// mustUserID is only called behind Authorize.
func mustUserID(c *gin.Context) domain.UserID {
	return c.MustGet(userIDKey).(domain.UserID)
}

// LimitRate throttles by client IP.
func LimitRate(limit uint, period time.Duration) gin.HandlerFunc {
	if limit == 0 {
		limit = defaultAuthRateLimit
	}
	if period <= 0 {
		period = defaultAuthRatePeriod
	}
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  period,
		Limit: limit,
	})
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
			c.Header("Retry-After", strconv.Itoa(int(time.Until(info.ResetTime).Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "too many requests",
				"kind":    "rate_limited",
			})
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})
}

// RequestLogger logs one line per request once it is served.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("Request failed", attrs...)
		case status >= http.StatusBadRequest:
			log.Info("Request rejected", attrs...)
		default:
			log.Debug("Request served", attrs...)
		}
	}
}
