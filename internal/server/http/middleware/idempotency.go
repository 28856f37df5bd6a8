package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/idempotency"
)

const (
	// IdempotencyKeyHeader is the client supplied key for safe retries.
	IdempotencyKeyHeader = "Idempotency-Key"
	// ReplayedHeader marks a response served from the idempotency store.
	ReplayedHeader = "Idempotent-Replayed"
)

type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotent replays the stored response of a POST that carries an already
// seen Idempotency-Key. Only successful responses are stored so a failed
// attempt may be retried with the same key. Requests without an identity or
// guest token bypass the store.
func Idempotent(store idempotency.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		scope, ok := callerScope(c)
		if !ok {
			c.Next()
			return
		}
		clientKey := c.GetHeader(IdempotencyKeyHeader)
		key, err := idempotency.Key(c.Request.Method, c.Request.URL.Path, clientKey)
		if err != nil {
			c.Next()
			return
		}
		key = scope + " " + key

		ctx := c.Request.Context()
		stored, err := store.Get(ctx, key)
		if err != nil {
			logger.WarnContext(ctx, "idempotency lookup failed", slog.String("error", err.Error()))
		}
		if stored != nil {
			c.Header(ReplayedHeader, "true")
			c.Data(stored.Status, stored.ContentType, stored.Body)
			c.Abort()
			return
		}

		rec := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		status := rec.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}
		resp := idempotency.StoredResponse{
			Status:      status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
		}
		if err := store.Save(ctx, key, resp); err != nil {
			logger.WarnContext(ctx, "idempotency save failed", slog.String("error", err.Error()))
		}
	}
}

// callerScope keeps keys of different callers apart so a replay never
// bypasses order access checks. Anonymous callers have no scope: a shared one
// would hand one guest's new order and token to another.
func callerScope(c *gin.Context) (string, bool) {
	if val, ok := c.Get(UserIDContextKey); ok {
		if id, _ := val.(int64); id > 0 {
			return "user:" + strconv.FormatInt(id, 10), true
		}
	}
	if val, ok := c.Get(GuestTokenContextKey); ok {
		if token, _ := val.(string); token != "" {
			sum := sha256.Sum256([]byte(token))
			return "guest:" + hex.EncodeToString(sum[:8]), true
		}
	}
	return "", false
}
