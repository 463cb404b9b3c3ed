package idempotency

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	HeaderKey      = "Idempotency-Key"
	HeaderReplayed = "Idempotent-Replayed"
	maxKeyLength   = 128
)

type bodyRecorder struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *bodyRecorder) WriteString(s string) (int, error) {
	r.buf.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

// Middleware replays the stored response of a mutating request carrying an
// Idempotency-Key the same user already sent. Requests without the header
// pass through. Server errors release the key so the client may retry.
func Middleware(store *Store, userOf func(c *gin.Context) string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader(HeaderKey))
		if idemKey == "" {
			c.Next()
			return
		}
		if len(idemKey) > maxKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid Idempotency-Key", "code": "validation_error"})
			return
		}

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		bodyHash := hash(body)

		key := buildKey(c.Request.Method, c.FullPath(), userOf(c), idemKey)
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		ok, err := store.Reserve(ctx, key, Entry{InProgress: true, BodySHA256: bodyHash, CreatedAt: time.Now().UTC()})
		if err != nil {
			logger.Error("Idempotency store unavailable", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Idempotency store unavailable", "code": "unavailable"})
			return
		}
		if !ok {
			current, err := store.Load(ctx, key)
			if err != nil {
				logger.Warn("Unable to load idempotency entry", zap.String("key", key), zap.Error(err))
			}
			if current != nil && current.BodySHA256 != "" && current.BodySHA256 != bodyHash {
				c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Idempotency-Key reused with a different body", "code": "idempotency_mismatch"})
				return
			}
			if current != nil && !current.InProgress && current.Code != 0 {
				c.Header(HeaderReplayed, "true")
				c.Data(current.Code, current.ContentType, current.Body)
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Request is already in progress", "code": "in_progress"})
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = rec
		c.Next()

		// The request context may already be done here.
		saveCtx, saveCancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 2*time.Second)
		defer saveCancel()

		status := rec.Status()
		if status >= http.StatusInternalServerError {
			if err := store.Release(saveCtx, key); err != nil {
				logger.Warn("Unable to release idempotency key", zap.String("key", key), zap.Error(err))
			}
			return
		}

		final := Entry{
			Code:        status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.buf.Bytes(),
			BodySHA256:  bodyHash,
			CreatedAt:   time.Now().UTC(),
		}
		if err := store.Save(saveCtx, key, final); err != nil {
			logger.Warn("Unable to save idempotent response", zap.String("key", key), zap.Error(err))
		}
	}
}

func buildKey(method, route, user, key string) string {
	return "idem:" + hash([]byte(method+"|"+route+"|"+user+"|"+key))
}

func hash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
