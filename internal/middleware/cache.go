package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ResponseCache is the subset of the cache service the middleware needs.
// Satisfied by shardedcache.CacheInterface from simp-lee/cache.
type ResponseCache interface {
	Get(key string) (any, bool)
	SetWithExpiration(key string, value any, expiration time.Duration)
}

// cachedResponse is the stored copy of a successful public response.
type cachedResponse struct {
	ContentType string
	Body        []byte
}

// CachePublic returns a gin middleware that caches successful GET responses
// for the given TTL, keyed by the full request URL (path and query, so each
// page/search combination is cached independently). Mutations elsewhere are
// reconciled by TTL expiry; public listings tolerate that staleness.
func CachePublic(store ResponseCache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()
		if v, ok := store.Get(key); ok {
			if cached, ok := v.(cachedResponse); ok {
				c.Header("X-Cache", "hit")
				c.Data(http.StatusOK, cached.ContentType, cached.Body)
				c.Abort()
				return
			}
		}

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		if w.Status() == http.StatusOK {
			store.SetWithExpiration(key, cachedResponse{
				ContentType: w.Header().Get("Content-Type"),
				Body:        w.buf.Bytes(),
			}, ttl)
		}
	}
}

// captureWriter tees the response body so it can be cached after the
// handler chain completes.
type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
