package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// MiddlewareConfig holds configuration for the document cache middleware
type MiddlewareConfig struct {
	// Cache is the cache backend to use
	Cache Cache
	// KeyGenerator generates cache keys from requests
	KeyGenerator *KeyGenerator
	// TTL is the time-to-live for cached documents
	TTL time.Duration
	// ContentType restricts caching to responses of this media type
	ContentType string
	// OnLookup is called after every cache lookup
	OnLookup func(hit bool)
	// Logger receives response write failures; zap.NewNop when nil
	Logger *zap.Logger
}

// Middleware serves GET requests from the cache and stores successful
// responses of the configured content type. Responses carry an ETag and
// X-Cache header; a matching If-None-Match yields 304.
func Middleware(config MiddlewareConfig) func(http.Handler) http.Handler {
	if config.KeyGenerator == nil {
		config.KeyGenerator = DefaultKeyGenerator()
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := config.KeyGenerator.GenerateKey(r)

			if data, err := config.Cache.Get(ctx, key); err == nil {
				var cached cachedResponse
				if err := json.Unmarshal(data, &cached); err == nil {
					config.lookup(true)
					config.written(r, cached.serve(w, r))
					return
				}
			}
			config.lookup(false)

			recorder := newResponseRecorder(w)
			next.ServeHTTP(recorder, r)
			config.written(r, recorder.flush())

			if recorder.statusCode != http.StatusOK {
				return
			}
			contentType := recorder.Header().Get("Content-Type")
			if config.ContentType != "" && !strings.HasPrefix(contentType, config.ContentType) {
				return
			}

			cached := cachedResponse{
				StatusCode:  recorder.statusCode,
				ContentType: contentType,
				Body:        recorder.body.Bytes(),
				ETag:        GenerateETag(recorder.body.Bytes()),
			}
			if data, err := json.Marshal(cached); err == nil {
				config.Cache.Set(ctx, key, data, config.TTL)
			}
		})
	}
}

// written logs a failed write. The recorded body is still stored: it is
// complete even when the client is gone.
func (c MiddlewareConfig) written(r *http.Request, err error) {
	if err != nil {
		c.Logger.Debug("cached response write failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

func (c MiddlewareConfig) lookup(hit bool) {
	if c.OnLookup != nil {
		c.OnLookup(hit)
	}
}

// GenerateETag generates a strong ETag for the given content
func GenerateETag(content []byte) string {
	hash := sha256.Sum256(content)
	return `"` + hex.EncodeToString(hash[:16]) + `"`
}

// cachedResponse represents a cached HTTP response
type cachedResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
	ETag        string
}

func (c cachedResponse) serve(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("ETag", c.ETag)
	w.Header().Set("X-Cache", "HIT")

	if matchesETag(r.Header.Get("If-None-Match"), c.ETag) {
		w.WriteHeader(http.StatusNotModified)
		return nil
	}

	w.Header().Set("Content-Type", c.ContentType)
	w.WriteHeader(c.StatusCode)
	_, err := w.Write(c.Body)
	return err
}

func matchesETag(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// responseRecorder buffers a response so it can be stored before it is sent
type responseRecorder struct {
	http.ResponseWriter
	statusCode  int
	body        *bytes.Buffer
	wroteHeader bool
}

// newResponseRecorder creates a new response recorder
func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
		body:           new(bytes.Buffer),
	}
}

// WriteHeader records the status code
func (r *responseRecorder) WriteHeader(statusCode int) {
	if !r.wroteHeader {
		r.statusCode = statusCode
		r.wroteHeader = true
	}
}

// Write records the response body
func (r *responseRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.body.Write(b)
}

// flush sends the buffered response to the underlying writer
func (r *responseRecorder) flush() error {
	if r.statusCode == http.StatusOK {
		r.Header().Set("ETag", GenerateETag(r.body.Bytes()))
	}
	r.Header().Set("X-Cache", "MISS")
	r.ResponseWriter.WriteHeader(r.statusCode)
	_, err := r.ResponseWriter.Write(r.body.Bytes())
	return err
}
