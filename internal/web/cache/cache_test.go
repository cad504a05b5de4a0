package cache

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// backends runs a test against the memory and redis implementations
func backends(t *testing.T, run func(t *testing.T, c Cache, advance func(time.Duration))) {
	t.Run("memory", func(t *testing.T) {
		c := NewMemoryCache(DefaultConfig())
		now := time.Now()
		c.now = func() time.Time { return now }
		run(t, c, func(d time.Duration) { now = now.Add(d) })
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		c := NewRedisCacheWithClient(client, DefaultConfig())
		defer c.Close()
		run(t, c, mr.FastForward)
	})
}

func TestCacheSetGet(t *testing.T) {
	backends(t, func(t *testing.T, c Cache, _ func(time.Duration)) {
		ctx := context.Background()

		require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
		got, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)

		_, err = c.Get(ctx, "missing")
		assert.True(t, IsCacheMiss(err))
	})
}

func TestCacheExpiry(t *testing.T) {
	backends(t, func(t *testing.T, c Cache, advance func(time.Duration)) {
		ctx := context.Background()

		require.NoError(t, c.Set(ctx, "short", []byte("v"), time.Second))
		require.NoError(t, c.Set(ctx, "default", []byte("v"), 0))
		advance(2 * time.Second)

		_, err := c.Get(ctx, "short")
		assert.True(t, IsCacheMiss(err))
		_, err = c.Get(ctx, "default")
		assert.NoError(t, err)

		advance(2 * time.Minute)
		_, err = c.Get(ctx, "default")
		assert.True(t, IsCacheMiss(err))
	})
}

func TestCacheDeleteClear(t *testing.T) {
	backends(t, func(t *testing.T, c Cache, _ func(time.Duration)) {
		ctx := context.Background()

		for _, k := range []string{"a", "b", "c"} {
			require.NoError(t, c.Set(ctx, k, []byte(k), time.Minute))
		}

		require.NoError(t, c.Delete(ctx, "a"))
		_, err := c.Get(ctx, "a")
		assert.True(t, IsCacheMiss(err))

		require.NoError(t, c.Clear(ctx))
		_, err = c.Get(ctx, "b")
		assert.True(t, IsCacheMiss(err))
	})
}

func TestRedisClearKeepsOtherPrefixes(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("other:key", "kept"))

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCacheWithClient(client, DefaultConfig())
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "doc", []byte("x"), time.Minute))
	require.NoError(t, c.Clear(ctx))

	assert.False(t, mr.Exists("resourcegraph:doc"))
	assert.True(t, mr.Exists("other:key"))
}

func TestNewRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewRedisCache(context.Background(), RedisConfig{Addr: mr.Addr(), Config: DefaultConfig()})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = NewRedisCache(context.Background(), RedisConfig{Addr: "127.0.0.1:1", Config: DefaultConfig()})
	assert.Error(t, err)
}

func TestMemoryCacheEviction(t *testing.T) {
	c := NewMemoryCache(Config{MaxEntries: 2})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.Set(ctx, "a", []byte("3"), 0))
	require.NoError(t, c.Set(ctx, "c", []byte("4"), 0))

	assert.Equal(t, 2, c.Len())
	_, err := c.Get(ctx, "a")
	assert.True(t, IsCacheMiss(err))
	got, err := c.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, []byte("4"), got)
}

func TestMemoryCacheCanceledContext(t *testing.T) {
	c := NewMemoryCache(DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.Set(ctx, "k", nil, 0), context.Canceled)
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKeyGenerator(t *testing.T) {
	kg := DefaultKeyGenerator()
	key := func(url string) string {
		return kg.GenerateKey(httptest.NewRequest(http.MethodGet, url, nil))
	}

	base := key("/posts?include=author&fields[posts]=title,body")
	assert.Equal(t, base, key("/posts?fields[posts]=body,title&include=author"))
	assert.Equal(t, base, key("/posts?include=author&fields[posts]=title,body&utm_source=mail"))
	assert.NotEqual(t, base, key("/posts?include=comments&fields[posts]=title,body"))
	assert.NotEqual(t, key("/posts?include=author,tags"), key("/posts?include=tags,author"))
	assert.NotEqual(t, key("/posts?page[number]=1"), key("/posts?page[number]=2"))
	assert.NotEqual(t, key("/posts"), key("/users"))
	assert.Contains(t, base, "doc:")
}

func TestKeyGeneratorQuery(t *testing.T) {
	kg := DefaultKeyGenerator()
	r := httptest.NewRequest(http.MethodGet, "/posts?fields[posts]=title,body&filter=a&include=tags,author&page[size]=1", nil)

	q := kg.Query(r)
	assert.Equal(t, "fields%5Bposts%5D=body%2Ctitle&include=tags%2Cauthor&page%5Bsize%5D=1", q.Encode())
	assert.NotContains(t, q, "filter")
}

func TestMiddleware(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/vnd.api+json")
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
		w.Write([]byte(`{"data":null}`))
	})

	var lookups []bool
	mw := Middleware(MiddlewareConfig{
		Cache:       NewMemoryCache(DefaultConfig()),
		ContentType: "application/vnd.api+json",
		OnLookup:    func(hit bool) { lookups = append(lookups, hit) },
	})(handler)

	first := httptest.NewRecorder()
	mw.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/posts/1", nil))
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, `{"data":null}`, first.Body.String())
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	second := httptest.NewRecorder()
	mw.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/posts/1", nil))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, "application/vnd.api+json", second.Header().Get("Content-Type"))
	assert.Equal(t, `{"data":null}`, second.Body.String())
	assert.Equal(t, 1, calls)

	conditional := httptest.NewRequest(http.MethodGet, "/posts/1", nil)
	conditional.Header.Set("If-None-Match", etag)
	third := httptest.NewRecorder()
	mw.ServeHTTP(third, conditional)
	assert.Equal(t, http.StatusNotModified, third.Code)
	assert.Empty(t, third.Body.String())

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
	assert.Equal(t, 3, calls)
	assert.Equal(t, []bool{false, true, true, false, false}, lookups)
}

func TestMiddlewareSkipsOtherContentTypes(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("metrics"))
	})
	mw := Middleware(MiddlewareConfig{
		Cache:       NewMemoryCache(DefaultConfig()),
		ContentType: "application/vnd.api+json",
	})(handler)

	for i := 0; i < 2; i++ {
		mw.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	}
	assert.Equal(t, 2, calls)
}

type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestMiddlewareWriteFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := NewMemoryCache(DefaultConfig())
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.api+json")
		w.Write([]byte(`{"data":[]}`))
	})
	mw := Middleware(MiddlewareConfig{Cache: c, Logger: zap.New(core)})(handler)

	mw.ServeHTTP(brokenWriter{httptest.NewRecorder()}, httptest.NewRequest(http.MethodGet, "/tags", nil))
	assert.Equal(t, 1, c.Len())

	mw.ServeHTTP(brokenWriter{httptest.NewRecorder()}, httptest.NewRequest(http.MethodGet, "/tags", nil))

	entries := logs.FilterMessage("cached response write failed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "/tags", entries[0].ContextMap()["path"])
}
