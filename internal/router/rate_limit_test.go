package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func TestKeyByIPAndParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	var key string
	r.POST("/crawl/:source", func(c *gin.Context) {
		key = KeyByIPAndParam("source")(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/crawl/Letao", nil)
	req.RemoteAddr = "1.2.3.4:5678"
	r.ServeHTTP(w, req)

	if key != "letao|1.2.3.4" {
		t.Fatalf("key want letao|1.2.3.4 got %s", key)
	}
}

func TestKeyByIPAndParamFallsBackToIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/crawl", nil)
	c.Request.RemoteAddr = "5.6.7.8:1234"

	if key := KeyByIPAndParam("source")(c); key != "5.6.7.8" {
		t.Fatalf("key want 5.6.7.8 got %s", key)
	}
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status want 200 got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), `"ok":true`) {
			t.Fatalf("expected handler response body, got %s", w.Body.String())
		}
	}
}

func TestRateLimitMiddlewareRedisUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	r := gin.New()
	r.Use(RateLimitMiddleware(client, RateLimitRule{Prefix: "bo:rate:crawl", WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.POST("/crawl", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/crawl", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status want 500 when redis unavailable got %d", w.Code)
	}
}

func TestToInt64(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		want  int64
		ok    bool
	}{
		{name: "int64", input: int64(10), want: 10, ok: true},
		{name: "int", input: int(11), want: 11, ok: true},
		{name: "uint32", input: uint32(12), want: 12, ok: true},
		{name: "float64", input: float64(13.9), want: 13, ok: true},
		{name: "string", input: "bad", want: 0, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := toInt64(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok want %v got %v", tc.ok, ok)
			}
			if got != tc.want {
				t.Fatalf("value want %d got %d", tc.want, got)
			}
		})
	}
}
