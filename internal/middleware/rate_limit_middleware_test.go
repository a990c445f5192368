package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_FailOpenWhenRedisUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 50 * time.Millisecond,
	})
	defer client.Close()

	router := gin.New()
	router.POST("/employer", NewRateLimiter(client).Limit(LoginRateLimitConfig(1)), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/employer", nil))
		assert.Equal(t, http.StatusNoContent, w.Code, "Недоступный Redis не блокирует запросы")
	}
}

func TestRateLimitConfigDefaults(t *testing.T) {
	assert.Equal(t, 5, LoginRateLimitConfig(0).MaxRequests)
	assert.Equal(t, 10, SubmitRateLimitConfig(-1).MaxRequests)
	assert.Equal(t, 3, SubmitRateLimitConfig(3).MaxRequests)
	assert.Equal(t, time.Minute, LoginRateLimitConfig(7).Window)
}
