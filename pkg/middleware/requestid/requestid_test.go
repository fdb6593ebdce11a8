package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serveWithID(t *testing.T, clientID string) (seen string, rec *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if clientID != "" {
		req.Header.Set(Header, clientID)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return seen, rec
}

func TestMiddlewareGeneratesID(t *testing.T) {
	seen, rec := serveWithID(t, "")
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(Header))
}

func TestMiddlewareKeepsClientID(t *testing.T) {
	seen, _ := serveWithID(t, "term2-export_01")
	assert.Equal(t, "term2-export_01", seen)
}

func TestMiddlewareReplacesUnsafeID(t *testing.T) {
	tests := map[string]string{
		"oversized": strings.Repeat("x", maxLength+1),
		"spaces":    "abc 123",
		"newline":   "abc\r\nSet-Cookie: x",
	}
	for name, id := range tests {
		t.Run(name, func(t *testing.T) {
			seen, _ := serveWithID(t, id)
			assert.NotEqual(t, id, seen)
			assert.Len(t, seen, 36)
		})
	}
}

func TestValueOutsideMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, Value(c))
}
