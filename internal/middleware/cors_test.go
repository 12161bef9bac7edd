package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		origins     []string
		origin      string
		wantAllow   string
		wantCreds   string
		wantBlocked bool
	}{
		{name: "listed origin", origins: []string{"https://app.example.com"}, origin: "https://app.example.com", wantAllow: "https://app.example.com", wantCreds: "true"},
		{name: "unlisted origin", origins: []string{"https://app.example.com"}, origin: "https://evil.example.com", wantBlocked: true},
		{name: "any origin", origin: "https://x.example.com", wantAllow: "*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(tt.origins))
			r.GET("/api/public/projects", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest("GET", "/api/public/projects", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if tt.wantBlocked {
				assert.Equal(t, http.StatusForbidden, w.Code)
				return
			}
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantAllow, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCreds, w.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}
