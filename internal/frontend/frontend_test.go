package frontend

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/election-affinity/internal/security"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dist, err := GetDistFS()
	require.NoError(t, err)
	tmpl, err := LoadIndexTemplate(dist)
	require.NoError(t, err)

	router := gin.New()
	router.Use(security.CSPMiddleware())
	router.NoRoute(NewSPAHandler(dist, tmpl))
	return router
}

func TestSPAHandler_IndexWithNonce(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/", "/quiz", "/resultados/abc.def.ghi"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
			assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))

			csp := w.Header().Get("Content-Security-Policy")
			require.NotEmpty(t, csp)
			assert.Contains(t, w.Body.String(), `<script nonce="`)
			assert.Contains(t, w.Body.String(), `<link nonce="`)
			assert.NotContains(t, w.Body.String(), "{{.Nonce}}")
		})
	}
}

func TestSPAHandler_Assets(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Cache-Control"), "immutable")
	assert.Contains(t, w.Body.String(), "/api/v1")
}

func TestSPAHandler_UnknownAPIRoute(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nothing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"NOT_FOUND"`)
}

func TestProcessHTMLForNonce(t *testing.T) {
	in := `<link rel="stylesheet" href="/a.css"><link rel="icon" href="/f.ico"><script src="/a.js"></script>`
	out := processHTMLForNonce(in)

	assert.Contains(t, out, `<link nonce="{{.Nonce}}" rel="stylesheet" href="/a.css">`)
	assert.Contains(t, out, `<link rel="icon" href="/f.ico">`)
	assert.Contains(t, out, `<script nonce="{{.Nonce}}" src="/a.js">`)
}
