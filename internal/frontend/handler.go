package frontend

import (
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/election-affinity/internal/errors"
	"github.com/ZanzyTHEbar/election-affinity/internal/security"
)

// NewSPAHandler serves static files from distFS and falls back to the
// rendered index for client-side routes. Unknown API paths get a JSON 404.
func NewSPAHandler(distFS fs.FS, indexTemplate *template.Template) gin.HandlerFunc {
	fileServer := http.FileServer(http.FS(distFS))

	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if strings.HasPrefix(path, "/api/") {
			appErr := apperrors.NewNotFoundError("route", path)
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
			return
		}

		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.AbortWithStatus(http.StatusMethodNotAllowed)
			return
		}

		if strings.HasPrefix(path, "/assets/") {
			c.Header("Cache-Control", "public, max-age=31536000, immutable")
			fileServer.ServeHTTP(c.Writer, c.Request)
			return
		}

		cleanPath := strings.TrimPrefix(path, "/")
		if cleanPath != "" && cleanPath != "index.html" {
			if info, err := fs.Stat(distFS, cleanPath); err == nil && !info.IsDir() {
				c.Header("Cache-Control", "public, max-age=3600")
				fileServer.ServeHTTP(c.Writer, c.Request)
				return
			}
		}

		nonce := security.GetNonce(c)
		if nonce == "" {
			var err error
			nonce, err = security.GenerateNonce()
			if err != nil {
				appErr := apperrors.NewInternalError("nonce generation failed", err)
				c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
				return
			}
		}

		if err := RenderIndex(c, indexTemplate, nonce); err != nil {
			slog.Error("Failed to render index.html", "error", err, "path", path)
			appErr := apperrors.NewInternalError("failed to render page", err)
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
		}
	}
}
