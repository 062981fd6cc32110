package server

import (
	"io"
	"net/http"

	"github.com/dmorgan81/imagine/internal/handler"
	"github.com/dmorgan81/imagine/internal/log"
	"github.com/gin-gonic/gin"
	"github.com/samber/do"
)

// Router exposes the generate-images handler over plain HTTP for local runs.
// When imagesDir is set, archived images are served from /images.
func Router(h *handler.Handler, imagesDir string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/api/generate-images", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.Output{Error: "Invalid request body"})
			return
		}

		ctx := c.Request.Context()
		logger := log.FromContextOrDiscard(ctx).WithGroup("http").With("remote", c.ClientIP())
		status, out := h.Generate(log.NewContext(ctx, logger), body)
		c.JSON(status, out)
	})

	if imagesDir != "" {
		r.Static("/images", imagesDir)
	}

	return r
}

func NewRouter(i *do.Injector) (*gin.Engine, error) {
	return Router(do.MustInvoke[*handler.Handler](i), do.MustInvokeNamed[string](i, "archive_dir")), nil
}
