package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.Engine, analysis *AnalysisHandler, report *ReportHandler, publicDir string) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/analyse", analysis.Analyse)
	router.POST("/download", report.Download)

	// Static assets live at the root, so they are served from NoRoute to
	// avoid a wildcard that would clash with the API paths.
	if publicDir != "" {
		router.NoRoute(StaticFiles(publicDir))
	}
}

func StaticFiles(dir string) gin.HandlerFunc {
	fileServer := http.FileServer(http.Dir(dir))
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}
