package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"plant-analyzer/internal/logger"
	"plant-analyzer/internal/models"
	"plant-analyzer/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ReportHandler struct {
	generator    *services.ReportGenerator
	maxJSONBytes int64
}

func NewReportHandler(generator *services.ReportGenerator, maxJSONBytes int64) *ReportHandler {
	return &ReportHandler{
		generator:    generator,
		maxJSONBytes: maxJSONBytes,
	}
}

func (h *ReportHandler) Download(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxJSONBytes)

	var request models.DownloadRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("Validation error for /download")
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	logger.WithFields(logrus.Fields{
		"resultLength": len(*request.Result),
		"hasImage":     request.Image != "",
	}).Info("Received /download request")

	report, err := h.generator.Generate(c.Request.Context(), *request.Result, request.Image)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("PDF Generation Failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate PDF"})
		return
	}

	h.deliver(c, report)
}

// deliver streams the report and removes it afterwards on every path.
// A failure before the first byte still gets a JSON error; after that the
// connection is already committed and the failure is only logged.
func (h *ReportHandler) deliver(c *gin.Context, report *services.Report) {
	defer report.File.Release()

	if err := sendFile(c, report.File.Path, report.Filename); err != nil {
		logger.WithFields(logrus.Fields{
			"path":  report.File.Path,
			"error": err.Error(),
		}).Error("Error sending file")
		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send PDF"})
		}
		return
	}

	logger.WithFields(logrus.Fields{
		"filename": report.Filename,
	}).Info("PDF report sent")
}

func sendFile(c *gin.Context, path, filename string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat report: %w", err)
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Length", strconv.FormatInt(info.Size(), 10))
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, f); err != nil {
		return fmt.Errorf("failed to stream report: %w", err)
	}
	return nil
}
