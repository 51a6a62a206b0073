package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"

	"plant-analyzer/internal/logger"
	"plant-analyzer/internal/models"
	"plant-analyzer/internal/services"
	"plant-analyzer/internal/tempfile"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	genericAnalysisError = "Error processing image. Try again later."

	// Room for multipart boundaries and headers on top of the file limit.
	multipartOverhead = 1 << 20
)

type AnalysisHandler struct {
	analyzer       services.Analyzer
	uploads        *tempfile.Dir
	maxUploadBytes int64
	verboseErrors  bool
}

func NewAnalysisHandler(analyzer services.Analyzer, uploads *tempfile.Dir, maxUploadBytes int64, verboseErrors bool) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer:       analyzer,
		uploads:        uploads,
		maxUploadBytes: maxUploadBytes,
		verboseErrors:  verboseErrors,
	}
}

func (h *AnalysisHandler) Analyse(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)

	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return
		}
		logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Rejected /analyse request without image")
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file uploaded"})
		return
	}

	if file.Size > h.maxUploadBytes {
		logger.WithFields(logrus.Fields{
			"size":  file.Size,
			"limit": h.maxUploadBytes,
		}).Warn("Rejected oversized upload")
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	}

	if err := h.uploads.Ensure(); err != nil {
		h.fail(c, err)
		return
	}
	upload := h.uploads.Reserve("upload-", "")
	defer upload.Release()

	if err := c.SaveUploadedFile(file, upload.Path); err != nil {
		h.fail(c, fmt.Errorf("failed to stage upload: %w", err))
		return
	}

	logger.WithFields(logrus.Fields{
		"filename": file.Filename,
		"size":     file.Size,
		"path":     upload.Path,
	}).Info("Received /analyse request")

	imageData, err := os.ReadFile(upload.Path)
	if err != nil {
		h.fail(c, fmt.Errorf("failed to read upload: %w", err))
		return
	}
	mimeType := resolveMimeType(file.Header.Get("Content-Type"), imageData)

	result, err := h.analyzer.AnalyzeImage(c.Request.Context(), imageData, mimeType)
	if err != nil {
		h.fail(c, err)
		return
	}

	upload.Release()

	logger.WithFields(logrus.Fields{
		"mimeType":     mimeType,
		"resultLength": len(result),
	}).Info("Successfully analysed image")

	c.JSON(http.StatusOK, models.AnalyseResponse{
		Result: result,
		Image:  services.EncodeDataURI(mimeType, base64.StdEncoding.EncodeToString(imageData)),
	})
}

// fail answers 500 with a message whose detail depends on configuration.
// The deferred release in Analyse still runs afterwards.
func (h *AnalysisHandler) fail(c *gin.Context, err error) {
	logger.WithFields(logrus.Fields{
		"error": err.Error(),
	}).Error("Error analyzing image")

	message := genericAnalysisError
	if h.verboseErrors {
		message = err.Error()
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

// resolveMimeType trusts the declared part type unless it is missing or
// generic, in which case the bytes are sniffed.
func resolveMimeType(declared string, data []byte) string {
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil && mediaType != "application/octet-stream" {
		return mediaType
	}
	mediaType, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mediaType
}
