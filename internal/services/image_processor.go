package services

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrInvalidImageData is returned for data URIs outside the accepted
// image/png, image/jpeg and image/jpg forms.
var ErrInvalidImageData = errors.New("invalid base64 image format")

var imageDataURIRegex = regexp.MustCompile(`(?i)^data:image/(png|jpeg|jpg);base64,(.+)$`)

const reportJPEGQuality = 80

type ImageProcessor struct{}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{}
}

// ParseDataURI validates a report image data URI and returns the declared
// format (lower-cased) with the decoded payload.
func (ip *ImageProcessor) ParseDataURI(uri string) (string, []byte, error) {
	match := imageDataURIRegex.FindStringSubmatch(uri)
	if match == nil {
		return "", nil, ErrInvalidImageData
	}

	payload, err := decodeBase64(match[2])
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidImageData, err)
	}
	return strings.ToLower(match[1]), payload, nil
}

// ReencodeJPEG decodes raw image bytes and writes them to path as a
// baseline JPEG. EXIF orientation is applied and all metadata dropped.
func (ip *ImageProcessor) ReencodeJPEG(data []byte, path string) error {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	if err := imaging.Save(img, path, imaging.JPEGQuality(reportJPEGQuality)); err != nil {
		return fmt.Errorf("failed to write JPEG: %w", err)
	}
	return nil
}

// EncodeDataURI is the inverse of ParseDataURI for arbitrary MIME types.
func EncodeDataURI(mimeType, encoded string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, encoded)
}

func decodeBase64(s string) ([]byte, error) {
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	// Browsers occasionally drop padding.
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
