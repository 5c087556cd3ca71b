package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/producelens/internal/domain"
)

// UploadField is the multipart field carrying the image.
const UploadField = "file"

// MessageNoFile is the error body returned when the upload field is absent.
const MessageNoFile = "No file uploaded"

var (
	errNoFile       = errors.New("no file uploaded")
	errFileTooLarge = errors.New("uploaded file is too large")
)

// Analyzer runs the prediction pipeline for one uploaded image.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte) (*domain.EnrichedResult, error)
}

// readUpload returns the bytes of the uploaded image. The request body is
// capped at maxBytes; a missing or unreadable multipart form is errNoFile.
func readUpload(c *gin.Context, maxBytes int64) ([]byte, error) {
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	}

	fh, err := c.FormFile(UploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errFileTooLarge
		}
		return nil, errNoFile
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, nil
}

// uploadStatus maps a readUpload error to an HTTP status.
func uploadStatus(err error) int {
	switch {
	case errors.Is(err, errNoFile):
		return http.StatusBadRequest
	case errors.Is(err, errFileTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
