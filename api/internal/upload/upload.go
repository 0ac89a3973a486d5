package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"

	"food-lens/api/internal/vision"
)

// FieldName is the multipart field carrying the image.
const FieldName = "file"

const fallbackName = "upload"

// Image is one uploaded file, alive for a single request only.
type Image struct {
	Filename string
	Data     []byte
}

// Store keeps an upload just long enough for it to be read back and encoded.
// Nothing is retained or cleaned up beyond that.
type Store interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
	Get(ctx context.Context, location string) ([]byte, error)
}

// Receive reads the multipart file into memory. A nil header means the field was absent.
func Receive(fh *multipart.FileHeader) (Image, error) {
	if fh == nil {
		return Image{}, vision.ErrMissingPayload
	}
	f, err := fh.Open()
	if err != nil {
		return Image{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return Image{}, fmt.Errorf("read upload: %w", err)
	}
	return Image{Filename: SanitizeFilename(fh.Filename), Data: data}, nil
}

// SanitizeFilename strips directory components, treating both / and \ as separators.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	base := path.Base(name)
	switch base {
	case "", ".", "..", "/":
		return fallbackName
	}
	return base
}
