// Package imaging validates uploaded screenshots before anything else sees them.
package imaging

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"misfit-alliance/internal/constants"
	"misfit-alliance/internal/domain"
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Image is a decoded, validated upload.
type Image struct {
	MIMEType string
	Data     []byte
}

// DataURL re-encodes the image for the vision model.
func (i Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Parse accepts a base64 data URL ("data:image/png;base64,...") or bare base64
// and checks the sniffed content type and size. The declared type of a data
// URL is ignored; only the bytes count.
func Parse(s string) (Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Image{}, fmt.Errorf("%w: empty upload", domain.ErrInvalidImage)
	}

	payload := s
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		meta, data, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return Image{}, fmt.Errorf("%w: data URL must be base64 encoded", domain.ErrInvalidImage)
		}
		payload = data
	}

	// base64 grows data by 4/3; reject oversized uploads before decoding
	if base64.StdEncoding.DecodedLen(len(payload)) > constants.MaxImageBytes+2 {
		return Image{}, fmt.Errorf("%w: larger than %d bytes", domain.ErrInvalidImage, constants.MaxImageBytes)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", domain.ErrInvalidImage, err)
	}
	return Validate(data)
}

// Validate checks raw image bytes.
func Validate(data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty upload", domain.ErrInvalidImage)
	}
	if len(data) > constants.MaxImageBytes {
		return Image{}, fmt.Errorf("%w: larger than %d bytes", domain.ErrInvalidImage, constants.MaxImageBytes)
	}

	mime := http.DetectContentType(data)
	if !allowedTypes[mime] {
		return Image{}, fmt.Errorf("%w: unsupported type %s", domain.ErrInvalidImage, mime)
	}
	return Image{MIMEType: mime, Data: data}, nil
}
