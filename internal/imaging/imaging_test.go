package imaging

import (
	"bytes"
	"encoding/base64"
	"testing"

	"misfit-alliance/internal/constants"
	"misfit-alliance/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
	webpHeader = []byte("RIFF\x24\x00\x00\x00WEBPVP8 ")
)

func dataURL(mime string, b []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(b)
}

func TestParse_AcceptsSupportedTypes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png", pngHeader, "image/png"},
		{"jpeg", jpegHeader, "image/jpeg"},
		{"webp", webpHeader, "image/webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Parse(dataURL("application/octet-stream", tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, img.MIMEType)
			assert.Equal(t, tt.data, img.Data)
		})
	}
}

func TestParse_BareBase64(t *testing.T) {
	img, err := Parse(base64.StdEncoding.EncodeToString(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", "   "},
		{"not base64", "data:image/png;base64,@@@@"},
		{"url encoded data URL", "data:image/png,rawbytes"},
		{"gif", dataURL("image/gif", []byte("GIF89a\x01\x00\x01\x00"))},
		{"text", dataURL("image/png", []byte("hello there, definitely an image"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			assert.ErrorIs(t, err, domain.ErrInvalidImage)
		})
	}
}

func TestValidate_SizeLimit(t *testing.T) {
	big := append(append([]byte(nil), pngHeader...), bytes.Repeat([]byte{0}, constants.MaxImageBytes)...)

	_, err := Validate(big)
	assert.ErrorIs(t, err, domain.ErrInvalidImage)

	_, err = Parse(base64.StdEncoding.EncodeToString(big))
	assert.ErrorIs(t, err, domain.ErrInvalidImage)
}

func TestImage_DataURLRoundTrip(t *testing.T) {
	img, err := Validate(jpegHeader)
	require.NoError(t, err)

	again, err := Parse(img.DataURL())
	require.NoError(t, err)
	assert.Equal(t, img, again)
}
