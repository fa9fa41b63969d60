package dto

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const dataURIPrefix = "data:image"

var (
	ErrImageEncoding = errors.New("upload a valid image, the data is not base64")
	ErrImageType     = errors.New("upload a valid image, the file is not an image")
	ErrImageFormat   = errors.New("unsupported image format, use png, jpeg, gif or webp")
	ErrImageEmpty    = errors.New("the submitted image is empty")
)

// imageFormats maps accepted content types to the stored file extension.
var imageFormats = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Image is a decoded upload ready for storage.
type Image struct {
	Data        []byte
	Ext         string
	ContentType string
}

// DecodeImage accepts a "data:image/<type>;base64,<payload>" string or a bare
// base64 payload and checks that the bytes are a raster image no larger than
// maxBytes. The extension always follows the detected content, never the
// declared type.
func DecodeImage(raw string, maxBytes int) (*Image, error) {
	raw = strings.TrimSpace(raw)
	payload := raw
	if strings.HasPrefix(raw, dataURIPrefix) {
		_, body, ok := strings.Cut(raw, ";base64,")
		if !ok {
			return nil, ErrImageEncoding
		}
		payload = body
	}
	if payload == "" {
		return nil, ErrImageEmpty
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrImageEncoding
	}
	if len(data) == 0 {
		return nil, ErrImageEmpty
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return nil, fmt.Errorf("the image is larger than %d bytes", maxBytes)
	}

	mt := mimetype.Detect(data)
	ext, ok := imageFormats[mt.String()]
	if !ok {
		if strings.HasPrefix(mt.String(), "image/") {
			return nil, ErrImageFormat
		}
		return nil, ErrImageType
	}
	return &Image{Data: data, Ext: ext, ContentType: mt.String()}, nil
}
