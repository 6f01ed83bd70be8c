package storage

import (
	"encoding/base64"
	"fmt"
	"regexp"
)

var dataURLPattern = regexp.MustCompile(`^data:image/(\w+);base64,(.+)$`)

// DecodeImageDataURL parses a base64 image data URL (the format the drawing
// editor submits) into raw bytes and a content type.
func DecodeImageDataURL(dataURL string) ([]byte, string, error) {
	matches := dataURLPattern.FindStringSubmatch(dataURL)
	if matches == nil {
		return nil, "", ErrInvalidImageData
	}
	data, err := base64.StdEncoding.DecodeString(matches[2])
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImageData, err)
	}
	return data, "image/" + matches[1], nil
}
