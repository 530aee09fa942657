package upload

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

// SniffLen is how many leading bytes ValidatePhoto needs.
const SniffLen = 512

var ErrNotAllowed = errors.New("only JPEG and PNG photos are supported")

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

var allowedMime = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// ValidatePhoto checks the filename extension and the first bytes of a
// listing photo. Returns the detected mime type.
func ValidatePhoto(filename string, head []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", ErrNotAllowed
	}
	detected := http.DetectContentType(head)
	if !allowedMime[detected] {
		return "", ErrNotAllowed
	}
	return detected, nil
}
