package service

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageBytes caps uploaded photos; the whole payload is inlined into
// the persisted board.
const MaxImageBytes = 5 << 20

// ImageDataURI reads an image file and returns it as an embeddable data URI.
func ImageDataURI(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("file not found: %w", err)
	}
	if info.Size() > MaxImageBytes {
		return "", fmt.Errorf("image %s is %d bytes, limit is %d", filepath.Base(absPath), info.Size(), MaxImageBytes)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	return EncodeDataURI(data)
}

// EncodeDataURI sniffs the content type and inlines data as base64.
func EncodeDataURI(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("not an image: detected %s", mt.String())
	}
	return "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeDataURI returns the media type and raw bytes of a base64 data URI.
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URI")
	}
	media, encoded, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return "", nil, fmt.Errorf("data URI is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("decode image: %w", err)
	}
	return media, data, nil
}
