package tags

import (
	"bytes"
	"fmt"
	"net/http"
	"os"

	"github.com/natefinch/atomic"
)

const (
	mimeJPEG = "image/jpeg"
	mimePNG  = "image/png"
)

// detectMimeType detects the MIME type of image data.
func detectMimeType(data []byte) string {
	if len(data) == 0 {
		return mimeJPEG
	}
	contentType := http.DetectContentType(data)
	// http.DetectContentType may return more specific types, normalize to common ones
	switch contentType {
	case mimeJPEG:
		return mimeJPEG
	case mimePNG:
		return mimePNG
	default:
		// Default to JPEG for unknown types
		return mimeJPEG
	}
}

// pictureMIME returns the picture's MIME type, sniffing it when unset.
func pictureMIME(p Picture) string {
	if p.MIMEType != "" {
		return p.MIMEType
	}
	return detectMimeType(p.Data)
}

// stripID3v2Tag removes a leading ID3v2 tag from path. The file is
// replaced atomically so a failed write never leaves it truncated.
func stripID3v2Tag(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	tagSize := id3v2Size(data)
	if tagSize == 0 {
		return nil // No ID3v2 tag to strip
	}
	if tagSize >= int64(len(data)) {
		return fmt.Errorf("ID3v2 tag size (%d) exceeds file size (%d)", tagSize, len(data))
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data[tagSize:])); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
