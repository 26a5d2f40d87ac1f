package tags

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder for cover art
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
)

// Common cover art filenames to look for in album folders.
var coverArtFilenames = []string{
	"cover.jpg", "cover.jpeg", "cover.png",
	"folder.jpg", "folder.jpeg", "folder.png",
	"album.jpg", "album.jpeg", "album.png",
	"front.jpg", "front.jpeg", "front.png",
	"artwork.jpg", "artwork.jpeg", "artwork.png",
}

// LoadPicture reads an image file as a front cover.
func LoadPicture(path string) (Picture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Picture{}, err
	}
	return Picture{
		Type:     PictureFrontCover,
		MIMEType: mimeFromExt(path, data),
		Data:     data,
	}, nil
}

// FindFolderArt looks for common cover art files in dir. It returns false
// when none exists.
func FindFolderArt(dir string) (Picture, bool) {
	for _, filename := range coverArtFilenames {
		for _, name := range []string{filename, strings.ToUpper(filename)} {
			pic, err := LoadPicture(filepath.Join(dir, name))
			if err == nil {
				return pic, true
			}
		}
	}
	return Picture{}, false
}

// mimeFromExt determines the MIME type from the file extension, sniffing
// the data for anything else.
func mimeFromExt(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return mimeJPEG
	case ".png":
		return mimePNG
	}
	return detectMimeType(data)
}

// Thumbnail scales p down to fit a maxSize square, keeping its aspect
// ratio, and re-encodes it as JPEG. Pictures that already fit are
// returned unchanged.
func (p Picture) Thumbnail(maxSize uint) (Picture, error) {
	img, _, err := image.Decode(bytes.NewReader(p.Data))
	if err != nil {
		return p, fmt.Errorf("decode picture: %w", err)
	}
	b := img.Bounds()
	if maxSize == 0 || (b.Dx() <= int(maxSize) && b.Dy() <= int(maxSize)) { //nolint:gosec // picture sizes are small
		return p, nil
	}

	resized := resize.Thumbnail(maxSize, maxSize, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 90}); err != nil {
		return p, fmt.Errorf("encode picture: %w", err)
	}

	p.MIMEType = mimeJPEG
	p.Data = buf.Bytes()
	return p, nil
}
