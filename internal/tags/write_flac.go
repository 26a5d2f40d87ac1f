package tags

import (
	"bytes"
	"fmt"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
	"github.com/natefinch/atomic"
)

// Write replaces the Vorbis comment and PICTURE blocks of path with t.
func (FLAC) Write(path string, t *FieldSet, opts Options) error {
	f, id3Size, err := parseFLACWithID3Support(path)
	if err != nil {
		return fmt.Errorf("parse file: %w", err)
	}

	// If file had ID3v2 header, strip it first before we can modify tags
	if id3Size > 0 {
		if err := stripID3v2Tag(path); err != nil {
			return fmt.Errorf("strip ID3v2 header: %w", err)
		}
		f, err = goflac.ParseFile(path)
		if err != nil {
			return fmt.Errorf("parse file after ID3 strip: %w", err)
		}
	}

	// Always create a fresh comment block to avoid duplicate tags
	cmts := flacvorbis.New()
	for _, c := range writeComments(t, opts, false) {
		if err := cmts.Add(c.key, c.value); err != nil {
			return fmt.Errorf("add %s: %w", c.key, err)
		}
	}
	cmtBlock := cmts.Marshal()

	// Drop old comment and picture blocks, keeping the comment's position
	meta := make([]*goflac.MetaDataBlock, 0, len(f.Meta)+len(t.Pictures))
	placed := false
	for _, m := range f.Meta {
		switch m.Type {
		case goflac.VorbisComment:
			if !placed {
				meta = append(meta, &cmtBlock)
				placed = true
			}
		case goflac.Picture:
		default:
			meta = append(meta, m)
		}
	}
	if !placed {
		meta = append(meta, &cmtBlock)
	}

	for _, p := range t.Pictures {
		meta = append(meta, flacPictureBlock(p))
	}
	f.Meta = meta

	if err := atomic.WriteFile(path, bytes.NewReader(f.Marshal())); err != nil {
		return fmt.Errorf("save file: %w", err)
	}
	return nil
}

// flacPictureBlock builds a PICTURE block. Image dimensions are filled in
// when the data decodes as an image and left zero otherwise.
func flacPictureBlock(p Picture) *goflac.MetaDataBlock {
	mimeType := pictureMIME(p)
	pic, err := flacpicture.NewFromImageData(
		flacpicture.PictureType(p.Type),
		p.Description,
		p.Data,
		mimeType,
	)
	if err != nil {
		pic = &flacpicture.MetadataBlockPicture{
			PictureType: flacpicture.PictureType(p.Type),
			MIME:        mimeType,
			Description: p.Description,
			ImageData:   p.Data,
		}
	}
	block := pic.Marshal()
	return &block
}
