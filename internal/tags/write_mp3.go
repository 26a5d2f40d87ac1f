package tags

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// Write replaces the ID3v2 tag of path with t.
func (MP3) Write(path string, t *FieldSet, opts Options) error {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if errors.Is(err, id3v2.ErrUnsupportedVersion) {
		// ID3v2.2 or older tags - strip them and retry
		if stripErr := stripID3v2Tag(path); stripErr != nil {
			return fmt.Errorf("strip unsupported ID3v2.2 tag: %w", stripErr)
		}
		id3tag, err = id3v2.Open(path, id3v2.Options{Parse: true})
	}
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer id3tag.Close()

	// Use ID3v2.4 with UTF-8 for better Unicode support
	id3tag.SetVersion(4)
	id3tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	// Clear existing tags to avoid duplicates
	id3tag.DeleteAllFrames()

	text := func(id string, f Field, value string) {
		values := opts.split(f, value)
		if len(values) == 0 {
			return
		}
		// ID3v2.4 separates multiple values with NUL
		id3tag.AddTextFrame(id, id3v2.EncodingUTF8, strings.Join(values, "\x00"))
	}

	text("TIT2", FieldTitle, t.Title)
	text("TIT3", FieldSubtitle, t.Subtitle)
	text("TPE1", FieldArtist, t.Artist)
	text("TPE2", FieldAlbumArtist, t.AlbumArtist)
	text("TALB", FieldAlbum, t.Album)
	text("TPOS", FieldDisc, t.Disc)
	text("TRCK", FieldTrack, t.Track)
	text("TCON", FieldGenre, t.Genre)
	text("TCOM", FieldComposer, t.Composer)
	text("TOPE", FieldOriginalArtist, t.OriginalArtist)
	text("TCOP", FieldCopyright, t.Copyright)
	text("TENC", FieldEncodedBy, t.EncodedBy)
	text("TDRC", FieldYear, t.Year)
	text("TDRL", FieldReleaseYear, t.ReleaseYear)
	text("TDOR", FieldOriginalYear, t.OriginalYear)

	if t.Comment != "" {
		id3tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding: id3v2.EncodingUTF8,
			Language: "eng",
			Text:     t.Comment,
		})
	}
	if t.URL != "" {
		id3tag.AddFrame("WXXX", wxxxFrame(t.URL))
	}

	addTXXXFrame(id3tag, "REPLAYGAIN_TRACK_GAIN", t.ReplayGainTrackGain)
	addTXXXFrame(id3tag, "REPLAYGAIN_TRACK_PEAK", t.ReplayGainTrackPeak)
	addTXXXFrame(id3tag, "REPLAYGAIN_ALBUM_GAIN", t.ReplayGainAlbumGain)
	addTXXXFrame(id3tag, "REPLAYGAIN_ALBUM_PEAK", t.ReplayGainAlbumPeak)

	for _, p := range t.Pictures {
		id3tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    pictureMIME(p),
			PictureType: byte(p.Type),
			Description: p.Description,
			Picture:     p.Data,
		})
	}

	if err := id3tag.Save(); err != nil {
		return fmt.Errorf("save tags: %w", err)
	}
	return nil
}

// wxxxFrame builds a user URL frame body: UTF-8 encoding, empty
// description, the URL in ISO-8859-1.
func wxxxFrame(url string) id3v2.UnknownFrame {
	body := make([]byte, 0, len(url)+2)
	body = append(body, 3, 0)
	body = append(body, url...)
	return id3v2.UnknownFrame{Body: body}
}

// addTXXXFrame adds a TXXX (user-defined text) frame if the value is non-empty.
func addTXXXFrame(id3tag *id3v2.Tag, description, value string) {
	if value == "" {
		return
	}
	id3tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
		Encoding:    id3v2.EncodingUTF8,
		Description: description,
		Value:       value,
	})
}
