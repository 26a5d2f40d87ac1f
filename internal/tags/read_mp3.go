package tags

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
	"github.com/llehouerou/go-mp3"
)

// MP3 reads and writes ID3v2 tags in MPEG audio files. Tags are always
// written as ID3v2.4 with UTF-8 text.
type MP3 struct{}

// UnsupportedFields reports the fields ID3v2 has no frame for.
func (MP3) UnsupportedFields() FieldMask {
	return MaskOf(FieldDescription)
}

// DisplayInfo renders MPEG stream properties.
func (MP3) DisplayInfo(p *Properties) DisplayInfo {
	d := p.Display("MPEG")
	d.VersionLabel = "Version:"
	d.ModeLabel = "Mode:"
	return d
}

// Read reads the ID3 tag and MPEG properties of path.
func (MP3) Read(path string, opts Options) (*FileInfo, error) {
	info := &FileInfo{}

	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	switch {
	case errors.Is(err, id3v2.ErrUnsupportedVersion):
		// ID3v2.2 or older: the id3v2 library can't parse it, dhowden/tag can.
		t, ferr := readWithTagFallback(path)
		if ferr != nil {
			return nil, tagError(path, "ID3v2", "unsupported version", ferr)
		}
		info.Tag = *t
		info.Upgrade = true
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return nil, fmt.Errorf("open file: %w", err)
	case err != nil:
		return nil, tagError(path, "ID3v2", "parse", err)
	default:
		defer id3tag.Close()
		if id3tag.Count() > 0 {
			readID3v2Frames(id3tag, &info.Tag, opts)
		} else if t, ok := readID3v1(path); ok {
			// Only an ID3v1 tag: upgrade it to ID3v2.4 on the next save.
			info.Tag = *t
			info.Upgrade = true
		}
	}

	info.Audio = readMP3Properties(path)
	return info, nil
}

// readID3v2Frames copies the frames the editor knows into t.
func readID3v2Frames(id3tag *id3v2.Tag, t *FieldSet, opts Options) {
	text := func(ids ...string) string {
		for _, id := range ids {
			if v := getID3TextFrame(id3tag, id); v != "" {
				return opts.join(strings.Split(v, "\x00"))
			}
		}
		return ""
	}

	t.Title = text("TIT2")
	t.Subtitle = text("TIT3")
	t.Artist = text("TPE1")
	t.AlbumArtist = text("TPE2")
	t.Album = text("TALB")
	t.Disc = text("TPOS")
	t.Track = text("TRCK")
	t.Genre = text("TCON")
	t.Composer = text("TCOM")
	t.OriginalArtist = text("TOPE")
	t.Copyright = text("TCOP")
	t.EncodedBy = text("TENC")

	// ID3v2.4 dates first, then ID3v2.3 equivalents
	t.Year = text("TDRC", "TYER")
	t.ReleaseYear = text("TDRL")
	t.OriginalYear = text("TDOR", "TORY")

	t.Comment = getID3Comment(id3tag)
	t.URL = getID3URL(id3tag)

	t.ReplayGainTrackGain = getID3TXXXFrame(id3tag, "REPLAYGAIN_TRACK_GAIN")
	t.ReplayGainTrackPeak = getID3TXXXFrame(id3tag, "REPLAYGAIN_TRACK_PEAK")
	t.ReplayGainAlbumGain = getID3TXXXFrame(id3tag, "REPLAYGAIN_ALBUM_GAIN")
	t.ReplayGainAlbumPeak = getID3TXXXFrame(id3tag, "REPLAYGAIN_ALBUM_PEAK")

	for _, frame := range id3tag.GetFrames(id3tag.CommonID("Attached picture")) {
		pf, ok := frame.(id3v2.PictureFrame)
		if !ok {
			continue
		}
		t.Pictures = append(t.Pictures, Picture{
			Type:        PictureType(pf.PictureType),
			Description: pf.Description,
			MIMEType:    pf.MimeType,
			Data:        pf.Picture,
		})
	}
}

// readWithTagFallback reads metadata using dhowden/tag. It serves files the
// format's primary library rejects.
func readWithTagFallback(path string) (*FieldSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, err
	}
	return fieldSetFromMetadata(m), nil
}

// readID3v1 reads a trailing ID3v1 tag, reporting whether one was found.
func readID3v1(path string) (*FieldSet, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil || (m.Format() != tag.ID3v1 && m.Format() != tag.ID3v2_2) {
		return nil, false
	}
	return fieldSetFromMetadata(m), true
}

// fieldSetFromMetadata converts the dhowden/tag view of a file.
func fieldSetFromMetadata(m tag.Metadata) *FieldSet {
	track, totalTracks := m.Track()
	disc, totalDiscs := m.Disc()

	t := &FieldSet{
		Title:       m.Title(),
		Artist:      m.Artist(),
		AlbumArtist: m.AlbumArtist(),
		Album:       m.Album(),
		Composer:    m.Composer(),
		Genre:       m.Genre(),
		Comment:     m.Comment(),
		Track:       JoinNumberPair(track, totalTracks),
		Disc:        JoinNumberPair(disc, totalDiscs),
	}
	if y := m.Year(); y > 0 {
		t.Year = fmt.Sprintf("%d", y)
	}
	if pic := m.Picture(); pic != nil {
		t.Pictures = []Picture{{
			Type:        PictureFrontCover,
			Description: pic.Description,
			MIMEType:    pic.MIMEType,
			Data:        pic.Data,
		}}
	}
	return t
}

// getID3TextFrame reads a text frame value from an ID3v2 tag.
func getID3TextFrame(id3tag *id3v2.Tag, frameID string) string {
	frames := id3tag.GetFrames(frameID)
	if len(frames) == 0 {
		return ""
	}
	if tf, ok := frames[0].(id3v2.TextFrame); ok {
		return strings.TrimRight(tf.Text, "\x00")
	}
	return ""
}

// getID3TXXXFrame reads a user-defined text frame (TXXX) value.
func getID3TXXXFrame(id3tag *id3v2.Tag, description string) string {
	frames := id3tag.GetFrames("TXXX")
	for _, frame := range frames {
		if txxx, ok := frame.(id3v2.UserDefinedTextFrame); ok {
			if strings.EqualFold(txxx.Description, description) {
				return txxx.Value
			}
		}
	}
	return ""
}

// getID3Comment returns the first comment, preferring one without a
// description.
func getID3Comment(id3tag *id3v2.Tag) string {
	var fallback string
	for _, frame := range id3tag.GetFrames(id3tag.CommonID("Comments")) {
		cf, ok := frame.(id3v2.CommentFrame)
		if !ok {
			continue
		}
		if cf.Description == "" {
			return cf.Text
		}
		if fallback == "" {
			fallback = cf.Text
		}
	}
	return fallback
}

// getID3URL reads a WXXX frame. The id3v2 library has no URL frame type, so
// the body is parsed by hand: encoding byte, description, terminator, URL.
func getID3URL(id3tag *id3v2.Tag) string {
	for _, frame := range id3tag.GetFrames("WXXX") {
		uf, ok := frame.(id3v2.UnknownFrame)
		if !ok || len(uf.Body) < 2 {
			continue
		}
		body := uf.Body[1:]
		term := []byte{0}
		if enc := uf.Body[0]; enc == 1 || enc == 2 {
			term = []byte{0, 0}
		}
		idx := indexTerminator(body, term)
		if idx < 0 {
			continue
		}
		return strings.TrimRight(string(body[idx+len(term):]), "\x00")
	}
	return ""
}

func indexTerminator(b, term []byte) int {
	for i := 0; i+len(term) <= len(b); i += len(term) {
		if string(b[i:i+len(term)]) == string(term) {
			return i
		}
	}
	return -1
}

// readMP3Properties extracts audio info from an MP3 file. Failures leave
// the corresponding fields zero: tag editing does not need them.
func readMP3Properties(path string) Properties {
	p := Properties{Format: "MP3"}

	f, err := os.Open(path)
	if err != nil {
		return p
	}
	defer f.Close()

	if fi, err := f.Stat(); err == nil {
		p.Size = fi.Size()
	}

	if err := skipID3v2(f); err == nil {
		if h, ok := findMPEGHeader(f); ok {
			p.Version = h.versionString()
			p.Mode = h.modeString()
			p.SampleRate = h.sampleRate
			p.Bitrate = h.bitrate
			p.Channels = h.channels()
		}
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return p
	}
	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return p
	}
	sampleRate := decoder.SampleRate()
	if sampleRate == 0 {
		return p
	}
	if p.SampleRate == 0 {
		p.SampleRate = sampleRate
	}
	sampleCount := max(decoder.SampleCount(), 0)
	p.Duration = time.Duration(float64(sampleCount) / float64(sampleRate) * float64(time.Second))
	p.BitDepth = 16 // MP3 decodes to 16-bit
	if p.Bitrate == 0 {
		p.Bitrate = estimateBitrate(p.Size, p.Duration)
	}
	return p
}
