package tags

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/Sorrow446/go-mp4tag"
	"github.com/llehouerou/go-m4a"
)

// MP4 reads and writes iTunes-style metadata atoms in MP4/M4A files.
// Fields without a standard atom are stored as freeform atoms.
type MP4 struct{}

// Freeform atom names for fields iTunes has no atom for.
const (
	mp4Subtitle       = "SUBTITLE"
	mp4ReleaseDate    = "RELEASEDATE"
	mp4OriginalArtist = "ORIGINALARTIST"
	mp4OriginalDate   = "ORIGINALDATE"
	mp4URL            = "URL"
	mp4EncodedBy      = "ENCODEDBY"
)

// UnsupportedFields reports nothing: freeform atoms take any field.
func (MP4) UnsupportedFields() FieldMask {
	return 0
}

// DisplayInfo renders MP4 stream properties.
func (MP4) DisplayInfo(p *Properties) DisplayInfo {
	d := p.Display("MP4/AAC")
	d.VersionLabel = "Codec:"
	return d
}

// Read reads the metadata atoms and stream properties of path.
func (MP4) Read(path string, opts Options) (*FileInfo, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	info := &FileInfo{}
	t, err := readMP4Atoms(path)
	if err != nil {
		// go-mp4tag rejects some ffmpeg-created files, dhowden/tag does not
		fallback, ferr := readWithTagFallback(path)
		if ferr != nil {
			if errors.Is(ferr, fs.ErrPermission) {
				return nil, fmt.Errorf("open file: %w", ferr)
			}
			return nil, tagError(path, "MP4", "parse", errors.Join(err, ferr))
		}
		t = fallback
	}
	info.Tag = *t
	info.Audio = readM4AProperties(path)
	return info, nil
}

func readMP4Atoms(path string) (*FieldSet, error) {
	mp4, err := mp4tag.Open(path)
	if err != nil {
		return nil, err
	}
	defer mp4.Close()

	m, err := mp4.Read()
	if err != nil {
		return nil, err
	}

	custom := func(key string) string {
		for k, v := range m.Custom {
			if strings.EqualFold(k, key) {
				return v
			}
		}
		return ""
	}

	t := &FieldSet{
		Title:          m.Title,
		Subtitle:       custom(mp4Subtitle),
		Artist:         m.Artist,
		AlbumArtist:    m.AlbumArtist,
		Album:          m.Album,
		Disc:           JoinNumberPair(int(m.DiscNumber), int(m.DiscTotal)),
		Year:           m.Date,
		ReleaseYear:    custom(mp4ReleaseDate),
		Track:          JoinNumberPair(int(m.TrackNumber), int(m.TrackTotal)),
		Genre:          m.CustomGenre,
		Comment:        m.Comment,
		Composer:       m.Composer,
		OriginalArtist: custom(mp4OriginalArtist),
		OriginalYear:   custom(mp4OriginalDate),
		Copyright:      m.Copyright,
		URL:            custom(mp4URL),
		EncodedBy:      custom(mp4EncodedBy),
		Description:    m.Description,

		ReplayGainTrackGain: custom("REPLAYGAIN_TRACK_GAIN"),
		ReplayGainTrackPeak: custom("REPLAYGAIN_TRACK_PEAK"),
		ReplayGainAlbumGain: custom("REPLAYGAIN_ALBUM_GAIN"),
		ReplayGainAlbumPeak: custom("REPLAYGAIN_ALBUM_PEAK"),
	}
	for _, pic := range m.Pictures {
		if pic == nil || len(pic.Data) == 0 {
			continue
		}
		t.Pictures = append(t.Pictures, Picture{
			Type:     PictureFrontCover,
			MIMEType: detectMimeType(pic.Data),
			Data:     pic.Data,
		})
	}
	return t, nil
}

// readM4AProperties extracts audio info from an M4A/MP4 file.
func readM4AProperties(path string) Properties {
	p := Properties{Format: "M4A", Size: fileSize(path)}

	f, err := os.Open(path)
	if err != nil {
		return p
	}
	defer f.Close()

	container, err := m4a.Open(f)
	if err != nil {
		return p
	}

	codecType := container.Codec()
	switch codecType {
	case m4a.CodecAAC:
		p.Format = "AAC"
	case m4a.CodecALAC:
		p.Format = "ALAC"
	case m4a.CodecUnknown:
	}

	p.BitDepth = 16
	if codecType == m4a.CodecALAC && container.SampleSize() == 24 {
		p.BitDepth = 24
	}
	p.Duration = container.Duration()
	p.SampleRate = int(container.SampleRate())
	p.Bitrate = estimateBitrate(p.Size, p.Duration)
	return p
}
