// Package tags holds the format-independent tag model and the codecs that
// read and write it for MP3, FLAC, Ogg, MP4, ASF and WavPack files.
package tags

import (
	"bytes"
	"slices"
	"strconv"
	"strings"
)

// File extensions handled by the codecs in this package.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOGG  = ".ogg"
	ExtOGA  = ".oga"
	ExtOPUS = ".opus"
	ExtM4A  = ".m4a"
	ExtMP4  = ".mp4"
	ExtM4B  = ".m4b"
	ExtWMA  = ".wma"
	ExtASF  = ".asf"
	ExtWV   = ".wv"
)

// id3Magic is the magic bytes for ID3v2 header detection.
const id3Magic = "ID3"

// Field enumerates the tag fields an editor can change.
type Field int

const (
	FieldTitle Field = iota
	FieldSubtitle
	FieldArtist
	FieldAlbumArtist
	FieldAlbum
	FieldDisc
	FieldYear
	FieldReleaseYear
	FieldTrack
	FieldGenre
	FieldComment
	FieldComposer
	FieldOriginalArtist
	FieldOriginalYear
	FieldCopyright
	FieldURL
	FieldEncodedBy
	FieldDescription
	FieldPictures
	FieldReplayGainTrackGain
	FieldReplayGainTrackPeak
	FieldReplayGainAlbumGain
	FieldReplayGainAlbumPeak

	fieldCount
)

var fieldNames = [fieldCount]string{
	FieldTitle:               "title",
	FieldSubtitle:            "subtitle",
	FieldArtist:              "artist",
	FieldAlbumArtist:         "albumartist",
	FieldAlbum:               "album",
	FieldDisc:                "disc",
	FieldYear:                "year",
	FieldReleaseYear:         "releaseyear",
	FieldTrack:               "track",
	FieldGenre:               "genre",
	FieldComment:             "comment",
	FieldComposer:            "composer",
	FieldOriginalArtist:      "originalartist",
	FieldOriginalYear:        "originalyear",
	FieldCopyright:           "copyright",
	FieldURL:                 "url",
	FieldEncodedBy:           "encodedby",
	FieldDescription:         "description",
	FieldPictures:            "pictures",
	FieldReplayGainTrackGain: "replaygain_track_gain",
	FieldReplayGainTrackPeak: "replaygain_track_peak",
	FieldReplayGainAlbumGain: "replaygain_album_gain",
	FieldReplayGainAlbumPeak: "replaygain_album_peak",
}

func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return "field(" + strconv.Itoa(int(f)) + ")"
	}
	return fieldNames[f]
}

// Fields returns every field in enumeration order.
func Fields() []Field {
	out := make([]Field, 0, fieldCount)
	for f := range fieldCount {
		out = append(out, f)
	}
	return out
}

// ParseField maps a field name (as returned by String) to a Field.
func ParseField(name string) (Field, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f, n := range fieldNames {
		if n == name {
			return Field(f), true
		}
	}
	return 0, false
}

// FieldMask is a set of fields.
type FieldMask uint64

// AllFields contains every field.
const AllFields = FieldMask(1<<fieldCount - 1)

// MaskOf builds a mask from fields.
func MaskOf(fields ...Field) FieldMask {
	var m FieldMask
	for _, f := range fields {
		m |= 1 << f
	}
	return m
}

// Has reports whether f is in the mask.
func (m FieldMask) Has(f Field) bool {
	return m&(1<<f) != 0
}

// Fields lists the fields in the mask.
func (m FieldMask) Fields() []Field {
	var out []Field
	for _, f := range Fields() {
		if m.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// PictureType is the ID3v2/FLAC picture type code.
type PictureType int

// Picture types shared by ID3v2 APIC frames and FLAC PICTURE blocks.
const (
	PictureOther      PictureType = 0
	PictureFileIcon   PictureType = 1
	PictureFrontCover PictureType = 3
	PictureBackCover  PictureType = 4
	PictureLeaflet    PictureType = 5
	PictureMedia      PictureType = 6
	PictureArtist     PictureType = 8
)

// Picture is an embedded image.
type Picture struct {
	Type        PictureType
	Description string
	MIMEType    string
	Data        []byte
}

// Equal compares two pictures by value.
func (p Picture) Equal(o Picture) bool {
	return p.Type == o.Type &&
		p.Description == o.Description &&
		p.MIMEType == o.MIMEType &&
		bytes.Equal(p.Data, o.Data)
}

// FieldSet is the format-independent set of tag values of one file.
// An empty string means the field is absent.
//
// Track and Disc hold a number and an optional total as one string, for
// example "3/12".
type FieldSet struct {
	Title          string
	Subtitle       string
	Artist         string
	AlbumArtist    string
	Album          string
	Disc           string
	Year           string
	ReleaseYear    string
	Track          string
	Genre          string
	Comment        string
	Composer       string
	OriginalArtist string
	OriginalYear   string
	Copyright      string
	URL            string
	EncodedBy      string
	Description    string

	ReplayGainTrackGain string
	ReplayGainTrackPeak string
	ReplayGainAlbumGain string
	ReplayGainAlbumPeak string

	Pictures []Picture
}

// textField returns a pointer to the string backing f, or nil for
// non-text fields.
func (t *FieldSet) textField(f Field) *string {
	switch f {
	case FieldTitle:
		return &t.Title
	case FieldSubtitle:
		return &t.Subtitle
	case FieldArtist:
		return &t.Artist
	case FieldAlbumArtist:
		return &t.AlbumArtist
	case FieldAlbum:
		return &t.Album
	case FieldDisc:
		return &t.Disc
	case FieldYear:
		return &t.Year
	case FieldReleaseYear:
		return &t.ReleaseYear
	case FieldTrack:
		return &t.Track
	case FieldGenre:
		return &t.Genre
	case FieldComment:
		return &t.Comment
	case FieldComposer:
		return &t.Composer
	case FieldOriginalArtist:
		return &t.OriginalArtist
	case FieldOriginalYear:
		return &t.OriginalYear
	case FieldCopyright:
		return &t.Copyright
	case FieldURL:
		return &t.URL
	case FieldEncodedBy:
		return &t.EncodedBy
	case FieldDescription:
		return &t.Description
	case FieldReplayGainTrackGain:
		return &t.ReplayGainTrackGain
	case FieldReplayGainTrackPeak:
		return &t.ReplayGainTrackPeak
	case FieldReplayGainAlbumGain:
		return &t.ReplayGainAlbumGain
	case FieldReplayGainAlbumPeak:
		return &t.ReplayGainAlbumPeak
	case FieldPictures, fieldCount:
	}
	return nil
}

// Get returns the text value of f. Pictures yield their count.
func (t *FieldSet) Get(f Field) string {
	if f == FieldPictures {
		if len(t.Pictures) == 0 {
			return ""
		}
		return strconv.Itoa(len(t.Pictures))
	}
	if p := t.textField(f); p != nil {
		return *p
	}
	return ""
}

// Set stores a text value. It reports false for fields that are not text.
func (t *FieldSet) Set(f Field, value string) bool {
	p := t.textField(f)
	if p == nil {
		return false
	}
	*p = value
	return true
}

// Equal reports whether every field of t equals the one in o.
func (t *FieldSet) Equal(o *FieldSet) bool {
	if t == nil || o == nil {
		return t == o
	}
	for _, f := range Fields() {
		if f == FieldPictures {
			continue
		}
		if t.Get(f) != o.Get(f) {
			return false
		}
	}
	return slices.EqualFunc(t.Pictures, o.Pictures, Picture.Equal)
}

// Clone returns a deep copy of t.
func (t *FieldSet) Clone() *FieldSet {
	c := *t
	if t.Pictures != nil {
		c.Pictures = make([]Picture, len(t.Pictures))
		for i, p := range t.Pictures {
			p.Data = bytes.Clone(p.Data)
			c.Pictures[i] = p
		}
	}
	return &c
}

// IsEmpty reports whether no field has a value.
func (t *FieldSet) IsEmpty() bool {
	return t.Equal(&FieldSet{})
}

// Clear empties every field in mask.
func (t *FieldSet) Clear(mask FieldMask) {
	for _, f := range mask.Fields() {
		if f == FieldPictures {
			t.Pictures = nil
			continue
		}
		t.Set(f, "")
	}
}

// SplitNumberPair parses a composite "N" or "N/M" value. Unparseable parts
// yield zero.
func SplitNumberPair(s string) (num, total int) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0
	}
	if idx := strings.Index(s, "/"); idx >= 0 {
		num, _ = strconv.Atoi(strings.TrimSpace(s[:idx]))
		total, _ = strconv.Atoi(strings.TrimSpace(s[idx+1:]))
		return num, total
	}
	num, _ = strconv.Atoi(s)
	return num, 0
}

// JoinNumberPair formats a number and total as a composite value. A zero
// total is omitted; both zero yields "".
func JoinNumberPair(num, total int) string {
	switch {
	case num <= 0 && total <= 0:
		return ""
	case total <= 0:
		return strconv.Itoa(num)
	case num <= 0:
		return "/" + strconv.Itoa(total)
	}
	return strconv.Itoa(num) + "/" + strconv.Itoa(total)
}

// joinNumberStrings joins a raw number and total, keeping the number as
// written (leading zeros survive).
func joinNumberStrings(num, total string) string {
	num, total = strings.TrimSpace(num), strings.TrimSpace(total)
	if strings.Contains(num, "/") || total == "" {
		return num
	}
	return num + "/" + total
}

// splitNumberStrings splits a composite value without parsing it.
func splitNumberStrings(s string) (num, total string) {
	num, total, _ = strings.Cut(strings.TrimSpace(s), "/")
	return strings.TrimSpace(num), strings.TrimSpace(total)
}

// taglibTags wraps a taglib result map with helper methods.
// This reduces duplication across format-specific readers.
type taglibTags map[string][]string

// get returns the first value for any of the given keys, or empty string if not found.
func (t taglibTags) get(keys ...string) string {
	for _, key := range keys {
		if values, ok := t[key]; ok && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// getAll returns every value of the first key present.
func (t taglibTags) getAll(keys ...string) []string {
	for _, key := range keys {
		if values, ok := t[key]; ok && len(values) > 0 {
			return values
		}
	}
	return nil
}
