package tags

import (
	"fmt"
	"os"

	"go.senan.xyz/taglib"
)

// TagLib serves the formats read and written through TagLib's property
// map: Ogg Vorbis, Opus, ASF/WMA and WavPack (APEv2). Only one picture is
// kept per file.
type TagLib struct {
	// Name is the description shown for the format.
	Name string
	// TagName labels errors, for example "Vorbis comment" or "APE".
	TagName string
	// CompositeNumbers stores track and disc as "N/M" under one key
	// instead of separate number and total keys.
	CompositeNumbers bool
	// GranuleRate is the Ogg granule rate used to compute the duration
	// when TagLib reports none. Zero disables the fallback.
	GranuleRate int
	// Unsupported lists fields the tag type can't hold.
	Unsupported FieldMask
}

// TagLib-backed codecs.
var (
	Vorbis = TagLib{Name: "Ogg Vorbis", TagName: "Vorbis comment", GranuleRate: 44100}
	Opus   = TagLib{Name: "Opus", TagName: "Vorbis comment", GranuleRate: 48000}
	// TagLib maps a fixed set of WM/ attributes; these fields have none.
	ASF = TagLib{
		Name:             "ASF",
		TagName:          "ASF",
		CompositeNumbers: true,
		Unsupported:      MaskOf(FieldURL, FieldReleaseYear, FieldDescription),
	}
	WavPack = TagLib{Name: "WavPack", TagName: "APE", CompositeNumbers: true}
)

// UnsupportedFields reports the fields the tag type can't hold.
func (c TagLib) UnsupportedFields() FieldMask {
	return c.Unsupported
}

// SupportsMultiplePictures reports false: TagLib exposes a single image.
func (TagLib) SupportsMultiplePictures() bool {
	return false
}

// DisplayInfo renders stream properties.
func (c TagLib) DisplayInfo(p *Properties) DisplayInfo {
	return p.Display(c.Name)
}

// Read reads the property map, cover image and stream properties of path.
func (c TagLib) Read(path string, opts Options) (*FileInfo, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	rawTags, err := taglib.ReadTags(path)
	if err != nil {
		return nil, tagError(path, c.TagName, "parse", err)
	}

	info := &FileInfo{}
	readComments(taglibTags(rawTags), &info.Tag, opts)

	if img, err := taglib.ReadImage(path); err == nil && len(img) > 0 {
		info.Tag.Pictures = []Picture{{
			Type:     PictureFrontCover,
			MIMEType: detectMimeType(img),
			Data:     img,
		}}
	}

	info.Audio = c.readProperties(path)
	return info, nil
}

func (c TagLib) readProperties(path string) Properties {
	p := Properties{Format: c.Name, Size: fileSize(path)}

	props, err := taglib.ReadProperties(path)
	if err == nil {
		p.Duration = props.Length
		p.Bitrate = int(props.Bitrate)
		p.SampleRate = int(props.SampleRate)
		p.Channels = int(props.Channels)
		p.Mode = channelMode(p.Channels)
	}

	if p.Duration == 0 && c.GranuleRate > 0 {
		if d, err := oggDuration(path, c.GranuleRate); err == nil {
			p.Duration = d
		}
	}
	if p.Bitrate == 0 {
		p.Bitrate = estimateBitrate(p.Size, p.Duration)
	}
	return p
}
