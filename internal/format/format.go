// Package format maps file extensions to the codecs that read and write
// their tags.
package format

import (
	"errors"

	"github.com/llehouerou/tagger/internal/tags"
)

// Errors returned by descriptors and registries.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyExtension    = errors.New("descriptor has no extension")
	ErrNoCodec           = errors.New("descriptor has no codec")
)

// Codec reads and writes the tag of one container format.
type Codec interface {
	// Read returns the tag and audio properties of path. I/O failures are
	// returned as is; malformed tags as *tags.TagError.
	Read(path string, opts tags.Options) (*tags.FileInfo, error)
	// Write replaces the tag of path with t.
	Write(path string, t *tags.FieldSet, opts tags.Options) error
	// DisplayInfo projects audio properties to display strings.
	DisplayInfo(p *tags.Properties) tags.DisplayInfo
	// UnsupportedFields lists the fields the format can't store.
	UnsupportedFields() tags.FieldMask
}

// MultiPictureSupporter is implemented by codecs that can tell whether
// they store several pictures with independent descriptions. Codecs that
// don't implement it are assumed to.
type MultiPictureSupporter interface {
	SupportsMultiplePictures() bool
}

// Descriptor binds a file extension to a codec. Descriptors are not
// modified once registered.
type Descriptor struct {
	// Extension is the lower-case extension including the dot, e.g. ".wv".
	Extension   string
	FormatLabel string
	TagLabel    string
	Codec       Codec
}

// Unsupported is returned by lookups that match no registered descriptor.
// It is never stored in a registry.
var Unsupported = &Descriptor{
	FormatLabel: "Unsupported file",
	TagLabel:    "",
	Codec:       unsupportedCodec{},
}

// IsSupported reports whether d is a real format.
func (d *Descriptor) IsSupported() bool {
	return d != nil && d.Extension != ""
}

// Read delegates to the codec.
func (d *Descriptor) Read(path string, opts tags.Options) (*tags.FileInfo, error) {
	return d.codec().Read(path, opts)
}

// Write delegates to the codec.
func (d *Descriptor) Write(path string, t *tags.FieldSet, opts tags.Options) error {
	return d.codec().Write(path, t, opts)
}

// DisplayInfo delegates to the codec.
func (d *Descriptor) DisplayInfo(p *tags.Properties) tags.DisplayInfo {
	return d.codec().DisplayInfo(p)
}

// UnsupportedFields delegates to the codec.
func (d *Descriptor) UnsupportedFields() tags.FieldMask {
	return d.codec().UnsupportedFields()
}

// SupportsMultiplePictures reports whether the format keeps more than one
// picture. It defaults to true.
func (d *Descriptor) SupportsMultiplePictures() bool {
	if s, ok := d.codec().(MultiPictureSupporter); ok {
		return s.SupportsMultiplePictures()
	}
	return true
}

func (d *Descriptor) codec() Codec {
	if d == nil || d.Codec == nil {
		return unsupportedCodec{}
	}
	return d.Codec
}

type unsupportedCodec struct{}

func (unsupportedCodec) Read(string, tags.Options) (*tags.FileInfo, error) {
	return nil, ErrUnsupportedFormat
}

func (unsupportedCodec) Write(string, *tags.FieldSet, tags.Options) error {
	return ErrUnsupportedFormat
}

func (unsupportedCodec) DisplayInfo(p *tags.Properties) tags.DisplayInfo {
	return p.Display("Unsupported file")
}

func (unsupportedCodec) UnsupportedFields() tags.FieldMask {
	return tags.AllFields
}

func (unsupportedCodec) SupportsMultiplePictures() bool {
	return false
}
