package format

import (
	"github.com/rs/zerolog"

	"github.com/llehouerou/tagger/internal/tags"
)

// Labels of the built-in formats.
const (
	LabelMPEG    = "MPEG"
	LabelFLAC    = "FLAC"
	LabelVorbis  = "Ogg Vorbis"
	LabelOpus    = "Opus"
	LabelMP4     = "MP4/AAC"
	LabelASF     = "ASF/WMA"
	LabelWavPack = "WavPack"
)

func builtinDescriptors() []*Descriptor {
	return []*Descriptor{
		{Extension: tags.ExtMP3, FormatLabel: LabelMPEG, TagLabel: "ID3v2.4", Codec: tags.MP3{}},
		{Extension: tags.ExtFLAC, FormatLabel: LabelFLAC, TagLabel: "Vorbis comment", Codec: tags.FLAC{}},
		{Extension: tags.ExtOGG, FormatLabel: LabelVorbis, TagLabel: "Vorbis comment", Codec: tags.Vorbis},
		{Extension: tags.ExtOGA, FormatLabel: LabelVorbis, TagLabel: "Vorbis comment", Codec: tags.Vorbis},
		{Extension: tags.ExtOPUS, FormatLabel: LabelOpus, TagLabel: "Vorbis comment", Codec: tags.Opus},
		{Extension: tags.ExtM4A, FormatLabel: LabelMP4, TagLabel: "MP4 atoms", Codec: tags.MP4{}},
		{Extension: tags.ExtMP4, FormatLabel: LabelMP4, TagLabel: "MP4 atoms", Codec: tags.MP4{}},
		{Extension: tags.ExtM4B, FormatLabel: LabelMP4, TagLabel: "MP4 atoms", Codec: tags.MP4{}},
		{Extension: tags.ExtWMA, FormatLabel: LabelASF, TagLabel: "ASF attributes", Codec: tags.ASF},
		{Extension: tags.ExtASF, FormatLabel: LabelASF, TagLabel: "ASF attributes", Codec: tags.ASF},
		{Extension: tags.ExtWV, FormatLabel: LabelWavPack, TagLabel: "APEv2", Codec: tags.WavPack},
	}
}

// Builtin returns a registry holding every format this module supports.
func Builtin(logger zerolog.Logger) *Registry {
	r := NewRegistry()
	for _, d := range builtinDescriptors() {
		if err := r.Register(d); err != nil {
			logger.Error().Err(err).Str("ext", d.Extension).Msg("register format")
			continue
		}
		logger.Debug().
			Str("ext", d.Extension).
			Str("format", d.FormatLabel).
			Str("tag", d.TagLabel).
			Msg("registered format")
	}
	return r
}
