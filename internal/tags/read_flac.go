package tags

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
	"github.com/gopxl/beep/v2/flac"
)

// FLAC reads and writes Vorbis comments and PICTURE blocks in FLAC files.
type FLAC struct{}

// UnsupportedFields reports nothing: Vorbis comments take any key.
func (FLAC) UnsupportedFields() FieldMask {
	return 0
}

// DisplayInfo renders FLAC stream properties.
func (FLAC) DisplayInfo(p *Properties) DisplayInfo {
	d := p.Display("FLAC")
	d.VersionLabel = "Bit depth:"
	d.Version = ""
	if p.BitDepth > 0 {
		d.Version = fmt.Sprintf("%d bit", p.BitDepth)
	}
	return d
}

// Read reads the Vorbis comments, pictures and STREAMINFO of path.
func (FLAC) Read(path string, opts Options) (*FileInfo, error) {
	f, id3Size, err := parseFLACWithID3Support(path)
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return nil, fmt.Errorf("open file: %w", err)
	case err != nil:
		return nil, tagError(path, "FLAC", "parse", err)
	}

	info := &FileInfo{
		// a leading ID3v2 tag is dropped on the next save
		Upgrade: id3Size > 0,
	}
	if err := readFLACMetadata(f, &info.Tag, opts); err != nil {
		return nil, tagError(path, "Vorbis comment", "parse", err)
	}
	info.Audio = readFLACProperties(path, f)
	return info, nil
}

// readFLACMetadata copies comments and pictures out of the metadata blocks.
func readFLACMetadata(f *goflac.File, t *FieldSet, opts Options) error {
	for _, meta := range f.Meta {
		switch meta.Type {
		case goflac.VorbisComment:
			cmts, err := flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return err
			}
			readComments(parseComments(cmts.Comments), t, opts)
		case goflac.Picture:
			pic, err := flacpicture.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return err
			}
			t.Pictures = append(t.Pictures, Picture{
				Type:        PictureType(pic.PictureType),
				Description: pic.Description,
				MIMEType:    pic.MIME,
				Data:        pic.ImageData,
			})
		default:
		}
	}
	return nil
}

// readFLACProperties extracts audio info from the STREAMINFO block, falling
// back to beep's decoder when the block is missing.
func readFLACProperties(path string, f *goflac.File) Properties {
	p := Properties{Format: "FLAC", Size: fileSize(path)}

	for _, meta := range f.Meta {
		if meta.Type != goflac.StreamInfo || len(meta.Data) < 18 {
			continue
		}
		// Bytes 10-13: sample rate (20 bits), channels (3 bits), bits per sample (5 bits)
		// Bytes 13-17: total samples (36 bits)
		data := meta.Data

		p.SampleRate = int(data[10])<<12 | int(data[11])<<4 | int(data[12])>>4
		p.Channels = int(data[12]>>1)&0x07 + 1
		p.BitDepth = (int(data[12])&0x01)<<4 | int(data[13])>>4 + 1

		totalSamples := int64(data[13]&0x0F)<<32 | int64(data[14])<<24 | int64(data[15])<<16 | int64(data[16])<<8 | int64(data[17])
		if p.SampleRate > 0 {
			p.Duration = time.Duration(float64(totalSamples) / float64(p.SampleRate) * float64(time.Second))
		}
		p.Mode = channelMode(p.Channels)
		p.Bitrate = estimateBitrate(p.Size, p.Duration)
		return p
	}

	if bp, err := readFLACWithBeep(path); err == nil {
		bp.Size = p.Size
		bp.Bitrate = estimateBitrate(bp.Size, bp.Duration)
		return bp
	}
	return p
}

// readFLACWithBeep uses beep's FLAC decoder as fallback.
func readFLACWithBeep(path string) (Properties, error) {
	f, err := os.Open(path)
	if err != nil {
		return Properties{}, err
	}
	defer f.Close()

	// Skip ID3v2 if present
	if err := skipID3v2(f); err != nil {
		return Properties{}, err
	}

	streamer, format, err := flac.Decode(f)
	if err != nil {
		return Properties{}, err
	}
	defer streamer.Close()

	return Properties{
		Format:     "FLAC",
		Duration:   format.SampleRate.D(streamer.Len()),
		SampleRate: int(format.SampleRate),
		Channels:   format.NumChannels,
		Mode:       channelMode(format.NumChannels),
		BitDepth:   format.Precision * 8,
	}, nil
}

// parseFLACWithID3Support parses a FLAC file, handling ID3v2 headers if present.
// Returns the parsed FLAC metadata and the size of any ID3v2 header found.
func parseFLACWithID3Support(path string) (*goflac.File, int64, error) {
	// First try normal parsing
	f, err := goflac.ParseFile(path)
	if err == nil {
		return f, 0, nil
	}
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return nil, 0, err
	}

	file, openErr := os.Open(path)
	if openErr != nil {
		return nil, 0, err // Return original error
	}
	defer file.Close()

	header := make([]byte, 10)
	if _, readErr := io.ReadFull(file, header); readErr != nil {
		return nil, 0, err
	}
	id3Size := id3v2Size(header)
	if id3Size == 0 {
		return nil, 0, err // Not an ID3v2 header, return original error
	}

	if _, seekErr := file.Seek(id3Size, io.SeekStart); seekErr != nil {
		return nil, 0, err
	}
	meta, parseErr := goflac.ParseMetadata(file)
	if parseErr != nil {
		return nil, 0, fmt.Errorf("no FLAC stream after ID3v2 header: %w", parseErr)
	}
	return meta, id3Size, nil
}
