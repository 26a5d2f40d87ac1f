package tags

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Properties contains audio stream properties (not tags).
type Properties struct {
	Format     string // MP3, FLAC, OPUS, AAC, ...
	Version    string // codec or container version, free form
	Mode       string // channel mode, free form
	Duration   time.Duration
	Bitrate    int // kbit/s
	SampleRate int
	Channels   int
	BitDepth   int
	Size       int64
}

// FileInfo is what a codec returns after reading a file.
type FileInfo struct {
	Tag   FieldSet
	Audio Properties

	// Upgrade is set when the codec read a representation it will not
	// write back as is (an older tag version, a foreign tag type), so the
	// file must be saved even if no field is edited.
	Upgrade bool
}

// DisplayInfo is the UI-facing projection of Properties. Every value is a
// ready-to-print string.
type DisplayInfo struct {
	Description  string
	VersionLabel string
	Version      string
	Bitrate      string
	SampleRate   string
	ModeLabel    string
	Mode         string
	Size         string
	Duration     string
}

// Display builds the generic projection used by most codecs.
func (p *Properties) Display(description string) DisplayInfo {
	d := DisplayInfo{
		Description:  description,
		VersionLabel: "Encoder:",
		Version:      p.Version,
		ModeLabel:    "Channels:",
		Mode:         p.Mode,
		Size:         FormatSize(p.Size),
		Duration:     FormatDuration(p.Duration),
	}
	if d.Version == "" {
		d.Version = p.Format
	}
	if d.Mode == "" && p.Channels > 0 {
		d.Mode = fmt.Sprintf("%d", p.Channels)
	}
	if p.Bitrate > 0 {
		d.Bitrate = fmt.Sprintf("%d kb/s", p.Bitrate)
	}
	if p.SampleRate > 0 {
		d.SampleRate = fmt.Sprintf("%d Hz", p.SampleRate)
	}
	return d
}

// FormatSize renders a byte count the way file managers do.
func FormatSize(n int64) string {
	if n <= 0 {
		return ""
	}
	return humanize.IBytes(uint64(n)) //nolint:gosec // n is positive
}

// FormatDuration renders a duration as m:ss or h:mm:ss.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	total := int(d.Round(time.Second) / time.Second)
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// channelMode names common channel layouts.
func channelMode(channels int) string {
	switch channels {
	case 0:
		return ""
	case 1:
		return "Mono"
	case 2:
		return "Stereo"
	}
	return fmt.Sprintf("%d channels", channels)
}

// estimateBitrate derives an average bitrate from file size and duration.
func estimateBitrate(size int64, d time.Duration) int {
	if size <= 0 || d <= 0 {
		return 0
	}
	return int(float64(size) * 8 / d.Seconds() / 1000)
}

// Options carries the settings a codec consults while reading and writing.
type Options struct {
	// SplitFields lists the fields whose value holds several entries
	// joined by Delimiter. Formats with multi-valued fields store them as
	// separate values.
	SplitFields FieldMask
	Delimiter   string
}

// split returns the values to store for f.
func (o Options) split(f Field, value string) []string {
	if value == "" {
		return nil
	}
	if o.Delimiter == "" || !o.SplitFields.Has(f) {
		return []string{value}
	}
	var out []string
	for part := range strings.SplitSeq(value, o.Delimiter) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// join is the inverse of split, used when reading multi-valued fields.
func (o Options) join(values []string) string {
	delim := o.Delimiter
	if delim == "" {
		delim = DefaultDelimiter
	}
	return strings.Join(values, delim)
}

// DefaultDelimiter joins multi-valued fields when no delimiter is set.
const DefaultDelimiter = " / "
