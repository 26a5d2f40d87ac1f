// Package rename builds file names from tag values with mask templates
// such as "{artist}/{album}/{tracknumber} - {title}".
package rename

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/llehouerou/tagger/internal/record"
	"github.com/llehouerou/tagger/internal/sanitize"
	"github.com/llehouerou/tagger/internal/tags"
)

// DefaultMask files tracks by artist and album.
const DefaultMask = "{artist}/{album}/{tracknumber} - {title}"

// Placeholders lists the names a mask can use.
var Placeholders = []string{
	"title", "subtitle", "artist", "albumartist", "album",
	"disc", "disctotal", "year", "originalyear",
	"track", "tracknumber", "tracktotal",
	"genre", "composer", "comment",
}

var (
	// reEndPeriod matches periods at the end of a string
	reEndPeriod = regexp.MustCompile(`\.+$`)
	// reMultiSpace matches runs of whitespace
	reMultiSpace = regexp.MustCompile(`\s+`)
)

// segment represents either a literal string or a placeholder.
type segment struct {
	isPlaceholder bool
	value         string // placeholder name (without braces) or literal text
}

// parseTemplate splits a mask into segments.
// Placeholders are {name}, escaped braces are {{ and }}.
func parseTemplate(template string) []segment {
	if template == "" {
		return nil
	}

	var segments []segment
	var current strings.Builder
	inPlaceholder := false

	flush := func(placeholder bool) {
		if current.Len() > 0 || placeholder {
			segments = append(segments, segment{isPlaceholder: placeholder, value: current.String()})
		}
		current.Reset()
	}

	for i := 0; i < len(template); i++ {
		c := template[i]
		switch {
		case !inPlaceholder && (c == '{' || c == '}') && i+1 < len(template) && template[i+1] == c:
			current.WriteByte(c)
			i++
		case c == '{' && !inPlaceholder:
			flush(false)
			inPlaceholder = true
		case c == '}' && inPlaceholder:
			flush(true)
			inPlaceholder = false
		default:
			current.WriteByte(c)
		}
	}

	// an unterminated placeholder is kept as a placeholder
	if current.Len() > 0 {
		segments = append(segments, segment{isPlaceholder: inPlaceholder, value: current.String()})
	}
	return segments
}

// Expand fills mask with the values of t and sanitizes the result with p.
// Slashes written in the mask separate directories; slashes inside tag
// values never do. Each directory level is trimmed of surrounding spaces
// and of trailing periods.
func Expand(mask string, t *tags.FieldSet, p sanitize.Policy) string {
	var b strings.Builder
	for _, seg := range parseTemplate(mask) {
		if seg.isPlaceholder {
			b.WriteString(sanitize.StripSentinel(resolvePlaceholder(seg.value, t)))
			continue
		}
		b.WriteString(sanitize.MarkSeparators(seg.value))
	}

	parts := strings.Split(b.String(), mark)
	kept := parts[:0]
	for i, part := range parts {
		part = normalizeSpaces(part)
		if i < len(parts)-1 {
			part = removeEndPeriod(part)
		}
		if part != "" {
			kept = append(kept, part)
		}
	}
	joined := strings.Join(kept, mark)
	return sanitize.RestoreSeparators(sanitize.Sanitize(joined, 0, p))
}

// Target proposes the name f would get from mask, relative to the root
// of f, or to the directory f is in when it has no root. Separators found
// in tag values are replaced; the rest of the sanitizing happens when the
// file is renamed.
func Target(f *record.File, mask string) record.Name {
	raw := sanitize.Policy{Illegal: sanitize.SpacesOnly, Spaces: sanitize.Keep}
	saved := f.SavedName()
	base := record.Name{Dir: f.Root()}
	if base.Dir == "" {
		base.Dir = saved.Dir
	}
	return base.WithLeaf(Expand(mask, f.Tag(), raw) + saved.Ext())
}

func resolvePlaceholder(name string, t *tags.FieldSet) string {
	name = strings.ToLower(strings.TrimSpace(name))
	track, trackTotal := numberParts(t.Track)
	disc, discTotal := numberParts(t.Disc)

	switch name {
	case "title":
		return orUnknown(t.Title, name)
	case "subtitle":
		return t.Subtitle
	case "artist":
		return orUnknown(t.Artist, name)
	case "albumartist":
		if t.AlbumArtist != "" {
			return t.AlbumArtist
		}
		return orUnknown(t.Artist, "artist")
	case "album":
		return orUnknown(t.Album, name)
	case "genre":
		return orUnknown(t.Genre, name)
	case "composer":
		return orUnknown(t.Composer, name)
	case "comment":
		return t.Comment
	case "year":
		return getYear(t.Year)
	case "originalyear":
		if t.OriginalYear == "" {
			return getYear(t.Year)
		}
		return getYear(t.OriginalYear)
	case "track":
		return track
	case "tracknumber":
		return padNumber(track)
	case "tracktotal":
		return trackTotal
	case "disc":
		return disc
	case "disctotal":
		return discTotal
	}
	return "{" + name + "}"
}

// mark is the sentinel standing for a directory separator while a mask is
// being expanded.
var mark = sanitize.MarkSeparators("/")

func orUnknown(value, field string) string {
	if strings.TrimSpace(value) == "" {
		return "unknown " + field
	}
	return value
}

// numberParts splits "3/12" into "3" and "12" without reformatting either.
func numberParts(s string) (num, total string) {
	num, total, _ = strings.Cut(s, "/")
	return strings.TrimSpace(num), strings.TrimSpace(total)
}

// padNumber pads numeric values to two digits.
func padNumber(s string) string {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || len(s) >= 2 {
		return s
	}
	return "0" + strconv.Itoa(n)
}

// getYear extracts the year (first 4 chars) from a date string
func getYear(date string) string {
	date = strings.TrimSpace(date)
	if len(date) >= 4 {
		return date[:4]
	}
	return date
}

// removeEndPeriod removes trailing periods from a string
func removeEndPeriod(s string) string {
	return reEndPeriod.ReplaceAllString(s, "")
}

// normalizeSpaces trims and reduces multiple whitespace to single space
func normalizeSpaces(s string) string {
	return strings.TrimSpace(reMultiSpace.ReplaceAllString(s, " "))
}
