package tags

import "strings"

// commentKey maps a field to Vorbis-comment style keys. The first key is
// written; every key is accepted on read. TagLib uses the same names for
// its property maps, so the table also serves the TagLib-backed formats.
type commentKey struct {
	field Field
	keys  []string
}

var commentKeys = []commentKey{
	{FieldTitle, []string{"TITLE"}},
	{FieldSubtitle, []string{"SUBTITLE"}},
	{FieldArtist, []string{"ARTIST"}},
	{FieldAlbumArtist, []string{"ALBUMARTIST", "ALBUM ARTIST"}},
	{FieldAlbum, []string{"ALBUM"}},
	{FieldYear, []string{"DATE", "YEAR"}},
	{FieldReleaseYear, []string{"RELEASEDATE"}},
	{FieldGenre, []string{"GENRE"}},
	{FieldComment, []string{"COMMENT"}},
	{FieldComposer, []string{"COMPOSER"}},
	{FieldOriginalArtist, []string{"ORIGINALARTIST"}},
	{FieldOriginalYear, []string{"ORIGINALDATE", "ORIGINALYEAR"}},
	{FieldCopyright, []string{"COPYRIGHT"}},
	{FieldURL, []string{"URL", "CONTACT"}},
	{FieldEncodedBy, []string{"ENCODEDBY", "ENCODED-BY"}},
	{FieldDescription, []string{"DESCRIPTION"}},
	{FieldReplayGainTrackGain, []string{"REPLAYGAIN_TRACK_GAIN"}},
	{FieldReplayGainTrackPeak, []string{"REPLAYGAIN_TRACK_PEAK"}},
	{FieldReplayGainAlbumGain, []string{"REPLAYGAIN_ALBUM_GAIN"}},
	{FieldReplayGainAlbumPeak, []string{"REPLAYGAIN_ALBUM_PEAK"}},
}

// numberKeys maps the composite track and disc fields to their number and
// total keys.
var numberKeys = []struct {
	field  Field
	number string
	totals []string
}{
	{FieldTrack, "TRACKNUMBER", []string{"TRACKTOTAL", "TOTALTRACKS"}},
	{FieldDisc, "DISCNUMBER", []string{"DISCTOTAL", "TOTALDISCS"}},
}

// comment is one KEY=value pair.
type comment struct {
	key   string
	value string
}

// readComments fills t from a comment map with upper-case keys. A number
// already stored as "N/M" is kept; otherwise the total comes from its own
// key.
func readComments(c taglibTags, t *FieldSet, opts Options) {
	for _, ck := range commentKeys {
		if values := c.getAll(ck.keys...); len(values) > 0 {
			t.Set(ck.field, opts.join(values))
		}
	}
	for _, nk := range numberKeys {
		num := c.get(nk.number)
		t.Set(nk.field, joinNumberStrings(num, c.get(nk.totals...)))
	}
}

// writeComments lists the pairs representing t, in a stable order.
func writeComments(t *FieldSet, opts Options, composite bool) []comment {
	var out []comment
	for _, ck := range commentKeys {
		for _, v := range opts.split(ck.field, t.Get(ck.field)) {
			out = append(out, comment{ck.keys[0], v})
		}
	}
	for _, nk := range numberKeys {
		value := t.Get(nk.field)
		if value == "" {
			continue
		}
		if composite {
			out = append(out, comment{nk.number, value})
			continue
		}
		num, total := splitNumberStrings(value)
		if num != "" {
			out = append(out, comment{nk.number, num})
		}
		if total != "" {
			out = append(out, comment{nk.totals[0], total})
		}
	}
	return out
}

// commentMap groups pairs by key, as TagLib expects them.
func commentMap(pairs []comment) map[string][]string {
	m := make(map[string][]string, len(pairs))
	for _, p := range pairs {
		m[p.key] = append(m[p.key], p.value)
	}
	return m
}

// parseComments turns raw "KEY=value" strings into a map with upper-case
// keys.
func parseComments(raw []string) taglibTags {
	c := make(taglibTags)
	for _, s := range raw {
		key, value, ok := strings.Cut(s, "=")
		if !ok || key == "" {
			continue
		}
		key = strings.ToUpper(key)
		c[key] = append(c[key], value)
	}
	return c
}
