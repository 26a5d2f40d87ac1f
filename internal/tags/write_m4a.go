package tags

import (
	"fmt"

	"github.com/Sorrow446/go-mp4tag"
)

// Write replaces the metadata atoms of path with t.
func (MP4) Write(path string, t *FieldSet, opts Options) error {
	mp4, err := mp4tag.Open(path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer mp4.Close()

	// Build custom tags map for freeform iTunes atoms
	custom := make(map[string]string)
	addCustom := func(key, value string) {
		if value != "" {
			custom[key] = value
		}
	}
	addCustom(mp4Subtitle, t.Subtitle)
	addCustom(mp4ReleaseDate, t.ReleaseYear)
	addCustom(mp4OriginalArtist, t.OriginalArtist)
	addCustom(mp4OriginalDate, t.OriginalYear)
	addCustom(mp4URL, t.URL)
	addCustom(mp4EncodedBy, t.EncodedBy)
	addCustom("REPLAYGAIN_TRACK_GAIN", t.ReplayGainTrackGain)
	addCustom("REPLAYGAIN_TRACK_PEAK", t.ReplayGainTrackPeak)
	addCustom("REPLAYGAIN_ALBUM_GAIN", t.ReplayGainAlbumGain)
	addCustom("REPLAYGAIN_ALBUM_PEAK", t.ReplayGainAlbumPeak)

	trackNum, trackTotal := SplitNumberPair(t.Track)
	discNum, discTotal := SplitNumberPair(t.Disc)

	tags := &mp4tag.MP4Tags{
		Title:       t.Title,
		Artist:      t.Artist,
		Album:       t.Album,
		AlbumArtist: t.AlbumArtist,
		Comment:     t.Comment,
		Composer:    t.Composer,
		Copyright:   t.Copyright,
		Description: t.Description,
		TrackNumber: safeInt16(trackNum),
		TrackTotal:  safeInt16(trackTotal),
		DiscNumber:  safeInt16(discNum),
		DiscTotal:   safeInt16(discTotal),
		Date:        t.Year,
		CustomGenre: t.Genre,
		Custom:      custom,
	}
	for _, p := range t.Pictures {
		tags.Pictures = append(tags.Pictures, &mp4tag.MP4Picture{Data: p.Data})
	}

	if err := mp4.Write(tags, mp4DeleteList(tags)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// mp4DeleteList names the atoms to remove: every standard atom left empty,
// plus all freeform atoms and pictures, which are rewritten from tags.
func mp4DeleteList(tags *mp4tag.MP4Tags) []string {
	del := []string{"allcustom", "allpictures"}
	strs := []struct {
		name  string
		value string
	}{
		{"title", tags.Title},
		{"artist", tags.Artist},
		{"album", tags.Album},
		{"albumartist", tags.AlbumArtist},
		{"comment", tags.Comment},
		{"composer", tags.Composer},
		{"copyright", tags.Copyright},
		{"description", tags.Description},
		{"date", tags.Date},
		{"customgenre", tags.CustomGenre},
	}
	for _, s := range strs {
		if s.value == "" {
			del = append(del, s.name)
		}
	}
	nums := []struct {
		name  string
		value int16
	}{
		{"tracknumber", tags.TrackNumber},
		{"tracktotal", tags.TrackTotal},
		{"discnumber", tags.DiscNumber},
		{"disctotal", tags.DiscTotal},
	}
	for _, n := range nums {
		if n.value == 0 {
			del = append(del, n.name)
		}
	}
	return del
}

// safeInt16 converts int to int16 with bounds checking.
func safeInt16(n int) int16 {
	if n > 32767 {
		return 32767
	}
	if n < -32768 {
		return -32768
	}
	return int16(n)
}
