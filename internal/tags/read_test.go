package tags

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/bogem/id3v2/v2"
)

// Test file creation helpers

// writeMinimalMP3 writes one MPEG1 Layer3 frame (128kbps, 44100Hz, stereo).
func writeMinimalMP3(t *testing.T, path string, prefix []byte) {
	t.Helper()
	mp3Frame := make([]byte, 417)
	mp3Frame[0] = 0xff
	mp3Frame[1] = 0xfb
	mp3Frame[2] = 0x90
	mp3Frame[3] = 0x00

	data := make([]byte, 0, len(prefix)+len(mp3Frame))
	data = append(data, prefix...)
	data = append(data, mp3Frame...)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to create test MP3: %v", err)
	}
}

// createTestMP3 creates a minimal MP3 file with optional tags.
func createTestMP3(t *testing.T, dir string, fs *FieldSet) string {
	t.Helper()
	path := filepath.Join(dir, "test.mp3")
	writeMinimalMP3(t, path, nil)

	if fs != nil {
		if err := (MP3{}).Write(path, fs, Options{}); err != nil {
			t.Fatalf("failed to write MP3 tags: %v", err)
		}
	}
	return path
}

// createWithFFmpeg encodes one second of sine into name, skipping the test
// when ffmpeg is missing.
func createWithFFmpeg(t *testing.T, dir, name, codec string) string {
	t.Helper()
	path := filepath.Join(dir, name)

	cmd := exec.Command("ffmpeg", "-y", "-f", "lavfi", "-i", "sine=frequency=440:duration=1", "-c:a", codec, path)
	cmd.Stderr = nil
	cmd.Stdout = nil
	if err := cmd.Run(); err != nil {
		t.Skipf("ffmpeg not available: %v", err)
	}
	return path
}

// fullTestTags returns a FieldSet with every text field populated.
func fullTestTags() *FieldSet {
	return &FieldSet{
		Title:          "Test Title",
		Subtitle:       "Test Subtitle",
		Artist:         "Test Artist",
		AlbumArtist:    "Test Album Artist",
		Album:          "Test Album",
		Disc:           "1/2",
		Year:           "2023-06-15",
		ReleaseYear:    "2023-07-01",
		Track:          "3/12",
		Genre:          "Rock",
		Comment:        "Test Comment",
		Composer:       "Test Composer",
		OriginalArtist: "Original Artist",
		OriginalYear:   "1999-12-31",
		Copyright:      "2023 Test Label",
		URL:            "https://example.com/track",
		EncodedBy:      "Test Encoder",
		Description:    "Test Description",

		ReplayGainTrackGain: "-6.50 dB",
		ReplayGainTrackPeak: "0.988",
		ReplayGainAlbumGain: "-7.10 dB",
		ReplayGainAlbumPeak: "0.999",
	}
}

// withoutFields returns a copy of fs with mask cleared.
func withoutFields(fs *FieldSet, mask FieldMask) *FieldSet {
	c := fs.Clone()
	c.Clear(mask)
	return c
}

func verifyTagsMatch(t *testing.T, got, want *FieldSet) {
	t.Helper()
	for _, f := range Fields() {
		if g, w := got.Get(f), want.Get(f); g != w {
			t.Errorf("%s = %q, want %q", f, g, w)
		}
	}
}

type codec interface {
	Read(path string, opts Options) (*FileInfo, error)
	Write(path string, t *FieldSet, opts Options) error
	UnsupportedFields() FieldMask
}

// MP3 tests

func TestMP3_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	want := withoutFields(fullTestTags(), MP3{}.UnsupportedFields())
	path := createTestMP3(t, dir, want)

	info, err := MP3{}.Read(path, Options{})
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if info.Upgrade {
		t.Error("Upgrade = true for an ID3v2.4 tag")
	}
	verifyTagsMatch(t, &info.Tag, want)
}

func TestMP3_Properties(t *testing.T) {
	dir := t.TempDir()
	path := createTestMP3(t, dir, &FieldSet{Title: "Test"})

	info, err := MP3{}.Read(path, Options{})
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	if info.Audio.Format != "MP3" {
		t.Errorf("Format = %q, want MP3", info.Audio.Format)
	}
	if info.Audio.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", info.Audio.SampleRate)
	}
	if info.Audio.Version != "MPEG 1, Layer III" {
		t.Errorf("Version = %q, want %q", info.Audio.Version, "MPEG 1, Layer III")
	}
	if info.Audio.Mode != "Stereo" {
		t.Errorf("Mode = %q, want Stereo", info.Audio.Mode)
	}
	if info.Audio.Size == 0 {
		t.Error("Size = 0")
	}

	d := MP3{}.DisplayInfo(&info.Audio)
	if d.Description != "MPEG" || d.SampleRate != "44100 Hz" {
		t.Errorf("DisplayInfo = %+v", d)
	}
}

func TestMP3_Pictures(t *testing.T) {
	dir := t.TempDir()
	jpegData := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	pngData := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

	want := &FieldSet{
		Title: "Test",
		Pictures: []Picture{
			{Type: PictureFrontCover, Description: "Front", MIMEType: mimeJPEG, Data: jpegData},
			{Type: PictureBackCover, Description: "Back", MIMEType: mimePNG, Data: pngData},
		},
	}
	path := createTestMP3(t, dir, want)

	info, err := MP3{}.Read(path, Options{})
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if len(info.Tag.Pictures) != 2 {
		t.Fatalf("got %d pictures, want 2", len(info.Tag.Pictures))
	}
	for i, p := range info.Tag.Pictures {
		if !p.Equal(want.Pictures[i]) {
			t.Errorf("picture %d = %+v, want %+v", i, p, want.Pictures[i])
		}
	}
}

func TestMP3_ClearsExistingTags(t *testing.T) {
	dir := t.TempDir()
	path := createTestMP3(t, dir, &FieldSet{
		Title:               "Old Title",
		Album:               "Old Album",
		Track:               "99",
		ReplayGainTrackGain: "-1 dB",
	})

	if err := (MP3{}).Write(path, &FieldSet{Title: "New Title"}, Options{}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	info, err := MP3{}.Read(path, Options{})
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	verifyTagsMatch(t, &info.Tag, &FieldSet{Title: "New Title"})
}

func TestMP3_ID3v22(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.mp3")

	// ID3v2.2 tag with one TT2 frame: 3-byte id, 3-byte size, body
	frame := []byte{'T', 'T', '2', 0x00, 0x00, 0x06, 0x00, 'H', 'e', 'l', 'l', 'o'}
	header := []byte{'I', 'D', '3', 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, byte(len(frame))}
	writeMinimalMP3(t, path, append(header, frame...))

	info, err := MP3{}.Read(path, Options{})
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if !info.Upgrade {
		t.Error("Upgrade = false, want true for ID3v2.2")
	}
	if info.Tag.Title != "Hello" {
		t.Errorf("Title = %q, want Hello", info.Tag.Title)
	}

	// Write strips the ID3v2.2 tag and creates ID3v2.4
	if err := (MP3{}).Write(path, &info.Tag, Options{}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	info, err = MP3{}.Read(path, Options{})
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if info.Upgrade {
		t.Error("Upgrade = true after saving as ID3v2.4")
	}
	if info.Tag.Title != "Hello" {
		t.Errorf("Title = %q, want Hello", info.Tag.Title)
	}

	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: false})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer id3tag.Close()
	if id3tag.Version() != 4 {
		t.Errorf("Version = %d, want 4", id3tag.Version())
	}
}

func TestMP3_ID3v1Only(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.mp3")
	writeMinimalMP3(t, path, nil)

	v1 := make([]byte, 128)
	copy(v1, "TAG")
	copy(v1[3:], "Old Title")
	copy(v1[33:], "Old Artist")
	copy(v1[63:], "Old Album")
	copy(v1[93:], "1999")
	v1[127] = 255

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.Write(v1); err != nil {
		t.Fatalf("append ID3v1: %v", err)
	}
	f.Close()

	info, err := MP3{}.Read(path, Options{})
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if !info.Upgrade {
		t.Error("Upgrade = false, want true for an ID3v1-only file")
	}
	if info.Tag.Title != "Old Title" || info.Tag.Artist != "Old Artist" || info.Tag.Year != "1999" {
		t.Errorf("Tag = %+v", info.Tag)
	}
}

func TestMP3_UnicodeText(t *testing.T) {
	dir := t.TempDir()
	want := &FieldSet{
		Title:  "日本語タイトル",
		Artist: "Café Müller",
		Album:  "Ελληνικά",
	}
	path := createTestMP3(t, dir, want)

	info, err := MP3{}.Read(path, Options{})
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	verifyTagsMatch(t, &info.Tag, want)
}

// FLAC, Ogg and MP4 tests need ffmpeg to create audio.

func TestFLAC_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	path := createWithFFmpeg(t, dir, "test.flac", "flac")
	roundtrip(t, FLAC{}, path)
}

func TestVorbis_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	path := createWithFFmpeg(t, dir, "test.ogg", "libvorbis")
	roundtrip(t, Vorbis, path)
}

func TestOpus_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	path := createWithFFmpeg(t, dir, "test.opus", "libopus")
	roundtrip(t, Opus, path)
}

func TestMP4_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	path := createWithFFmpeg(t, dir, "test.m4a", "aac")
	roundtrip(t, MP4{}, path)
}

func roundtrip(t *testing.T, c codec, path string) {
	t.Helper()
	want := withoutFields(fullTestTags(), c.UnsupportedFields())
	if err := c.Write(path, want, Options{}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	info, err := c.Read(path, Options{})
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	verifyTagsMatch(t, &info.Tag, want)

	// Duration should be approximately 1 second (test files are 1s)
	if d := info.Audio.Duration; d < 900*time.Millisecond || d > 1100*time.Millisecond {
		t.Errorf("Duration = %v, want approximately 1s", d)
	}
}

func TestFLAC_MultiplePictures(t *testing.T) {
	dir := t.TempDir()
	path := createWithFFmpeg(t, dir, "test.flac", "flac")

	want := &FieldSet{
		Title: "Test",
		Pictures: []Picture{
			{Type: PictureFrontCover, Description: "Front", MIMEType: mimeJPEG, Data: []byte{0xFF, 0xD8, 0xFF, 0xE0}},
			{Type: PictureArtist, Description: "Artist", MIMEType: mimePNG, Data: []byte{0x89, 'P', 'N', 'G'}},
		},
	}
	if err := (FLAC{}).Write(path, want, Options{}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	info, err := FLAC{}.Read(path, Options{})
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if len(info.Tag.Pictures) != 2 {
		t.Fatalf("got %d pictures, want 2", len(info.Tag.Pictures))
	}
	for i, p := range info.Tag.Pictures {
		if !p.Equal(want.Pictures[i]) {
			t.Errorf("picture %d = %+v, want %+v", i, p, want.Pictures[i])
		}
	}
}

func TestFLAC_MultiValueFields(t *testing.T) {
	dir := t.TempDir()
	path := createWithFFmpeg(t, dir, "test.flac", "flac")

	opts := Options{SplitFields: MaskOf(FieldArtist, FieldGenre), Delimiter: "; "}
	want := &FieldSet{Artist: "A; B", Genre: "Rock; Pop", Title: "X; Y"}
	if err := (FLAC{}).Write(path, want, opts); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	info, err := FLAC{}.Read(path, opts)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	verifyTagsMatch(t, &info.Tag, want)
}

func TestFLAC_ID3v2Prefix(t *testing.T) {
	dir := t.TempDir()
	path := createWithFFmpeg(t, dir, "test.flac", "flac")

	flacData, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read FLAC: %v", err)
	}

	// Prepend an ID3v2 header (some tools incorrectly add these to FLAC)
	id3v2Header := []byte{
		'I', 'D', '3', // Magic
		0x04, 0x00, // Version 4.0
		0x00,                   // Flags
		0x00, 0x00, 0x00, 0x0A, // Size (syncsafe: 10 bytes)
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	data := append(id3v2Header, flacData...)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	info, err := FLAC{}.Read(path, Options{})
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if !info.Upgrade {
		t.Error("Upgrade = false for FLAC with ID3v2 prefix")
	}

	if err := (FLAC{}).Write(path, &FieldSet{Title: "Test Title"}, Options{}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	finalData, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read final: %v", err)
	}
	if string(finalData[:4]) != "fLaC" {
		t.Error("FLAC file should start with fLaC marker")
	}

	info, err = FLAC{}.Read(path, Options{})
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if info.Upgrade || info.Tag.Title != "Test Title" {
		t.Errorf("after save: Upgrade = %v, Title = %q", info.Upgrade, info.Tag.Title)
	}
}

func TestTagLib_SinglePicture(t *testing.T) {
	if Opus.SupportsMultiplePictures() {
		t.Error("TagLib codecs keep a single picture")
	}
}

// Error classification

func TestRead_NonexistentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing")
	codecs := map[string]codec{
		"MP3":  MP3{},
		"FLAC": FLAC{},
		"MP4":  MP4{},
		"Opus": Opus,
	}
	for name, c := range codecs {
		t.Run(name, func(t *testing.T) {
			_, err := c.Read(path, Options{})
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, os.ErrNotExist) {
				t.Errorf("error %v does not wrap os.ErrNotExist", err)
			}
			var tagErr *TagError
			if errors.As(err, &tagErr) {
				t.Errorf("I/O failure reported as tag error: %v", err)
			}
		})
	}
}

func TestRead_MalformedFLAC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.flac")
	if err := os.WriteFile(path, []byte("not a flac file at all"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := FLAC{}.Read(path, Options{})
	var tagErr *TagError
	if !errors.As(err, &tagErr) {
		t.Fatalf("error = %v, want *TagError", err)
	}
	if tagErr.Path != path {
		t.Errorf("Path = %q, want %q", tagErr.Path, path)
	}
}

func TestDetectMimeType(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"empty", nil, mimeJPEG},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}, mimeJPEG},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, mimePNG},
		{"unknown", []byte("hello"), mimeJPEG},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectMimeType(tt.data); got != tt.want {
				t.Errorf("detectMimeType() = %q, want %q", got, tt.want)
			}
		})
	}
}
