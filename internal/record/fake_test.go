package record

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tagger/internal/format"
	"github.com/llehouerou/tagger/internal/sanitize"
	"github.com/llehouerou/tagger/internal/tags"
)

var errDiskFull = errors.New("disk full")

// fakeFile is an audio file whose format keeps track and disc as separate
// integers.
type fakeFile struct {
	tag        tags.FieldSet // Track and Disc always empty
	track      int
	trackTotal int
	disc       int
	discTotal  int
	upgrade    bool
	corrupt    bool
	failWrite  bool
	writes     int
}

type fakeDisk struct {
	files     map[string]*fakeFile
	dirs      map[string]bool
	renameErr error
	mkdirs    []string
}

func newFakeDisk() *fakeDisk {
	return &fakeDisk{files: map[string]*fakeFile{}, dirs: map[string]bool{}}
}

func (d *fakeDisk) put(path string, t tags.FieldSet) *fakeFile {
	ff := &fakeFile{}
	ff.store(&t)
	d.files[path] = ff
	d.dirs[filepath.Dir(path)] = true
	return ff
}

func (ff *fakeFile) store(t *tags.FieldSet) {
	c := t.Clone()
	ff.track, ff.trackTotal = tags.SplitNumberPair(c.Track)
	ff.disc, ff.discTotal = tags.SplitNumberPair(c.Disc)
	c.Track, c.Disc = "", ""
	ff.tag = *c
}

func (ff *fakeFile) load() tags.FieldSet {
	t := *ff.tag.Clone()
	t.Track = tags.JoinNumberPair(ff.track, ff.trackTotal)
	t.Disc = tags.JoinNumberPair(ff.disc, ff.discTotal)
	return t
}

type fakeInfo struct {
	name string
	dir  bool
}

func (i fakeInfo) Name() string       { return i.name }
func (i fakeInfo) Size() int64        { return 1024 }
func (i fakeInfo) Mode() fs.FileMode  { return 0o644 }
func (i fakeInfo) ModTime() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
func (i fakeInfo) IsDir() bool        { return i.dir }
func (i fakeInfo) Sys() any           { return nil }

func (d *fakeDisk) Stat(path string) (fs.FileInfo, error) {
	if _, ok := d.files[path]; ok {
		return fakeInfo{name: filepath.Base(path)}, nil
	}
	if d.dirs[path] {
		return fakeInfo{name: filepath.Base(path), dir: true}, nil
	}
	return nil, fs.ErrNotExist
}

func (d *fakeDisk) Rename(oldPath, newPath string) error {
	if d.renameErr != nil {
		return d.renameErr
	}
	ff, ok := d.files[oldPath]
	if !ok {
		return fs.ErrNotExist
	}
	delete(d.files, oldPath)
	d.files[newPath] = ff
	return nil
}

func (d *fakeDisk) MkdirAll(path string, _ fs.FileMode) error {
	d.mkdirs = append(d.mkdirs, path)
	d.dirs[path] = true
	return nil
}

func (d *fakeDisk) Exists(path string) bool {
	_, ok := d.files[path]
	return ok || d.dirs[path]
}

type fakeCodec struct {
	disk *fakeDisk
}

func (c fakeCodec) Read(path string, _ tags.Options) (*tags.FileInfo, error) {
	ff, ok := c.disk.files[path]
	if !ok {
		return nil, fmt.Errorf("open file: %w", fs.ErrNotExist)
	}
	if ff.corrupt {
		return nil, &tags.TagError{Path: path, Format: "fake", Reason: "bad header"}
	}
	return &tags.FileInfo{
		Tag:     ff.load(),
		Audio:   tags.Properties{Format: "Fake", Duration: time.Minute, SampleRate: 44100},
		Upgrade: ff.upgrade,
	}, nil
}

func (c fakeCodec) Write(path string, t *tags.FieldSet, _ tags.Options) error {
	ff, ok := c.disk.files[path]
	if !ok {
		return fmt.Errorf("open file: %w", fs.ErrNotExist)
	}
	if ff.failWrite {
		return errDiskFull
	}
	ff.store(t)
	ff.upgrade = false
	ff.writes++
	return nil
}

func (fakeCodec) DisplayInfo(p *tags.Properties) tags.DisplayInfo {
	return p.Display("Fake")
}

func (fakeCodec) UnsupportedFields() tags.FieldMask {
	return tags.MaskOf(tags.FieldURL)
}

func fakeRegistry(t *testing.T, disk *fakeDisk) *format.Registry {
	t.Helper()
	reg := format.NewRegistry()
	require.NoError(t, reg.Register(&format.Descriptor{
		Extension:   ".mp3",
		FormatLabel: "Fake",
		TagLabel:    "Fake tag",
		Codec:       fakeCodec{disk: disk},
	}))
	return reg
}

type testSettings struct {
	policy  sanitize.Policy
	extCase ExtCase
}

func (s testSettings) RenamePolicy() sanitize.Policy { return s.policy }
func (s testSettings) ExtensionCase() ExtCase        { return s.extCase }
func (testSettings) SplitFields() tags.FieldMask     { return 0 }
func (testSettings) SplitDelimiter() string          { return tags.DefaultDelimiter }

func openFile(t *testing.T, disk *fakeDisk, path string, opts ...Option) *File {
	t.Helper()
	opts = append([]Option{WithFS(disk)}, opts...)
	f := NewFile(path, fakeRegistry(t, disk), opts...)
	require.NoError(t, f.Read())
	return f
}

func sampleTag() tags.FieldSet {
	return tags.FieldSet{
		Title:  "Song",
		Artist: "Artist",
		Album:  "Album",
		Track:  "3/12",
		Disc:   "1/2",
		Year:   "2001",
	}
}

// singlePictureCodec stores only the first picture, like formats with one
// cover slot.
type singlePictureCodec struct {
	fakeCodec
}

func (c singlePictureCodec) Write(path string, t *tags.FieldSet, opts tags.Options) error {
	stored := t.Clone()
	if len(stored.Pictures) > 1 {
		stored.Pictures = stored.Pictures[:1]
	}
	return c.fakeCodec.Write(path, stored, opts)
}

func (singlePictureCodec) SupportsMultiplePictures() bool { return false }

func singlePictureRegistry(t *testing.T, disk *fakeDisk) *format.Registry {
	t.Helper()
	reg := format.NewRegistry()
	require.NoError(t, reg.Register(&format.Descriptor{
		Extension:   ".wv",
		FormatLabel: "Fake single picture",
		TagLabel:    "Fake tag",
		Codec:       singlePictureCodec{fakeCodec{disk: disk}},
	}))
	return reg
}
