// Package record tracks audio files opened for editing: their name and tag,
// the edits made to them, and what has been written back to disk.
package record

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/tagger/internal/format"
	"github.com/llehouerou/tagger/internal/history"
	"github.com/llehouerou/tagger/internal/sanitize"
	"github.com/llehouerou/tagger/internal/tags"
)

// ErrNotRead is returned by operations that need the file's tag before
// Read succeeded.
var ErrNotRead = errors.New("file has not been read")

// File is one audio file being edited. Its name and its tag each have an
// undo history; the saved state of each history is what is on disk.
//
// A File is not safe for concurrent use.
type File struct {
	disk     string // path of the file on disk
	root     string
	reg      *format.Registry
	fs       FS
	settings Settings
	log      zerolog.Logger
	seq      *history.Sequence

	desc      *format.Descriptor
	name      *history.History[Name]
	tag       *history.History[*tags.FieldSet]
	props     tags.Properties
	size      int64
	modTime   time.Time
	forceSave bool
	index     int
}

// Option configures a File.
type Option func(*File)

// WithFS sets the file system. The default is OSFS.
func WithFS(fsys FS) Option {
	return func(f *File) { f.fs = fsys }
}

// WithSettings sets the user preferences. The default is DefaultSettings.
func WithSettings(s Settings) Option {
	return func(f *File) { f.settings = s }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(f *File) { f.log = l }
}

// WithSequence shares a key sequence with other files so their edits are
// ordered against each other.
func WithSequence(seq *history.Sequence) Option {
	return func(f *File) { f.seq = seq }
}

// WithRoot protects root from sanitizing when the file is renamed.
func WithRoot(root string) Option {
	return func(f *File) {
		if root != "" {
			root = filepath.Clean(NewName(root).Path())
		}
		f.root = root
	}
}

// NewFile returns a File for path. It does no I/O; call Read.
func NewFile(path string, reg *format.Registry, opts ...Option) *File {
	f := &File{
		disk:     path,
		reg:      reg,
		fs:       OSFS{},
		settings: DefaultSettings{},
		log:      zerolog.Nop(),
		desc:     format.Unsupported,
		name:     history.New(NewName(path), Name.Equal),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.seq == nil {
		f.seq = &history.Sequence{}
	}
	return f
}

// Read loads the tag and audio properties. On success both histories
// restart from what was read. On failure the File is left as it was.
func (f *File) Read() error {
	fi, err := f.fs.Stat(f.disk)
	if err != nil {
		return &IOError{Op: "stat", Path: f.disk, Err: err}
	}
	if fi.IsDir() {
		return &IOError{Op: "read", Path: f.disk, Err: errIsDir}
	}

	desc := f.reg.Lookup(f.disk)
	if !desc.IsSupported() {
		return fmt.Errorf("read %s: %w", f.disk, format.ErrUnsupportedFormat)
	}
	info, err := desc.Read(f.disk, tagOptions(f.settings))
	if err != nil {
		var tagErr *tags.TagError
		if errors.As(err, &tagErr) {
			return err
		}
		return &IOError{Op: "read", Path: f.disk, Err: err}
	}

	t := info.Tag.Clone()
	f.desc = desc
	f.name = history.New(NewName(f.disk), Name.Equal)
	f.tag = history.New(t, (*tags.FieldSet).Equal)
	f.props = info.Audio
	f.size = fi.Size()
	f.modTime = fi.ModTime()
	f.forceSave = info.Upgrade

	f.log.Debug().
		Str("path", f.disk).
		Str("format", desc.FormatLabel).
		Bool("force_save", f.forceSave).
		Msg("read file")
	return nil
}

func (f *File) loaded() bool {
	return f.tag != nil
}

// ApplyChanges records a new name, a new tag, or both as one edit. A nil
// argument leaves that part alone. The File takes ownership of tag; fields
// the format can't store are cleared from it, and formats holding a single
// picture keep only the first. It reports whether anything changed.
func (f *File) ApplyChanges(name *Name, tag *tags.FieldSet) bool {
	if !f.loaded() {
		return false
	}
	key := f.seq.Next()

	var nameChanged, tagChanged bool
	if name != nil {
		_, nameChanged = f.name.Apply(NewName(name.Path()), key)
	}
	if tag != nil {
		tag.Clear(f.desc.UnsupportedFields())
		if len(tag.Pictures) > 1 && !f.desc.SupportsMultiplePictures() {
			tag.Pictures = tag.Pictures[:1]
		}
		_, tagChanged = f.tag.Apply(tag, key)
	}
	if !nameChanged && !tagChanged {
		return false
	}

	// a new edit ends the redo chain of both parts
	if !nameChanged {
		f.name.DropRedo()
	}
	if !tagChanged {
		f.tag.DropRedo()
	}
	return true
}

// UndoKey returns the key of the edit Undo would revert, or zero.
func (f *File) UndoKey() history.Key {
	if !f.loaded() {
		return 0
	}
	return max(f.name.UndoKey(), f.tag.UndoKey())
}

// RedoKey returns the key of the edit Redo would reapply, or zero.
func (f *File) RedoKey() history.Key {
	if !f.loaded() {
		return 0
	}
	n, t := f.name.RedoKey(), f.tag.RedoKey()
	switch {
	case n == 0:
		return t
	case t == 0:
		return n
	}
	return min(n, t)
}

// Undo reverts the most recent edit, on the name, the tag or both.
func (f *File) Undo() bool {
	key := f.UndoKey()
	if key == 0 {
		return false
	}
	if f.name.UndoKey() == key {
		f.name.Undo()
	}
	if f.tag.UndoKey() == key {
		f.tag.Undo()
	}
	return true
}

// Redo reapplies the oldest undone edit.
func (f *File) Redo() bool {
	key := f.RedoKey()
	if key == 0 {
		return false
	}
	if f.name.RedoKey() == key {
		f.name.Redo()
	}
	if f.tag.RedoKey() == key {
		f.tag.Redo()
	}
	return true
}

// IsSaved reports whether nothing needs writing.
func (f *File) IsSaved() bool {
	return f.IsNameSaved() && f.IsTagSaved()
}

// IsNameSaved reports whether the file is on disk under its current name.
func (f *File) IsNameSaved() bool {
	return f.name.IsSaved()
}

// IsTagSaved reports whether the tag on disk matches the current one. A
// file whose tag must be rewritten in a newer representation is never
// saved until SaveTag succeeds.
func (f *File) IsTagSaved() bool {
	if !f.loaded() {
		return true
	}
	return f.tag.IsSaved() && !f.forceSave
}

// ForceSave reports whether the tag must be rewritten even if unchanged.
func (f *File) ForceSave() bool {
	return f.forceSave
}

// SaveTag writes the current tag to disk. On failure nothing changes.
func (f *File) SaveTag() error {
	if !f.loaded() {
		return ErrNotRead
	}
	if err := f.desc.Write(f.disk, f.tag.Current(), tagOptions(f.settings)); err != nil {
		var tagErr *tags.TagError
		if errors.As(err, &tagErr) {
			return err
		}
		return &IOError{Op: "write tag", Path: f.disk, Err: err}
	}
	f.tag.MarkSaved()
	f.forceSave = false
	f.refreshStat()

	f.log.Info().Str("path", f.disk).Msg("tag saved")
	return nil
}

// Rename moves the file on disk to its current name, sanitized with the
// configured policy. The extension of the file on disk is kept, in the
// configured case. Rename refuses to replace another file.
func (f *File) Rename() error {
	if !f.loaded() {
		return ErrNotRead
	}
	target := f.Target()
	if target == f.name.Saved() {
		f.name.Amend(target)
		return nil
	}

	src, dst := f.disk, target.Path()
	if f.fs.Exists(dst) && !f.sameFile(src, dst) {
		return &IOError{Op: "rename", Path: dst, Err: ErrTargetExists}
	}
	if target.Dir != "" {
		if err := f.fs.MkdirAll(target.Dir, 0o755); err != nil {
			return &IOError{Op: "create directory", Path: target.Dir, Err: err}
		}
	}
	if err := f.fs.Rename(src, dst); err != nil {
		return &IOError{Op: "rename", Path: src, Err: err}
	}

	f.name.Amend(target)
	f.name.MarkSaved()
	f.disk = dst

	f.log.Info().Str("from", src).Str("to", dst).Msg("file renamed")
	return nil
}

// Save writes whatever is unsaved: the tag first, then the name.
func (f *File) Save() error {
	if !f.IsTagSaved() {
		if err := f.SaveTag(); err != nil {
			return err
		}
	}
	if !f.IsNameSaved() {
		return f.Rename()
	}
	return nil
}

// Target returns the name Rename would move the file to.
func (f *File) Target() Name {
	p := f.settings.RenamePolicy()
	cur, saved := f.name.Current(), f.name.Saved()

	dir := cur.Dir
	if dir != "" {
		dir = sanitize.SanitizePath(dir, f.protectedPrefix(dir), p)
	}

	stem, ext := cur.Stem(), cur.Ext()
	if !strings.EqualFold(ext, saved.Ext()) {
		stem, ext = cur.Leaf, saved.Ext()
	}
	leaf := sanitize.Sanitize(stem, 0, p) + f.settings.ExtensionCase().Apply(ext)
	return Name{Dir: dir, Leaf: leaf}
}

// protectedPrefix returns the length of the longest directory already on
// disk that dir starts with.
func (f *File) protectedPrefix(dir string) int {
	n := 0
	for _, p := range []string{f.root, f.name.Saved().Dir} {
		if within(dir, p) {
			n = max(n, len(p))
		}
	}
	return n
}

// UpdateDirectoryName follows the rename of a directory from oldPath to
// newPath done outside the editor. Only the saved name is corrected: a
// pending rename stays as the user typed it. When root is set, files
// outside it are ignored. It reports whether the file was affected.
func (f *File) UpdateDirectoryName(oldPath, newPath, root string) bool {
	oldPath = filepath.Clean(NewName(oldPath).Path())
	newPath = filepath.Clean(NewName(newPath).Path())
	if root != "" && !within(f.name.Saved().Dir, filepath.Clean(root)) {
		return false
	}

	changed := f.name.UpdateSaved(func(n Name) (Name, bool) {
		return n.moveDir(oldPath, newPath)
	})
	if !changed {
		return false
	}
	f.disk = f.name.Saved().Path()
	if moved, ok := (Name{Dir: f.root}).moveDir(oldPath, newPath); ok {
		f.root = moved.Dir
	}

	f.log.Debug().Str("path", f.disk).Msg("directory renamed")
	return true
}

func (f *File) sameFile(a, b string) bool {
	if a == b {
		return true
	}
	fa, err := f.fs.Stat(a)
	if err != nil {
		return false
	}
	fb, err := f.fs.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(fa, fb)
}

func (f *File) refreshStat() {
	fi, err := f.fs.Stat(f.disk)
	if err != nil {
		f.log.Warn().Err(err).Str("path", f.disk).Msg("stat after write")
		return
	}
	f.size = fi.Size()
	f.modTime = fi.ModTime()
}

// Path returns where the file currently is on disk.
func (f *File) Path() string {
	return f.disk
}

// Root returns the protected root the file lies in, or "" when it has none
// or was moved out of it.
func (f *File) Root() string {
	if !within(f.name.Saved().Dir, f.root) {
		return ""
	}
	return f.root
}

// Name returns the name being edited.
func (f *File) Name() Name {
	return f.name.Current()
}

// SavedName returns the name of the file on disk.
func (f *File) SavedName() Name {
	return f.name.Saved()
}

// Tag returns a copy of the tag being edited.
func (f *File) Tag() *tags.FieldSet {
	if !f.loaded() {
		return &tags.FieldSet{}
	}
	return f.tag.Current().Clone()
}

// SavedTag returns a copy of the tag on disk.
func (f *File) SavedTag() *tags.FieldSet {
	if !f.loaded() {
		return &tags.FieldSet{}
	}
	return f.tag.Saved().Clone()
}

// Descriptor returns the format of the file, format.Unsupported before
// Read.
func (f *File) Descriptor() *format.Descriptor {
	return f.desc
}

// Properties returns the audio properties read from the file.
func (f *File) Properties() tags.Properties {
	return f.props
}

// DisplayInfo returns the audio properties as display strings.
func (f *File) DisplayInfo() tags.DisplayInfo {
	p := f.props
	if p.Size == 0 {
		p.Size = f.size
	}
	return f.desc.DisplayInfo(&p)
}

// Size returns the file size at the last read or save.
func (f *File) Size() int64 {
	return f.size
}

// ModTime returns the modification time at the last read or save.
func (f *File) ModTime() time.Time {
	return f.modTime
}

// Index returns the position the file was opened at in its List.
func (f *File) Index() int {
	return f.index
}
