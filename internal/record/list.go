package record

import (
	"errors"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog"

	"github.com/llehouerou/tagger/internal/format"
	"github.com/llehouerou/tagger/internal/history"
)

// List is the set of files open in one editing session. Its files share a
// key sequence, so Undo and Redo walk the edits of every file in the order
// they were made.
type List struct {
	reg   *format.Registry
	opts  []Option
	root  string
	log   zerolog.Logger
	files []*File
	next  int
}

// NewList returns an empty List. opts apply to every file it opens.
func NewList(reg *format.Registry, opts ...Option) *List {
	seq := &history.Sequence{}
	opts = append(slices.Clone(opts), WithSequence(seq))
	proto := NewFile("", reg, opts...)
	return &List{
		reg:  reg,
		opts: opts,
		root: proto.root,
		log:  proto.log,
	}
}

// Add opens and reads path. A path already in the list returns the file
// opened before.
func (l *List) Add(path string) (*File, error) {
	return l.add(path)
}

func (l *List) add(path string, extra ...Option) (*File, error) {
	clean := filepath.Clean(path)
	for _, f := range l.files {
		if f.Path() == clean {
			return f, nil
		}
	}

	f := NewFile(clean, l.reg, append(slices.Clone(l.opts), extra...)...)
	if err := f.Read(); err != nil {
		return nil, err
	}
	f.index = l.next
	l.next++
	l.files = append(l.files, f)
	return f, nil
}

// AddDir opens every supported file below root. Files that fail to read
// are skipped and their errors joined into the returned error, along with
// the number of files added. root becomes the protected root of its files
// unless it lies inside the root the list was created with.
func (l *List) AddDir(root string) (int, error) {
	var extra []Option
	if !within(filepath.Clean(root), l.root) {
		extra = append(extra, WithRoot(root))
	}
	var errs []error
	added := 0
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, &IOError{Op: "scan", Path: path, Err: err})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !l.reg.Lookup(path).IsSupported() {
			return nil
		}
		if _, err := l.add(path, extra...); err != nil {
			l.log.Warn().Err(err).Str("path", path).Msg("skip file")
			errs = append(errs, err)
			return nil
		}
		added++
		return nil
	})
	if walkErr != nil {
		errs = append(errs, walkErr)
	}
	l.log.Debug().Str("root", root).Int("files", added).Msg("directory added")
	return added, errors.Join(errs...)
}

// Files returns the open files in the order they were added.
func (l *List) Files() []*File {
	return slices.Clone(l.files)
}

// Len returns the number of open files.
func (l *List) Len() int {
	return len(l.files)
}

// Get returns the file with the given index, or nil.
func (l *List) Get(index int) *File {
	for _, f := range l.files {
		if f.index == index {
			return f
		}
	}
	return nil
}

// Undo reverts the most recent edit across all files. It returns the file
// it touched, or nil if there was nothing to undo.
func (l *List) Undo() *File {
	var target *File
	var best history.Key
	for _, f := range l.files {
		if k := f.UndoKey(); k > best {
			target, best = f, k
		}
	}
	if target == nil {
		return nil
	}
	target.Undo()
	return target
}

// Redo reapplies the oldest undone edit across all files.
func (l *List) Redo() *File {
	var target *File
	var best history.Key
	for _, f := range l.files {
		if k := f.RedoKey(); k != 0 && (best == 0 || k < best) {
			target, best = f, k
		}
	}
	if target == nil {
		return nil
	}
	target.Redo()
	return target
}

// HasUndo reports whether some file has an edit to undo.
func (l *List) HasUndo() bool {
	return slices.ContainsFunc(l.files, func(f *File) bool { return f.UndoKey() != 0 })
}

// HasRedo reports whether some file has an edit to redo.
func (l *List) HasRedo() bool {
	return slices.ContainsFunc(l.files, func(f *File) bool { return f.RedoKey() != 0 })
}

// Unsaved returns the files with pending changes.
func (l *List) Unsaved() []*File {
	var out []*File
	for _, f := range l.files {
		if !f.IsSaved() {
			out = append(out, f)
		}
	}
	return out
}

// SaveAll saves every unsaved file, one after the other. A failure doesn't
// stop the others; all failures are joined in the returned error.
func (l *List) SaveAll() error {
	var errs []error
	saved := 0
	for _, f := range l.Unsaved() {
		if err := f.Save(); err != nil {
			l.log.Error().Err(err).Str("path", f.Path()).Msg("save failed")
			errs = append(errs, err)
			continue
		}
		saved++
	}
	l.log.Info().Int("saved", saved).Int("failed", len(errs)).Msg("save all")
	return errors.Join(errs...)
}

// UpdateDirectoryName follows a directory rename done outside the editor
// and returns the number of files corrected.
func (l *List) UpdateDirectoryName(oldPath, newPath string) int {
	n := 0
	for _, f := range l.files {
		if f.UpdateDirectoryName(oldPath, newPath, "") {
			n++
		}
	}
	return n
}
