package record

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrTargetExists is returned when a rename would replace another file.
var ErrTargetExists = errors.New("target file already exists")

// errIsDir is returned when a directory is opened as an audio file.
var errIsDir = errors.New("is a directory")

// IOError is a file-system failure on one path.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// FS is the file system a File is stored on.
type FS interface {
	Stat(path string) (fs.FileInfo, error)
	Rename(oldPath, newPath string) error
	MkdirAll(path string, perm fs.FileMode) error
	Exists(path string) bool
}

// OSFS is the operating system's file system.
type OSFS struct{}

func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

func (OSFS) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

func (OSFS) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (OSFS) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
