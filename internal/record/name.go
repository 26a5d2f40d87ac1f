package record

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Name is the location of a file split into its directory and leaf name.
// Both parts are NFC-normalized so names typed by the user compare equal
// to names read from disk.
type Name struct {
	Dir  string
	Leaf string
}

// NewName splits path into a Name.
func NewName(path string) Name {
	path = norm.NFC.String(path)
	dir, leaf := filepath.Split(path)
	if dir != "" {
		dir = filepath.Clean(dir)
	}
	return Name{Dir: dir, Leaf: leaf}
}

// Path joins the directory and the leaf.
func (n Name) Path() string {
	if n.Dir == "" {
		return n.Leaf
	}
	return filepath.Join(n.Dir, n.Leaf)
}

// Ext returns the extension of the leaf, dot included.
func (n Name) Ext() string {
	i := strings.LastIndexByte(n.Leaf, '.')
	if i < 0 {
		return ""
	}
	return n.Leaf[i:]
}

// Stem returns the leaf without its extension.
func (n Name) Stem() string {
	return strings.TrimSuffix(n.Leaf, n.Ext())
}

// WithLeaf returns a Name in the same directory. A leaf holding separators
// moves the name into a subdirectory.
func (n Name) WithLeaf(leaf string) Name {
	return NewName(filepath.Join(n.Dir, leaf))
}

// Equal reports whether n and o name the same path.
func (n Name) Equal(o Name) bool {
	return n == o
}

// within reports whether dir is root or lies below it.
func within(dir, root string) bool {
	if root == "" {
		return false
	}
	root = filepath.Clean(root)
	if dir == root {
		return true
	}
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	return strings.HasPrefix(dir, root)
}

// moveDir rewrites the oldDir prefix of n.Dir to newDir.
func (n Name) moveDir(oldDir, newDir string) (Name, bool) {
	if !within(n.Dir, oldDir) {
		return n, false
	}
	rest := strings.TrimPrefix(n.Dir, filepath.Clean(oldDir))
	return Name{Dir: filepath.Join(newDir, rest), Leaf: n.Leaf}, true
}
