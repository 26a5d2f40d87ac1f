package format

import (
	"path/filepath"
	"slices"
	"strings"
)

// Registry is a table of descriptors keyed by extension.
//
// Register and Unregister must not run concurrently with anything else;
// populate the registry once at startup, then only look up.
type Registry struct {
	descs []*Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds d. Extensions are expected to be unique; a duplicate is
// stored but never returned by Lookup.
func (r *Registry) Register(d *Descriptor) error {
	if d == nil || d.Extension == "" {
		return ErrEmptyExtension
	}
	if d.Codec == nil {
		return ErrNoCodec
	}
	r.descs = append(r.descs, d)
	return nil
}

// Unregister removes d. It reports whether d was registered.
func (r *Registry) Unregister(d *Descriptor) bool {
	i := slices.Index(r.descs, d)
	if i < 0 {
		return false
	}
	r.descs = slices.Delete(r.descs, i, i+1)
	return true
}

// Lookup returns the descriptor whose extension matches the one of
// filename, ignoring case. Names without extension and unknown extensions
// yield Unsupported.
func (r *Registry) Lookup(filename string) *Descriptor {
	if r == nil {
		return Unsupported
	}
	ext := Extension(filename)
	if ext == "" {
		return Unsupported
	}
	for _, d := range r.descs {
		if strings.EqualFold(d.Extension, ext) {
			return d
		}
	}
	return Unsupported
}

// Descriptors lists the registered descriptors in registration order.
func (r *Registry) Descriptors() []*Descriptor {
	return slices.Clone(r.descs)
}

// Extension returns the substring of the leaf of filename starting at its
// last dot, or "" if it has none.
func Extension(filename string) string {
	if filename == "" {
		return ""
	}
	leaf := filepath.Base(filename)
	i := strings.LastIndexByte(leaf, '.')
	if i < 0 {
		return ""
	}
	return leaf[i:]
}
