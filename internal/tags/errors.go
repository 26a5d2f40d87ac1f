package tags

import "fmt"

// TagError is returned when a tag cannot be parsed or serialized. It is
// distinct from I/O errors only in its message; callers treat both as a
// per-file failure.
type TagError struct {
	Path   string
	Format string
	Reason string
	Err    error
}

func (e *TagError) Error() string {
	msg := fmt.Sprintf("%s: %s tag: %s", e.Path, e.Format, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TagError) Unwrap() error {
	return e.Err
}

func tagError(path, format, reason string, err error) error {
	return &TagError{Path: path, Format: format, Reason: reason, Err: err}
}
