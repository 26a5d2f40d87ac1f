package record

import (
	"fmt"
	"strings"

	"github.com/llehouerou/tagger/internal/sanitize"
	"github.com/llehouerou/tagger/internal/tags"
)

// Settings are the user preferences a File consults. They are read on
// every save or rename, so changes apply without reopening files.
type Settings interface {
	RenamePolicy() sanitize.Policy
	ExtensionCase() ExtCase
	SplitFields() tags.FieldMask
	SplitDelimiter() string
}

// ExtCase selects the case of extensions written by Rename.
type ExtCase int

const (
	ExtLower ExtCase = iota
	ExtUpper
	ExtUnchanged
)

func (c ExtCase) String() string {
	switch c {
	case ExtLower:
		return "lower"
	case ExtUpper:
		return "upper"
	case ExtUnchanged:
		return "unchanged"
	}
	return fmt.Sprintf("ExtCase(%d)", int(c))
}

// ParseExtCase parses "lower", "upper" or "unchanged".
func ParseExtCase(s string) (ExtCase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lower":
		return ExtLower, nil
	case "upper":
		return ExtUpper, nil
	case "unchanged":
		return ExtUnchanged, nil
	}
	return ExtLower, fmt.Errorf("unknown extension case %q", s)
}

// Apply returns ext in case c.
func (c ExtCase) Apply(ext string) string {
	switch c {
	case ExtLower:
		return strings.ToLower(ext)
	case ExtUpper:
		return strings.ToUpper(ext)
	}
	return ext
}

// DefaultSettings sanitizes to ASCII with underscores, lower-cases
// extensions and splits no field.
type DefaultSettings struct{}

func (DefaultSettings) RenamePolicy() sanitize.Policy { return sanitize.DefaultPolicy() }
func (DefaultSettings) ExtensionCase() ExtCase        { return ExtLower }
func (DefaultSettings) SplitFields() tags.FieldMask   { return 0 }
func (DefaultSettings) SplitDelimiter() string        { return tags.DefaultDelimiter }

func tagOptions(s Settings) tags.Options {
	return tags.Options{SplitFields: s.SplitFields(), Delimiter: s.SplitDelimiter()}
}
