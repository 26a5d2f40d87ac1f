package tags

import (
	"fmt"

	"go.senan.xyz/taglib"
)

// Write replaces the property map and cover image of path with t.
func (c TagLib) Write(path string, t *FieldSet, opts Options) error {
	tags := commentMap(writeComments(t, opts, c.CompositeNumbers))

	// Clear removes any existing tags not in our map
	if err := taglib.WriteTags(path, tags, taglib.Clear); err != nil {
		return fmt.Errorf("write tags: %w", err)
	}

	var img []byte
	if len(t.Pictures) > 0 {
		img = t.Pictures[0].Data
	}
	// an empty image removes the existing one
	if err := taglib.WriteImage(path, img); err != nil {
		return fmt.Errorf("write cover art: %w", err)
	}
	return nil
}
