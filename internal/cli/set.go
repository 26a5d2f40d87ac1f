package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/llehouerou/tagger/internal/errmsg"
	"github.com/llehouerou/tagger/internal/record"
	"github.com/llehouerou/tagger/internal/tags"
)

type setOptions struct {
	fields    []string
	clear     []string
	picture   string
	folderArt bool
	maxSize   uint
	dryRun    bool
}

// assignment is one parsed FIELD=VALUE flag.
type assignment struct {
	field tags.Field
	value string
}

func (a *App) setCommand() *cobra.Command {
	var opts setOptions
	cmd := &cobra.Command{
		Use:   "set PATH...",
		Short: "Change tag fields and cover art",
		Long: `set changes the tags of every file given, then saves them.

Examples:
  tagger set -f artist="Nina Simone" -f year=1965 *.flac
  tagger set --clear comment --folder-art ~/Music/album`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runSet(args, opts)
		},
	}
	cmd.Flags().StringArrayVarP(&opts.fields, "field", "f", nil, "FIELD=VALUE to set (repeatable)")
	cmd.Flags().StringArrayVar(&opts.clear, "clear", nil, "Field to empty (repeatable)")
	cmd.Flags().StringVar(&opts.picture, "picture", "", "Image file to embed as front cover")
	cmd.Flags().BoolVar(&opts.folderArt, "folder-art", false, "Embed the cover image found next to each file")
	cmd.Flags().UintVar(&opts.maxSize, "max-size", 0, "Scale embedded covers down to fit this many pixels")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "Show the changes without saving")
	return cmd
}

func (a *App) runSet(paths []string, opts setOptions) error {
	assignments, err := parseAssignments(opts.fields)
	if err != nil {
		return err
	}
	var cleared tags.FieldMask
	for _, name := range opts.clear {
		f, ok := tags.ParseField(name)
		if !ok {
			return errmsg.Wrap(errmsg.OpTagSet, name, errors.New("unknown field"))
		}
		cleared |= tags.MaskOf(f)
	}

	var picture *tags.Picture
	if opts.picture != "" {
		p, err := tags.LoadPicture(opts.picture)
		if err != nil {
			return errmsg.Wrap(errmsg.OpPictureLoad, opts.picture, err)
		}
		p, err = a.scale(p, opts.maxSize)
		if err != nil {
			return errmsg.Wrap(errmsg.OpPictureLoad, opts.picture, err)
		}
		picture = &p
	}

	list, err := a.openList(paths)
	if err != nil {
		return err
	}

	changed := 0
	for _, f := range list.Files() {
		tag := f.Tag()
		tag.Clear(cleared)
		for _, as := range assignments {
			tag.Set(as.field, as.value)
		}

		cover := picture
		if cover == nil && opts.folderArt {
			if p, ok := tags.FindFolderArt(f.SavedName().Dir); ok {
				if p, err = a.scale(p, opts.maxSize); err != nil {
					a.log.Warn().Msg(errmsg.FormatWith(errmsg.OpFolderArt, f.SavedName().Dir, err))
				} else {
					cover = &p
				}
			} else {
				a.log.Info().Str("dir", f.SavedName().Dir).Msg("no folder art found")
			}
		}
		if cover != nil {
			tag.Pictures = withFrontCover(tag.Pictures, *cover, f.Descriptor().SupportsMultiplePictures())
		}

		if f.ApplyChanges(nil, tag) {
			changed++
			a.printChanges(f)
		}
	}

	if changed == 0 || opts.dryRun {
		fmt.Fprintf(a.out, "%d of %d files changed\n", changed, list.Len())
		return nil
	}
	return a.save(list)
}

func (a *App) scale(p tags.Picture, maxSize uint) (tags.Picture, error) {
	if maxSize == 0 {
		return p, nil
	}
	return p.Thumbnail(maxSize)
}

func parseAssignments(values []string) ([]assignment, error) {
	out := make([]assignment, 0, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, "=")
		if !ok {
			return nil, errmsg.Wrap(errmsg.OpTagSet, v, errors.New("expected FIELD=VALUE"))
		}
		f, ok := tags.ParseField(name)
		if !ok {
			return nil, errmsg.Wrap(errmsg.OpTagSet, v, errors.New("unknown field"))
		}
		if f == tags.FieldPictures {
			return nil, errmsg.Wrap(errmsg.OpTagSet, v, errors.New("use --picture"))
		}
		out = append(out, assignment{field: f, value: value})
	}
	return out, nil
}

// withFrontCover replaces the front covers of pics with cover. Formats
// holding a single picture keep only the cover.
func withFrontCover(pics []tags.Picture, cover tags.Picture, multiple bool) []tags.Picture {
	if !multiple {
		return []tags.Picture{cover}
	}
	out := []tags.Picture{cover}
	for _, p := range pics {
		if p.Type != tags.PictureFrontCover {
			out = append(out, p)
		}
	}
	return out
}

// printChanges lists the fields of f that differ from the saved tag.
func (a *App) printChanges(f *record.File) {
	fmt.Fprintln(a.out, a.styles.header.Render(f.Path()))
	saved, current := f.SavedTag(), f.Tag()
	var rows []row
	for _, field := range tags.Fields() {
		before, after := saved.Get(field), current.Get(field)
		if field == tags.FieldPictures {
			if !slices.EqualFunc(saved.Pictures, current.Pictures, tags.Picture.Equal) {
				rows = append(rows, row{label: "pictures", value: fmt.Sprintf("%d -> %d", len(saved.Pictures), len(current.Pictures))})
			}
			continue
		}
		if before != after {
			rows = append(rows, row{label: field.String(), value: a.styles.pending.Render(fmt.Sprintf("%q -> %q", before, after))})
		}
	}
	a.styles.writeRows(a.out, "  ", rows)
}
