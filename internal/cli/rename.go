package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/llehouerou/tagger/internal/errmsg"
	"github.com/llehouerou/tagger/internal/record"
	"github.com/llehouerou/tagger/internal/rename"
)

func (a *App) renameCommand() *cobra.Command {
	var (
		mask   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "rename PATH...",
		Short: "Rename files from their tags",
		Long: `rename moves every file given to the name its tags produce with a mask.
Slashes in the mask create directories below the root: rename.root from
the config when the file lies in it, else the directory given on the
command line, else the file's own directory.

Placeholders: {title} {subtitle} {artist} {albumartist} {album} {disc}
{disctotal} {year} {originalyear} {track} {tracknumber} {tracktotal}
{genre} {composer} {comment}. Write {{ and }} for literal braces.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if mask == "" {
				mask = a.cfg.RenameMask()
			}
			return a.runRename(args, mask, dryRun)
		},
	}
	cmd.Flags().StringVarP(&mask, "mask", "m", "", "Rename mask (default from config)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the new names without renaming")
	return cmd
}

func (a *App) runRename(paths []string, mask string, dryRun bool) error {
	list, err := a.openList(paths)
	if err != nil {
		return err
	}

	changed := 0
	for _, f := range list.Files() {
		target := rename.Target(f, mask)
		if !f.ApplyChanges(&target, nil) {
			continue
		}
		// the name is only pending here; Target shows the sanitized result
		if f.Target().Equal(f.SavedName()) {
			f.Undo()
			continue
		}
		changed++
		fmt.Fprintf(a.out, "%s\n  -> %s\n", f.SavedName().Path(), a.styles.pending.Render(relTo(f.SavedName().Dir, f.Target().Path())))
	}

	switch {
	case changed == 0:
		fmt.Fprintf(a.out, "all %d files already named by the mask\n", list.Len())
		return nil
	case dryRun:
		fmt.Fprintf(a.out, "%d of %d files would be renamed\n", changed, list.Len())
		return nil
	}
	return a.save(list)
}

func (a *App) mvdirCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mvdir OLD NEW",
		Short: "Move a directory and report the files it held",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runMvdir(args[0], args[1])
		},
	}
}

func (a *App) runMvdir(oldDir, newDir string) error {
	list, err := a.openList([]string{oldDir})
	if err != nil {
		return err
	}

	fsys := record.OSFS{}
	if fsys.Exists(newDir) {
		return errmsg.Wrap(errmsg.OpFolderRename, newDir, os.ErrExist)
	}
	if err := fsys.MkdirAll(filepath.Dir(newDir), 0o755); err != nil {
		return errmsg.Wrap(errmsg.OpFolderRename, newDir, err)
	}
	if err := fsys.Rename(oldDir, newDir); err != nil {
		return errmsg.Wrap(errmsg.OpFolderRename, oldDir, err)
	}

	n := list.UpdateDirectoryName(oldDir, newDir)
	for _, f := range list.Files() {
		fmt.Fprintln(a.out, f.Path())
	}
	fmt.Fprintf(a.out, "%d files moved\n", n)
	return nil
}

// relTo returns path relative to dir when it lies below it.
func relTo(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == ".." || filepath.IsAbs(rel) || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator) {
		return path
	}
	return rel
}
