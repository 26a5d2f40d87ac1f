package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/llehouerou/tagger/internal/record"
	"github.com/llehouerou/tagger/internal/tags"
)

func (a *App) showCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "show PATH...",
		Short: "Print the tags and audio properties of files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			list, err := a.openList(args)
			if err != nil {
				return err
			}
			for i, f := range list.Files() {
				if i > 0 {
					fmt.Fprintln(a.out)
				}
				a.printFile(f, all)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Also print empty fields")
	return cmd
}

func (a *App) printFile(f *record.File, all bool) {
	d := f.Descriptor()
	fmt.Fprintf(a.out, "%s  %s\n", a.styles.header.Render(f.Path()), a.styles.dim.Render(d.FormatLabel+", "+d.TagLabel))
	if f.ForceSave() {
		fmt.Fprintln(a.out, a.styles.pending.Render("  tag will be upgraded on next save"))
	}

	a.styles.writeRows(a.out, "  ", infoRows(f.DisplayInfo()))
	fmt.Fprintln(a.out)

	tag := f.Tag()
	unsupported := d.UnsupportedFields()
	var rows []row
	for _, field := range tags.Fields() {
		if unsupported.Has(field) {
			continue
		}
		if field == tags.FieldPictures {
			for _, p := range tag.Pictures {
				rows = append(rows, row{label: "picture", value: pictureSummary(p)})
			}
			continue
		}
		if v := tag.Get(field); v != "" || all {
			rows = append(rows, row{label: field.String(), value: v})
		}
	}
	if len(rows) == 0 {
		fmt.Fprintln(a.out, a.styles.dim.Render("  no tags"))
		return
	}
	a.styles.writeRows(a.out, "  ", rows)
}

func infoRows(info tags.DisplayInfo) []row {
	rows := []row{{label: "format", value: info.Description}}
	if info.Version != "" {
		rows = append(rows, row{label: info.VersionLabel, value: info.Version})
	}
	for _, r := range []row{
		{label: "bitrate", value: info.Bitrate},
		{label: "sample rate", value: info.SampleRate},
		{label: info.ModeLabel, value: info.Mode},
		{label: "length", value: info.Duration},
		{label: "size", value: info.Size},
	} {
		if r.label != "" && r.value != "" {
			rows = append(rows, r)
		}
	}
	return rows
}

func pictureSummary(p tags.Picture) string {
	s := p.MIMEType + ", " + tags.FormatSize(int64(len(p.Data))) + ", type " + strconv.Itoa(int(p.Type))
	if p.Description != "" {
		s += ", " + strconv.Quote(p.Description)
	}
	return s
}
