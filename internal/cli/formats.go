package cli

import (
	"github.com/spf13/cobra"
)

func (a *App) formatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the supported file extensions",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			var rows []row
			for _, d := range a.reg.Descriptors() {
				value := d.FormatLabel + ", " + d.TagLabel
				if !d.SupportsMultiplePictures() {
					value += ", one picture"
				}
				rows = append(rows, row{label: d.Extension, value: value})
			}
			a.styles.writeRows(a.out, "", rows)
			return nil
		},
	}
}
