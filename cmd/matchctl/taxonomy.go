package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTaxonomyCmd(root *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Print the active skill vocabulary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ext, err := root.extractor()
			if err != nil {
				return err
			}
			tax := ext.Taxonomy()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"skills":      tax.Skills(),
					"ignore":      tax.Ignore(),
					"match_mode":  ext.Mode(),
					"fingerprint": tax.Fingerprint(),
				})
			}
			var b strings.Builder
			fmt.Fprintf(&b, "%d skills (mode %s, fingerprint %s)\n", tax.Len(), ext.Mode(), tax.Fingerprint())
			for _, s := range tax.Skills() {
				fmt.Fprintf(&b, "  %s\n", s)
			}
			if ignore := tax.Ignore(); len(ignore) > 0 {
				fmt.Fprintf(&b, "ignored: %s\n", strings.Join(ignore, ", "))
			}
			_, err = fmt.Fprint(out, b.String())
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the taxonomy as JSON")
	return cmd
}
