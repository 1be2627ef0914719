// Package main implements matchctl, a command-line front end to the resume
// matcher that scores local files without running the service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/skills"
)

const maxDocumentBytes = 10 << 20

type rootOptions struct {
	taxonomyPath string
	mode         string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "matchctl",
		Short:         "Score resumes against job descriptions",
		Long:          "matchctl extracts skills from a resume and a job description, then reports a weighted match score, verdict, and skill gaps.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.taxonomyPath, "taxonomy", "", "Path to a YAML skill taxonomy (default: built-in)")
	root.PersistentFlags().StringVar(&opts.mode, "mode", string(skills.ModeSubstring), "Skill match mode: substring or word_boundary")

	root.AddCommand(newScoreCmd(opts), newTaxonomyCmd(opts), newLoadtestCmd())
	return root
}

func (o *rootOptions) extractor() (*skills.Extractor, error) {
	mode, err := skills.ParseMatchMode(o.mode)
	if err != nil {
		return nil, err
	}
	tax := skills.DefaultTaxonomy()
	if o.taxonomyPath != "" {
		if tax, err = skills.LoadTaxonomy(o.taxonomyPath); err != nil {
			return nil, fmt.Errorf("failed to load taxonomy %s: %w", o.taxonomyPath, err)
		}
	}
	return skills.NewExtractor(tax, mode), nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
