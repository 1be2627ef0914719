package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/extraction"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/scorer"
)

type scoreOptions struct {
	resumePath string
	jdPath     string
	maxChars   int
	asJSON     bool
}

type scoreOutput struct {
	scorer.Report
	Breakdown scorer.Breakdown `json:"breakdown"`
}

func newScoreCmd(root *rootOptions) *cobra.Command {
	opts := &scoreOptions{}
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a resume file against a job description",
		Long:  "Reads a resume (PDF, DOCX, or plain text) and a plain-text job description, then prints the match score, verdict, matching skills, and missing skills. Pass - to read one of them from stdin.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd, root, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.resumePath, "resume", "r", "", "Path to the resume file, or - for stdin (required)")
	cmd.Flags().StringVarP(&opts.jdPath, "jd", "j", "", "Path to the job description text, or - for stdin (required)")
	cmd.Flags().IntVar(&opts.maxChars, "max-chars", 200000, "Characters of each document to analyse")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the report as JSON")

	if err := cmd.MarkFlagRequired("resume"); err != nil {
		panic(fmt.Sprintf("failed to mark resume flag as required: %v", err))
	}
	if err := cmd.MarkFlagRequired("jd"); err != nil {
		panic(fmt.Sprintf("failed to mark jd flag as required: %v", err))
	}
	return cmd
}

func runScore(cmd *cobra.Command, root *rootOptions, opts *scoreOptions) error {
	if opts.resumePath == "-" && opts.jdPath == "-" {
		return errors.New("only one of --resume and --jd can read from stdin")
	}
	ext, err := root.extractor()
	if err != nil {
		return err
	}

	resumeData, err := readInput(cmd.InOrStdin(), opts.resumePath)
	if err != nil {
		return err
	}
	resume, err := extraction.Extract(opts.resumePath, resumeData)
	if err != nil {
		return fmt.Errorf("failed to extract text from %s: %w", opts.resumePath, err)
	}
	jdData, err := readInput(cmd.InOrStdin(), opts.jdPath)
	if err != nil {
		return err
	}
	jd := strings.ToValidUTF8(string(jdData), "")
	if strings.TrimSpace(resume.Text) == "" || strings.TrimSpace(jd) == "" {
		return errors.New("missing data: both the resume and the job description need readable text")
	}

	res := scorer.New(ext, opts.maxChars).Score(resume.Text, jd)
	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(scoreOutput{Report: scorer.Present(res), Breakdown: res.Breakdown})
	}
	return printReport(out, res)
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return extraction.ReadLimited(stdin, maxDocumentBytes)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return extraction.ReadLimited(f, maxDocumentBytes)
}

func printReport(w io.Writer, res scorer.Result) error {
	rep := scorer.Present(res)
	var b strings.Builder
	fmt.Fprintf(&b, "Match score: %.2f%%\n", rep.MatchScore)
	fmt.Fprintf(&b, "Verdict:     %s\n", rep.Verdict)
	fmt.Fprintf(&b, "Skill overlap: %.2f%%  Lexical similarity: %.2f%%\n",
		res.Breakdown.SkillOverlap, res.Breakdown.LexicalSimilarity)
	if !res.Breakdown.LexicalAvailable {
		b.WriteString("Lexical similarity unavailable; score uses skill overlap only.\n")
	}
	writeList(&b, "Matching skills", rep.MatchingSkills)
	writeList(&b, "Missing skills", rep.MissingSkills)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeList(b *strings.Builder, title string, items []string) {
	fmt.Fprintf(b, "\n%s (%d):\n", title, len(items))
	if len(items) == 0 {
		b.WriteString("  none\n")
		return
	}
	for _, s := range items {
		fmt.Fprintf(b, "  - %s\n", s)
	}
}
