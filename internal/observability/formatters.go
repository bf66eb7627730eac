// Package observability prints human-readable summaries for the CLI's
// --summary mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-tailor/internal/merge"
	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer writes boxed summaries
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to a terminal; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4)))
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad right-fills s to the box interior width. %-*s counts bytes, which
// misaligns accented names.
func pad(s string) string {
	if n := boxWidth - 4 - utf8.RuneCountInString(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func writeList(sb *strings.Builder, heading string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s:\n", heading)
	for _, item := range items[:min(len(items), limit)] {
		fmt.Fprintf(sb, "  • %s\n", item)
	}
	if len(items) > limit {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-limit)
	}
}

// PrintTailored outputs the headline of a tailored résumé and its change summary.
func (p *Printer) PrintTailored(result *types.TailoredResume) {
	if result == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Candidate:   %s\n", result.Contact.Name)
	fmt.Fprintf(&sb, "Match score: %d/100\n", result.MatchScore)
	fmt.Fprintf(&sb, "Sections:    %d experience, %d projects, %d education\n",
		len(result.Experience), len(result.Projects), len(result.Education))
	sb.WriteString("\n")

	writeList(&sb, "Key improvements", result.Summary.KeyImprovements, maxItemsToShow)
	writeList(&sb, "Keywords added", result.Summary.KeywordsAdded, maxItemsToShow)
	if len(result.Summary.Warnings) > 0 {
		sb.WriteString("\n")
		for _, w := range result.Summary.Warnings {
			fmt.Fprintf(&sb, "⚠ %s\n", w)
		}
	}

	p.printBox("TAILORED RÉSUMÉ", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMergeOutcome outputs each decision of a project merge and the apply counts.
func (p *Printer) PrintMergeOutcome(outcome *merge.Outcome, applied bool) {
	if outcome == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Tier: %s\n\n", outcome.Result.Tier)

	groups := []struct {
		symbol    string
		decisions []types.MergeDecision
	}{
		{"+", outcome.Result.Add},
		{"~", outcome.Result.Update},
		{"=", outcome.Result.Skip},
	}
	for _, g := range groups {
		for _, d := range g.decisions {
			fmt.Fprintf(&sb, "%s %s\n", g.symbol, d.Project.Name)
			if d.Reason != "" {
				fmt.Fprintf(&sb, "  %s\n", d.Reason)
			}
		}
	}

	verb := "Would apply"
	if applied {
		verb = "Applied"
	}
	fmt.Fprintf(&sb, "\n%s: %d added, %d updated, %d skipped",
		verb, outcome.Applied.Added, outcome.Applied.Updated, outcome.Applied.Skipped)

	p.printBox("PROJECT MERGE", sb.String())
}

// PrintProjects outputs parsed projects with their technologies.
func (p *Printer) PrintProjects(projects []types.ParsedProject) {
	if len(projects) == 0 {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d projects:\n\n", len(projects))

	count := min(len(projects), maxItemsToShow)
	for i, project := range projects[:count] {
		fmt.Fprintf(&sb, "• %s\n", project.Name)
		if len(project.Technologies) > 0 {
			fmt.Fprintf(&sb, "  [%s]\n", truncate(strings.Join(project.Technologies, ", "), 40))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(projects) > maxItemsToShow {
		fmt.Fprintf(&sb, "\n... and %d more projects", len(projects)-maxItemsToShow)
	}

	p.printBox("PARSED PROJECTS", sb.String())
}
