package review

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// WriteMarkdown renders the report for humans and PR comments.
func (r *Report) WriteMarkdown(w io.Writer) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Apex Review `%s`\n\n", r.ID))

	sb.WriteString("## Run\n\n")
	sb.WriteString(fmt.Sprintf("- **Provider:** %s\n", r.Provider))
	sb.WriteString(fmt.Sprintf("- **Model:** %s\n", r.Model))
	sb.WriteString(fmt.Sprintf("- **Started:** %s\n", r.StartedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("- **Duration:** %s\n", r.Duration().Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("- **Files:** %d (%d failed)\n", len(r.Files), r.FailedFiles()))
	sb.WriteString(fmt.Sprintf("- **Findings:** %d\n", r.TotalFindings()))
	sb.WriteString(fmt.Sprintf("- **Tokens:** %d in / %d out\n", r.TotalUsage.InputTokens, r.TotalUsage.OutputTokens))
	sb.WriteString(fmt.Sprintf("- **Estimated cost:** $%s\n\n", r.TotalCostUSD.StringFixed(4)))

	for _, f := range r.Files {
		sb.WriteString(fmt.Sprintf("## %s\n\n", f.Path))

		if f.Failed {
			sb.WriteString(fmt.Sprintf("**Review failed after %d attempt(s):** %s\n\n", f.Attempts, f.Error))
			continue
		}

		if f.Summary != "" {
			sb.WriteString(f.Summary)
			sb.WriteString("\n\n")
		}

		if len(f.Findings) == 0 {
			sb.WriteString("*No findings.*\n\n")
			continue
		}

		sb.WriteString("| Line | Severity | Category | Message | Suggestion |\n")
		sb.WriteString("|------|----------|----------|---------|------------|\n")
		for _, fd := range f.Findings {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
				fd.Line, fd.Severity, fd.Category, mdCell(fd.Message), mdCell(fd.Suggestion)))
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteJSON renders the report as indented JSON for machine consumers.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// mdCell keeps model-written text from breaking the findings table.
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
