package review

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
)

// synthesisPromptData holds the template variables for the comment
// synthesis prompt. Each field maps to a placeholder in
// synthesisPromptTmplText.
type synthesisPromptData struct {
	// Severity is the issue's parsed severity.
	Severity string

	// Title is the issue heading without the severity tag.
	Title string

	// FilePath locates the finding.
	FilePath string

	// StartLine and EndLine bound the affected span.
	StartLine int
	EndLine   int

	// Description explains the finding.
	Description string

	// Suggestion is the suggested fix, possibly empty.
	Suggestion string

	// Language is the natural language the comment should be written
	// in, e.g. "English".
	Language string
}

// reviewPromptData holds the template variables for a reviewer pass
// prompt.
type reviewPromptData struct {
	// Persona selects which review guidance block is rendered.
	Persona string

	// FocusAreas lists what this reviewer pass should look for.
	FocusAreas []string

	// Title and Body describe the pull request under review.
	Title string
	Body  string

	// Diff is the unified diff being reviewed.
	Diff string
}

// approvalPromptData holds the template variables for the approval agent
// prompt.
type approvalPromptData struct {
	// Summary is the synthesized review summary.
	Summary string

	// OpenFindings lists the findings that remain unresolved, one per
	// line, severity-tagged.
	OpenFindings []string
}

// synthesisPromptTmpl is the parsed comment synthesis template,
// initialized once at package load time. Template errors cause a panic at
// startup.
var synthesisPromptTmpl = template.Must(
	template.New("synthesis-prompt").Parse(synthesisPromptTmplText),
)

// reviewPromptTmpl is the parsed reviewer pass template.
var reviewPromptTmpl = template.Must(
	template.New("review-prompt").Parse(reviewPromptTmplText),
)

// approvalPromptTmpl is the parsed approval agent template.
var approvalPromptTmpl = template.Must(
	template.New("approval-prompt").Parse(approvalPromptTmplText),
)

// summaryPromptTmpl is the parsed summarizer template.
var summaryPromptTmpl = template.Must(
	template.New("summary-prompt").Parse(summaryPromptTmplText),
)

// renderSynthesisPrompt executes the synthesis template with the given
// data. On template execution error it falls back to the raw description
// and logs the error.
func renderSynthesisPrompt(ctx context.Context,
	d synthesisPromptData) string {

	var buf bytes.Buffer
	if err := synthesisPromptTmpl.Execute(&buf, d); err != nil {
		log.ErrorS(ctx, "Failed to render synthesis prompt "+
			"template", err, "file", d.FilePath)

		return "Write a short review comment for: " +
			d.Description + "\n"
	}

	return buf.String()
}

// renderReviewPrompt executes the reviewer pass template with the given
// data.
func renderReviewPrompt(ctx context.Context, d reviewPromptData) string {
	var buf bytes.Buffer
	if err := reviewPromptTmpl.Execute(&buf, d); err != nil {
		log.ErrorS(ctx, "Failed to render review prompt template",
			err, "persona", d.Persona)

		return "Review the following diff:\n\n" + d.Diff + "\n"
	}

	return buf.String()
}

// renderApprovalPrompt executes the approval agent template with the
// given data.
func renderApprovalPrompt(ctx context.Context,
	d approvalPromptData) string {

	var buf bytes.Buffer
	if err := approvalPromptTmpl.Execute(&buf, d); err != nil {
		log.ErrorS(ctx, "Failed to render approval prompt template",
			err)

		return "Decide whether to approve this pull request.\n"
	}

	return buf.String()
}

// FindingLine renders one issue as a severity-tagged single line, the
// form the summarizer and approver prompts consume.
func FindingLine(issue Issue) string {
	var buf bytes.Buffer
	buf.WriteString("[")
	buf.WriteString(strings.ToUpper(string(issue.Severity)))
	buf.WriteString("] ")
	buf.WriteString(issue.Title)
	if !issue.Unlocated() {
		fmt.Fprintf(&buf, " (%s:%d)", issue.FilePath,
			issue.StartLine)
	}

	return buf.String()
}

// BuildSummaryPrompt renders the summarizer prompt over the accumulated
// findings.
func BuildSummaryPrompt(ctx context.Context, issues []Issue) string {
	lines := make([]string, 0, len(issues))
	for _, issue := range issues {
		lines = append(lines, FindingLine(issue))
	}

	var buf bytes.Buffer
	data := summaryPromptData{Findings: lines}
	if err := summaryPromptTmpl.Execute(&buf, data); err != nil {
		log.ErrorS(ctx, "Failed to render summary prompt template",
			err)

		return "Summarize the review findings.\n"
	}

	return buf.String()
}

// BuildApprovalPrompt renders the approval agent prompt over the review
// summary and the findings that block approval.
func BuildApprovalPrompt(ctx context.Context, summary string,
	blocking []Issue) string {

	lines := make([]string, 0, len(blocking))
	for _, issue := range blocking {
		lines = append(lines, FindingLine(issue))
	}

	return renderApprovalPrompt(ctx, approvalPromptData{
		Summary:      summary,
		OpenFindings: lines,
	})
}

// summaryPromptData holds the template variables for the summarizer
// prompt.
type summaryPromptData struct {
	// Findings are the severity-tagged finding lines.
	Findings []string
}

// synthesisPromptTmplText is the raw Go template for turning one
// structured finding into a publishable review comment.
const synthesisPromptTmplText = `Write a pull request review comment in {{.Language}} for the following finding.

Severity: {{.Severity}}
Title: {{.Title}}
Location: {{.FilePath}} lines {{.StartLine}}-{{.EndLine}}
Finding: {{.Description}}
{{- if .Suggestion}}
Suggested fix:
{{.Suggestion}}
{{- end}}

Requirements:
- Two to four sentences, addressed to the author, constructive tone.
- Open with the impact, then the cause, then the fix.
- Do not restate the file path or line numbers; the comment is anchored.
- Plain prose only, no headings and no severity tags.
`

// reviewPromptTmplText is the raw Go template for a single reviewer pass.
// The persona block selects which guidance is rendered.
const reviewPromptTmplText = `You are reviewing a pull request.
{{- if eq .Persona "security"}}
You are a security reviewer. Identify vulnerabilities that are definitively present in the diff, not hypothetical attack vectors: injection, broken auth, sensitive data exposure, path traversal, race conditions.
{{- else if eq .Persona "performance"}}
You are a performance reviewer. Identify measurable performance problems in the diff: quadratic or worse passes over large inputs, N+1 queries, allocations in hot loops, missing pagination, leaked goroutines or handles.
{{- else}}
Identify bugs, logic errors, and missing error handling that are definitively present in the diff.
{{- end}}
{{- if .FocusAreas}}

Focus areas:
{{- range .FocusAreas}}
- {{.}}
{{- end}}
{{- end}}

## Pull request

Title: {{.Title}}
{{- if .Body}}
{{.Body}}
{{- end}}

## Diff

{{.Diff}}

## Output format

Start with a one-paragraph overall assessment. Then one section per finding:

## [SEVERITY] Short title

**File:** ` + "`path/to/file`" + ` (lines N-M)

**Problem:** what is wrong and why it matters.

` + "```suggestion" + `
replacement code if you have one
` + "```" + `

SEVERITY is one of CRITICAL, MAJOR, MINOR, POSITIVE. If you find nothing, write the assessment paragraph and no sections.
`

// approvalPromptTmplText is the raw Go template for the approval agent.
// Its output is parsed by ParseApprovalDecision and fails closed on any
// deviation.
const approvalPromptTmplText = `You are the final approval gate for a pull request review.

Review summary:
{{.Summary}}
{{- if .OpenFindings}}

Open findings:
{{- range .OpenFindings}}
- {{.}}
{{- end}}
{{- end}}

Respond with exactly these labeled lines:

DECISION: APPROVE or REJECT
REASONING: one sentence.
APPROVAL_COMMENT: a short comment to post on approval, or N/A.
`

// summaryPromptTmplText is the raw Go template for the summarizer agent.
// The "## Summary" heading doubles as the routing marker the
// content-based sequencer strategy looks for.
const summaryPromptTmplText = `Condense the following review findings into a short summary for the pull request author.

Findings:
{{- range .Findings}}
- {{.}}
{{- end}}
{{- if not .Findings}}
(no findings)
{{- end}}

Start the reply with a "## Summary" heading. Group related findings, lead with the most severe, and keep it under 150 words.
`
