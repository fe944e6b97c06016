package review

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Extractor parses free-text review documents produced by an LLM into
// structured issues. Parsing is strictly best-effort: malformed input never
// produces an error, only defaulted fields, because model output is
// unreliable free text and the extractor's job is graceful degradation.
type Extractor struct {
	md goldmark.Markdown
}

// NewExtractor creates an extractor backed by a fresh goldmark parser.
func NewExtractor() *Extractor {
	return &Extractor{
		md: goldmark.New(),
	}
}

// section is one heading-delimited slice of the review document.
type section struct {
	// heading is the raw heading text, severity tag included.
	heading string

	// body is the raw markdown source of every block following the
	// heading, up to the next heading.
	body string

	// suggestion is the content of the first suggestion-tagged fenced
	// code block in the section, or empty.
	suggestion string
}

var (
	// severityTagPattern matches a bracketed severity tag at the start
	// of a heading, e.g. "[CRITICAL] SQL Injection".
	severityTagPattern = regexp.MustCompile(
		`^\s*\[([A-Za-z_]+)\]\s*(.*)$`,
	)

	// backtickSpanPattern matches inline code spans, the convention used
	// to quote file paths in review text.
	backtickSpanPattern = regexp.MustCompile("`([^`\n]+)`")

	// lineRangePattern matches "(line N)" and "(lines N-M)" annotations.
	lineRangePattern = regexp.MustCompile(
		`(?i)\(\s*lines?\s+(\d+)\s*(?:[-–]\s*(\d+)\s*)?\)`,
	)

	// boldLabelPattern matches a "**Label:** rest" line, the convention
	// used to introduce labeled paragraphs such as "**Problem:**".
	boldLabelPattern = regexp.MustCompile(
		`^\s*\*\*([^*\n]+?):?\*\*:?\s*(.*)$`,
	)
)

// locationLabels are bold labels that anchor an issue to a file rather than
// describing it. They are skipped when hunting for the description
// paragraph.
var locationLabels = map[string]struct{}{
	"file":     {},
	"files":    {},
	"location": {},
	"line":     {},
	"lines":    {},
}

// Extract parses reviewText into an ordered list of issues, one per
// heading-delimited section. It never fails: every section that has a
// heading yields an issue with best-effort defaults, sections without
// headings are ignored, and an empty or heading-less document yields an
// empty list. Calling Extract twice on the same document yields identical
// results.
func (e *Extractor) Extract(reviewText string) []Issue {
	return e.ExtractReport(reviewText).Issues
}

// ExtractReport parses reviewText like Extract, additionally capturing the
// leading non-heading preamble as the document-level summary.
func (e *Extractor) ExtractReport(reviewText string) ReviewReport {
	source := []byte(reviewText)
	doc := e.md.Parser().Parse(text.NewReader(source))

	var (
		report  ReviewReport
		current *section
		done    []*section
		preable bytes.Buffer
	)

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if heading, ok := n.(*ast.Heading); ok {
			current = &section{
				heading: blockText(heading, source),
			}
			done = append(done, current)

			continue
		}

		// Leading blocks before the first heading form the
		// document-level summary, not an issue.
		if current == nil {
			preable.WriteString(blockText(n, source))
			preable.WriteString("\n")

			continue
		}

		if fcb, ok := n.(*ast.FencedCodeBlock); ok {
			lang := string(fcb.Language(source))
			if lang == "suggestion" && current.suggestion == "" {
				current.suggestion = strings.TrimRight(
					blockText(fcb, source), "\n",
				)

				continue
			}
		}

		current.body += blockText(n, source) + "\n"
	}

	report.Summary = strings.TrimSpace(preable.String())

	for _, sec := range done {
		report.Issues = append(report.Issues, sec.toIssue())
	}

	if len(report.Issues) > 0 {
		log.Debugf("Extracted %d issue(s) from %d byte review "+
			"document", len(report.Issues), len(reviewText))
	}

	return report
}

// toIssue runs the per-field extractors over the section. Each field has an
// explicit default, so a section consisting of nothing but a bare heading
// still yields a usable issue.
func (s *section) toIssue() Issue {
	issue := Issue{
		Severity:   SeverityMajor,
		FilePath:   UnlocatedFilePath,
		StartLine:  1,
		EndLine:    1,
		Suggestion: s.suggestion,
	}

	// Severity tag, then title from the remaining heading text.
	title := strings.TrimSpace(s.heading)
	if m := severityTagPattern.FindStringSubmatch(title); m != nil {
		issue.Severity = ParseSeverityTag(strings.ToUpper(m[1]))
		title = strings.TrimSpace(m[2])
	}
	issue.Title = title

	// File path: first backtick span that looks like a path.
	for _, m := range backtickSpanPattern.FindAllStringSubmatch(
		s.body, -1,
	) {
		candidate := strings.TrimSpace(m[1])
		if strings.ContainsAny(candidate, "/.") {
			issue.FilePath = candidate
			break
		}
	}

	// Line range: first "(line N)" or "(lines N-M)" annotation.
	if m := lineRangePattern.FindStringSubmatch(s.body); m != nil {
		start, err := strconv.Atoi(m[1])
		if err == nil && start >= 1 {
			issue.StartLine = start
			issue.EndLine = start
		}
		if m[2] != "" {
			end, err := strconv.Atoi(m[2])
			if err == nil && end >= issue.StartLine {
				issue.EndLine = end
			}
		}
	}

	issue.Description = extractDescription(s.body)

	return issue
}

// extractDescription finds the first paragraph introduced by a bold label
// (skipping location labels such as "**File:**"), falling back to the
// section's first non-empty line.
func extractDescription(body string) string {
	lines := strings.Split(body, "\n")

	for i, line := range lines {
		m := boldLabelPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		label := strings.ToLower(strings.TrimSpace(m[1]))
		if _, skip := locationLabels[label]; skip {
			continue
		}

		// Gather the labeled paragraph: the remainder of the label
		// line plus continuation lines up to a blank line or the
		// next labeled line.
		parts := []string{strings.TrimSpace(m[2])}
		for _, next := range lines[i+1:] {
			trimmed := strings.TrimSpace(next)
			if trimmed == "" ||
				boldLabelPattern.MatchString(next) {

				break
			}
			parts = append(parts, trimmed)
		}

		desc := strings.TrimSpace(strings.Join(parts, " "))
		if desc != "" {
			return desc
		}
	}

	// No labeled paragraph: use the section's first non-empty line.
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}

	return ""
}

// blockText reconstructs the raw source text of a block node from its line
// segments, recursing into children for container blocks such as lists.
func blockText(n ast.Node, source []byte) string {
	var buf bytes.Buffer

	if lines := n.Lines(); lines != nil && lines.Len() > 0 {
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(source))
		}

		return buf.String()
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		buf.WriteString(blockText(c, source))
		if c.Type() == ast.TypeBlock {
			buf.WriteString("\n")
		}
	}

	return buf.String()
}
