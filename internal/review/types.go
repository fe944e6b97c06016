package review

import (
	"fmt"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// Severity classifies the impact of a single review finding.
type Severity string

const (
	// SeverityCritical marks findings that must block a merge.
	SeverityCritical Severity = "critical"

	// SeverityMajor marks findings that should be fixed before merging.
	SeverityMajor Severity = "major"

	// SeverityMinor marks low-impact findings.
	SeverityMinor Severity = "minor"

	// SeverityPositive marks observations about things done well.
	SeverityPositive Severity = "positive"
)

// severityTags maps the bracketed tag used in review headings to a
// severity. Tags are matched case-insensitively after upper-casing.
var severityTags = map[string]Severity{
	"CRITICAL": SeverityCritical,
	"MAJOR":    SeverityMajor,
	"MINOR":    SeverityMinor,
	"POSITIVE": SeverityPositive,
}

// ParseSeverityTag maps a bracketed heading tag (without brackets) to a
// severity. Unrecognized or empty tags map to SeverityMajor: an unlabeled
// finding still needs attention, so the parser fails open toward "needs
// review" rather than dropping it.
func ParseSeverityTag(tag string) Severity {
	if sev, ok := severityTags[tag]; ok {
		return sev
	}

	return SeverityMajor
}

// UnlocatedFilePath is the sentinel file path assigned to issues whose
// section contained no backtick-quoted path. Callers must treat issues
// carrying this path as unlocated rather than anchored to a real file.
const UnlocatedFilePath = "unknown/file"

// Issue is one structured finding extracted from a free-text review
// document. Issues are immutable once created, and their order matches
// document order.
type Issue struct {
	// Title is the heading text with the severity tag removed.
	Title string `json:"title"`

	// Severity is the parsed severity classification.
	Severity Severity `json:"severity"`

	// FilePath locates the finding, or UnlocatedFilePath if the section
	// named no file.
	FilePath string `json:"file"`

	// StartLine is the first affected line, always >= 1.
	StartLine int `json:"line_start"`

	// EndLine is the last affected line, always >= StartLine.
	EndLine int `json:"line_end"`

	// Description explains the finding.
	Description string `json:"description"`

	// Suggestion holds the suggested fix, or empty if none was given.
	Suggestion string `json:"suggestion,omitempty"`
}

// Unlocated reports whether the issue carries the sentinel file path.
func (i Issue) Unlocated() bool {
	return i.FilePath == UnlocatedFilePath
}

// LineRange addresses a contiguous span of lines in a file.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// DraftComment is a review comment that has not yet been posted to the
// hosting API. Exactly one of Position or Range is set; the constructors
// below are the only intended way to build one.
type DraftComment struct {
	// FilePath is the file the comment is anchored to.
	FilePath string `json:"file"`

	// Body is the comment text.
	Body string `json:"body"`

	// Position is the single-line anchor, if this is a single-line
	// comment.
	Position fn.Option[int]

	// Range is the multi-line anchor, if this comment spans lines.
	Range fn.Option[LineRange]
}

// NewLineComment builds a draft comment anchored to a single line.
func NewLineComment(filePath, body string, line int) DraftComment {
	return DraftComment{
		FilePath: filePath,
		Body:     body,
		Position: fn.Some(line),
	}
}

// NewRangeComment builds a draft comment anchored to a line range.
func NewRangeComment(filePath, body string, start, end int) DraftComment {
	return DraftComment{
		FilePath: filePath,
		Body:     body,
		Range:    fn.Some(LineRange{Start: start, End: end}),
	}
}

// Validate checks that exactly one addressing mode is set.
func (d DraftComment) Validate() error {
	switch {
	case d.Position.IsSome() && d.Range.IsSome():
		return fmt.Errorf("draft comment for %s sets both a "+
			"position and a range", d.FilePath)

	case d.Position.IsNone() && d.Range.IsNone():
		return fmt.Errorf("draft comment for %s sets neither a "+
			"position nor a range", d.FilePath)
	}

	return nil
}

// ApprovalDecision is the structured outcome parsed from an approval
// agent's final message. It is ephemeral: derived per run and never
// persisted.
type ApprovalDecision struct {
	// ShouldApprove is true only when the agent's DECISION line reads
	// APPROVE. Every other value, including garbage, fails closed to
	// false.
	ShouldApprove bool

	// Reasoning is the agent's stated reasoning, possibly empty.
	Reasoning string

	// Comment is the approval comment to post, if one was supplied.
	Comment fn.Option[string]
}

// ReviewReport is the result of extracting a full review document: the
// leading preamble (the document-level summary) plus the ordered issues.
type ReviewReport struct {
	// Summary is the text preceding the first heading, trimmed. Empty
	// when the document opens with a heading.
	Summary string `json:"summary,omitempty"`

	// Issues are the findings in document order.
	Issues []Issue `json:"issues"`
}
