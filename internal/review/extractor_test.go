package review

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const sampleReviewDoc = `The change looks mostly solid, but the data access
layer needs attention before merging.

## [CRITICAL] SQL Injection

**File:** ` + "`src/Auth.cs`" + ` (lines 10-12)

**Problem:** User input is concatenated directly into the query string.

` + "```suggestion\nuse parameterized query\n```" + `

## [MINOR] Unused import

**File:** ` + "`src/Util.cs`" + ` (line 3)

**Problem:** The import is never referenced.
`

// TestExtractStructuredSections checks the happy path: a severity-tagged
// heading with a file path, line range, labeled description, and a
// suggestion block maps onto a fully populated issue.
func TestExtractStructuredSections(t *testing.T) {
	t.Parallel()

	issues := NewExtractor().Extract(sampleReviewDoc)
	require.Len(t, issues, 2)

	first := issues[0]
	require.Equal(t, SeverityCritical, first.Severity)
	require.Equal(t, "SQL Injection", first.Title)
	require.Equal(t, "src/Auth.cs", first.FilePath)
	require.Equal(t, 10, first.StartLine)
	require.Equal(t, 12, first.EndLine)
	require.Contains(t, first.Description, "concatenated")
	require.Equal(t, "use parameterized query", first.Suggestion)

	second := issues[1]
	require.Equal(t, SeverityMinor, second.Severity)
	require.Equal(t, "src/Util.cs", second.FilePath)
	require.Equal(t, 3, second.StartLine)
	require.Equal(t, 3, second.EndLine)
	require.Empty(t, second.Suggestion)
}

// TestExtractReportSummary checks that leading prose before the first
// heading is captured as the document summary rather than an issue.
func TestExtractReportSummary(t *testing.T) {
	t.Parallel()

	report := NewExtractor().ExtractReport(sampleReviewDoc)
	require.Contains(t, report.Summary, "data access")
	require.Len(t, report.Issues, 2)
}

// TestExtractDefaults checks that every field has an explicit default: a
// heading with no recognizable tag, path, or range still yields a usable
// issue.
func TestExtractDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		doc      string
		severity Severity
		filePath string
		start    int
		end      int
	}{
		{
			name:     "bare heading",
			doc:      "## Something smells here\n",
			severity: SeverityMajor,
			filePath: UnlocatedFilePath,
			start:    1,
			end:      1,
		},
		{
			name:     "unknown severity tag",
			doc:      "## [BANANAS] Odd tag\n",
			severity: SeverityMajor,
			filePath: UnlocatedFilePath,
			start:    1,
			end:      1,
		},
		{
			name: "path without range",
			doc: "## [MINOR] Nit\n\nSee `pkg/server/loop.go` " +
				"for details.\n",
			severity: SeverityMinor,
			filePath: "pkg/server/loop.go",
			start:    1,
			end:      1,
		},
		{
			name: "backtick span that is not a path",
			doc: "## Naming\n\nThe variable `count` is " +
				"misleading.\n",
			severity: SeverityMajor,
			filePath: UnlocatedFilePath,
			start:    1,
			end:      1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			issues := NewExtractor().Extract(tc.doc)
			require.Len(t, issues, 1)

			issue := issues[0]
			require.Equal(t, tc.severity, issue.Severity)
			require.Equal(t, tc.filePath, issue.FilePath)
			require.Equal(t, tc.start, issue.StartLine)
			require.Equal(t, tc.end, issue.EndLine)
		})
	}
}

// TestExtractDescriptionFallback checks that a section with no labeled
// paragraph uses its first non-empty line as the description.
func TestExtractDescriptionFallback(t *testing.T) {
	t.Parallel()

	doc := "## Loose section\n\nJust a plain sentence about the " +
		"problem.\n\nMore detail below.\n"

	issues := NewExtractor().Extract(doc)
	require.Len(t, issues, 1)
	require.Equal(t, "Just a plain sentence about the problem.",
		issues[0].Description)
}

// TestExtractHeadingLessDoc checks that documents without any headings
// produce no issues rather than an error.
func TestExtractHeadingLessDoc(t *testing.T) {
	t.Parallel()

	for _, doc := range []string{
		"",
		"   \n\n",
		"No structure at all, just prose across\nseveral lines.\n",
	} {
		require.Empty(t, NewExtractor().Extract(doc))
	}
}

// TestExtractDeterministic checks that extraction is a pure function of
// the input document.
func TestExtractDeterministic(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		doc := rapid.String().Draw(t, "doc")

		first := NewExtractor().Extract(doc)
		second := NewExtractor().Extract(doc)
		require.Equal(t, first, second)
	})
}

// TestExtractSingleLineRange checks both "(line N)" and "(lines N-M)"
// spellings, including an en dash separator.
func TestExtractSingleLineRange(t *testing.T) {
	t.Parallel()

	doc := "## One\n\nIn `a/b.go` (lines 5–9) the lock is held too " +
		"long.\n"

	issues := NewExtractor().Extract(doc)
	require.Len(t, issues, 1)
	require.Equal(t, 5, issues[0].StartLine)
	require.Equal(t, 9, issues[0].EndLine)
}

// TestExtractOrderPreserved checks that issues come back in document
// order.
func TestExtractOrderPreserved(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	titles := []string{"Alpha", "Beta", "Gamma", "Delta"}
	for _, title := range titles {
		b.WriteString("## " + title + "\n\nBody.\n\n")
	}

	issues := NewExtractor().Extract(b.String())
	require.Len(t, issues, len(titles))
	for i, title := range titles {
		require.Equal(t, title, issues[i].Title)
	}
}
