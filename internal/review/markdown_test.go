package review

import (
	"strings"
	"testing"

	"github.com/sprite-ai/preflight/internal/model"
)

func TestRenderMarkdownEmpty(t *testing.T) {
	got := RenderMarkdown(model.ReviewResult{Status: model.StatusPass})
	want := strings.Join([]string{
		"# Preflight Review",
		"",
		"Result: PASS",
		"Counts: note=0 minor=0 major=0",
		"",
		"## Findings",
		"",
		"(none)",
		"",
	}, "\n")
	if got != want {
		t.Errorf("render mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderMarkdownFull(t *testing.T) {
	result := model.ReviewResult{
		Status: model.StatusFail,
		Findings: []model.Finding{
			{
				Path:      "b.ts",
				Severity:  model.SeverityMinor,
				Title:     "Magic number",
				Message:   "Use a named constant.",
				Agreement: model.Agreement{Agreed: 1, Total: 2},
			},
			{
				Path:       "a.ts",
				Severity:   model.SeverityMajor,
				Title:      "Unchecked error",
				Message:    "The result of save() is ignored.",
				Line:       10,
				Suggestion: "if err := save(); err != nil {\n\treturn err\n}",
				Agreement:  model.Agreement{Agreed: 2, Total: 2},
			},
		},
	}

	got := RenderMarkdown(result)
	want := strings.Join([]string{
		"# Preflight Review",
		"",
		"Result: FAIL",
		"Counts: note=0 minor=1 major=1",
		"",
		"## Findings",
		"",
		"### a.ts",
		"",
		"#### Unchecked error",
		"Path: a.ts",
		"Line: 10",
		"Severity: major",
		"Agreement: 2/2",
		"",
		"The result of save() is ignored.",
		"",
		"```suggestion",
		"if err := save(); err != nil {\n\treturn err\n}",
		"```",
		"",
		"### b.ts",
		"",
		"#### Magic number",
		"Path: b.ts",
		"Severity: minor",
		"Agreement: 1/2",
		"",
		"Use a named constant.",
		"",
	}, "\n")
	if got != want {
		t.Errorf("render mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderMarkdownDeterministic(t *testing.T) {
	findings := []model.Finding{
		{Path: "z.go", Severity: model.SeverityNote, Title: "n"},
		{Path: "a.go", Severity: model.SeverityMajor, Title: "m", Line: 2},
		{Path: "a.go", Severity: model.SeverityMajor, Title: "m", Line: 1},
	}
	reversed := []model.Finding{findings[2], findings[1], findings[0]}

	r1 := RenderMarkdown(model.ReviewResult{Status: model.StatusFail, Findings: findings})
	r2 := RenderMarkdown(model.ReviewResult{Status: model.StatusFail, Findings: reversed})
	if r1 != r2 {
		t.Error("output depends on finding order")
	}
}

func TestFenceForBacktickRuns(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"plain text", "```"},
		{"uses `code` spans", "```"},
		{"has ``` a fence", "````"},
		{"has ````` five", "``````"},
	}
	for _, tt := range tests {
		if got := fenceFor(tt.content); got != tt.want {
			t.Errorf("fenceFor(%q) = %q, want %q", tt.content, got, tt.want)
		}
	}
}

func TestRenderMarkdownFenceNeverTerminatedEarly(t *testing.T) {
	result := model.ReviewResult{
		Status: model.StatusFail,
		Findings: []model.Finding{{
			Path:       "doc.md",
			Severity:   model.SeverityMajor,
			Title:      "Nested fence",
			Message:    "m",
			Suggestion: "```go\nfmt.Println(1)\n```",
		}},
	}
	got := RenderMarkdown(result)
	if !strings.Contains(got, "````suggestion\n") {
		t.Errorf("expected a four-backtick fence, got:\n%s", got)
	}
	if !strings.Contains(got, "\n````\n") {
		t.Errorf("expected matching closing fence, got:\n%s", got)
	}
}

func TestCountsLineRoundTrip(t *testing.T) {
	cases := [][]model.Finding{
		nil,
		{{Path: "a", Severity: model.SeverityNote, Title: "t", Message: "m"}},
		{
			{Path: "a", Severity: model.SeverityMajor, Title: "t1", Message: "m"},
			{Path: "a", Severity: model.SeverityMinor, Title: "t2", Message: "m"},
			{Path: "b", Severity: model.SeverityMinor, Title: "t3", Message: "m"},
			{Path: "c", Severity: model.SeverityNote, Title: "t4", Message: "m"},
		},
	}
	for _, findings := range cases {
		status := model.StatusFromFindings(findings)
		md := RenderMarkdown(model.ReviewResult{Status: status, Findings: findings})
		sum, ok := ParseSummary(md)
		if !ok {
			t.Fatalf("rendered report failed to parse:\n%s", md)
		}
		note, minor, major := model.CountBySeverity(findings)
		if sum.Note != note || sum.Minor != minor || sum.Major != major {
			t.Errorf("counts mismatch: parsed %+v, want note=%d minor=%d major=%d", sum, note, minor, major)
		}
		if sum.Status != status {
			t.Errorf("status mismatch: parsed %s, want %s", sum.Status, status)
		}
	}
}

func TestParseSummaryRejectsArbitraryText(t *testing.T) {
	if _, ok := ParseSummary("hello\nResult: FINE\n"); ok {
		t.Error("accepted text without the report contract")
	}
}

func TestRenderMarkdownRepositoryFindings(t *testing.T) {
	result := model.ReviewResult{
		Status: model.StatusPass,
		Findings: []model.Finding{{
			Severity: model.SeverityNote,
			Title:    "Review skipped",
			Message:  "m",
		}},
	}
	got := RenderMarkdown(result)
	if !strings.Contains(got, "### (repository)") {
		t.Errorf("pathless findings should group under (repository):\n%s", got)
	}
	if strings.Contains(got, "Path: \n") {
		t.Error("empty Path line must be omitted")
	}
}
