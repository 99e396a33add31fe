package review

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/sprite-ai/preflight/internal/model"
)

// ReportTitle is the first line of every rendered report.
const ReportTitle = "# Preflight Review"

// RenderMarkdown turns a review result into the stable report text.
// The output is fully determined by the input: same result, same
// bytes.
func RenderMarkdown(result model.ReviewResult) string {
	note, minor, major := model.CountBySeverity(result.Findings)

	var out []string
	out = append(out, ReportTitle)
	out = append(out, "")
	out = append(out, fmt.Sprintf("Result: %s", result.Status))
	out = append(out, fmt.Sprintf("Counts: note=%d minor=%d major=%d", note, minor, major))
	out = append(out, "")
	out = append(out, "## Findings")

	if len(result.Findings) == 0 {
		out = append(out, "", "(none)", "")
		return strings.Join(out, "\n")
	}

	byPath := map[string][]model.Finding{}
	for _, f := range result.Findings {
		byPath[f.Path] = append(byPath[f.Path], f)
	}
	paths := make([]string, 0, len(byPath))
	for p := range byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		group := byPath[path]
		sort.SliceStable(group, func(i, j int) bool {
			return findingLess(group[i], group[j])
		})

		heading := path
		if heading == "" {
			heading = "(repository)"
		}
		out = append(out, "", "### "+heading)

		for _, f := range group {
			out = append(out, "", "#### "+f.Title)
			if f.Path != "" {
				out = append(out, "Path: "+f.Path)
			}
			if f.Line > 0 {
				out = append(out, fmt.Sprintf("Line: %d", f.Line))
			}
			out = append(out, "Severity: "+string(f.Severity))
			out = append(out, fmt.Sprintf("Agreement: %d/%d", f.Agreement.Agreed, f.Agreement.Total))
			out = append(out, "")
			out = append(out, strings.TrimRight(f.Message, " \t\n"))

			if strings.TrimSpace(f.Suggestion) != "" {
				fence := fenceFor(f.Suggestion)
				out = append(out, "")
				out = append(out, fence+"suggestion")
				out = append(out, strings.TrimRight(f.Suggestion, " \t\n"))
				out = append(out, fence)
			}
		}
	}

	out = append(out, "")
	return strings.Join(out, "\n")
}

// Summary is the header information re-parsed from a rendered report.
type Summary struct {
	Status model.Status
	Note   int
	Minor  int
	Major  int
}

var (
	resultLineRe = regexp.MustCompile(`(?m)^Result: (PASS|FAIL|UNCHECKED)$`)
	countsLineRe = regexp.MustCompile(`(?m)^Counts: note=(\d+) minor=(\d+) major=(\d+)$`)
)

// ParseSummary extracts the Result and Counts lines from a rendered
// report. The viewer uses this for its header instead of carrying the
// structured result around.
func ParseSummary(markdown string) (Summary, bool) {
	rm := resultLineRe.FindStringSubmatch(markdown)
	cm := countsLineRe.FindStringSubmatch(markdown)
	if rm == nil || cm == nil {
		return Summary{}, false
	}
	note, _ := strconv.Atoi(cm[1])
	minor, _ := strconv.Atoi(cm[2])
	major, _ := strconv.Atoi(cm[3])
	return Summary{
		Status: model.Status(rm[1]),
		Note:   note,
		Minor:  minor,
		Major:  major,
	}, true
}

// findingLess orders findings within one path group: most severe
// first, then line (absent last), then title.
func findingLess(a, b model.Finding) bool {
	if a.Severity.Rank() != b.Severity.Rank() {
		return a.Severity.Rank() > b.Severity.Rank()
	}
	al, bl := lineKey(a.Line), lineKey(b.Line)
	if al != bl {
		return al < bl
	}
	return a.Title < b.Title
}

func lineKey(line int) int {
	if line <= 0 {
		return int(^uint(0) >> 1)
	}
	return line
}

// fenceFor returns a backtick fence strictly longer than the longest
// backtick run inside content, and at least three long, so the body
// can never terminate the fence early.
func fenceFor(content string) string {
	maxRun, current := 0, 0
	for _, ch := range content {
		if ch == '`' {
			current++
			if current > maxRun {
				maxRun = current
			}
		} else {
			current = 0
		}
	}
	n := maxRun + 1
	if n < 3 {
		n = 3
	}
	return strings.Repeat("`", n)
}
