package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/preflight/internal/model"
)

// renderedLine is one display line of the report, pre-styled.
type renderedLine struct {
	Text      string
	IsFinding bool // a "#### <title>" heading, used for jump targets
}

// renderReport turns the Markdown report into styled terminal lines.
// Suggestion fences are syntax-highlighted using the finding's path,
// which the renderer always emits just before the fence.
func renderReport(markdown string) []renderedLine {
	var out []renderedLine

	lines := strings.Split(markdown, "\n")
	currentPath := ""
	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if fence, ok := suggestionFence(line); ok {
			var body []string
			for i++; i < len(lines) && lines[i] != fence; i++ {
				body = append(body, lines[i])
			}
			out = append(out, renderedLine{Text: suggestionLabelStyle.Render("suggestion:")})
			for _, hl := range highlightSuggestion(currentPath, body) {
				out = append(out, renderedLine{Text: "  " + hl})
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "#### "):
			out = append(out, renderedLine{
				Text:      findingHeadingStyle.Render(strings.TrimPrefix(line, "#### ")),
				IsFinding: true,
			})
		case strings.HasPrefix(line, "### "):
			out = append(out, renderedLine{Text: fileHeadingStyle.Render(line[4:])})
		case strings.HasPrefix(line, "## "):
			out = append(out, renderedLine{Text: sectionHeadingStyle.Render(line[3:])})
		case strings.HasPrefix(line, "# "):
			out = append(out, renderedLine{Text: titleStyle.Render(line[2:])})
		case strings.HasPrefix(line, "Path: "):
			currentPath = strings.TrimPrefix(line, "Path: ")
			out = append(out, renderedLine{Text: fieldStyle.Render(line)})
		case strings.HasPrefix(line, "Result: "):
			out = append(out, renderedLine{Text: "Result: " + styleStatus(strings.TrimPrefix(line, "Result: "))})
		case strings.HasPrefix(line, "Severity: "):
			sev := strings.TrimPrefix(line, "Severity: ")
			out = append(out, renderedLine{Text: "Severity: " + styleSeverity(sev).Render(sev)})
		case strings.HasPrefix(line, "Counts: "), strings.HasPrefix(line, "Line: "), strings.HasPrefix(line, "Agreement: "):
			out = append(out, renderedLine{Text: fieldStyle.Render(line)})
		default:
			out = append(out, renderedLine{Text: line})
		}
	}

	// Drop trailing blank lines so the viewport does not scroll into
	// emptiness.
	for len(out) > 0 && strings.TrimSpace(out[len(out)-1].Text) == "" {
		out = out[:len(out)-1]
	}
	return out
}

// suggestionFence reports whether line opens a suggestion block and,
// if so, returns the matching closing fence.
func suggestionFence(line string) (string, bool) {
	trimmed := strings.TrimRight(line, " ")
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "suggestion") {
		return "", false
	}
	fence := strings.TrimSuffix(trimmed, "suggestion")
	if strings.Trim(fence, "`") != "" {
		return "", false
	}
	return fence, true
}

func styleStatus(status string) string {
	switch model.Status(status) {
	case model.StatusPass:
		return passStyle.Render(status)
	case model.StatusFail:
		return failStyle.Render(status)
	default:
		return uncheckedStyle.Render(status)
	}
}

func styleSeverity(sev string) lipgloss.Style {
	switch model.Severity(sev) {
	case model.SeverityMajor:
		return severityMajorStyle
	case model.SeverityMinor:
		return severityMinorStyle
	default:
		return severityNoteStyle
	}
}
