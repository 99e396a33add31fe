package tui

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

// highlightSuggestion colors the body of a suggestion block, picking a
// lexer from the finding's path. The path is the best language hint
// available since suggestion fences carry no language tag. Lines come
// back fully styled, one per input line; anything unhighlightable
// passes through unstyled.
func highlightSuggestion(path string, body []string) []string {
	lexer := suggestionLexer(path)
	if lexer == nil {
		return body
	}

	iterator, err := lexer.Tokenise(nil, strings.Join(body, "\n"))
	if err != nil {
		return body
	}

	style := styles.Get("dracula")
	if style == nil {
		style = styles.Fallback
	}

	out := make([]string, 0, len(body))
	var line strings.Builder
	for _, token := range iterator.Tokens() {
		parts := strings.Split(token.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				out = append(out, line.String())
				line.Reset()
			}
			if part == "" {
				continue
			}
			if c := tokenColor(style, token.Type); c != "" {
				line.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render(part))
			} else {
				line.WriteString(part)
			}
		}
	}
	out = append(out, line.String())

	for len(out) < len(body) {
		out = append(out, "")
	}
	return out
}

func suggestionLexer(path string) chroma.Lexer {
	lexer := lexers.Match(path)
	if lexer == nil {
		if ext := filepath.Ext(path); ext != "" {
			lexer = lexers.Match("file" + ext)
		}
	}
	if lexer != nil {
		lexer = chroma.Coalesce(lexer)
	}
	return lexer
}

func tokenColor(style *chroma.Style, tt chroma.TokenType) string {
	entry := style.Get(tt)
	if entry.Colour.IsSet() {
		return entry.Colour.String()
	}
	return ""
}
