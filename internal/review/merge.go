package review

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sprite-ai/preflight/internal/api"
	"github.com/sprite-ai/preflight/internal/model"
)

// signature is the identity of a finding for consensus purposes. Two
// models reporting the same (path, line, title, suggestion prefix) are
// counted as agreeing on one finding.
func signature(f model.Finding) string {
	line := ""
	if f.Line > 0 {
		line = fmt.Sprintf("%d", f.Line)
	}
	title := strings.ToLower(strings.TrimSpace(f.Title))
	path := strings.TrimSpace(f.Path)
	sugg := strings.TrimSpace(f.Suggestion)
	suggSig := ""
	if sugg != "" {
		if len(sugg) > 80 {
			sugg = sugg[:80]
		}
		suggSig = "|s:" + sugg
	}
	return path + "|" + line + "|" + title + suggSig
}

// MergeFindings combines per-model finding lists into one consensus
// list. Within a signature group the severity is the maximum reported,
// the message is the longest, and the suggestion is the lexicographically
// first non-empty one; agreement counts distinct models over total
// models. Output order and content are independent of input order.
func MergeFindings(perModel []api.ModelFindings) []model.Finding {
	total := len(perModel)

	type group struct {
		merged model.Finding
		votes  map[string]bool
	}
	byKey := map[string]*group{}
	var order []string

	for _, m := range perModel {
		for _, f := range m.Findings {
			key := signature(f)
			g, ok := byKey[key]
			if !ok {
				merged := f
				byKey[key] = &group{merged: merged, votes: map[string]bool{m.Model: true}}
				order = append(order, key)
				continue
			}
			g.votes[m.Model] = true
			g.merged.Severity = model.MaxSeverity(g.merged.Severity, f.Severity)
			// Representative fields are chosen by rules that do not
			// depend on which model was seen first, so merging is
			// commutative.
			if len(f.Message) > len(g.merged.Message) ||
				(len(f.Message) == len(g.merged.Message) && f.Message < g.merged.Message) {
				g.merged.Message = f.Message
			}
			if f.Title < g.merged.Title {
				g.merged.Title = f.Title
			}
			if f.Suggestion != "" && (g.merged.Suggestion == "" || f.Suggestion < g.merged.Suggestion) {
				g.merged.Suggestion = f.Suggestion
			}
		}
	}

	out := make([]model.Finding, 0, len(order))
	for _, key := range order {
		g := byKey[key]
		g.merged.Agreement = model.Agreement{Agreed: len(g.votes), Total: total}
		out = append(out, g.merged)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if lineKey(a.Line) != lineKey(b.Line) {
			return lineKey(a.Line) < lineKey(b.Line)
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		// Distinct signatures can share all of the above; keep the
		// order independent of input permutation.
		return a.Suggestion < b.Suggestion
	})
	return out
}
