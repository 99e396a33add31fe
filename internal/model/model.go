// Package model defines the core data types shared across preflight.
package model

// Severity categorizes how serious a finding is.
type Severity string

const (
	SeverityNote  Severity = "note"
	SeverityMinor Severity = "minor"
	SeverityMajor Severity = "major"
)

// Rank returns a numeric rank for ordering (higher = more severe).
func (s Severity) Rank() int {
	switch s {
	case SeverityMajor:
		return 3
	case SeverityMinor:
		return 2
	case SeverityNote:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	return s == SeverityNote || s == SeverityMinor || s == SeverityMajor
}

// MaxSeverity returns the more severe of a and b.
func MaxSeverity(a, b Severity) Severity {
	if a.Rank() >= b.Rank() {
		return a
	}
	return b
}

// Status is the overall outcome of a review.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
	// StatusUnchecked means no answer could be determined; the
	// operation is allowed and the backlog grows.
	StatusUnchecked Status = "UNCHECKED"
)

// Agreement records how many of the consulted reviewer models reported
// an equivalent finding.
type Agreement struct {
	Agreed int `json:"agreed"`
	Total  int `json:"total"`
}

// Finding is a single review finding, local or remote.
type Finding struct {
	Path       string    `json:"path"`
	Severity   Severity  `json:"severity"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Line       int       `json:"line,omitempty"` // 0 = no line
	Suggestion string    `json:"suggestion,omitempty"`
	Agreement  Agreement `json:"agreement"`
}

// Blocking reports whether the finding should fail the review.
func (f Finding) Blocking() bool {
	return f.Severity != SeverityNote
}

// ReviewResult is the final outcome handed to the renderer.
type ReviewResult struct {
	Status   Status    `json:"status"`
	Findings []Finding `json:"findings"`
}

// StatusFromFindings derives PASS or FAIL from a finding list. It never
// returns UNCHECKED; that state is set out-of-band by the orchestrator.
func StatusFromFindings(findings []Finding) Status {
	for _, f := range findings {
		if f.Blocking() {
			return StatusFail
		}
	}
	return StatusPass
}

// CountBySeverity tallies findings per severity.
func CountBySeverity(findings []Finding) (note, minor, major int) {
	for _, f := range findings {
		switch f.Severity {
		case SeverityNote:
			note++
		case SeverityMinor:
			minor++
		default:
			major++
		}
	}
	return
}
