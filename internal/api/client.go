// Package api is the HTTP client for the preflight review service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sprite-ai/preflight/internal/model"
)

// ErrUnauthorized is returned on a 401 response. A bad token will not
// fix itself by retrying, so callers turn this into a blocking finding
// rather than an unchecked outcome.
var ErrUnauthorized = errors.New("authentication failed")

// APIError is a non-401 client error (4xx). The body is kept verbatim
// for the report.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("review service error (%d): %s", e.StatusCode, e.Body)
}

// ServerError is a 5xx response, treated as transient.
type ServerError struct {
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("review service unavailable (%d)", e.StatusCode)
}

// FileEntry describes one changed file in the review request.
type FileEntry struct {
	Path       string `json:"path"`
	ChangeType string `json:"changeType"`
	IsBinary   bool   `json:"isBinary"`
}

// InstructionFile carries a content hash of a discovered instruction
// file. Raw text is never uploaded.
type InstructionFile struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
}

// ReviewRequest is the payload for a staged or push review.
type ReviewRequest struct {
	Branch           string            `json:"branch"`
	PlanTier         string            `json:"planTier"`
	StagedPatch      string            `json:"stagedPatch"`
	StagedFiles      []FileEntry       `json:"stagedFiles"`
	InstructionFiles []InstructionFile `json:"instructionFiles"`
}

// ModelFindings is one model's raw finding list, before consensus
// merging.
type ModelFindings struct {
	Model    string          `json:"model"`
	Findings []model.Finding `json:"findings"`
}

// ReviewResponse is the service's answer. PerModel, when present,
// carries the unmerged per-model lists and takes precedence over
// Findings after local consensus merging.
type ReviewResponse struct {
	Status   model.Status    `json:"status"`
	Findings []model.Finding `json:"findings"`
	PerModel []ModelFindings `json:"perModel,omitempty"`
}

// Client talks to the review service.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a client. The timeout bounds the whole request
// including body read.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// Review posts the request and decodes the response, classifying
// failures per status code.
func (c *Client) Review(ctx context.Context, req ReviewRequest) (*ReviewResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode review request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/review", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode >= 500:
		return nil, &ServerError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(text))}
	case resp.StatusCode >= 400:
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(text))}
	}

	var out ReviewResponse
	if err := json.Unmarshal(text, &out); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: "malformed response: " + err.Error()}
	}
	if err := validate(&out); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: err.Error()}
	}
	return &out, nil
}

func validate(r *ReviewResponse) error {
	switch r.Status {
	case model.StatusPass, model.StatusFail, model.StatusUnchecked:
	default:
		return fmt.Errorf("malformed response: unknown status %q", r.Status)
	}
	for _, f := range r.Findings {
		if !f.Severity.Valid() {
			return fmt.Errorf("malformed response: unknown severity %q", f.Severity)
		}
	}
	for _, m := range r.PerModel {
		for _, f := range m.Findings {
			if !f.Severity.Valid() {
				return fmt.Errorf("malformed response: unknown severity %q from %s", f.Severity, m.Model)
			}
		}
	}
	return nil
}

// IsConnectivity reports whether err should be treated as a transient
// network problem: the operation proceeds unchecked instead of
// failing.
func IsConnectivity(err error) bool {
	if err == nil {
		return false
	}
	var srv *ServerError
	if errors.As(err, &srv) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
