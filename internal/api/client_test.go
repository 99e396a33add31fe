package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprite-ai/preflight/internal/model"
)

func TestReviewSuccess(t *testing.T) {
	var got ReviewRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/review", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(ReviewResponse{
			Status: model.StatusFail,
			Findings: []model.Finding{{
				Path:     "a.go",
				Severity: model.SeverityMajor,
				Title:    "unchecked error",
				Message:  "the error from Close is dropped",
			}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-123", 5*time.Second)
	resp, err := c.Review(context.Background(), ReviewRequest{
		Branch:      "feature/x",
		PlanTier:    "free",
		StagedPatch: "diff --git a/a.go b/a.go\n",
		StagedFiles: []FileEntry{{Path: "a.go", ChangeType: "modified"}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusFail, resp.Status)
	require.Len(t, resp.Findings, 1)
	assert.Equal(t, "a.go", resp.Findings[0].Path)

	assert.Equal(t, "feature/x", got.Branch)
	assert.Equal(t, "free", got.PlanTier)
}

func TestReviewUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "stale", 5*time.Second)
	_, err := c.Review(context.Background(), ReviewRequest{})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, IsConnectivity(err), "auth failures must never read as connectivity")
}

func TestReviewClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_request"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 5*time.Second)
	_, err := c.Review(context.Background(), ReviewRequest{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "invalid_request")
	assert.False(t, IsConnectivity(err))
}

func TestReviewServerErrorIsConnectivity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 5*time.Second)
	_, err := c.Review(context.Background(), ReviewRequest{})
	var srvErr *ServerError
	require.ErrorAs(t, err, &srvErr)
	assert.Equal(t, http.StatusBadGateway, srvErr.StatusCode)
	assert.True(t, IsConnectivity(err))
}

func TestReviewTimeoutIsConnectivity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 20*time.Millisecond)
	_, err := c.Review(context.Background(), ReviewRequest{})
	require.Error(t, err)
	assert.True(t, IsConnectivity(err))
}

func TestReviewConnectionRefusedIsConnectivity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, "tok", time.Second)
	_, err := c.Review(context.Background(), ReviewRequest{})
	require.Error(t, err)
	assert.True(t, IsConnectivity(err))
}

func TestReviewMalformedResponse(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", "<html>oops</html>"},
		{"unknown status", `{"status":"MAYBE","findings":[]}`},
		{"bad severity", `{"status":"FAIL","findings":[{"path":"a.go","severity":"catastrophic","title":"t","message":"m"}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "tok", 5*time.Second)
			_, err := c.Review(context.Background(), ReviewRequest{})
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Contains(t, apiErr.Body, "malformed response")
		})
	}
}

func TestReviewPerModelDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"status": "FAIL",
			"findings": [],
			"perModel": [
				{"model": "alpha", "findings": [{"path":"a.go","severity":"major","title":"T","message":"m"}]},
				{"model": "beta", "findings": []}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 5*time.Second)
	resp, err := c.Review(context.Background(), ReviewRequest{})
	require.NoError(t, err)
	require.Len(t, resp.PerModel, 2)
	assert.Equal(t, "alpha", resp.PerModel[0].Model)
	require.Len(t, resp.PerModel[0].Findings, 1)
}

func TestErrUnauthorizedNotWrappedAsServerError(t *testing.T) {
	err := error(&ServerError{StatusCode: 503})
	assert.False(t, errors.Is(err, ErrUnauthorized))
}
