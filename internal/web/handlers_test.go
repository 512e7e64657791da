package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	gojira "github.com/andygrunwald/go-jira"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jexcli/jex/internal/config"
	"github.com/jexcli/jex/internal/export"
	"github.com/jexcli/jex/internal/jira"
	"github.com/jexcli/jex/internal/logx"
)

func TestMain(m *testing.M) {
	logx.SetOutput(io.Discard)
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// stubClient serves issues from a map; err, when set, fails every fetch.
type stubClient struct {
	issues map[string]*gojira.Issue
	err    error
}

func (s *stubClient) IssueByKey(_ context.Context, key string) (*gojira.Issue, error) {
	if s.err != nil {
		return nil, s.err
	}
	issue, ok := s.issues[key]
	if !ok {
		return nil, fmt.Errorf("issue %s: %w", key, jira.ErrNotFound)
	}
	return issue, nil
}

func (s *stubClient) SearchIssues(context.Context, string) ([]gojira.Issue, error) {
	return nil, nil
}

func (s *stubClient) Comments(context.Context, *gojira.Issue) ([]*gojira.Comment, error) {
	return nil, nil
}

func (s *stubClient) RemoteLinks(context.Context, *gojira.Issue) ([]gojira.RemoteLink, error) {
	return nil, nil
}

func (s *stubClient) RawIssue(_ context.Context, key string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return `{"key": "` + key + `"}`, nil
}

func stubIssue(key, summary string) *gojira.Issue {
	return &gojira.Issue{
		Key: key,
		Fields: &gojira.IssueFields{
			Summary: summary,
			Type:    gojira.IssueType{Name: "Task"},
			Status:  &gojira.Status{Name: "Open"},
		},
	}
}

func newTestServer(client export.Client) *Server {
	cfg := &config.Config{
		Server: "https://demo.atlassian.net",
		Email:  "jane@example.com",
		Token:  "secret-token",
	}
	factory := func(jira.Config) (export.Client, error) { return client, nil }
	return NewServer(cfg, factory, "1.2.3")
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHealth(t *testing.T) {
	s := newTestServer(&stubClient{})

	for _, path := range []string{"/", "/health"} {
		rec := do(s, "GET", path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "jex", body["service"])
		assert.Equal(t, "1.2.3", body["version"])
	}
}

func TestFormats(t *testing.T) {
	s := newTestServer(&stubClient{})

	rec := do(s, "GET", "/formats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Formats []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			MediaType   string `json:"media_type"`
		} `json:"formats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Formats, 4)

	byName := map[string]string{}
	for _, f := range body.Formats {
		byName[f.Name] = f.MediaType
	}
	assert.Equal(t, "application/xml", byName["xml"])
	assert.Equal(t, "application/json", byName["json"])
	assert.Equal(t, "text/markdown", byName["markdown"])
	assert.Equal(t, "text/plain", byName["raw"])
}

func TestExportSingle(t *testing.T) {
	s := newTestServer(&stubClient{issues: map[string]*gojira.Issue{
		"DEMO-1": stubIssue("DEMO-1", "Fix login bug"),
	}})

	rec := do(s, "GET", "/export/demo-1?format=json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"key": "DEMO-1"`)
}

func TestExportSingleDefaultsToXML(t *testing.T) {
	s := newTestServer(&stubClient{issues: map[string]*gojira.Issue{
		"DEMO-1": stubIssue("DEMO-1", "Fix login bug"),
	}})

	rec := do(s, "GET", "/export/DEMO-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<key>DEMO-1</key>")
}

func TestExportSingleNotFound(t *testing.T) {
	s := newTestServer(&stubClient{})

	rec := do(s, "GET", "/export/DEMO-404?format=json", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Message, "not found")
}

func TestExportSingleUpstreamFailure(t *testing.T) {
	s := newTestServer(&stubClient{err: fmt.Errorf("fetching issue: %w", jira.ErrUpstream)})

	rec := do(s, "GET", "/export/DEMO-1?format=json", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestExportSingleRejectsBadInput(t *testing.T) {
	s := newTestServer(&stubClient{})

	rec := do(s, "GET", "/export/DEMO-1?format=yaml", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(s, "GET", "/export/nonsense?format=json", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportBatchPartialSuccess(t *testing.T) {
	s := newTestServer(&stubClient{issues: map[string]*gojira.Issue{
		"DEMO-1": stubIssue("DEMO-1", "Fix login bug"),
	}})

	rec := do(s, "POST", "/export", `{"issue_keys": ["DEMO-1", "DEMO-404"], "format": "markdown"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "exported 1 of 2 issues", env.Message)
	assert.Contains(t, env.Data["DEMO-1"], "# DEMO-1 - Fix login bug")
	assert.Contains(t, env.Errors["DEMO-404"], "not found")
}

func TestExportBatchNothingFound(t *testing.T) {
	s := newTestServer(&stubClient{})

	rec := do(s, "POST", "/export", `{"issue_keys": ["DEMO-404"], "format": "json"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, decodeEnvelope(t, rec).Success)
}

func TestExportBatchUpstreamFailure(t *testing.T) {
	s := newTestServer(&stubClient{err: fmt.Errorf("fetching issue: %w", jira.ErrUpstream)})

	rec := do(s, "POST", "/export", `{"issue_keys": ["DEMO-1"], "format": "json"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestExportBatchRejectsEmptyKeys(t *testing.T) {
	s := newTestServer(&stubClient{})

	rec := do(s, "POST", "/export", `{"issue_keys": [" ", ""], "format": "json"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportMultipleRoute(t *testing.T) {
	s := newTestServer(&stubClient{issues: map[string]*gojira.Issue{
		"DEMO-1": stubIssue("DEMO-1", "First issue"),
		"DEMO-2": stubIssue("DEMO-2", "Second issue"),
	}})

	rec := do(s, "GET", "/export/multiple/DEMO-1,DEMO-2?format=json", "")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Len(t, env.Data, 2)
	assert.Empty(t, env.Errors)
}

func TestCredentialOverride(t *testing.T) {
	var got jira.Config
	cfg := &config.Config{Server: "https://demo.atlassian.net", Email: "jane@example.com", Token: "secret-token"}
	client := &stubClient{issues: map[string]*gojira.Issue{"DEMO-1": stubIssue("DEMO-1", "Fix login bug")}}
	s := NewServer(cfg, func(c jira.Config) (export.Client, error) {
		got = c
		return client, nil
	}, "test")

	body := `{"issue_keys": ["DEMO-1"], "format": "json", "credentials": {"server": "https://other.example.com", "token": "other-token"}}`
	rec := do(s, "POST", "/export", body)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "https://other.example.com", got.Server)
	assert.Equal(t, "jane@example.com", got.Email)
	assert.Equal(t, "other-token", got.Token)
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(&stubClient{})

	rec := do(s, "GET", "/health", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(&stubClient{issues: map[string]*gojira.Issue{
		"DEMO-1": stubIssue("DEMO-1", "Fix login bug"),
	}})

	do(s, "GET", "/export/DEMO-1?format=json", "")

	rec := do(s, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jex_exports_total")
	assert.Contains(t, rec.Body.String(), "jex_http_requests_total")
}
