package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jexcli/jex/internal/export"
	"github.com/jexcli/jex/internal/jira"
	"github.com/jexcli/jex/internal/model"
)

// envelope is the JSON body for batch endpoints and error responses.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// credentials optionally override the server's resolved tracker settings
// for one request.
type credentials struct {
	Server string `json:"server"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

type exportRequest struct {
	IssueKeys   []string     `json:"issue_keys"`
	Format      string       `json:"format"`
	Credentials *credentials `json:"credentials"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "jex",
		"version": s.version,
	})
}

func (s *Server) handleFormats(c *gin.Context) {
	formats := make([]gin.H, 0, len(model.Formats()))
	for _, f := range model.Formats() {
		formats = append(formats, gin.H{
			"name":        string(f),
			"description": f.Description(),
			"media_type":  f.ContentType(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"formats": formats})
}

// exporterFor builds an exporter from the server's config, with any
// per-request credential overrides applied on top.
func (s *Server) exporterFor(creds *credentials) (*export.Exporter, error) {
	cfg := jira.Config{Server: s.cfg.Server, Email: s.cfg.Email, Token: s.cfg.Token}
	if creds != nil {
		if creds.Server != "" {
			cfg.Server = creds.Server
		}
		if creds.Email != "" {
			cfg.Email = creds.Email
		}
		if creds.Token != "" {
			cfg.Token = creds.Token
		}
	}

	client, err := s.newClient(cfg)
	if err != nil {
		return nil, err
	}
	return export.New(client), nil
}

func (s *Server) handleExport(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, envelope{Message: "invalid request body: " + err.Error()})
		return
	}
	s.exportBatch(c, req)
}

func (s *Server) handleExportMultiple(c *gin.Context) {
	s.exportBatch(c, exportRequest{
		IssueKeys: strings.Split(c.Param("keys"), ","),
		Format:    c.Query("format"),
	})
}

// exportBatch serves both batch endpoints: each key succeeds or fails on
// its own, and the response carries every outcome. The status degrades to
// 404 only when nothing succeeded, or 502 when an upstream failure was
// among the reasons.
func (s *Server) exportBatch(c *gin.Context, req exportRequest) {
	keys := make([]string, 0, len(req.IssueKeys))
	for _, raw := range req.IssueKeys {
		if raw = strings.TrimSpace(raw); raw != "" {
			keys = append(keys, raw)
		}
	}
	if len(keys) == 0 {
		c.JSON(http.StatusBadRequest, envelope{Message: "no issue keys provided"})
		return
	}

	format, err := parseRequestFormat(req.Format)
	if err != nil {
		c.JSON(http.StatusBadRequest, envelope{Message: err.Error()})
		return
	}

	exporter, err := s.exporterFor(req.Credentials)
	if err != nil {
		c.JSON(http.StatusBadRequest, envelope{Message: err.Error()})
		return
	}

	data := make(map[string]string)
	failures := make(map[string]string)
	sawUpstream := false
	for _, raw := range keys {
		key, err := model.ParseKey(raw)
		if err != nil {
			failures[raw] = err.Error()
			continue
		}

		start := time.Now()
		content, err := exporter.ExportOne(c.Request.Context(), key, format)
		s.metrics.ObserveExport(string(format), err, time.Since(start))
		if err != nil {
			if errors.Is(err, jira.ErrUpstream) {
				sawUpstream = true
			}
			failures[key] = err.Error()
			continue
		}
		data[key] = content
	}

	status := http.StatusOK
	if len(data) == 0 {
		status = http.StatusNotFound
		if sawUpstream {
			status = http.StatusBadGateway
		}
	}

	c.JSON(status, envelope{
		Success: len(data) > 0,
		Message: fmt.Sprintf("exported %d of %d issues", len(data), len(keys)),
		Data:    data,
		Errors:  failures,
	})
}

// handleExportSingle returns the rendered payload itself, typed for the
// requested format, rather than a JSON envelope.
func (s *Server) handleExportSingle(c *gin.Context) {
	key, err := model.ParseKey(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusBadRequest, envelope{Message: err.Error()})
		return
	}

	format, err := parseRequestFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, envelope{Message: err.Error()})
		return
	}

	exporter, err := s.exporterFor(nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, envelope{Message: err.Error()})
		return
	}

	start := time.Now()
	content, err := exporter.ExportOne(c.Request.Context(), key, format)
	s.metrics.ObserveExport(string(format), err, time.Since(start))
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, jira.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, envelope{Message: err.Error()})
		return
	}

	c.Data(http.StatusOK, format.ContentType(), []byte(content))
}

// parseRequestFormat applies the API default, structured markup, when the
// client names no format.
func parseRequestFormat(raw string) (model.Format, error) {
	if raw == "" {
		return model.FormatXML, nil
	}
	return model.ParseFormat(raw)
}
