// Package rest serves the query parser over HTTP with chi.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rsanders/scoped-search/internal/batch"
	"github.com/rsanders/scoped-search/internal/config"
	"github.com/rsanders/scoped-search/internal/ir"
	"github.com/rsanders/scoped-search/internal/logger"
	"github.com/rsanders/scoped-search/internal/metrics"
	"github.com/rsanders/scoped-search/internal/parser"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest       = "bad_request"
	CodeTooManyQueries   = "too_many_queries"
	CodeBodyTooLarge     = "body_too_large"
	CodeRateLimited      = "rate_limited"
	CodeInternalError    = "internal_error"
	CodeNotFound         = "not_found"
	CodeMethodNotAllowed = "method_not_allowed"
)

// ParseResponse is the body of a single parse.
type ParseResponse struct {
	Conditions  ir.Conditions `json:"conditions"`
	Fingerprint string        `json:"fingerprint"`
	Truncated   bool          `json:"truncated"`
}

// BatchResponse is the body of a batch parse, one result per query in order.
type BatchResponse struct {
	Results []ParseResponse `json:"results"`
}

// PatternInfo describes one registry category.
type PatternInfo struct {
	Priority int         `json:"priority"`
	Name     string      `json:"name"`
	Operator ir.Operator `json:"operator,omitempty"`
	Pattern  string      `json:"pattern"`
}

// PatternsResponse is the body of GET /v1/patterns.
type PatternsResponse struct {
	GrammarVersion string        `json:"grammar_version"`
	MaxQueryLength int           `json:"max_query_length"`
	Categories     []PatternInfo `json:"categories"`
}

// ErrorResponse is the body of every error.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type parseRequest struct {
	Query *string `json:"query"`
}

type batchRequest struct {
	Queries []*string `json:"queries"`
}

// Options configures a Server.
type Options struct {
	Batch           *batch.Parser
	Logger          *slog.Logger
	MaxBodyBytes    int64
	MaxBatchQueries int
	RateLimit       config.RateLimitConfig
	IDs             IDGenerator
}

// Server holds the HTTP handlers.
type Server struct {
	batch           *batch.Parser
	logger          *slog.Logger
	maxBodyBytes    int64
	maxBatchQueries int
	rateLimit       config.RateLimitConfig
	ids             IDGenerator
}

// ErrNoBatchParser is returned by NewServer when Options.Batch is nil.
var ErrNoBatchParser = errors.New("rest: batch parser is required")

// NewServer creates an HTTP API server. The caller owns opts.Batch and
// closes it after the server stops.
func NewServer(opts Options) (*Server, error) {
	if opts.Batch == nil {
		return nil, ErrNoBatchParser
	}
	s := &Server{
		batch:           opts.Batch,
		logger:          opts.Logger,
		maxBodyBytes:    opts.MaxBodyBytes,
		maxBatchQueries: opts.MaxBatchQueries,
		rateLimit:       opts.RateLimit,
		ids:             opts.IDs,
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	if s.ids == nil {
		s.ids = UUIDGenerator{}
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = 64 << 10
	}
	if s.maxBatchQueries <= 0 {
		s.maxBatchQueries = 100
	}
	return s, nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(requestID(s.ids))
	r.Use(accessLog(s.logger))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		if s.rateLimit.RequestsPerMinute > 0 {
			r.Use(NewRateLimiter(s.rateLimit.RequestsPerMinute, s.rateLimit.Burst).Middleware)
		}
		r.Use(maxBody(s.maxBodyBytes))

		r.Get("/parse", s.handleParseGet)
		r.Post("/parse", s.handleParsePost)
		r.Post("/parse/batch", s.handleParseBatch)
		r.Get("/patterns", s.handlePatterns)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":          "ok",
		"version":         ir.Version,
		"grammar_version": ir.GrammarVersion,
	})
}

// handleParseGet handles GET /v1/parse?q=. A missing q parameter is absent input.
func (s *Server) handleParseGet(w http.ResponseWriter, r *http.Request) {
	var query *string
	if values, ok := r.URL.Query()["q"]; ok && len(values) > 0 {
		query = &values[0]
	}
	s.respondParse(w, r, query)
}

// handleParsePost handles POST /v1/parse. A null or missing query is absent input.
func (s *Server) handleParsePost(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.respondParse(w, r, req.Query)
}

func (s *Server) respondParse(w http.ResponseWriter, r *http.Request, query *string) {
	resp, err := parseResponse(query)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	etag := strconv.Quote(resp.Fingerprint)
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Values("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	logger.FromContext(r.Context()).Debug("query parsed",
		slog.Int("conditions", len(resp.Conditions)),
		slog.Bool("truncated", resp.Truncated))
	writeJSON(w, http.StatusOK, resp)
}

// etagMatches applies the weak comparison RFC 9110 requires for
// If-None-Match: "*" matches, W/ prefixes are ignored, and each header
// value may list several tags.
func etagMatches(headers []string, etag string) bool {
	for _, h := range headers {
		for _, tag := range strings.Split(h, ",") {
			tag = strings.TrimSpace(tag)
			if tag == "*" || strings.TrimPrefix(tag, "W/") == etag {
				return true
			}
		}
	}
	return false
}

func parseResponse(query *string) (ParseResponse, error) {
	a := parser.Analyze(query)
	metrics.RecordParse(a.Conditions, a.Absent, a.Truncated)

	fp, err := ir.Fingerprint(a.Conditions)
	if err != nil {
		return ParseResponse{}, err
	}
	return ParseResponse{Conditions: a.Conditions, Fingerprint: fp, Truncated: a.Truncated}, nil
}

// handleParseBatch handles POST /v1/parse/batch.
func (s *Server) handleParseBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Queries == nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "queries is required")
		return
	}
	if len(req.Queries) > s.maxBatchQueries {
		writeError(w, http.StatusBadRequest, CodeTooManyQueries,
			fmt.Sprintf("at most %d queries per batch", s.maxBatchQueries))
		return
	}

	results, err := s.batch.ParseAll(r.Context(), req.Queries)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	resp := BatchResponse{Results: make([]ParseResponse, len(results))}
	for i, res := range results {
		metrics.RecordParse(res.Conditions, res.Absent, res.Truncated)
		resp.Results[i] = ParseResponse{
			Conditions:  res.Conditions,
			Fingerprint: res.Fingerprint,
			Truncated:   res.Truncated,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePatterns handles GET /v1/patterns.
func (s *Server) handlePatterns(w http.ResponseWriter, _ *http.Request) {
	cats := parser.Categories()
	resp := PatternsResponse{
		GrammarVersion: ir.GrammarVersion,
		MaxQueryLength: parser.MaxQueryLength,
		Categories:     make([]PatternInfo, len(cats)),
	}
	for i, c := range cats {
		resp.Categories[i] = PatternInfo{Priority: i + 1, Name: c.Name, Operator: c.Operator, Pattern: c.Pattern}
	}
	writeJSON(w, http.StatusOK, resp)
}

// decode reads a JSON body into v, writing an error response on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeBodyTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Error("internal error", slog.Any("error", err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
