// Copyright 2019 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package graphqlhttp provides functions for checking GraphQL requests sent
// over HTTP as described in https://graphql.org/learn/serving-over-http/.
package graphqlhttp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	"go.opencensus.io/trace"
	"go.uber.org/zap"
	"golang.org/x/xerrors"
	"zombiezen.com/go/gqlcheck/graphql"
)

// maxRequestSize is the largest request body the handler reads.
const maxRequestSize = 1 << 20

// DefaultCacheSize is the number of validation results NewHandler keeps.
const DefaultCacheSize = 1024

// requestIDHeader carries the ID used to correlate a request's log entries.
const requestIDHeader = "X-Request-Id"

// Request is a GraphQL request as sent over HTTP.
type Request struct {
	Query         string                     `json:"query"`
	OperationName string                     `json:"operationName,omitempty"`
	Variables     map[string]json.RawMessage `json:"variables,omitempty"`
}

// Response is the result of checking a request.
type Response struct {
	Valid  bool                     `json:"valid"`
	Errors []*graphql.ResponseError `json:"errors,omitempty"`
}

// Handler serves GraphQL HTTP requests by validating them against its schema.
type Handler struct {
	schema *graphql.Schema
	log    *zap.Logger
	cache  *lru.Cache // query hash -> []*graphql.ResponseError; nil if disabled
}

// NewHandler returns a new handler that validates requests against the given
// schema, remembering the results for the DefaultCacheSize most recently seen
// queries. If logger is nil, nothing is logged.
func NewHandler(schema *graphql.Schema, logger *zap.Logger) *Handler {
	h, err := NewHandlerWithCacheSize(schema, logger, DefaultCacheSize)
	if err != nil {
		panic(err)
	}
	return h
}

// NewHandlerWithCacheSize returns a new handler that remembers the results
// for up to cacheSize queries. A cacheSize of zero disables caching.
func NewHandlerWithCacheSize(schema *graphql.Schema, logger *zap.Logger, cacheSize int) (*Handler, error) {
	if cacheSize < 0 {
		return nil, xerrors.Errorf("new graphql handler: negative cache size %d", cacheSize)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		schema: schema,
		log:    logger,
	}
	if cacheSize > 0 {
		var err error
		h.cache, err = lru.New(cacheSize)
		if err != nil {
			return nil, xerrors.Errorf("new graphql handler: %w", err)
		}
	}
	return h, nil
}

// ServeHTTP validates a GraphQL request and writes a Response as JSON.
// The request's X-Request-Id header is echoed back, or generated if absent.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	w.Header().Set(requestIDHeader, requestID)
	log := h.log.With(zap.String("request_id", requestID))

	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
	}
	gqlRequest, err := Parse(r)
	if err != nil {
		code := StatusCode(err)
		if code == http.StatusMethodNotAllowed {
			w.Header().Set("Allow", "GET, HEAD, POST")
		}
		log.Debug("Rejected GraphQL request",
			zap.String("method", r.Method),
			zap.Int("status", code),
			zap.Error(err),
		)
		http.Error(w, err.Error(), code)
		return
	}
	gqlResponse := h.validate(r.Context(), log, gqlRequest)
	if err := WriteResponse(w, gqlResponse); err != nil {
		log.Error("graphqlhttp.Handler.ServeHTTP",
			zap.String("operation_name", gqlRequest.OperationName),
			zap.Error(err),
		)
	}
}

// Validate checks a request against the handler's schema. It records the
// number of errors found on the ValidationErrors measure.
func (h *Handler) Validate(ctx context.Context, req Request) Response {
	return h.validate(ctx, h.log, req)
}

func (h *Handler) validate(ctx context.Context, log *zap.Logger, req Request) Response {
	ctx, span := trace.StartSpan(ctx, "graphqlhttp.Validate")
	defer span.End()

	errs, cached := h.check(req.Query)
	valid := len(errs) == 0
	span.AddAttributes(
		trace.StringAttribute("graphql.operation_name", req.OperationName),
		trace.Int64Attribute("graphql.error_count", int64(len(errs))),
		trace.BoolAttribute("graphql.cache_hit", cached),
	)
	if !valid {
		span.SetStatus(trace.Status{
			Code:    trace.StatusCodeInvalidArgument,
			Message: errs[0].Message,
		})
	}
	err := stats.RecordWithTags(ctx,
		[]tag.Mutator{tag.Upsert(KeyValid, strconv.FormatBool(valid))},
		ValidationErrors.M(int64(len(errs))))
	if err != nil {
		log.Warn("Could not record validation stats", zap.Error(err))
	}
	if !valid {
		log.Debug("GraphQL request has errors",
			zap.String("operation_name", req.OperationName),
			zap.Int("error_count", len(errs)),
		)
	}
	return Response{
		Valid:  valid,
		Errors: errs,
	}
}

// cacheEntry is a validation result keyed by the hash of its query.
// The query is kept so that hash collisions are not reported as hits.
type cacheEntry struct {
	query string
	errs  []*graphql.ResponseError
}

// check validates a query, consulting the cache first. The returned errors
// are shared between callers and must not be modified.
func (h *Handler) check(query string) (_ []*graphql.ResponseError, cached bool) {
	if h.cache == nil {
		return h.schema.Check(query), false
	}
	key := xxhash.Sum64String(query)
	if v, ok := h.cache.Get(key); ok {
		if entry, ok := v.(cacheEntry); ok && entry.query == query {
			return entry.errs, true
		}
	}
	errs := h.schema.Check(query)
	h.cache.Add(key, cacheEntry{query: query, errs: errs})
	return errs, false
}

// Parse parses a GraphQL HTTP request. If an error is returned, StatusCode
// will return the proper HTTP status code to use.
//
// Request methods may be GET, HEAD, or POST. If the method is not one of these,
// then an error is returned that will make StatusCode return
// http.StatusMethodNotAllowed.
func Parse(r *http.Request) (Request, error) {
	request := Request{
		Query: r.URL.Query().Get("query"),
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if v := r.FormValue("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &request.Variables); err != nil {
				return Request{}, &httpError{
					msg:   "parse graphql request: ",
					code:  http.StatusBadRequest,
					cause: err,
				}
			}
		}
		request.OperationName = r.FormValue("operationName")
	case http.MethodPost:
		rawContentType := r.Header.Get("Content-Type")
		contentType, _, err := mime.ParseMediaType(rawContentType)
		if err != nil {
			return Request{}, &httpError{
				msg:  "parse graphql request: invalid content type: " + rawContentType,
				code: http.StatusUnsupportedMediaType,
			}
		}
		switch contentType {
		case "application/json":
			if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
				return Request{}, &httpError{
					msg:   "parse graphql request: ",
					code:  http.StatusBadRequest,
					cause: err,
				}
			}
		case "application/x-www-form-urlencoded":
			request.Query = r.FormValue("query")
			request.OperationName = r.FormValue("operationName")
		case "application/graphql":
			data, err := io.ReadAll(r.Body)
			if err != nil {
				return Request{}, &httpError{
					msg:   "parse graphql request: ",
					code:  http.StatusBadRequest,
					cause: err,
				}
			}
			if len(data) > 0 {
				request.Query = string(data)
			}
		default:
			return Request{}, &httpError{
				msg:  "parse graphql request: unrecognized content type: " + contentType,
				code: http.StatusUnsupportedMediaType,
			}
		}
	default:
		return Request{}, &httpError{
			msg:  fmt.Sprintf("parse graphql request: method %s not allowed", r.Method),
			code: http.StatusMethodNotAllowed,
		}
	}
	if request.Query == "" {
		return Request{}, &httpError{
			msg:  "parse graphql request: missing query",
			code: http.StatusBadRequest,
		}
	}
	return request, nil
}

type httpError struct {
	msg   string
	code  int
	cause error
}

func (e *httpError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + e.cause.Error()
}

func (e *httpError) Unwrap() error {
	return e.cause
}

// StatusCode returns the HTTP status code an error indicates.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var e *httpError
	if !xerrors.As(err, &e) {
		return http.StatusInternalServerError
	}
	return e.code
}

// WriteResponse writes a validation result as an HTTP response.
func WriteResponse(w http.ResponseWriter, response Response) error {
	payload, err := json.Marshal(response)
	if err != nil {
		http.Error(w, "GraphQL marshal error", http.StatusInternalServerError)
		return xerrors.Errorf("write graphql response: %w", err)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	if _, err := w.Write(payload); err != nil {
		return xerrors.Errorf("write graphql response: %w", err)
	}
	return nil
}
