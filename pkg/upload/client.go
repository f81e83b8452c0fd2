package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrRejected is wrapped by errors for responses carrying success=false.
var ErrRejected = errors.New("upload: rejected by server")

const defaultTracerName = "docwidget/upload"

// Endpoint is the upload endpoint as seen by the widget.
type Endpoint interface {
	Documents(ctx context.Context, nik string) (map[string]string, error)
	Upload(ctx context.Context, req *Request) (*Response, error)
}

// Response is the JSON body returned by the upload endpoint.
type Response struct {
	Success bool               `json:"success"`
	Message string             `json:"message,omitempty"`
	Data    map[string]*string `json:"data,omitempty"`
}

// Part is one file part of an upload request.
type Part struct {
	// Field is the form field name, which is the document type.
	Field string
	File  *File
}

// Request is a multipart upload.
type Request struct {
	// Fields are the named non-file form fields. action=upload is always
	// sent first and cannot be overridden.
	Fields url.Values
	Parts  []Part
}

// StatusError is returned for a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upload: endpoint returned %d", e.StatusCode)
	}
	return fmt.Sprintf("upload: endpoint returned %d: %s", e.StatusCode, e.Body)
}

// RejectedError carries the message of a success=false response.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return ErrRejected.Error()
	}
	return ErrRejected.Error() + ": " + e.Message
}

func (e *RejectedError) Unwrap() error { return ErrRejected }

// Client talks to the upload endpoint over HTTP.
type Client struct {
	endpoint   *url.URL
	httpClient *http.Client
	tracer     trace.Tracer
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client. Default: a client with a 60s timeout.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTracerName sets the OpenTelemetry tracer name.
func WithTracerName(name string) ClientOption {
	return func(c *Client) {
		c.tracer = otel.Tracer(name)
	}
}

// NewClient parses the endpoint URL and returns a Client.
func NewClient(endpoint string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("upload: invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("upload: endpoint %q must be an absolute URL", endpoint)
	}

	c := &Client{
		endpoint:   u,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		tracer:     otel.Tracer(defaultTracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Documents fetches the stored paths for nik. Types with a null or empty path
// are left out of the result.
func (c *Client) Documents(ctx context.Context, nik string) (map[string]string, error) {
	ctx, span := c.tracer.Start(ctx, "upload.documents",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("docwidget.nik", nik)),
	)
	defer span.End()

	q := url.Values{}
	q.Set("action", "get_documents")
	q.Set("nik", nik)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(q), nil)
	if err != nil {
		return nil, endSpan(span, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(span, req)
	if err != nil {
		return nil, endSpan(span, err)
	}

	docs := make(map[string]string, len(resp.Data))
	for docType, path := range resp.Data {
		if path != nil && *path != "" {
			docs[docType] = *path
		}
	}
	span.SetAttributes(attribute.Int("docwidget.documents", len(docs)))
	return docs, endSpan(span, nil)
}

// Upload sends req as one multipart POST. The body is streamed; file parts are
// opened as they are written.
func (c *Client) Upload(ctx context.Context, req *Request) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "upload.upload",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.Int("docwidget.parts", len(req.Parts))),
	)
	defer span.End()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	// The caller owns the parts again once Upload returns.
	written := make(chan struct{})
	go func() {
		defer close(written)
		pw.CloseWithError(writeMultipart(mw, req))
	}()
	finish := func() {
		pr.Close()
		<-written
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(nil), pr)
	if err != nil {
		finish()
		return nil, endSpan(span, err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.do(span, httpReq)
	finish()
	if err != nil {
		return resp, endSpan(span, err)
	}
	return resp, endSpan(span, nil)
}

func writeMultipart(mw *multipart.Writer, req *Request) error {
	if err := mw.WriteField("action", "upload"); err != nil {
		return err
	}

	names := make([]string, 0, len(req.Fields))
	for name := range req.Fields {
		if name != "action" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range req.Fields[name] {
			if err := mw.WriteField(name, value); err != nil {
				return err
			}
		}
	}

	for _, part := range req.Parts {
		if err := writePart(mw, part); err != nil {
			return err
		}
	}
	return mw.Close()
}

// writePart opens the file only once its header is written, so a closed
// pipe never touches the file.
func writePart(mw *multipart.Writer, part Part) error {
	dst, err := mw.CreateFormFile(part.Field, part.File.Filename)
	if err != nil {
		return err
	}

	src, err := part.File.Open()
	if err != nil {
		return fmt.Errorf("upload: open %s: %w", part.File.Filename, err)
	}
	defer src.Close()

	_, err = io.Copy(dst, src)
	return err
}

// do executes req and decodes the JSON response. A non-2xx status yields a
// *StatusError, success=false a *RejectedError alongside the decoded body.
func (c *Client) do(span trace.Span, req *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("upload: decode response: %w", err)
	}
	if !out.Success {
		return &out, &RejectedError{Message: out.Message}
	}
	return &out, nil
}

// url returns the endpoint with q merged into its existing query.
func (c *Client) url(q url.Values) string {
	u := *c.endpoint
	merged := u.Query()
	for k, vs := range q {
		merged[k] = vs
	}
	u.RawQuery = merged.Encode()
	return u.String()
}

func endSpan(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
