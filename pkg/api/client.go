// Package api executes requests against the remote notes API and folds
// every response into one contract: a body, an Empty result, or an *Error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 4 << 20

// ErrEmpty is returned by Result.Decode when the response carried no usable
// payload.
var ErrEmpty = errors.New("api: empty response")

// CredentialSource supplies the bearer credential attached to each request.
type CredentialSource interface {
	Credential() string
}

// Options configure a Client.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	HTTPClient  *http.Client
	Credentials CredentialSource
	Logger      *zerolog.Logger
}

// Client is safe for concurrent use.
type Client struct {
	base  *url.URL
	http  *http.Client
	creds CredentialSource
	log   zerolog.Logger
}

// New validates the base URL and builds a Client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api: invalid base url %q", opts.BaseURL)
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "api").Logger()
	}
	return &Client{base: base, http: hc, creds: opts.Credentials, log: log}, nil
}

// Request describes one call. Body, when non-nil, is sent as JSON.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
}

// Result is a successful response. Body is nil for an Empty result.
type Result struct {
	Status int
	Body   []byte
}

// Empty reports whether the success response had no usable payload.
func (r *Result) Empty() bool {
	return r == nil || len(r.Body) == 0
}

// Decode unmarshals the JSON body into v.
func (r *Result) Decode(v interface{}) error {
	if r.Empty() {
		return ErrEmpty
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("api: decode: %w", err)
	}
	return nil
}

// Execute runs req and classifies the response:
//   - non-2xx becomes *Error, with FieldErrors when the server reported
//     per-field validation failures;
//   - 204, a zero-length body, a non-JSON content type, or a JSON body that
//     does not parse becomes an Empty Result;
//   - anything else is a Result carrying the raw JSON body.
func (c *Client) Execute(ctx context.Context, req Request) (*Result, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	target := c.resolve(req.Path, req.Query)

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("api: encode %s %s: %w", method, req.Path, err)
		}
		body = bytes.NewReader(b)
	}

	hr, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("api: build %s %s: %w", method, req.Path, err)
	}
	requestID := uuid.NewString()
	hr.Header.Set("Accept", "application/json")
	hr.Header.Set("X-Request-Id", requestID)
	if body != nil {
		hr.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		if token := c.creds.Credential(); token != "" {
			hr.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(hr)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", req.Path).Str("request_id", requestID).Msg("request failed")
		return nil, &Error{Message: fmt.Sprintf("%s %s: request failed", method, req.Path), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, &Error{Status: resp.StatusCode, Message: "failed to read response", Err: err}
	}
	if len(raw) > maxBodyBytes {
		c.log.Debug().Str("path", req.Path).Str("request_id", requestID).Msg("response exceeds size limit")
		return nil, &Error{Status: resp.StatusCode, Message: fmt.Sprintf("response too large (over %d bytes)", maxBodyBytes)}
	}

	contentType := resp.Header.Get("Content-Type")
	c.log.Debug().
		Str("method", method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Int("content_length", len(raw)).
		Str("content_type", contentType).
		Str("request_id", requestID).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorFromResponse(resp.StatusCode, contentType, raw)
	}

	res := &Result{Status: resp.StatusCode}
	switch {
	case resp.StatusCode == http.StatusNoContent, len(raw) == 0, !isJSON(contentType):
		return res, nil
	case !json.Valid(raw):
		c.log.Debug().Str("path", req.Path).Str("request_id", requestID).Msg("success body is not valid JSON; treating as empty")
		return res, nil
	}
	res.Body = raw
	return res, nil
}

func (c *Client) resolve(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "application/json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
