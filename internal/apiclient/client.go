// Package apiclient is the transport to the leave management REST API. It
// attaches the session credential to every request and picks up the
// credential the API rotates on each response.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/phillip-england/leavedesk/internal/requestctx"
	"github.com/phillip-england/leavedesk/internal/session"
)

const (
	HeaderAccessToken = "access-token"
	HeaderClient      = "client"
	HeaderUID         = "uid"
	HeaderRequestID   = "X-Request-ID"
)

// Credentials is the slice of the session store the transport needs.
type Credentials interface {
	Credential() (session.Credential, bool)
	Rotate(session.Credential) error
}

type Client struct {
	baseURL string
	http    *http.Client
	creds   Credentials
	log     *zap.Logger
}

func New(baseURL string, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 8 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     log,
	}
}

// WithCredentials returns a copy of c bound to one session.
func (c *Client) WithCredentials(creds Credentials) *Client {
	cp := *c
	cp.creds = creds
	return &cp
}

type Request struct {
	Method string
	Path   string
	Query  url.Values

	// JSON, when set, is encoded as the body. Otherwise Body/ContentType are
	// sent as given.
	JSON        any
	Body        io.Reader
	ContentType string
	Header      http.Header
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte

	// Credential is the rotated triple when the response carried one.
	Credential session.Credential
	Rotated    bool
}

func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Debug("api request failed",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", req.Method, req.Path, err)
	}
	c.log.Debug("api request",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("dur", time.Since(start)),
		zap.String("request_id", httpReq.Header.Get(HeaderRequestID)),
	)

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &Error{
			Method: req.Method,
			Path:   req.Path,
			Status: httpResp.StatusCode,
			Body:   body,
			Sent:   credentialFromHeader(httpReq.Header),
		}
	}

	resp := &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: body}
	rotated := credentialFromHeader(httpResp.Header)
	if rotated.Complete() {
		resp.Credential = rotated
		resp.Rotated = true
		if c.creds != nil {
			if err := c.creds.Rotate(rotated); err != nil {
				c.log.Warn("store rotated credential", zap.Error(err))
			}
		}
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	body := req.Body
	contentType := req.ContentType
	if req.JSON != nil {
		payload, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("prepare %s %s: %w", req.Method, req.Path, err)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	requestID := requestctx.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	httpReq.Header.Set(HeaderRequestID, requestID)

	if c.creds != nil {
		if cred, ok := c.creds.Credential(); ok && cred.Complete() {
			httpReq.Header.Set(HeaderAccessToken, cred.AccessToken)
			httpReq.Header.Set(HeaderClient, cred.Client)
			httpReq.Header.Set(HeaderUID, cred.UID)
		}
	}
	return httpReq, nil
}

func credentialFromHeader(h http.Header) session.Credential {
	return session.Credential{
		AccessToken: h.Get(HeaderAccessToken),
		Client:      h.Get(HeaderClient),
		UID:         h.Get(HeaderUID),
	}
}
