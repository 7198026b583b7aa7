// Package api is the HTTP client for the TodoFlow backend: authentication,
// conversation history, the streaming chat endpoint, and task CRUD.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/todoflow-ai/todoflow/internal/domain"
	"github.com/todoflow-ai/todoflow/internal/logging"
	"github.com/todoflow-ai/todoflow/internal/stream"
)

// ErrUnauthorized is returned when the backend rejects the credential.
var ErrUnauthorized = errors.New("api: unauthorized")

// TokenResponse is the backend's reply to login and register.
type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        domain.User `json:"user"`
}

// Token converts the response into an oauth2 token for storage.
func (t TokenResponse) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
	}
}

// Client talks to one TodoFlow backend instance.
type Client struct {
	baseURL string
	http    *http.Client
	creds   oauth2.TokenSource // nil for unauthenticated calls
	log     *logging.Logger
}

// NewClient creates a backend client. creds may be nil; authenticated
// endpoints will then fail server-side, which callers see as a transport
// failure rather than a local validation error.
func NewClient(baseURL string, timeout time.Duration, creds oauth2.TokenSource, log *logging.Logger) *Client {
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		creds:   creds,
		log:     log.Sub("api"),
	}
}

// Login exchanges email and password for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out TokenResponse
	if err := c.postJSON(ctx, "/api/users/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a new account and returns its bearer token.
func (c *Client) Register(ctx context.Context, email, password, name string) (*TokenResponse, error) {
	body := map[string]string{"email": email, "password": password, "name": name}
	var out TokenResponse
	if err := c.postJSON(ctx, "/api/users/register", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History fetches the conversation history, oldest first.
func (c *Client) History(ctx context.Context, limit int) ([]domain.Message, error) {
	path := "/api/chat/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var msgs []domain.Message
	if err := c.getJSON(ctx, path, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Health pings the backend health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend unhealthy (%d)", resp.StatusCode)
	}
	return nil
}

// ChatStream submits one user message and returns a channel of decoded
// stream events. The channel is closed when the transport ends. Pre-flight
// failures (request build, non-2xx status, missing body) are returned as
// an error; failures mid-stream surface as a stream.KindError event.
func (c *Client) ChatStream(ctx context.Context, message string) (<-chan stream.Event, error) {
	q := url.Values{}
	q.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/chat/stream?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stream request: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("stream request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if resp.Body == nil {
		return nil, errors.New("stream response has no body")
	}

	events := make(chan stream.Event)
	go c.drainStream(resp.Body, events)
	return events, nil
}

// drainStream reads the response body chunk by chunk, feeding the decoder
// and forwarding events. The body is read to EOF even after the terminal
// sentinel so the connection can be reused; trailing frames are ignored
// by the decoder.
func (c *Client) drainStream(body io.ReadCloser, events chan<- stream.Event) {
	defer close(events)
	defer body.Close()

	dec := stream.NewDecoder()
	buf := make([]byte, 2048)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			for _, evt := range dec.Feed(string(buf[:n])) {
				events <- evt
			}
		}
		if err != nil {
			if err != io.EOF {
				c.log.Warn().Err(err).Msg("chat stream read failed")
				events <- stream.Event{Kind: stream.KindError, Text: err.Error()}
			}
			return
		}
	}
}

// authorize attaches the bearer credential if one is available. A missing
// or unreadable credential is not a local error: the backend answers 401
// and the caller handles it as a failed request.
func (c *Client) authorize(req *http.Request) {
	if c.creds == nil {
		return
	}
	tok, err := c.creds.Token()
	if err != nil {
		c.log.Debug().Err(err).Msg("no credential available")
		return
	}
	tok.SetAuthHeader(req)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, in, out)
}

// sendJSON executes a request with an optional JSON body and decodes a
// JSON response into out when out is non-nil.
func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.doJSON(req, out)
}

// doJSON executes a request and decodes a JSON response into out.
func (c *Client) doJSON(req *http.Request, out any) error {
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s failed (%d): %s",
			req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.URL.Path, err)
	}
	return nil
}
