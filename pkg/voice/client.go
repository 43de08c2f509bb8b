// Package voice opens and closes sessions on the hosted voice assistant. The
// assistant writes its results to the résumé backend; this package only
// owns the session lifecycle.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// Client talks to the voice API.
type Client struct {
	BaseURL     string
	APIKey      string
	AssistantID string
	HTTP        *http.Client
}

func NewClient(baseURL, apiKey, assistantID string) *Client {
	return &Client{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		APIKey:      apiKey,
		AssistantID: assistantID,
		HTTP:        &http.Client{Timeout: 30 * time.Second},
	}
}

// Session is an open call. It must be closed through the client that
// opened it.
type Session struct {
	ID          string
	AssistantID string
	StartedAt   time.Time
}

type openReq struct {
	AssistantID string `json:"assistantId"`
}

type openResp struct {
	ID string `json:"id"`
}

// Open starts a call with the configured assistant.
func (c *Client) Open(ctx context.Context) (*Session, error) {
	if c.AssistantID == "" {
		return nil, errors.WithHint(errors.New("voice assistant id not configured"), "set VOICE_ASSISTANT_ID")
	}
	body, err := json.Marshal(openReq{AssistantID: c.AssistantID})
	if err != nil {
		return nil, errors.Wrap(err, "encode call request")
	}

	resp, err := c.doWithRetry(ctx, http.MethodPost, c.BaseURL+"/call", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var out openResp
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "decode call response")
	}
	if out.ID == "" {
		return nil, errors.New("voice api returned no call id")
	}
	return &Session{ID: out.ID, AssistantID: c.AssistantID, StartedAt: time.Now()}, nil
}

// Close ends the call. A call the API no longer knows is treated as closed.
func (c *Client) Close(ctx context.Context, s *Session) error {
	if s == nil {
		return nil
	}
	req, err := c.newRequest(ctx, http.MethodDelete, c.BaseURL+"/call/"+url.PathEscape(s.ID), nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return errors.Wrap(err, "close voice call")
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return checkStatus(resp)
}

func (c *Client) newRequest(ctx context.Context, method, target string, body []byte) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, r)
	if err != nil {
		return nil, errors.Wrap(err, "build voice request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	return req, nil
}

// doWithRetry retries transport failures with exponential backoff. Responses
// of any status are returned to the caller as-is.
func (c *Client) doWithRetry(ctx context.Context, method, target string, body []byte) (*http.Response, error) {
	const attempts = 3
	// One idempotency key across attempts so a retried open cannot start two calls.
	key := uuid.NewString()
	var lastErr error
	for i := 0; i < attempts; i++ {
		req, err := c.newRequest(ctx, method, target, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Idempotency-Key", key)

		resp, err := c.HTTP.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if i < attempts-1 {
			backoff := time.Duration(1<<i) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, errors.Wrap(lastErr, "voice api unreachable")
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(snippet))
	if msg == "" {
		return errors.Newf("voice api: HTTP %d", resp.StatusCode)
	}
	return errors.Newf("voice api: HTTP %d: %s", resp.StatusCode, msg)
}
