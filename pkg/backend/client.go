package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"linguacv/internal/domain"
	"linguacv/internal/model"
)

const maxSnapshotBytes = 1 << 20

// Client talks to the résumé backend that stores the latest snapshot
// extracted from the voice session.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a client for baseURL whose requests give up after timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Latest performs one GET {base}/latest. Every failure is returned as a
// *domain.FetchError so the poller can treat them uniformly.
func (c *Client) Latest(ctx context.Context) (*model.ResumeSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/latest", nil)
	if err != nil {
		return nil, &domain.FetchError{Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Message: transportMessage(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxSnapshotBytes))
		return nil, &domain.FetchError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotBytes+1))
	if err != nil {
		return nil, &domain.FetchError{Message: transportMessage(err)}
	}
	if len(body) > maxSnapshotBytes {
		return nil, &domain.FetchError{Message: fmt.Sprintf("snapshot exceeds %d bytes", maxSnapshotBytes)}
	}

	snap, err := model.DecodeSnapshot(body)
	if err != nil {
		return nil, &domain.FetchError{Message: "invalid snapshot: " + err.Error()}
	}
	return snap, nil
}

// Reset asks the backend to discard its stored résumé. Anything other than
// 200 is a failure.
func (c *Client) Reset(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/reset", nil)
	if err != nil {
		return errors.Wrap(err, "build reset request")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &domain.FetchError{Message: transportMessage(err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxSnapshotBytes))

	if resp.StatusCode != http.StatusOK {
		return &domain.FetchError{Status: resp.StatusCode}
	}
	return nil
}

func transportMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return "request timed out"
	}
	return "failed to fetch: " + err.Error()
}
