package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"signtrack/internal/domain"
)

const defaultRequestTimeout = 30 * time.Second

// Client talks to the remote signing pipeline: one submission endpoint and
// one bearer-authenticated progress endpoint. Retrying is not its concern;
// the poller owns the schedule and the submission path is fail-fast.
type Client struct {
	client *resty.Client
	token  string
}

func NewClient(baseURL string, token string) (*Client, error) {
	client := resty.New()
	client.SetTimeout(defaultRequestTimeout)
	client.SetRetryCount(0)

	return NewClientWithClient(baseURL, token, client)
}

func NewClientWithClient(baseURL string, token string, client *resty.Client) (*Client, error) {
	trimmedBase := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmedBase == "" {
		return nil, fmt.Errorf("pipeline base url is required")
	}
	if _, err := url.ParseRequestURI(trimmedBase); err != nil {
		return nil, fmt.Errorf("invalid pipeline base url: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultRequestTimeout)
	}
	client.SetRetryCount(0)
	client.SetBaseURL(trimmedBase)

	return &Client{
		client: client,
		token:  strings.TrimSpace(token),
	}, nil
}

// Submit posts the batch as one multipart request and returns the pipeline's
// acknowledgment. Any failure here is terminal for the batch.
func (c *Client) Submit(ctx context.Context, files []SubmitFile) (*SubmitResponse, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("client is not initialized")
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files to submit", domain.ErrValidation)
	}

	readers := make([]*os.File, 0, len(files))
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()

	req := c.client.R().
		SetContext(ctx).
		SetResult(&SubmitResponse{})
	if c.token != "" {
		req.SetAuthToken(c.token)
	}

	for _, f := range files {
		reader, err := os.Open(f.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		readers = append(readers, reader)
		req.SetFileReader("files", f.Name, reader)
	}

	response, err := req.Post("/workflow/process-invoices")
	if err != nil {
		return nil, &APIError{
			Message:   "submission request failed",
			Transient: false,
			Cause:     err,
		}
	}

	if response.IsError() {
		return nil, &APIError{
			StatusCode: response.StatusCode(),
			Message:    responseErrorMessage(response),
			Transient:  false,
		}
	}

	result, ok := response.Result().(*SubmitResponse)
	if !ok || result == nil {
		return nil, &APIError{Message: "submission returned an unreadable response"}
	}
	return result, nil
}

// Progress fetches the current run state for a session. A 404 means the
// session expired and is surfaced as domain.ErrSessionExpired; any other
// failure is classified transient so the next tick retries.
func (c *Client) Progress(ctx context.Context, sessionID string) (*ProgressResponse, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("client is not initialized")
	}
	trimmedID := strings.TrimSpace(sessionID)
	if trimmedID == "" {
		return nil, fmt.Errorf("%w: session id is required", domain.ErrValidation)
	}

	req := c.client.R().
		SetContext(ctx).
		SetHeader("Cache-Control", "no-cache").
		SetResult(&ProgressResponse{})
	if c.token != "" {
		req.SetAuthToken(c.token)
	}

	response, err := req.Get("/progress/" + url.PathEscape(trimmedID))
	if err != nil {
		return nil, &APIError{
			Message:   "progress request failed",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}

	if response.StatusCode() == http.StatusNotFound {
		return nil, &APIError{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("session %s", trimmedID),
			Transient:  false,
			Cause:      domain.ErrSessionExpired,
		}
	}
	if response.IsError() {
		return nil, &APIError{
			StatusCode: response.StatusCode(),
			Message:    responseErrorMessage(response),
			Transient:  isTransientHTTPStatus(response.StatusCode()),
		}
	}

	result, ok := response.Result().(*ProgressResponse)
	if !ok || result == nil {
		return nil, &APIError{Message: "progress returned an unreadable response", Transient: true}
	}
	return result, nil
}

func responseErrorMessage(response *resty.Response) string {
	base := fmt.Sprintf("pipeline returned status %d", response.StatusCode())
	body := strings.TrimSpace(response.String())
	if body == "" {
		return base
	}
	return fmt.Sprintf("%s: %s", base, body)
}
