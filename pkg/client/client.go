package client

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

	"go.uber.org/zap"

	v1 "github.com/kubev2v/executor-agent/api/v1"
	srvErrors "github.com/kubev2v/executor-agent/pkg/errors"
)

const defaultTimeout = 10 * time.Second

// APIError is returned for any unexpected status code.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("agent api returned %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize agent client: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("failed to initialize agent client: unsupported scheme %q", u.Scheme)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api/v1",
		httpClient: &http.Client{Timeout: defaultTimeout},
	}, nil
}

// GetExecutorStatus fetches the pool snapshot
// GET /api/v1/executor
func (c *Client) GetExecutorStatus(ctx context.Context) (*v1.ExecutorStatus, error) {
	var status v1.ExecutorStatus
	if err := c.get(ctx, "/executor", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetProbes fetches the monitored paths
// GET /api/v1/probes
func (c *Client) GetProbes(ctx context.Context) ([]v1.Probe, error) {
	var resp v1.ProbeListResponse
	if err := c.get(ctx, "/probes", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Probes, nil
}

// ListEvents fetches one page of the journal
// GET /api/v1/events
func (c *Client) ListEvents(ctx context.Context, params v1.GetEventsParams) (*v1.EventListResponse, error) {
	query := url.Values{}
	for _, k := range params.Kind {
		query.Add("kind", k)
	}
	if params.Worker != "" {
		query.Set("worker", params.Worker)
	}
	if params.Page > 0 {
		query.Set("page", fmt.Sprint(params.Page))
	}
	if params.PageSize > 0 {
		query.Set("pageSize", fmt.Sprint(params.PageSize))
	}

	var resp v1.EventListResponse
	if err := c.get(ctx, "/events", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateTask dispatches a diagnostic task
// POST /api/v1/executor/tasks
func (c *Client) CreateTask(ctx context.Context, task v1.TaskRequest) error {
	body, err := json.Marshal(task)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/executor/tasks", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	zap.S().Named("client").Debugw("request", "method", req.Method, "url", u)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", path, err)
		}
		return nil
	case http.StatusNotFound:
		return srvErrors.NewResourceNotFoundError("endpoint", path)
	default:
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
}

func errorMessage(body io.Reader) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 4096)).Decode(&e); err != nil {
		return ""
	}
	return e.Error
}
