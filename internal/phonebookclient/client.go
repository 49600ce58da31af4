package phonebookclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marcus/phonebook/internal/models"
)

// ErrNotFound is returned when the server answers 404 for a record.
var ErrNotFound = errors.New("not found")

// DefaultTimeout bounds a single request when no http.Client is supplied.
const DefaultTimeout = 10 * time.Second

// TransportError covers every failure other than a missing record:
// network errors, unexpected status codes and undecodable bodies.
type TransportError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + ": transport error"
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client talks to a single REST resource, e.g. http://localhost:3001/persons.
type Client struct {
	BaseURL  string
	Resource string
	APIKey   string
	HTTP     *http.Client
}

// New creates a client for baseURL/resource.
func New(baseURL, resource, apiKey string) *Client {
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Resource: strings.Trim(resource, "/"),
		APIKey:   apiKey,
		HTTP:     &http.Client{Timeout: DefaultTimeout},
	}
}

// List fetches the whole collection.
func (c *Client) List(ctx context.Context) ([]models.Record, error) {
	var resp []models.Record
	if err := c.do(ctx, "list", http.MethodGet, c.collectionPath(), nil, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		resp = []models.Record{}
	}
	return resp, nil
}

// Create posts a new record; the server assigns its id.
func (c *Client) Create(ctx context.Context, draft models.Draft) (models.Record, error) {
	var resp models.Record
	if err := c.do(ctx, "create", http.MethodPost, c.collectionPath(), draft, &resp); err != nil {
		return models.Record{}, err
	}
	if resp.ID == "" {
		return models.Record{}, &TransportError{Op: "create", Err: errors.New("response has no id")}
	}
	return resp, nil
}

// Update replaces the record stored under id.
func (c *Client) Update(ctx context.Context, id models.ID, rec models.Record) (models.Record, error) {
	rec.ID = id
	var resp models.Record
	if err := c.do(ctx, "update", http.MethodPut, c.recordPath(id), rec, &resp); err != nil {
		return models.Record{}, err
	}
	// an empty or partial body (e.g. 204) means the server kept what we sent
	if resp.Name == "" {
		return rec, nil
	}
	if resp.ID == "" {
		resp.ID = id
	}
	return resp, nil
}

// Remove deletes the record stored under id.
func (c *Client) Remove(ctx context.Context, id models.ID) error {
	return c.do(ctx, "remove", http.MethodDelete, c.recordPath(id), nil, nil)
}

func (c *Client) collectionPath() string {
	return "/" + c.Resource
}

func (c *Client) recordPath(id models.ID) string {
	return "/" + c.Resource + "/" + url.PathEscape(id.String())
}

// targetsRecord reports whether op addresses a single record, where a 404
// means the record is gone. For list and create a 404 is a broken endpoint.
func targetsRecord(op string) bool {
	return op == "update" || op == "remove"
}

func (c *Client) do(ctx context.Context, op, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Debug("phonebook request failed", "op", op, "method", method, "path", path, "request_id", requestID, "err", err)
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	slog.Debug("phonebook request", "op", op, "method", method, "path", path,
		"status", resp.StatusCode, "request_id", requestID, "elapsed", time.Since(start))

	if resp.StatusCode == http.StatusNotFound && targetsRecord(op) {
		return fmt.Errorf("%s %s: %w", op, path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("unmarshal response: %w", err)}
		}
	}

	return nil
}
