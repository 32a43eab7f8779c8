package remote

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

	"github.com/abhisek/crispterm/internal/interview"
)

// HTTPStore is a Store backed by the interview service's HTTP API.
type HTTPStore struct {
	baseURL string
	client  *http.Client
}

// NewHTTPStore creates a store client for the given base URL.
func NewHTTPStore(baseURL string) *HTTPStore {
	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// apiError is the service's error envelope.
type apiError struct {
	Error string `json:"error"`
}

func (h *HTTPStore) Push(ctx context.Context, s interview.Session) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	endpoint := h.baseURL + "/api/interview/complete-interview"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("push session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("push session: %s", readAPIError(resp))
	}
	return nil
}

func (h *HTTPStore) Get(ctx context.Context, sessionID string) (*interview.Session, error) {
	endpoint := h.baseURL + "/api/candidates/" + url.PathEscape(sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get session: %s", readAPIError(resp))
	}

	var out struct {
		Interview interview.Session `json:"interview"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &out.Interview, nil
}

func (h *HTTPStore) List(ctx context.Context, opts ListOptions) ([]Candidate, error) {
	endpoint, err := url.Parse(h.baseURL + "/api/candidates/get-all")
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}

	q := endpoint.Query()
	if opts.Query != "" {
		q.Set("q", opts.Query)
	}
	if opts.Sort != "" {
		q.Set("sort", opts.Sort)
	}
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list candidates: %s", readAPIError(resp))
	}

	var out struct {
		Candidates []Candidate `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}
	return out.Candidates, nil
}

// readAPIError extracts the error message from a non-200 response.
func readAPIError(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return resp.Status
	}
	var ae apiError
	if json.Unmarshal(body, &ae) == nil && ae.Error != "" {
		return fmt.Sprintf("%s: %s", resp.Status, ae.Error)
	}
	return resp.Status
}
