package client

import (
	"bufio"
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

	"github.com/alfredjeanlab/modflags/internal/antidelete"
	"github.com/alfredjeanlab/modflags/internal/model"
	"github.com/alfredjeanlab/modflags/internal/screen"
)

// HTTPClient implements SettingsClient using the modflags HTTP/JSON API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Settings ---

func (c *HTTPClient) GetSettings(ctx context.Context) (model.Settings, error) {
	var s model.Settings
	err := c.doJSON(ctx, http.MethodGet, "/v1/settings", nil, &s)
	return s, err
}

func (c *HTTPClient) UpdateSettings(ctx context.Context, patch SettingsPatch) (*UpdateResponse, error) {
	var resp UpdateResponse
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/settings", patch, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Toggle(ctx context.Context, flag string) (*UpdateResponse, error) {
	var resp UpdateResponse
	path := "/v1/settings/flags/" + url.PathEscape(flag) + "/toggle"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StreamSettings follows GET /v1/settings/stream, calling fn with the
// current settings and then each change. It returns when ctx is done, the
// server ends the stream, or fn returns an error.
func (c *HTTPClient) StreamSettings(ctx context.Context, fn func(model.Settings) error) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/settings/stream", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return apiError(resp.StatusCode, body)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		data, ok := strings.CutPrefix(scanner.Text(), "data:")
		if !ok {
			continue
		}
		var s model.Settings
		if err := json.Unmarshal([]byte(strings.TrimSpace(data)), &s); err != nil {
			return fmt.Errorf("decoding settings event: %w", err)
		}
		if err := fn(s); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("reading stream: %w", err)
	}
	return ctx.Err()
}

// --- Screen ---

func (c *HTTPClient) GetScreen(ctx context.Context) (*screen.Screen, error) {
	var sc screen.Screen
	if err := c.doJSON(ctx, http.MethodGet, "/v1/settings/screen", nil, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (c *HTTPClient) SetSection(ctx context.Context, section string, value bool) (*screen.Screen, error) {
	var sc screen.Screen
	body := map[string]bool{"value": value}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/settings/screen/"+url.PathEscape(section), body, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// --- Format ---

func (c *HTTPClient) FormatIdentifier(ctx context.Context, id int64, kind string) (*Identifier, error) {
	q := url.Values{}
	q.Set("id", strconv.FormatInt(id, 10))
	if kind != "" {
		q.Set("kind", kind)
	}
	var resp Identifier
	if err := c.doJSON(ctx, http.MethodGet, "/v1/format/identifier?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) FormatDeleted(ctx context.Context, text string, deletedAt *int32) (*RenderedText, error) {
	body := struct {
		Text      string `json:"text"`
		DeletedAt *int32 `json:"deleted_at,omitempty"`
	}{text, deletedAt}
	var resp RenderedText
	if err := c.doJSON(ctx, http.MethodPost, "/v1/format/deleted", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Messages ---

func (c *HTTPClient) DeleteMessages(ctx context.Context, msgs []model.Message, deletedBy *model.PeerID) (*antidelete.Decision, error) {
	body := struct {
		Messages  []model.Message `json:"messages"`
		DeletedBy *model.PeerID   `json:"deleted_by,omitempty"`
	}{msgs, deletedBy}
	var d antidelete.Decision
	if err := c.doJSON(ctx, http.MethodPost, "/v1/messages/delete", body, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *HTTPClient) PeerLabel(ctx context.Context, peer model.PeerID) (*PeerLabel, error) {
	kind := strings.ToLower(peer.Namespace.String())
	path := fmt.Sprintf("/v1/peers/%s/%d/label", url.PathEscape(kind), peer.ID)
	var resp PeerLabel
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (*HealthStatus, error) {
	var resp HealthStatus
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func apiError(status int, body []byte) error {
	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return &APIError{StatusCode: status, Message: errResp.Error}
	}
	return &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// doJSON performs an HTTP request with optional JSON body and decodes the
// JSON response into result when it is non-nil.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return apiError(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

var _ SettingsClient = (*HTTPClient)(nil)
