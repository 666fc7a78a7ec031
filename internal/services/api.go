// API service for making HTTP requests to the streaming backend
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/desertthunder/streamz/internal/shared"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Defaults used when the config leaves the backend address or auth scheme empty.
const (
	DefaultBaseURL    = "http://127.0.0.1:8000/api"
	DefaultAuthScheme = "Token"
)

// APIService issues requests against the streaming backend.
//
// The token is shared by every request made through the service, so the session layer can install or clear it while other goroutines are using the client.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	scheme     string

	mu    sync.RWMutex
	token string
}

// NewAPIService creates a new API service instance for the backend at baseURL.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		scheme:     DefaultAuthScheme,
	}
}

// BaseURL returns the backend root without a trailing slash.
func (a *APIService) BaseURL() string { return a.baseURL }

// SetAuthScheme sets the word placed before the token in the Authorization header.
func (a *APIService) SetAuthScheme(scheme string) {
	if scheme != "" {
		a.scheme = scheme
	}
}

// SetToken installs the token used for subsequent requests. An empty token removes the header.
func (a *APIService) SetToken(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = token
}

// Token returns the currently installed token.
func (a *APIService) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// APIError is returned for any non-2xx response.
//
// Payload holds the decoded JSON object when the backend sent one (DRF validation errors, {"detail": ...}, {"error": ...}).
type APIError struct {
	StatusCode int
	Payload    map[string]any
	Body       []byte
}

func (e *APIError) Error() string {
	if msg := PayloadMessage(e.Payload); msg != "" {
		return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("backend error: status %d", e.StatusCode)
}

// Unwrap maps authorization failures to [shared.ErrNotAuthenticated] and everything else to [shared.ErrAPIRequest].
func (e *APIError) Unwrap() error {
	if e.Unauthorized() {
		return shared.ErrNotAuthenticated
	}
	return shared.ErrAPIRequest
}

// Unauthorized reports whether the backend rejected the credentials.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// payloadKeys are consulted in order when looking for a human readable message.
var payloadKeys = []string{"error", "detail", "non_field_errors", "username", "email", "password", "password2", "plan"}

// PayloadMessage extracts the first message found in a backend error payload.
//
// Field errors are arrays of strings, the first element wins. Unknown keys are tried last in sorted order so the result is stable.
func PayloadMessage(payload map[string]any) string {
	if len(payload) == 0 {
		return ""
	}
	for _, key := range payloadKeys {
		if msg := firstString(payload[key]); msg != "" {
			return msg
		}
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if msg := firstString(payload[k]); msg != "" {
			return msg
		}
	}
	return ""
}

func firstString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		for _, item := range val {
			if s := firstString(item); s != "" {
				return s
			}
		}
	}
	return ""
}

func (a *APIService) newRequest(ctx context.Context, method, path string, body io.Reader, withAuth bool) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token := a.Token(); withAuth && token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: a.scheme}).SetAuthHeader(req)
	}
	return req, nil
}

// doRequest sends an authorized JSON request and decodes a JSON response into result.
//
// Non-2xx responses are returned as [*APIError].
func (a *APIService) doRequest(ctx context.Context, method, path string, body, result any) error {
	return a.send(ctx, method, path, body, result, true)
}

// doPublic is doRequest without the Authorization header.
//
// Login and registration must not present a stale token: token authentication rejects the request before the view runs.
func (a *APIService) doPublic(ctx context.Context, method, path string, body, result any) error {
	return a.send(ctx, method, path, body, result, false)
}

func (a *APIService) send(ctx context.Context, method, path string, body, result any, withAuth bool) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := a.newRequest(ctx, method, path, reader, withAuth)
	if err != nil {
		return err
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %w", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: data}
		var payload map[string]any
		if err := json.Unmarshal(data, &payload); err == nil {
			apiErr.Payload = payload
		}
		return apiErr
	}

	if result == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if raw, ok := result.(*[]byte); ok {
		*raw = data
		return nil
	}

	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (a *APIService) raw(ctx context.Context, method, path string, body io.Reader) (*APIResponse, error) {
	req, err := a.newRequest(ctx, method, path, body, true)
	if err != nil {
		return nil, err
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.raw(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.raw(ctx, http.MethodPost, path, bytes.NewReader(data))
}
