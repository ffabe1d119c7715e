// Package sync implements the HTTP client for the HatiData control plane.
// It covers the data sync surface (/v1/sync/*) and the auth surface
// (/v1/auth/*). Quota and capability decisions are made before anything here
// is called; this package only moves bytes and tokens.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type (
	// Client talks to the HatiData control plane.
	Client struct {
		httpClient *http.Client
		endpoint   string
		apiKey     string
	}

	// SyncResponse is returned by push operations.
	SyncResponse struct {
		Success    bool    `json:"success"`
		Message    string  `json:"message"`
		RowsSynced *uint64 `json:"rows_synced,omitempty"`
	}

	// TableSchema describes a remote table.
	TableSchema struct {
		Name    string         `json:"name"`
		Columns []ColumnSchema `json:"columns"`
	}

	// ColumnSchema describes one column of a remote table.
	ColumnSchema struct {
		Name     string `json:"name"`
		DataType string `json:"data_type"`
		Nullable bool   `json:"nullable"`
	}

	// SignupRequest creates a new account and organization.
	SignupRequest struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		OrgName  string `json:"org_name"`
		Tier     string `json:"tier"`
	}

	// SignupResponse is returned by Signup. Token is empty when the control
	// plane requires email verification before issuing a session.
	SignupResponse struct {
		OrgID string `json:"org_id"`
		Token string `json:"token,omitempty"`
	}

	// LoginResponse is returned by Login.
	LoginResponse struct {
		Token     string `json:"token"`
		ExpiresAt string `json:"expires_at,omitempty"`
	}

	// Identity describes the authenticated caller.
	Identity struct {
		Email string `json:"email"`
		OrgID string `json:"org_id"`
	}

	apiError struct {
		Error string `json:"error"`
	}
)

const requestTimeout = 60 * time.Second

// New creates a client authenticated with an API key.
func New(endpoint, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
	}
}

// NewUnauthenticated creates a client for signup and login, which happen
// before any credential exists.
func NewUnauthenticated(endpoint string) *Client {
	return New(endpoint, "")
}

// PushTable uploads a table's Parquet file to the control plane via
// multipart POST /v1/sync/push.
func (c *Client) PushTable(ctx context.Context, table, parquetPath string) (*SyncResponse, error) {
	f, err := os.Open(parquetPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", parquetPath)
	}
	defer func() { _ = f.Close() }()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if err := w.WriteField("table_name", table); err != nil {
		return nil, errors.Wrap(err, "failed to write form field")
	}

	part, err := w.CreateFormFile("data", filepath.Base(parquetPath))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create form file")
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", parquetPath)
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to finalize multipart body")
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/v1/sync/push", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var resp SyncResponse
	if err := c.do(req, &resp); err != nil {
		return nil, errors.Wrapf(err, "failed to push table %s", table)
	}

	return &resp, nil
}

// PullSchema fetches the list of remote table schemas.
func (c *Client) PullSchema(ctx context.Context) ([]TableSchema, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/sync/schema", nil)
	if err != nil {
		return nil, err
	}

	var schemas []TableSchema
	if err := c.do(req, &schemas); err != nil {
		return nil, errors.Wrap(err, "failed to pull schema")
	}

	return schemas, nil
}

// PullTable downloads a single table's data as Parquet bytes.
func (c *Client) PullTable(ctx context.Context, table string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/sync/pull/"+table, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to pull table %s", table)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, errors.Wrapf(decodeError(resp), "failed to pull table %s", table)
	}

	data, err := io.ReadAll(resp.Body)
	return data, errors.Wrapf(err, "failed to read response for table %s", table)
}

// Signup creates a new account via POST /v1/auth/signup.
func (c *Client) Signup(ctx context.Context, signup SignupRequest) (*SignupResponse, error) {
	var resp SignupResponse
	if err := c.postJSON(ctx, "/v1/auth/signup", signup, &resp); err != nil {
		return nil, errors.Wrap(err, "signup failed")
	}
	return &resp, nil
}

// Login exchanges credentials for a session token via POST /v1/auth/login.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}

	var resp LoginResponse
	if err := c.postJSON(ctx, "/v1/auth/login", body, &resp); err != nil {
		return nil, errors.Wrap(err, "login failed")
	}
	return &resp, nil
}

// Me returns the identity behind the configured API key via GET /v1/auth/me.
func (c *Client) Me(ctx context.Context) (*Identity, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var id Identity
	if err := c.do(req, &id); err != nil {
		return nil, errors.Wrap(err, "failed to verify identity")
	}
	return &id, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "failed to marshal request")
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create request for %s", path)
	}

	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	return errors.Wrap(json.NewDecoder(resp.Body).Decode(out), "failed to decode response")
}

// decodeError extracts the control plane's error message, falling back to the
// HTTP status when the body isn't the expected JSON shape.
func decodeError(resp *http.Response) error {
	var apiErr apiError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
		return errors.New(apiErr.Error)
	}
	return errors.Errorf("control plane returned %s", resp.Status)
}
