package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-site-backend/auth"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Client talks to the portfolio API. It satisfies the admin controller's
// ProjectStore and Uploader.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken sets the bearer token sent on authenticated requests.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log.With().Str("component", "apiClient").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type createResponse struct {
	ID uuid.UUID `json:"id"`
}

type uploadResponse struct {
	URL string `json:"url"`
}

// SignIn exchanges credentials for a token and keeps it for later requests.
func (c *Client) SignIn(ctx context.Context, email, password string) (string, auth.Identity, error) {
	var out loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, jsonBody(loginRequest{Email: email, Password: password}), &out)
	if err != nil {
		return "", auth.Identity{}, err
	}
	c.SetToken(out.Token)
	return out.Token, auth.Identity{Email: out.Email, ExpiresAt: out.ExpiresAt}, nil
}

func (c *Client) ListOrdered(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := c.do(ctx, http.MethodGet, "/projects", nil, nil, &projects); err != nil {
		return nil, err
	}
	models.SortByOrder(projects)
	return projects, nil
}

func (c *Client) Create(ctx context.Context, project models.Project) (uuid.UUID, error) {
	var out createResponse
	if err := c.do(ctx, http.MethodPost, "/project", nil, jsonBody(project), &out); err != nil {
		return uuid.Nil, err
	}
	return out.ID, nil
}

func (c *Client) Update(ctx context.Context, id uuid.UUID, fields models.ProjectFields) error {
	return c.do(ctx, http.MethodPut, "/project/"+id.String(), nil, jsonBody(fields), nil)
}

// Delete removes a project. A project that is already gone counts as deleted.
func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	err := c.do(ctx, http.MethodDelete, "/project/"+id.String(), nil, nil, nil)
	if errs.IsNotFound(err) {
		c.logger.Debug().Str("projectID", id.String()).Msg("Project already deleted")
		return nil
	}
	return err
}

// Upload sends data as the raw request body and returns the stored file's
// public URL.
func (c *Client) Upload(ctx context.Context, data []byte, fileName string) (string, error) {
	query := url.Values{"filename": {fileName}}
	body := &requestBody{
		reader:      bytes.NewReader(data),
		contentType: mimetype.Detect(data).String(),
	}
	var out uploadResponse
	if err := c.do(ctx, http.MethodPost, "/upload", query, body, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", fmt.Errorf("upload %s: empty url in response: %w", fileName, errs.ErrUploadFailed)
	}
	return out.URL, nil
}

type requestBody struct {
	reader      io.Reader
	contentType string
	err         error
}

func jsonBody(v any) *requestBody {
	b, err := json.Marshal(v)
	if err != nil {
		return &requestBody{err: fmt.Errorf("marshal request: %w", err)}
	}
	return &requestBody{reader: bytes.NewReader(b), contentType: "application/json"}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body *requestBody, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		if body.err != nil {
			return body.err
		}
		reader = body.reader
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", body.contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, errs.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Method: method, Path: path}
		if jsonErr := json.Unmarshal(respBody, &statusErr.Response); jsonErr != nil {
			statusErr.Response.Error = strings.TrimSpace(string(respBody))
		}
		c.logger.Debug().
			Int("statusCode", resp.StatusCode).
			Str("method", method).
			Str("path", path).
			Str("error", statusErr.Response.Error).
			Msg("API request failed")
		return statusErr
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// ErrorResponse mirrors the API's error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Status  string `json:"status"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
	Cause   string `json:"cause,omitempty"`
}

// StatusError is a non-2xx API response. It matches the errs sentinel for
// its status code under errors.Is.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
	Response   ErrorResponse
}

func (e *StatusError) Error() string {
	msg := e.Response.Error
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Response.Details != "" && !strings.Contains(msg, e.Response.Details) {
		msg += ": " + e.Response.Details
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

func (e *StatusError) Unwrap() []error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		if e.Response.Field != "" && e.Response.Field != "payload" {
			return []error{errs.ErrBadRequest, errs.ErrInvalidField}
		}
		return []error{errs.ErrBadRequest}
	case http.StatusUnauthorized:
		return []error{errs.ErrUnauthorized, errs.ErrNotAuthenticated}
	case http.StatusForbidden:
		return []error{errs.ErrForbidden}
	case http.StatusNotFound:
		return []error{errs.ErrNotFound}
	case http.StatusConflict:
		return []error{errs.ErrConflict}
	case http.StatusRequestEntityTooLarge:
		return []error{errs.ErrMaxBodySizeExceeded, errs.ErrFileTooLarge}
	case http.StatusUnsupportedMediaType:
		return []error{errs.ErrUnsupportedMediaType}
	case http.StatusTooManyRequests:
		return []error{errs.ErrRateLimited}
	case http.StatusBadGateway:
		return []error{errs.ErrUpstreamRefused}
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return []error{errs.ErrStoreUnavailable}
	}
	if e.StatusCode >= 500 {
		return []error{errs.ErrInternal}
	}
	return nil
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}
