// Package client is a Go SDK for the found-api HTTP interface. Login state is
// held by a CredentialStore on the caller's side.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/lostfound/found-api/pkg/errors"
)

const apiPrefix = "/api/v1"

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Code    apperrors.ErrorCode
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// IsCode reports whether err is an APIError with the given code.
func IsCode(err error, code apperrors.ErrorCode) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

type Client struct {
	baseURL string
	creds   CredentialStore
	timeout time.Duration
}

type Option func(*Client)

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a client for the service at baseURL, e.g. "http://localhost:8000".
func New(baseURL string, creds CredentialStore, opts ...Option) *Client {
	if creds == nil {
		creds = NewMemoryStore()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register creates an account and stores the returned session.
func (c *Client) Register(name, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.do(fiber.Post(c.url("/auth/register")), false, registerRequest{
		Name: name, Email: email, Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, c.creds.Set(&Session{Token: resp.Token, User: resp.User})
}

// Login exchanges credentials for a session and stores it.
func (c *Client) Login(email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.do(fiber.Post(c.url("/auth/login")), false, loginRequest{
		Email: email, Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, c.creds.Set(&Session{Token: resp.Token, User: resp.User})
}

// Logout forgets the stored session. Tokens are not revoked server-side.
func (c *Client) Logout() error {
	return c.creds.Clear()
}

// CurrentUser verifies the stored token with the server. A token the server
// rejects is cleared from the store.
func (c *Client) CurrentUser() (*User, error) {
	session, err := c.creds.Get()
	if err != nil {
		return nil, err
	}

	var resp userResponse
	err = c.do(fiber.Post(c.url("/auth/verify")), false, verifyRequest{Token: session.Token}, &resp)
	if err != nil {
		if IsCode(err, apperrors.CodeUnauthenticated) || IsCode(err, apperrors.CodeNotFound) {
			_ = c.creds.Clear()
		}
		return nil, err
	}

	session.User = resp.User
	return &resp.User, c.creds.Set(session)
}

// ListItems returns items matching filter, newest first.
func (c *Client) ListItems(filter ItemFilter) ([]*Item, error) {
	query := url.Values{}
	if filter.Query != "" {
		query.Set("q", filter.Query)
	}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	if filter.PostedBy != "" {
		query.Set("postedBy", filter.PostedBy)
	}

	agent := fiber.Get(c.url("/items"))
	if len(query) > 0 {
		agent.QueryString(query.Encode())
	}

	var resp itemListResponse
	if err := c.do(agent, false, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) GetItem(id string) (*Item, error) {
	var resp itemResponse
	if err := c.do(fiber.Get(c.url("/items/"+url.PathEscape(id))), false, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Item, nil
}

// CreateItem posts an item as the logged-in user.
func (c *Client) CreateItem(req NewItem) (*Item, error) {
	var resp itemResponse
	if err := c.do(fiber.Post(c.url("/items")), true, req, &resp); err != nil {
		return nil, err
	}
	return resp.Item, nil
}

func (c *Client) UpdateItemStatus(id string, status ItemStatus) (*Item, error) {
	var resp itemResponse
	err := c.do(fiber.Patch(c.url("/items/"+url.PathEscape(id)+"/status")), true, statusRequest{Status: status}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Item, nil
}

func (c *Client) DeleteItem(id string) error {
	return c.do(fiber.Delete(c.url("/items/"+url.PathEscape(id))), true, nil, nil)
}

// MyItems lists the logged-in user's postings.
func (c *Client) MyItems() ([]*Item, error) {
	session, err := c.creds.Get()
	if err != nil {
		return nil, err
	}
	var resp itemListResponse
	if err := c.do(fiber.Get(c.url("/users/"+url.PathEscape(session.User.ID)+"/items")), false, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) Stats(userID string) (*ItemStats, error) {
	var stats ItemStats
	if err := c.do(fiber.Get(c.url("/users/"+url.PathEscape(userID)+"/stats")), false, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// UpdateName renames the logged-in user and refreshes the stored session.
func (c *Client) UpdateName(name string) (*ProfileUpdate, error) {
	session, err := c.creds.Get()
	if err != nil {
		return nil, err
	}

	var resp ProfileUpdate
	err = c.do(fiber.Put(c.url("/users/"+url.PathEscape(session.User.ID))), true, profileRequest{Name: name}, &resp)
	if err != nil {
		return nil, err
	}

	session.User.Name = strings.TrimSpace(name)
	return &resp, c.creds.Set(session)
}

// Upload stores data under filename and returns its public location.
func (c *Client) Upload(filename string, data []byte) (*UploadedFile, error) {
	agent := fiber.Post(c.url("/upload")).
		QueryString(url.Values{"filename": {filename}}.Encode()).
		ContentType(fiber.MIMEOctetStream).
		Body(data)

	var obj UploadedFile
	if err := c.do(agent, true, nil, &obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

func (c *Client) url(path string) string {
	return c.baseURL + apiPrefix + path
}

// do sends the request and decodes a 2xx body into out. The agent must not
// be used afterwards.
func (c *Client) do(agent *fiber.Agent, authenticated bool, in, out interface{}) error {
	if authenticated {
		session, err := c.creds.Get()
		if err != nil {
			fiber.ReleaseAgent(agent)
			return err
		}
		agent.Set(fiber.HeaderAuthorization, "Bearer "+session.Token)
	}
	if in != nil {
		agent.JSON(in)
	}
	agent.Timeout(c.timeout)

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("request failed: %w", errors.Join(errs...))
	}

	if status < 200 || status >= 300 {
		return decodeError(status, body)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(status int, body []byte) error {
	var envelope apperrors.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error.Code == "" {
		return &APIError{Status: status, Code: apperrors.CodeInternalError, Message: strings.TrimSpace(string(body))}
	}
	return &APIError{Status: status, Code: envelope.Error.Code, Message: envelope.Error.Message}
}
