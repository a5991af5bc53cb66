// Package client is a Go SDK for the maps-trainer HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shelter-training/maps-trainer/internal/models"
)

var (
	// ErrUnauthenticated is returned when the API rejects the token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound is returned when the referenced record does not exist.
	ErrNotFound = errors.New("not found")
)

// Client talks to a maps-trainer server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithToken sets the bearer token used for authenticated calls
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient creates a new maps-trainer client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetToken replaces the bearer token, e.g. after login.
func (c *Client) SetToken(token string) {
	c.token = token
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if !env.Success {
		code := ""
		message := ""
		if env.Error != nil {
			code = env.Error.Code
			message = env.Error.Message
		}
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrUnauthenticated, message)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, message)
		default:
			return fmt.Errorf("api error %s (status %d): %s", code, resp.StatusCode, message)
		}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode data: %w", err)
		}
	}

	return nil
}

// Register creates an account and stores the returned token on the client.
func (c *Client) Register(ctx context.Context, name, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", models.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
	}, &out)
	if err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// Login exchanges credentials for a token and stores it on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", models.LoginRequest{
		Email:    email,
		Password: password,
	}, &out)
	if err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// CurrentUser returns the account behind the client's token.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type lessonList struct {
	Lessons []*models.Lesson `json:"lessons"`
	Total   int              `json:"total"`
}

// Lessons returns all active lessons in display order.
func (c *Client) Lessons(ctx context.Context) ([]*models.Lesson, error) {
	var out lessonList
	if err := c.do(ctx, http.MethodGet, "/api/v1/lessons", nil, &out); err != nil {
		return nil, err
	}
	return out.Lessons, nil
}

// Lesson returns a single lesson by id.
func (c *Client) Lesson(ctx context.Context, id string) (*models.Lesson, error) {
	var out models.Lesson
	if err := c.do(ctx, http.MethodGet, "/api/v1/lessons/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InitializeLessons triggers the idempotent catalog seed.
func (c *Client) InitializeLessons(ctx context.Context) (int, error) {
	var out models.SeedResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/lessons/initialize", nil, &out); err != nil {
		return 0, err
	}
	return out.Inserted, nil
}

// CurrentVolunteer returns the caller's volunteer record, or nil if the
// caller has not registered as a volunteer yet.
func (c *Client) CurrentVolunteer(ctx context.Context) (*models.Volunteer, error) {
	var out models.Volunteer
	if err := c.do(ctx, http.MethodGet, "/api/v1/volunteers/me", nil, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, nil
	}
	return &out, nil
}

// CreateVolunteer registers the caller as a volunteer, or returns the
// existing record.
func (c *Client) CreateVolunteer(ctx context.Context, name, email string) (*models.Volunteer, error) {
	var out models.Volunteer
	err := c.do(ctx, http.MethodPost, "/api/v1/volunteers", models.CreateVolunteerRequest{
		Name:  name,
		Email: email,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProgress reports a lesson completion and returns newly earned badges.
func (c *Client) UpdateProgress(ctx context.Context, lessonID string, score, timeSpent int) ([]string, error) {
	var out models.UpdateProgressResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/progress", models.UpdateProgressRequest{
		LessonID:  lessonID,
		Score:     score,
		TimeSpent: timeSpent,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.NewBadges, nil
}

type progressList struct {
	Entries []*models.ProgressEntry `json:"entries"`
	Total   int                     `json:"total"`
}

// ProgressHistory returns the caller's completion ledger, newest first.
func (c *Client) ProgressHistory(ctx context.Context) ([]*models.ProgressEntry, error) {
	var out progressList
	if err := c.do(ctx, http.MethodGet, "/api/v1/volunteers/me/progress", nil, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

type leaderboardList struct {
	Entries []*models.LeaderboardEntry `json:"entries"`
	Total   int                        `json:"total"`
}

// Leaderboard returns the ranked top volunteers.
func (c *Client) Leaderboard(ctx context.Context) ([]*models.LeaderboardEntry, error) {
	var out leaderboardList
	if err := c.do(ctx, http.MethodGet, "/api/v1/leaderboard", nil, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}
