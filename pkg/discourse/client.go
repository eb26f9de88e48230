package discourse

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"chatcourse/internal/errors"
	"chatcourse/internal/retry"
	"chatcourse/pkg/discourse/types"
)

// Client is the surface of the Discourse API the bridge uses. Methods that
// accept an asUsername impersonate that user via the Api-Username header; an
// empty value falls back to the configured API username.
type Client interface {
	GetCategory(ctx context.Context, categoryID int) (*types.Category, error)
	ListCategories(ctx context.Context) ([]types.Category, error)
	CreateCategory(ctx context.Context, name string, parentCategoryID int) (*types.Category, error)
	GetTopic(ctx context.Context, topicID int) (*types.TopicDetailsResponse, error)
	CreateTopic(ctx context.Context, title, raw string, categoryID int, asUsername string) (*types.Post, error)
	GetPost(ctx context.Context, postID int) (*types.Post, error)
	CreatePost(ctx context.Context, topicID int, raw, asUsername string) (*types.Post, error)
	UpdatePost(ctx context.Context, postID int, raw string) (*types.Post, error)
	GetUser(ctx context.Context, username string) (*types.User, error)
	CreateUser(ctx context.Context, name, email, password, username string) error
}

const (
	defaultCategoryColor     = "0088CC"
	defaultCategoryTextColor = "FFFFFF"
)

type ForumClient struct {
	baseURL     string
	apiKey      string
	apiUsername string
	client      *http.Client
	backoff     *retry.Backoff
	logger      *logrus.Logger
}

func NewClient(baseURL, apiKey, apiUsername string, httpClient *http.Client, backoff *retry.Backoff) Client {
	return NewClientWithLogger(baseURL, apiKey, apiUsername, httpClient, backoff, nil)
}

func NewClientWithLogger(baseURL, apiKey, apiUsername string, httpClient *http.Client, backoff *retry.Backoff, logger *logrus.Logger) Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if backoff == nil {
		backoff = retry.NewBackoff(retry.DefaultBackoffConfig())
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}

	return &ForumClient{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		apiKey:      apiKey,
		apiUsername: apiUsername,
		client:      httpClient,
		backoff:     backoff,
		logger:      logger,
	}
}

// GetCategory retrieves category details.
func (c *ForumClient) GetCategory(ctx context.Context, categoryID int) (*types.Category, error) {
	var resp types.CategoryShowResponse
	err := c.doWithRetry(ctx, http.MethodGet, fmt.Sprintf("/c/%d/show.json", categoryID), "", nil, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Category == nil {
		return nil, errors.NewNotFoundError("category", strconv.Itoa(categoryID))
	}
	return resp.Category, nil
}

// ListCategories retrieves the top-level category list.
func (c *ForumClient) ListCategories(ctx context.Context) ([]types.Category, error) {
	var resp types.CategoryListResponse
	if err := c.doWithRetry(ctx, http.MethodGet, "/categories.json", "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.CategoryList.Categories, nil
}

// CreateCategory creates a category. A non-zero parentCategoryID makes it a
// sub-category.
func (c *ForumClient) CreateCategory(ctx context.Context, name string, parentCategoryID int) (*types.Category, error) {
	payload := map[string]interface{}{
		"name":       name,
		"color":      defaultCategoryColor,
		"text_color": defaultCategoryTextColor,
	}
	if parentCategoryID > 0 {
		payload["parent_category_id"] = parentCategoryID
	}

	var resp types.CreateCategoryResponse
	if err := c.doWithRetry(ctx, http.MethodPost, "/categories.json", "", payload, &resp); err != nil {
		return nil, err
	}
	if resp.Category == nil {
		return nil, errors.New(errors.ErrCodeForumAPI, "category creation returned no category")
	}

	c.logger.WithFields(logrus.Fields{
		"category_id": resp.Category.ID,
		"name":        name,
	}).Info("Created Discourse category")
	return resp.Category, nil
}

// GetTopic retrieves a topic and its post stream.
func (c *ForumClient) GetTopic(ctx context.Context, topicID int) (*types.TopicDetailsResponse, error) {
	var resp types.TopicDetailsResponse
	if err := c.doWithRetry(ctx, http.MethodGet, fmt.Sprintf("/t/%d.json", topicID), "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateTopic creates a topic in a category. Discourse answers with the first
// post of the new topic; its TopicID identifies the topic.
func (c *ForumClient) CreateTopic(ctx context.Context, title, raw string, categoryID int, asUsername string) (*types.Post, error) {
	payload := map[string]interface{}{
		"title":    title,
		"raw":      raw,
		"category": categoryID,
	}

	var post types.Post
	if err := c.doWithRetry(ctx, http.MethodPost, "/posts.json", asUsername, payload, &post); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"topic_id": post.TopicID,
		"title":    title,
	}).Info("Created Discourse topic")
	return &post, nil
}

// GetPost retrieves post details.
func (c *ForumClient) GetPost(ctx context.Context, postID int) (*types.Post, error) {
	var post types.Post
	if err := c.doWithRetry(ctx, http.MethodGet, fmt.Sprintf("/posts/%d.json", postID), "", nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost creates a reply in an existing topic.
func (c *ForumClient) CreatePost(ctx context.Context, topicID int, raw, asUsername string) (*types.Post, error) {
	payload := map[string]interface{}{
		"topic_id": topicID,
		"raw":      raw,
	}

	var post types.Post
	if err := c.doWithRetry(ctx, http.MethodPost, "/posts.json", asUsername, payload, &post); err != nil {
		return nil, err
	}

	c.logger.WithField("topic_id", topicID).Info("Created Discourse post")
	return &post, nil
}

// UpdatePost replaces the raw Markdown body of a post.
func (c *ForumClient) UpdatePost(ctx context.Context, postID int, raw string) (*types.Post, error) {
	payload := map[string]interface{}{
		"post": map[string]string{"raw": raw},
	}

	var resp struct {
		Post *types.Post `json:"post"`
	}
	if err := c.doWithRetry(ctx, http.MethodPut, fmt.Sprintf("/posts/%d.json", postID), "", payload, &resp); err != nil {
		return nil, err
	}
	if resp.Post == nil {
		return nil, errors.New(errors.ErrCodeForumAPI, "post update returned no post")
	}

	c.logger.WithField("post_id", postID).Info("Updated Discourse post")
	return resp.Post, nil
}

// GetUser retrieves user details by username.
func (c *ForumClient) GetUser(ctx context.Context, username string) (*types.User, error) {
	var resp types.UserResponse
	err := c.doWithRetry(ctx, http.MethodGet, fmt.Sprintf("/u/%s.json", username), "", nil, &resp)
	if err != nil {
		if statusOf(err) == http.StatusNotFound {
			return nil, errors.NewNotFoundError("user", username)
		}
		return nil, err
	}
	if resp.User == nil {
		return nil, errors.NewNotFoundError("user", username)
	}
	return resp.User, nil
}

// CreateUser creates an active, approved user. A 422 response means the
// username or email is already taken; that is surfaced as a conflict error so
// the caller can fall back to the existing account.
func (c *ForumClient) CreateUser(ctx context.Context, name, email, password, username string) error {
	payload := map[string]interface{}{
		"name":     name,
		"email":    email,
		"password": password,
		"username": username,
		"active":   true,
		"approved": true,
	}

	var resp types.CreateUserResponse
	err := c.doWithRetry(ctx, http.MethodPost, "/users.json", "", payload, &resp)
	if err != nil {
		if statusOf(err) == http.StatusUnprocessableEntity {
			return errors.NewConflictError("user", username)
		}
		return err
	}
	if !resp.Success {
		return errors.New(errors.ErrCodeForumAPI, fmt.Sprintf("user creation rejected: %s", resp.Message)).
			WithContext("username", username)
	}

	c.logger.WithField("username", username).Info("Created Discourse user")
	return nil
}

func (c *ForumClient) doWithRetry(ctx context.Context, method, path, asUsername string, payload, out interface{}) error {
	return c.backoff.RetryWithPredicate(ctx, func() error {
		return c.do(ctx, method, path, asUsername, payload, out)
	}, errors.IsRetryable)
}

func (c *ForumClient) do(ctx context.Context, method, path, asUsername string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Api-Key", c.apiKey)
	if asUsername != "" {
		req.Header.Set("Api-Username", asUsername)
	} else {
		req.Header.Set("Api-Username", c.apiUsername)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		cause := fmt.Errorf("status %d: %s", resp.StatusCode, string(bodyBytes))
		apiErr := errors.NewAPIError("discourse", path, resp.StatusCode, cause)

		if retryAfter := parseRetryAfter(resp.Header.Get("Retry-After")); retryAfter > 0 {
			return &rateLimitedError{err: apiErr, retryAfter: retryAfter}
		}
		return apiErr
	}

	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// rateLimitedError carries the server's Retry-After hint for the backoff.
type rateLimitedError struct {
	err        error
	retryAfter time.Duration
}

func (e *rateLimitedError) Error() string { return e.err.Error() }

func (e *rateLimitedError) Unwrap() error { return e.err }

func (e *rateLimitedError) RetryAfter() time.Duration { return e.retryAfter }

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func statusOf(err error) int {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		if status, ok := appErr.Context["status_code"].(int); ok {
			return status
		}
	}
	return 0
}
