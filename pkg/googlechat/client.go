package googlechat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"chatcourse/internal/errors"
	"chatcourse/pkg/googlechat/types"
)

// Client is the surface of the Google Chat REST API the bridge uses.
type Client interface {
	GetSpace(ctx context.Context, spaceID string) (*types.Space, error)
	ListSpaces(ctx context.Context) ([]types.Space, error)
	ListMessages(ctx context.Context, spaceID, pageToken, sinceTimestamp string) (*types.ListMessagesResponse, error)
	GetMessage(ctx context.Context, messageName string) (*types.Message, error)
	CreateMessage(ctx context.Context, spaceID, text, threadName string) (*types.Message, error)
	UpdateMessage(ctx context.Context, messageName, text string) (*types.Message, error)
	GetSpaceMembers(ctx context.Context, spaceID string) ([]types.Membership, error)
}

type ChatClient struct {
	baseURL     string
	accessToken string
	pageSize    int
	client      *http.Client
	logger      *logrus.Logger
}

func NewClient(baseURL, accessToken string, pageSize int, httpClient *http.Client) Client {
	return NewClientWithLogger(baseURL, accessToken, pageSize, httpClient, nil)
}

func NewClientWithLogger(baseURL, accessToken string, pageSize int, httpClient *http.Client, logger *logrus.Logger) Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}

	return &ChatClient{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		accessToken: accessToken,
		pageSize:    pageSize,
		client:      httpClient,
		logger:      logger,
	}
}

// GetSpace retrieves a space resource, e.g. "spaces/AAAAAAAAAAA".
func (c *ChatClient) GetSpace(ctx context.Context, spaceID string) (*types.Space, error) {
	var space types.Space
	if err := c.doGet(ctx, "/v1/"+spaceID, nil, &space); err != nil {
		return nil, err
	}
	return &space, nil
}

// ListSpaces retrieves every space the authenticated caller is a member of,
// following pagination to the end.
func (c *ChatClient) ListSpaces(ctx context.Context) ([]types.Space, error) {
	var spaces []types.Space
	pageToken := ""

	for {
		query := url.Values{}
		query.Set("pageSize", strconv.Itoa(c.pageSize))
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}

		var page types.ListSpacesResponse
		if err := c.doGet(ctx, "/v1/spaces", query, &page); err != nil {
			return nil, err
		}

		spaces = append(spaces, page.Spaces...)
		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	c.logger.WithField("count", len(spaces)).Debug("Listed Google Chat spaces")
	return spaces, nil
}

// ListMessages retrieves one page of messages from a space. The caller passes
// the next page token from the previous response to continue. A non-empty
// sinceTimestamp (RFC 3339) restricts the listing to newer messages.
func (c *ChatClient) ListMessages(ctx context.Context, spaceID, pageToken, sinceTimestamp string) (*types.ListMessagesResponse, error) {
	query := url.Values{}
	query.Set("pageSize", strconv.Itoa(c.pageSize))
	if pageToken != "" {
		query.Set("pageToken", pageToken)
	}
	if sinceTimestamp != "" {
		query.Set("filter", fmt.Sprintf("createTime > %q", sinceTimestamp))
	}

	var page types.ListMessagesResponse
	if err := c.doGet(ctx, "/v1/"+spaceID+"/messages", query, &page); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"space": spaceID,
		"count": len(page.Messages),
	}).Debug("Listed Google Chat messages")
	return &page, nil
}

// GetMessage retrieves a message by its full resource name,
// e.g. "spaces/AAAAA/messages/BBBBB".
func (c *ChatClient) GetMessage(ctx context.Context, messageName string) (*types.Message, error) {
	var message types.Message
	if err := c.doGet(ctx, "/v1/"+messageName, nil, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// CreateMessage posts a new message to a space. A non-empty threadName makes
// the message a reply in that thread.
func (c *ChatClient) CreateMessage(ctx context.Context, spaceID, text, threadName string) (*types.Message, error) {
	body := types.Message{Text: text}
	if threadName != "" {
		body.Thread = &types.Thread{Name: threadName}
	}

	var created types.Message
	if err := c.doJSON(ctx, http.MethodPost, "/v1/"+spaceID+"/messages", nil, body, &created); err != nil {
		return nil, err
	}

	c.logger.WithField("space", spaceID).Info("Created Google Chat message")
	return &created, nil
}

// UpdateMessage replaces the text of an existing message.
func (c *ChatClient) UpdateMessage(ctx context.Context, messageName, text string) (*types.Message, error) {
	query := url.Values{}
	query.Set("updateMask", "text")

	var updated types.Message
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/"+messageName, query, types.Message{Text: text}, &updated); err != nil {
		return nil, err
	}

	c.logger.WithField("message", messageName).Info("Updated Google Chat message")
	return &updated, nil
}

// GetSpaceMembers retrieves all memberships of a space, following pagination.
func (c *ChatClient) GetSpaceMembers(ctx context.Context, spaceID string) ([]types.Membership, error) {
	var members []types.Membership
	pageToken := ""

	for {
		query := url.Values{}
		query.Set("pageSize", strconv.Itoa(c.pageSize))
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}

		var page types.ListMembershipsResponse
		if err := c.doGet(ctx, "/v1/"+spaceID+"/members", query, &page); err != nil {
			return nil, err
		}

		members = append(members, page.Memberships...)
		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return members, nil
}

func (c *ChatClient) doGet(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *ChatClient) doJSON(ctx context.Context, method, path string, query url.Values, payload, out interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.do(ctx, method, path, query, bytes.NewBuffer(jsonData), out)
}

func (c *ChatClient) do(ctx context.Context, method, path string, query url.Values, body io.Reader, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.accessToken)
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
		return errors.NewAPIError("googlechat", path, resp.StatusCode, cause)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
