package discourse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatcourse/internal/errors"
	"chatcourse/internal/retry"
	"chatcourse/pkg/discourse/types"
)

func newTestClient(serverURL string) Client {
	backoff := retry.NewBackoff(retry.BackoffConfig{
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
		MaxAttempts:  3,
	})
	return NewClient(serverURL, "test-key", "bridge-bot", nil, backoff)
}

func TestAuthHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("Api-Key"))
		assert.Equal(t, "bridge-bot", r.Header.Get("Api-Username"))
		json.NewEncoder(w).Encode(types.CategoryListResponse{})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListCategories(context.Background())
	require.NoError(t, err)
}

func TestCreateTopicImpersonatesAuthor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/posts.json", r.URL.Path)
		assert.Equal(t, "alice_w", r.Header.Get("Api-Username"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Deploy window", payload["title"])
		assert.Equal(t, "Deploy window\n\nDeploy window tonight", payload["raw"])
		assert.Equal(t, float64(7), payload["category"])

		json.NewEncoder(w).Encode(types.Post{ID: 100, TopicID: 42, PostNumber: 1})
	}))
	defer server.Close()

	post, err := newTestClient(server.URL).CreateTopic(context.Background(),
		"Deploy window", "Deploy window\n\nDeploy window tonight", 7, "alice_w")
	require.NoError(t, err)
	assert.Equal(t, 42, post.TopicID)
	assert.Equal(t, 100, post.ID)
}

func TestCreatePost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, float64(42), payload["topic_id"])
		assert.Equal(t, "a reply", payload["raw"])

		json.NewEncoder(w).Encode(types.Post{ID: 101, TopicID: 42, PostNumber: 2})
	}))
	defer server.Close()

	post, err := newTestClient(server.URL).CreatePost(context.Background(), 42, "a reply", "")
	require.NoError(t, err)
	assert.Equal(t, 101, post.ID)
}

func TestUpdatePost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/posts/101.json", r.URL.Path)

		var payload struct {
			Post map[string]string `json:"post"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "edited body", payload.Post["raw"])

		json.NewEncoder(w).Encode(map[string]types.Post{
			"post": {ID: 101, Raw: "edited body"},
		})
	}))
	defer server.Close()

	post, err := newTestClient(server.URL).UpdatePost(context.Background(), 101, "edited body")
	require.NoError(t, err)
	assert.Equal(t, "edited body", post.Raw)
}

func TestCreateCategory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/categories.json", r.URL.Path)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Engineering", payload["name"])
		assert.Equal(t, float64(3), payload["parent_category_id"])
		assert.NotEmpty(t, payload["color"])

		json.NewEncoder(w).Encode(types.CreateCategoryResponse{
			Category: &types.Category{ID: 9, Name: "Engineering"},
		})
	}))
	defer server.Close()

	category, err := newTestClient(server.URL).CreateCategory(context.Background(), "Engineering", 3)
	require.NoError(t, err)
	assert.Equal(t, 9, category.ID)
}

func TestCreateCategoryTopLevelOmitsParent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.NotContains(t, payload, "parent_category_id")

		json.NewEncoder(w).Encode(types.CreateCategoryResponse{
			Category: &types.Category{ID: 10},
		})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CreateCategory(context.Background(), "General", 0)
	require.NoError(t, err)
}

func TestGetUserNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetUser(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestCreateUserConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	err := newTestClient(server.URL).CreateUser(context.Background(),
		"Alice Wong", "gchat_1@bridge.local", "password123", "alice_w")
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
}

func TestCreateUserRejectedBySite(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(types.CreateUserResponse{
			Success: false,
			Message: "username too short",
		})
	}))
	defer server.Close()

	err := newTestClient(server.URL).CreateUser(context.Background(),
		"Alice Wong", "gchat_1@bridge.local", "password123", "al")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username too short")
}

func TestServerErrorIsRetried(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(types.CategoryListResponse{})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestClientErrorIsNotRetried(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListCategories(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRateLimitHonorsRetryAfter(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(types.CategoryListResponse{})
	}))
	defer server.Close()

	start := time.Now()
	_, err := newTestClient(server.URL).ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 3*time.Second, parseRetryAfter("3"))
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon"))
	assert.Equal(t, time.Duration(0), parseRetryAfter("-1"))
}
