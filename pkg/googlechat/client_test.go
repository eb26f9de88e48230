package googlechat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatcourse/internal/errors"
	"chatcourse/pkg/googlechat/types"
)

func newTestClient(serverURL string) Client {
	return NewClient(serverURL, "test-token", 25, nil)
}

func TestGetSpace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/spaces/AAA", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(types.Space{
			Name:        "spaces/AAA",
			DisplayName: "Engineering",
			SpaceType:   "SPACE",
		})
	}))
	defer server.Close()

	space, err := newTestClient(server.URL).GetSpace(context.Background(), "spaces/AAA")
	require.NoError(t, err)
	assert.Equal(t, "Engineering", space.DisplayName)
	assert.False(t, space.IsDirectMessage())
}

func TestListSpacesFollowsPagination(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "/v1/spaces", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("pageSize"))

		if r.URL.Query().Get("pageToken") == "" {
			json.NewEncoder(w).Encode(types.ListSpacesResponse{
				Spaces:        []types.Space{{Name: "spaces/AAA"}},
				NextPageToken: "page-2",
			})
			return
		}
		assert.Equal(t, "page-2", r.URL.Query().Get("pageToken"))
		json.NewEncoder(w).Encode(types.ListSpacesResponse{
			Spaces: []types.Space{{Name: "spaces/BBB"}},
		})
	}))
	defer server.Close()

	spaces, err := newTestClient(server.URL).ListSpaces(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
	require.Len(t, spaces, 2)
	assert.Equal(t, "spaces/AAA", spaces[0].Name)
	assert.Equal(t, "spaces/BBB", spaces[1].Name)
}

func TestListMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/spaces/AAA/messages", r.URL.Path)
		assert.Empty(t, r.URL.Query().Get("filter"))

		json.NewEncoder(w).Encode(types.ListMessagesResponse{
			Messages:      []types.Message{{Name: "spaces/AAA/messages/m1", Text: "hello"}},
			NextPageToken: "next",
		})
	}))
	defer server.Close()

	page, err := newTestClient(server.URL).ListMessages(context.Background(), "spaces/AAA", "", "")
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "hello", page.Messages[0].Text)
	assert.Equal(t, "next", page.NextPageToken)
}

func TestListMessagesSinceTimestampFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `createTime > "2026-08-29T12:00:00Z"`, r.URL.Query().Get("filter"))
		json.NewEncoder(w).Encode(types.ListMessagesResponse{})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListMessages(context.Background(), "spaces/AAA", "", "2026-08-29T12:00:00Z")
	require.NoError(t, err)
}

func TestCreateMessageNewThread(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/spaces/AAA/messages", r.URL.Path)

		var body types.Message
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello from the forum", body.Text)
		assert.Nil(t, body.Thread)

		json.NewEncoder(w).Encode(types.Message{
			Name: "spaces/AAA/messages/m9",
			Text: body.Text,
		})
	}))
	defer server.Close()

	message, err := newTestClient(server.URL).CreateMessage(context.Background(), "spaces/AAA", "hello from the forum", "")
	require.NoError(t, err)
	assert.Equal(t, "spaces/AAA/messages/m9", message.Name)
}

func TestCreateMessageReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body types.Message
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.NotNil(t, body.Thread)
		assert.Equal(t, "spaces/AAA/threads/t1", body.Thread.Name)

		json.NewEncoder(w).Encode(types.Message{Name: "spaces/AAA/messages/m10"})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CreateMessage(context.Background(), "spaces/AAA", "reply", "spaces/AAA/threads/t1")
	require.NoError(t, err)
}

func TestUpdateMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/v1/spaces/AAA/messages/m1", r.URL.Path)
		assert.Equal(t, "text", r.URL.Query().Get("updateMask"))

		var body types.Message
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "edited", body.Text)

		json.NewEncoder(w).Encode(types.Message{Name: "spaces/AAA/messages/m1", Text: "edited"})
	}))
	defer server.Close()

	updated, err := newTestClient(server.URL).UpdateMessage(context.Background(), "spaces/AAA/messages/m1", "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)
}

func TestGetSpaceMembersFollowsPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/spaces/AAA/members", r.URL.Path)
		if r.URL.Query().Get("pageToken") == "" {
			json.NewEncoder(w).Encode(types.ListMembershipsResponse{
				Memberships:   []types.Membership{{Name: "spaces/AAA/members/1"}},
				NextPageToken: "more",
			})
			return
		}
		json.NewEncoder(w).Encode(types.ListMembershipsResponse{
			Memberships: []types.Membership{{Name: "spaces/AAA/members/2"}},
		})
	}))
	defer server.Close()

	members, err := newTestClient(server.URL).GetSpaceMembers(context.Background(), "spaces/AAA")
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"server error retries", http.StatusInternalServerError, true},
		{"rate limit retries", http.StatusTooManyRequests, true},
		{"not found does not retry", http.StatusNotFound, false},
		{"forbidden does not retry", http.StatusForbidden, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).GetSpace(context.Background(), "spaces/AAA")
			require.Error(t, err)
			assert.Equal(t, tt.retryable, errors.IsRetryable(err))
		})
	}
}

func TestIsDirectMessage(t *testing.T) {
	dm := types.Space{Name: "spaces/DM", SpaceType: types.SpaceTypeDirectMessage}
	assert.True(t, dm.IsDirectMessage())
}
