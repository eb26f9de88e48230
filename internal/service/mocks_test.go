package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chatcourse/internal/models"
	distypes "chatcourse/pkg/discourse/types"
	gchattypes "chatcourse/pkg/googlechat/types"
)

type mockMappingStore struct {
	mock.Mock
}

func (m *mockMappingStore) SaveSpaceCategoryMapping(ctx context.Context, spaceID string, categoryID int) error {
	args := m.Called(ctx, spaceID, categoryID)
	return args.Error(0)
}

func (m *mockMappingStore) GetCategoryIDBySpace(ctx context.Context, spaceID string) (*int, error) {
	args := m.Called(ctx, spaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*int), args.Error(1)
}

func (m *mockMappingStore) GetSpaceIDByCategory(ctx context.Context, categoryID int) (*string, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

func (m *mockMappingStore) ListSpaceCategoryMappings(ctx context.Context) ([]models.SpaceCategoryMapping, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SpaceCategoryMapping), args.Error(1)
}

func (m *mockMappingStore) SaveThreadTopicMapping(ctx context.Context, threadID string, topicID int, spaceID string) error {
	args := m.Called(ctx, threadID, topicID, spaceID)
	return args.Error(0)
}

func (m *mockMappingStore) GetTopicIDByThread(ctx context.Context, threadID string) (*int, error) {
	args := m.Called(ctx, threadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*int), args.Error(1)
}

func (m *mockMappingStore) GetThreadIDByTopic(ctx context.Context, topicID int) (*string, error) {
	args := m.Called(ctx, topicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

func (m *mockMappingStore) SaveMessagePostMapping(ctx context.Context, messageID string, postID int, threadID string) error {
	args := m.Called(ctx, messageID, postID, threadID)
	return args.Error(0)
}

func (m *mockMappingStore) GetPostIDByMessage(ctx context.Context, messageID string) (*int, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*int), args.Error(1)
}

func (m *mockMappingStore) GetMessageIDByPost(ctx context.Context, postID int) (*string, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

func (m *mockMappingStore) SaveUserMapping(ctx context.Context, mapping *models.UserMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *mockMappingStore) GetForumUsername(ctx context.Context, chatUserID string) (*string, error) {
	args := m.Called(ctx, chatUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

func (m *mockMappingStore) GetChatUserID(ctx context.Context, forumUsername string) (*string, error) {
	args := m.Called(ctx, forumUsername)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

func (m *mockMappingStore) SetSyncCheckpoint(ctx context.Context, spaceID string, timestamp string) error {
	args := m.Called(ctx, spaceID, timestamp)
	return args.Error(0)
}

func (m *mockMappingStore) GetSyncCheckpoint(ctx context.Context, spaceID string) (*string, error) {
	args := m.Called(ctx, spaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

type mockChatClient struct {
	mock.Mock
}

func (m *mockChatClient) GetSpace(ctx context.Context, spaceID string) (*gchattypes.Space, error) {
	args := m.Called(ctx, spaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gchattypes.Space), args.Error(1)
}

func (m *mockChatClient) ListSpaces(ctx context.Context) ([]gchattypes.Space, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gchattypes.Space), args.Error(1)
}

func (m *mockChatClient) ListMessages(ctx context.Context, spaceID, pageToken, sinceTimestamp string) (*gchattypes.ListMessagesResponse, error) {
	args := m.Called(ctx, spaceID, pageToken, sinceTimestamp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gchattypes.ListMessagesResponse), args.Error(1)
}

func (m *mockChatClient) GetMessage(ctx context.Context, messageName string) (*gchattypes.Message, error) {
	args := m.Called(ctx, messageName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gchattypes.Message), args.Error(1)
}

func (m *mockChatClient) CreateMessage(ctx context.Context, spaceID, text, threadName string) (*gchattypes.Message, error) {
	args := m.Called(ctx, spaceID, text, threadName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gchattypes.Message), args.Error(1)
}

func (m *mockChatClient) UpdateMessage(ctx context.Context, messageName, text string) (*gchattypes.Message, error) {
	args := m.Called(ctx, messageName, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gchattypes.Message), args.Error(1)
}

func (m *mockChatClient) GetSpaceMembers(ctx context.Context, spaceID string) ([]gchattypes.Membership, error) {
	args := m.Called(ctx, spaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gchattypes.Membership), args.Error(1)
}

type mockForumClient struct {
	mock.Mock
}

func (m *mockForumClient) GetCategory(ctx context.Context, categoryID int) (*distypes.Category, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*distypes.Category), args.Error(1)
}

func (m *mockForumClient) ListCategories(ctx context.Context) ([]distypes.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]distypes.Category), args.Error(1)
}

func (m *mockForumClient) CreateCategory(ctx context.Context, name string, parentCategoryID int) (*distypes.Category, error) {
	args := m.Called(ctx, name, parentCategoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*distypes.Category), args.Error(1)
}

func (m *mockForumClient) GetTopic(ctx context.Context, topicID int) (*distypes.TopicDetailsResponse, error) {
	args := m.Called(ctx, topicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*distypes.TopicDetailsResponse), args.Error(1)
}

func (m *mockForumClient) CreateTopic(ctx context.Context, title, raw string, categoryID int, asUsername string) (*distypes.Post, error) {
	args := m.Called(ctx, title, raw, categoryID, asUsername)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*distypes.Post), args.Error(1)
}

func (m *mockForumClient) GetPost(ctx context.Context, postID int) (*distypes.Post, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*distypes.Post), args.Error(1)
}

func (m *mockForumClient) CreatePost(ctx context.Context, topicID int, raw, asUsername string) (*distypes.Post, error) {
	args := m.Called(ctx, topicID, raw, asUsername)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*distypes.Post), args.Error(1)
}

func (m *mockForumClient) UpdatePost(ctx context.Context, postID int, raw string) (*distypes.Post, error) {
	args := m.Called(ctx, postID, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*distypes.Post), args.Error(1)
}

func (m *mockForumClient) GetUser(ctx context.Context, username string) (*distypes.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*distypes.User), args.Error(1)
}

func (m *mockForumClient) CreateUser(ctx context.Context, name, email, password, username string) error {
	args := m.Called(ctx, name, email, password, username)
	return args.Error(0)
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
