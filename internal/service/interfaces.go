package service

import (
	"context"

	"chatcourse/internal/models"
)

// MappingStore is the persistence surface the engines depend on. Every write
// is an idempotent upsert that is durable before the call returns; engines
// rely on that to avoid creating a remote entity twice across crash-and-retry.
type MappingStore interface {
	SaveSpaceCategoryMapping(ctx context.Context, spaceID string, categoryID int) error
	GetCategoryIDBySpace(ctx context.Context, spaceID string) (*int, error)
	GetSpaceIDByCategory(ctx context.Context, categoryID int) (*string, error)
	ListSpaceCategoryMappings(ctx context.Context) ([]models.SpaceCategoryMapping, error)

	SaveThreadTopicMapping(ctx context.Context, threadID string, topicID int, spaceID string) error
	GetTopicIDByThread(ctx context.Context, threadID string) (*int, error)
	GetThreadIDByTopic(ctx context.Context, topicID int) (*string, error)

	SaveMessagePostMapping(ctx context.Context, messageID string, postID int, threadID string) error
	GetPostIDByMessage(ctx context.Context, messageID string) (*int, error)
	GetMessageIDByPost(ctx context.Context, postID int) (*string, error)

	SaveUserMapping(ctx context.Context, mapping *models.UserMapping) error
	GetForumUsername(ctx context.Context, chatUserID string) (*string, error)
	GetChatUserID(ctx context.Context, forumUsername string) (*string, error)

	SetSyncCheckpoint(ctx context.Context, spaceID string, timestamp string) error
	GetSyncCheckpoint(ctx context.Context, spaceID string) (*string, error)
}
