package models

import "time"

// SpaceCategoryMapping links a Google Chat space to a Discourse category.
// At most one category exists per space; lookups work in both directions.
type SpaceCategoryMapping struct {
	ChatSpaceID     string    `db:"chat_space_id"`
	ForumCategoryID int       `db:"forum_category_id"`
	CreatedAt       time.Time `db:"created_at"`
}

// ThreadTopicMapping links a Google Chat thread to a Discourse topic. The
// engines create the space mapping before the thread mapping; storage does
// not enforce it.
type ThreadTopicMapping struct {
	ChatThreadID string    `db:"chat_thread_id"`
	ForumTopicID int       `db:"forum_topic_id"`
	ChatSpaceID  string    `db:"chat_space_id"`
	CreatedAt    time.Time `db:"created_at"`
}

// MessagePostMapping links a Google Chat message to a Discourse post. Row
// existence for a chat message id is the forward-sync idempotency gate; row
// existence for a forum post id marks the post as a mirror of a chat message
// that must never be synced back to chat.
type MessagePostMapping struct {
	ChatMessageID string    `db:"chat_message_id"`
	ForumPostID   int       `db:"forum_post_id"`
	ChatThreadID  string    `db:"chat_thread_id"`
	CreatedAt     time.Time `db:"created_at"`
}

// UserMapping links a Google Chat user to the Discourse account the bridge
// provisioned (or adopted) for them.
type UserMapping struct {
	ChatUserID      string    `db:"chat_user_id"`
	ForumUsername   string    `db:"forum_username"`
	ChatDisplayName string    `db:"chat_display_name"`
	ChatEmail       string    `db:"chat_email"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// SyncCheckpoint records the last successful catch-up sync per space. The
// timestamp is the raw RFC 3339 string from the Chat API, stored verbatim so
// it survives a round trip into a createTime filter. It is best effort;
// idempotency comes from MessagePostMapping, not from here.
type SyncCheckpoint struct {
	ChatSpaceID       string    `db:"chat_space_id"`
	LastSyncTimestamp string    `db:"last_sync_timestamp"`
	UpdatedAt         time.Time `db:"updated_at"`
}
