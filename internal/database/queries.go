package database

// Space to category mapping queries
const (
	upsertSpaceCategoryQuery = `
		INSERT OR REPLACE INTO space_category_mappings (chat_space_id, forum_category_id)
		VALUES (?, ?)
	`

	selectCategoryBySpaceQuery = `
		SELECT forum_category_id FROM space_category_mappings WHERE chat_space_id = ?
	`

	selectSpaceByCategoryQuery = `
		SELECT chat_space_id FROM space_category_mappings WHERE forum_category_id = ?
	`

	selectAllSpaceCategoryQuery = `
		SELECT chat_space_id, forum_category_id, created_at
		FROM space_category_mappings
		ORDER BY created_at, chat_space_id
	`
)

// Thread to topic mapping queries
const (
	upsertThreadTopicQuery = `
		INSERT OR REPLACE INTO thread_topic_mappings (chat_thread_id, forum_topic_id, chat_space_id)
		VALUES (?, ?, ?)
	`

	selectTopicByThreadQuery = `
		SELECT forum_topic_id FROM thread_topic_mappings WHERE chat_thread_id = ?
	`

	selectThreadByTopicQuery = `
		SELECT chat_thread_id FROM thread_topic_mappings WHERE forum_topic_id = ?
	`
)

// Message to post mapping queries
const (
	upsertMessagePostQuery = `
		INSERT OR REPLACE INTO message_post_mappings (chat_message_id, forum_post_id, chat_thread_id)
		VALUES (?, ?, ?)
	`

	selectPostByMessageQuery = `
		SELECT forum_post_id FROM message_post_mappings WHERE chat_message_id = ?
	`

	selectMessageByPostQuery = `
		SELECT chat_message_id FROM message_post_mappings WHERE forum_post_id = ?
	`
)

// User mapping queries
const (
	upsertUserMappingQuery = `
		INSERT OR REPLACE INTO user_mappings
			(chat_user_id, forum_username, chat_display_name, chat_email, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	`

	selectForumUsernameQuery = `
		SELECT forum_username FROM user_mappings WHERE chat_user_id = ?
	`

	selectChatUserIDQuery = `
		SELECT chat_user_id FROM user_mappings WHERE forum_username = ?
	`

	selectAllUserMappingsQuery = `
		SELECT chat_user_id, forum_username, chat_display_name, chat_email,
			created_at, updated_at
		FROM user_mappings
		ORDER BY forum_username
	`
)

// Sync checkpoint queries
const (
	upsertCheckpointQuery = `
		INSERT OR REPLACE INTO sync_checkpoints (chat_space_id, last_sync_timestamp, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`

	selectCheckpointQuery = `
		SELECT last_sync_timestamp FROM sync_checkpoints WHERE chat_space_id = ?
	`
)
