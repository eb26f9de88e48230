package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"chatcourse/internal/migrations"
	"chatcourse/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// Database is the durable mapping store shared by both sync engines. Every
// write is an upsert on the relation's unique key and commits before the
// call returns; the engines rely on that to avoid duplicate remote creation
// on crash-and-retry.
type Database struct {
	db        *sql.DB
	encryptor *encryptor
}

func New(dbPath string) (*Database, error) {
	if len(dbPath) == 0 || dbPath[0] == '\x00' {
		return nil, fmt.Errorf("invalid database path")
	}

	file, err := os.OpenFile(dbPath, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create database file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close database file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrations.MigrateUp(db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to apply migrations: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	encryptor, err := newEncryptor()
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize encryptor: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize encryptor: %w", err)
	}

	return &Database{db: db, encryptor: encryptor}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// Space to category mappings

func (d *Database) SaveSpaceCategoryMapping(ctx context.Context, spaceID string, categoryID int) error {
	if _, err := d.db.ExecContext(ctx, upsertSpaceCategoryQuery, spaceID, categoryID); err != nil {
		return fmt.Errorf("failed to save space-category mapping: %w", err)
	}
	return nil
}

func (d *Database) GetCategoryIDBySpace(ctx context.Context, spaceID string) (*int, error) {
	var categoryID int
	err := d.db.QueryRowContext(ctx, selectCategoryBySpaceQuery, spaceID).Scan(&categoryID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category for space: %w", err)
	}
	return &categoryID, nil
}

func (d *Database) GetSpaceIDByCategory(ctx context.Context, categoryID int) (*string, error) {
	var spaceID string
	err := d.db.QueryRowContext(ctx, selectSpaceByCategoryQuery, categoryID).Scan(&spaceID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get space for category: %w", err)
	}
	return &spaceID, nil
}

// ListSpaceCategoryMappings returns every configured space-category pair,
// oldest first. Used by the admin CLI and the catch-up scheduler.
func (d *Database) ListSpaceCategoryMappings(ctx context.Context) ([]models.SpaceCategoryMapping, error) {
	rows, err := d.db.QueryContext(ctx, selectAllSpaceCategoryQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list space-category mappings: %w", err)
	}
	defer rows.Close()

	var mappings []models.SpaceCategoryMapping
	for rows.Next() {
		var m models.SpaceCategoryMapping
		if err := rows.Scan(&m.ChatSpaceID, &m.ForumCategoryID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan space-category mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate space-category mappings: %w", err)
	}
	return mappings, nil
}

// Thread to topic mappings

func (d *Database) SaveThreadTopicMapping(ctx context.Context, threadID string, topicID int, spaceID string) error {
	if _, err := d.db.ExecContext(ctx, upsertThreadTopicQuery, threadID, topicID, spaceID); err != nil {
		return fmt.Errorf("failed to save thread-topic mapping: %w", err)
	}
	return nil
}

func (d *Database) GetTopicIDByThread(ctx context.Context, threadID string) (*int, error) {
	var topicID int
	err := d.db.QueryRowContext(ctx, selectTopicByThreadQuery, threadID).Scan(&topicID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic for thread: %w", err)
	}
	return &topicID, nil
}

func (d *Database) GetThreadIDByTopic(ctx context.Context, topicID int) (*string, error) {
	var threadID string
	err := d.db.QueryRowContext(ctx, selectThreadByTopicQuery, topicID).Scan(&threadID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get thread for topic: %w", err)
	}
	return &threadID, nil
}

// Message to post mappings

func (d *Database) SaveMessagePostMapping(ctx context.Context, messageID string, postID int, threadID string) error {
	if _, err := d.db.ExecContext(ctx, upsertMessagePostQuery, messageID, postID, threadID); err != nil {
		return fmt.Errorf("failed to save message-post mapping: %w", err)
	}
	return nil
}

func (d *Database) GetPostIDByMessage(ctx context.Context, messageID string) (*int, error) {
	var postID int
	err := d.db.QueryRowContext(ctx, selectPostByMessageQuery, messageID).Scan(&postID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post for message: %w", err)
	}
	return &postID, nil
}

func (d *Database) GetMessageIDByPost(ctx context.Context, postID int) (*string, error) {
	var messageID string
	err := d.db.QueryRowContext(ctx, selectMessageByPostQuery, postID).Scan(&messageID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message for post: %w", err)
	}
	return &messageID, nil
}

// User mappings

func (d *Database) SaveUserMapping(ctx context.Context, mapping *models.UserMapping) error {
	encryptedName, err := d.encryptor.EncryptIfEnabled(mapping.ChatDisplayName)
	if err != nil {
		return fmt.Errorf("failed to encrypt display name: %w", err)
	}

	encryptedEmail, err := d.encryptor.EncryptIfEnabled(mapping.ChatEmail)
	if err != nil {
		return fmt.Errorf("failed to encrypt email: %w", err)
	}

	_, err = d.db.ExecContext(ctx, upsertUserMappingQuery,
		mapping.ChatUserID, mapping.ForumUsername, encryptedName, encryptedEmail)
	if err != nil {
		return fmt.Errorf("failed to save user mapping: %w", err)
	}
	return nil
}

func (d *Database) GetForumUsername(ctx context.Context, chatUserID string) (*string, error) {
	var username string
	err := d.db.QueryRowContext(ctx, selectForumUsernameQuery, chatUserID).Scan(&username)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get forum username: %w", err)
	}
	return &username, nil
}

// ListUserMappings returns every provisioned user, ordered by forum
// username, with the PII columns decrypted when at-rest encryption is on.
func (d *Database) ListUserMappings(ctx context.Context) ([]models.UserMapping, error) {
	rows, err := d.db.QueryContext(ctx, selectAllUserMappingsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list user mappings: %w", err)
	}
	defer rows.Close()

	var mappings []models.UserMapping
	for rows.Next() {
		var m models.UserMapping
		if err := rows.Scan(&m.ChatUserID, &m.ForumUsername, &m.ChatDisplayName,
			&m.ChatEmail, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user mapping: %w", err)
		}
		if m.ChatDisplayName, err = d.encryptor.DecryptIfEnabled(m.ChatDisplayName); err != nil {
			return nil, fmt.Errorf("failed to decrypt display name: %w", err)
		}
		if m.ChatEmail, err = d.encryptor.DecryptIfEnabled(m.ChatEmail); err != nil {
			return nil, fmt.Errorf("failed to decrypt email: %w", err)
		}
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user mappings: %w", err)
	}
	return mappings, nil
}

func (d *Database) GetChatUserID(ctx context.Context, forumUsername string) (*string, error) {
	var userID string
	err := d.db.QueryRowContext(ctx, selectChatUserIDQuery, forumUsername).Scan(&userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat user id: %w", err)
	}
	return &userID, nil
}

// Sync checkpoints

func (d *Database) SetSyncCheckpoint(ctx context.Context, spaceID string, timestamp string) error {
	if _, err := d.db.ExecContext(ctx, upsertCheckpointQuery, spaceID, timestamp); err != nil {
		return fmt.Errorf("failed to set sync checkpoint: %w", err)
	}
	return nil
}

func (d *Database) GetSyncCheckpoint(ctx context.Context, spaceID string) (*string, error) {
	var timestamp string
	err := d.db.QueryRowContext(ctx, selectCheckpointQuery, spaceID).Scan(&timestamp)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync checkpoint: %w", err)
	}
	return &timestamp, nil
}
