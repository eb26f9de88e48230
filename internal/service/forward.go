package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"chatcourse/internal/constants"
	"chatcourse/internal/metrics"
	"chatcourse/internal/models"
	"chatcourse/internal/tracing"
	"chatcourse/pkg/discourse"
	"chatcourse/pkg/googlechat"
	gchattypes "chatcourse/pkg/googlechat/types"
)

// ForwardSyncEngine mirrors Google Chat spaces into Discourse: spaces become
// categories, threads become topics, messages become posts.
type ForwardSyncEngine struct {
	chat   googlechat.Client
	forum  discourse.Client
	store  MappingStore
	users  *UserResolver
	logger *logrus.Logger
}

func NewForwardSyncEngine(chat googlechat.Client, forum discourse.Client, store MappingStore, users *UserResolver, logger *logrus.Logger) *ForwardSyncEngine {
	return &ForwardSyncEngine{
		chat:   chat,
		forum:  forum,
		store:  store,
		users:  users,
		logger: logger,
	}
}

// SyncSpaceToCategory ensures a space has a category mapping and returns the
// category ID. An existing mapping is returned unchanged; it is never
// re-created or re-parented. When the mapping names an existing category that
// category is verified remotely; otherwise a category named after the space is
// created, nested under ParentCategoryID when set. Direct-message spaces are
// skipped and report a zero category ID.
func (e *ForwardSyncEngine) SyncSpaceToCategory(ctx context.Context, mapping models.SpaceMapping) (int, error) {
	ctx, span := tracing.WithOtelTracing(ctx, "forward.sync_space_to_category")
	defer span.End()
	tracing.AddSpanAttributes(ctx, attribute.String("space_id", mapping.GoogleSpaceID))

	existing, err := e.store.GetCategoryIDBySpace(ctx, mapping.GoogleSpaceID)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		e.logger.WithFields(logrus.Fields{
			"space_id":    mapping.GoogleSpaceID,
			"category_id": *existing,
		}).Debug("Space already mapped to category")
		return *existing, nil
	}

	space, err := e.chat.GetSpace(ctx, mapping.GoogleSpaceID)
	if err != nil {
		tracing.RecordError(ctx, err)
		return 0, err
	}
	if space.IsDirectMessage() {
		e.logger.WithField("space_id", mapping.GoogleSpaceID).Warn("Skipping direct-message space")
		return 0, nil
	}

	var categoryID int
	if mapping.CategoryID > 0 {
		category, err := e.forum.GetCategory(ctx, mapping.CategoryID)
		if err != nil {
			e.logger.WithFields(logrus.Fields{
				"space_id":    mapping.GoogleSpaceID,
				"category_id": mapping.CategoryID,
			}).WithError(err).Error("Configured category not found in Discourse")
			return 0, err
		}
		categoryID = category.ID
	} else {
		name := space.DisplayName
		if name == "" {
			name = "Unnamed Space"
		}
		category, err := e.forum.CreateCategory(ctx, name, mapping.ParentCategoryID)
		if err != nil {
			tracing.RecordError(ctx, err)
			return 0, err
		}
		categoryID = category.ID
	}

	if err := e.store.SaveSpaceCategoryMapping(ctx, mapping.GoogleSpaceID, categoryID); err != nil {
		return 0, err
	}

	metrics.IncrementCounter("spaces_synced_total", nil, "Spaces mapped to Discourse categories")
	e.logger.WithFields(logrus.Fields{
		"space_id":    mapping.GoogleSpaceID,
		"category_id": categoryID,
	}).Info("Synced space to category")
	return categoryID, nil
}

// SyncMessagesToPosts walks the space's message pages and mirrors each unseen
// message into Discourse. It returns the number of newly synced messages.
// A missing space→category mapping fails fast with a zero count. Per-message
// remote failures are logged and skipped; the batch continues. A non-empty
// sinceTimestamp narrows the listing; correctness does not depend on it,
// the per-message mapping check does the real de-duplication.
func (e *ForwardSyncEngine) SyncMessagesToPosts(ctx context.Context, spaceID, sinceTimestamp string) (int, error) {
	ctx, span := tracing.WithOtelTracing(ctx, "forward.sync_messages_to_posts")
	defer span.End()
	tracing.AddSpanAttributes(ctx, attribute.String("space_id", spaceID))
	start := time.Now()

	categoryID, err := e.store.GetCategoryIDBySpace(ctx, spaceID)
	if err != nil {
		return 0, err
	}
	if categoryID == nil {
		e.logger.WithField("space_id", spaceID).Error("No category mapping found for space")
		return 0, nil
	}

	synced := 0
	pageToken := ""
	for {
		page, err := e.chat.ListMessages(ctx, spaceID, pageToken, sinceTimestamp)
		if err != nil {
			tracing.RecordError(ctx, err)
			return synced, err
		}

		for i := range page.Messages {
			ok, err := e.syncMessage(ctx, &page.Messages[i], spaceID, *categoryID)
			if err != nil {
				// Storage errors are fatal to the batch; remote failures
				// were already absorbed inside syncMessage.
				return synced, err
			}
			if ok {
				synced++
			}
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if synced > 0 {
		checkpoint := time.Now().UTC().Format(time.RFC3339)
		if err := e.store.SetSyncCheckpoint(ctx, spaceID, checkpoint); err != nil {
			return synced, err
		}
	}

	metrics.AddToCounter("messages_synced_total", float64(synced), map[string]string{"direction": "forward"}, "Messages mirrored between platforms")
	metrics.RecordTimer("forward_sync_duration", time.Since(start), map[string]string{"space_id": spaceID})
	e.logger.WithFields(logrus.Fields{
		"space_id": spaceID,
		"synced":   synced,
	}).Info("Forward sync pass complete")
	return synced, nil
}

// syncMessage mirrors one chat message. The returned bool reports whether a
// new post was created; a nil error with false means the message was skipped
// or failed remotely in a non-fatal way.
func (e *ForwardSyncEngine) syncMessage(ctx context.Context, message *gchattypes.Message, spaceID string, categoryID int) (bool, error) {
	existing, err := e.store.GetPostIDByMessage(ctx, message.Name)
	if err != nil {
		return false, err
	}
	if existing != nil {
		e.logger.WithField("message_id", message.Name).Debug("Message already synced")
		return false, nil
	}

	if message.Text == "" {
		e.logger.WithField("message_id", message.Name).Debug("Skipping empty message")
		return false, nil
	}

	threadID := ""
	if message.Thread != nil {
		threadID = message.Thread.Name
	}

	var topicID *int
	if threadID != "" {
		topicID, err = e.store.GetTopicIDByThread(ctx, threadID)
		if err != nil {
			return false, err
		}
	}

	asUsername := e.resolveAuthor(ctx, message.Sender)

	// Unattributed content still names its author, inline in the body.
	prefix := ""
	if asUsername == "" && message.Sender != nil && message.Sender.DisplayName != "" {
		prefix = "**" + message.Sender.DisplayName + ":** "
	}

	if topicID == nil {
		title, body := MakeTitleAndBody(message.Text)
		body = prefix + body

		post, err := e.forum.CreateTopic(ctx, title, body, categoryID, asUsername)
		if err != nil {
			e.logger.WithFields(logrus.Fields{
				"message_id":  message.Name,
				"category_id": categoryID,
				"title":       title,
			}).WithError(err).Error("Failed to create topic for message")
			return false, nil
		}

		if threadID != "" {
			if err := e.store.SaveThreadTopicMapping(ctx, threadID, post.TopicID, spaceID); err != nil {
				return false, err
			}
		}
		if err := e.store.SaveMessagePostMapping(ctx, message.Name, post.ID, threadID); err != nil {
			return false, err
		}

		e.logger.WithFields(logrus.Fields{
			"message_id": message.Name,
			"topic_id":   post.TopicID,
		}).Info("Created topic for message")
		return true, nil
	}

	post, err := e.forum.CreatePost(ctx, *topicID, prefix+message.Text, asUsername)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"message_id": message.Name,
			"topic_id":   *topicID,
		}).WithError(err).Error("Failed to create post for message")
		return false, nil
	}

	if err := e.store.SaveMessagePostMapping(ctx, message.Name, post.ID, threadID); err != nil {
		return false, err
	}

	e.logger.WithFields(logrus.Fields{
		"message_id": message.Name,
		"post_id":    post.ID,
	}).Info("Created post for message")
	return true, nil
}

// SyncMessageUpdate propagates an edited chat message to its mirrored post.
func (e *ForwardSyncEngine) SyncMessageUpdate(ctx context.Context, messageID, newText string) (bool, error) {
	postID, err := e.store.GetPostIDByMessage(ctx, messageID)
	if err != nil {
		return false, err
	}
	if postID == nil {
		e.logger.WithField("message_id", messageID).Warn("No post mapping found for message")
		return false, nil
	}

	if _, err := e.forum.UpdatePost(ctx, *postID, newText); err != nil {
		return false, err
	}

	e.logger.WithFields(logrus.Fields{
		"message_id": messageID,
		"post_id":    *postID,
	}).Info("Updated post for message")
	return true, nil
}

// resolveAuthor maps the sender to a forum username for impersonation.
// Resolution failures leave the content attributed to the bridge account.
func (e *ForwardSyncEngine) resolveAuthor(ctx context.Context, sender *gchattypes.User) string {
	if e.users == nil || sender == nil {
		return ""
	}
	username, err := e.users.GetOrCreateForumUser(ctx, sender)
	if err != nil {
		e.logger.WithField("sender", sender.Name).WithError(err).Warn("Could not resolve forum user, posting unattributed")
		return ""
	}
	return username
}

// MakeTitleAndBody derives a Discourse topic title and body from chat text.
// The title is the first non-empty line, truncated with a "..." suffix when
// it exceeds the topic title limit. The body repeats the (possibly truncated)
// title, a blank line, then the complete original text, so truncation never
// drops content.
func MakeTitleAndBody(text string) (string, string) {
	if text == "" {
		return "", ""
	}

	lines := strings.Split(text, "\n")
	firstLine := ""
	for _, line := range lines {
		// Trimming only decides which line counts as non-empty; the chosen
		// line goes into the title verbatim, surrounding whitespace and all.
		if strings.TrimSpace(line) != "" {
			firstLine = line
			break
		}
	}
	if firstLine == "" {
		firstLine = lines[0]
	}

	title := firstLine
	if runes := []rune(firstLine); len(runes) > constants.MaxTopicTitleLen {
		title = string(runes[:constants.MaxTopicTitleLen-3]) + "..."
	}

	return title, title + "\n\n" + text
}
