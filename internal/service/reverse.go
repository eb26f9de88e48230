package service

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"chatcourse/internal/metrics"
	"chatcourse/internal/tracing"
	"chatcourse/internal/validation"
	"chatcourse/pkg/discourse"
	distypes "chatcourse/pkg/discourse/types"
	"chatcourse/pkg/googlechat"
)

// ReverseSyncEngine mirrors human-authored Discourse activity back into
// Google Chat. Posts and topics created by the bridge's own API account are
// ignored, as are posts that already have a message mapping; those two checks
// are what keeps the two engines from feeding each other forever.
type ReverseSyncEngine struct {
	chat        googlechat.Client
	forum       discourse.Client
	store       MappingStore
	apiUsername string
	logger      *logrus.Logger
}

func NewReverseSyncEngine(chat googlechat.Client, forum discourse.Client, store MappingStore, apiUsername string, logger *logrus.Logger) *ReverseSyncEngine {
	return &ReverseSyncEngine{
		chat:        chat,
		forum:       forum,
		store:       store,
		apiUsername: apiUsername,
		logger:      logger,
	}
}

// SyncPostToMessage mirrors a newly created forum post into the chat thread
// its topic is mapped to. The returned bool reports whether a message was
// created; loop-prevention skips and unmapped topics report false without an
// error.
func (e *ReverseSyncEngine) SyncPostToMessage(ctx context.Context, post *distypes.Post) (bool, error) {
	ctx, span := tracing.WithOtelTracing(ctx, "reverse.sync_post_to_message")
	defer span.End()
	tracing.AddSpanAttributes(ctx, attribute.Int("post_id", post.ID))

	if post.Username == e.apiUsername {
		e.logger.WithField("post_id", post.ID).Debug("Ignoring post created by API user")
		return false, nil
	}

	existing, err := e.store.GetMessageIDByPost(ctx, post.ID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		e.logger.WithField("post_id", post.ID).Debug("Post originated from Google Chat, ignoring")
		return false, nil
	}

	threadID, err := e.store.GetThreadIDByTopic(ctx, post.TopicID)
	if err != nil {
		return false, err
	}
	if threadID == nil {
		e.logger.WithFields(logrus.Fields{
			"post_id":  post.ID,
			"topic_id": post.TopicID,
		}).Warn("No Google Chat thread found for topic")
		return false, nil
	}

	spaceID, err := validation.SpaceOfThread(*threadID)
	if err != nil {
		return false, err
	}

	message, err := e.chat.CreateMessage(ctx, spaceID, post.Raw, *threadID)
	if err != nil {
		tracing.RecordError(ctx, err)
		e.logger.WithField("post_id", post.ID).WithError(err).Error("Failed to create Google Chat message for post")
		return false, nil
	}

	if err := e.store.SaveMessagePostMapping(ctx, message.Name, post.ID, *threadID); err != nil {
		return false, err
	}

	metrics.IncrementCounter("messages_synced_total", map[string]string{"direction": "reverse"}, "Messages mirrored between platforms")
	e.logger.WithFields(logrus.Fields{
		"post_id":    post.ID,
		"message_id": message.Name,
	}).Info("Synced post to Google Chat message")
	return true, nil
}

// SyncPostUpdate propagates an edited forum post to its mirrored chat
// message. Posts without a mapping are a no-op.
func (e *ReverseSyncEngine) SyncPostUpdate(ctx context.Context, post *distypes.Post) (bool, error) {
	if post.Username == e.apiUsername {
		e.logger.WithField("post_id", post.ID).Debug("Ignoring post update by API user")
		return false, nil
	}

	messageID, err := e.store.GetMessageIDByPost(ctx, post.ID)
	if err != nil {
		return false, err
	}
	if messageID == nil {
		e.logger.WithField("post_id", post.ID).Debug("No Google Chat message found for post")
		return false, nil
	}

	if _, err := e.chat.UpdateMessage(ctx, *messageID, post.Raw); err != nil {
		e.logger.WithField("post_id", post.ID).WithError(err).Error("Failed to update Google Chat message for post")
		return false, nil
	}

	e.logger.WithFields(logrus.Fields{
		"post_id":    post.ID,
		"message_id": *messageID,
	}).Info("Updated Google Chat message for post")
	return true, nil
}

// HandleTopicCreation mirrors a human-created forum topic as a new chat
// thread in the space mapped to the topic's category.
func (e *ReverseSyncEngine) HandleTopicCreation(ctx context.Context, topic *distypes.Topic) (bool, error) {
	ctx, span := tracing.WithOtelTracing(ctx, "reverse.handle_topic_creation")
	defer span.End()
	tracing.AddSpanAttributes(ctx, attribute.Int("topic_id", topic.ID))

	spaceID, err := e.store.GetSpaceIDByCategory(ctx, topic.CategoryID)
	if err != nil {
		return false, err
	}
	if spaceID == nil {
		e.logger.WithFields(logrus.Fields{
			"topic_id":    topic.ID,
			"category_id": topic.CategoryID,
		}).Debug("No Google Chat space found for category")
		return false, nil
	}

	details, err := e.forum.GetTopic(ctx, topic.ID)
	if err != nil {
		e.logger.WithField("topic_id", topic.ID).WithError(err).Error("Could not fetch topic")
		return false, nil
	}
	if details.PostStream == nil || len(details.PostStream.Posts) == 0 {
		e.logger.WithField("topic_id", topic.ID).Warn("No posts found in topic")
		return false, nil
	}

	firstPost := details.PostStream.Posts[0]
	if firstPost.Username == e.apiUsername {
		e.logger.WithField("topic_id", topic.ID).Debug("Ignoring topic created by API user")
		return false, nil
	}

	body := firstPost.Raw
	if body == "" {
		body = firstPost.Cooked
	}

	// No thread name: Google Chat starts a fresh thread for the message.
	message, err := e.chat.CreateMessage(ctx, *spaceID, body, "")
	if err != nil {
		tracing.RecordError(ctx, err)
		e.logger.WithField("topic_id", topic.ID).WithError(err).Error("Failed to create Google Chat message for topic")
		return false, nil
	}

	threadID := ""
	if message.Thread != nil {
		threadID = message.Thread.Name
	}
	if threadID != "" {
		if err := e.store.SaveThreadTopicMapping(ctx, threadID, topic.ID, *spaceID); err != nil {
			return false, err
		}
	}
	if err := e.store.SaveMessagePostMapping(ctx, message.Name, firstPost.ID, threadID); err != nil {
		return false, err
	}

	metrics.IncrementCounter("topics_mirrored_total", nil, "Forum topics mirrored as chat threads")
	e.logger.WithFields(logrus.Fields{
		"topic_id":  topic.ID,
		"thread_id": threadID,
	}).Info("Created Google Chat thread for topic")
	return true, nil
}

// HandleDestroyed logs destruction events. Deletion propagation is not
// modeled; the mappings stay in place.
func (e *ReverseSyncEngine) HandleDestroyed(resourceType string, id int) {
	e.logger.WithFields(logrus.Fields{
		"resource": resourceType,
		"id":       id,
	}).Info("Remote entity destroyed, no propagation")
}
